package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
)

// Kind groups cache failures by what went wrong on the wire.
type Kind string

const (
	KindConnection = Kind("ConnectionError")
	KindAbort      = Kind("AbortError")
	KindParser     = Kind("ParserError")
	KindReply      = Kind("ReplyError")
	KindGeneric    = Kind("RedisError")
)

// Error wraps every failure returned by the cache client.
type Error struct {
	Op   string
	Key  string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Name returns the error kind, mirroring the redis client error names.
func (e *Error) Name() string {
	return string(e.Kind)
}

// Wrap turns a go-redis error into a *Error. nil stays nil.
func Wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	return &Error{Op: op, Key: key, Kind: KindOf(err), Err: err}
}

// KindOf derives the cache error kind of a raw go-redis error.
func KindOf(err error) Kind {
	var cacheErr *Error
	if errors.As(err, &cacheErr) {
		return cacheErr.Kind
	}

	if errors.Is(err, redis.ErrClosed) || errors.Is(err, redis.TxFailedErr) || errors.Is(err, context.Canceled) {
		return KindAbort
	}

	if isConnectionError(err) {
		return KindConnection
	}

	msg := err.Error()
	if strings.Contains(msg, "invalid reply") || strings.Contains(msg, "can't parse") || strings.Contains(msg, "protocol error") {
		return KindParser
	}

	var reply redis.Error
	if errors.As(err, &reply) {
		return KindReply
	}

	return KindGeneric
}

func isConnectionError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
