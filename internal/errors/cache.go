package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"codeberg.org/starterkit/server/internal/cache"
)

// named is implemented by errors that announce a type name
type named interface {
	Name() string
}

var cacheErrorNames = map[string]cache.Kind{
	"ReplyError":  cache.KindReply,
	"AbortError":  cache.KindAbort,
	"ParserError": cache.KindParser,
	"RedisError":  cache.KindGeneric,
}

func classifyCache(err error) (Result, bool) {
	kind, ok := cacheKind(err)
	if !ok {
		return Result{}, false
	}

	msg := err.Error()

	switch {
	case kind == cache.KindConnection || containsAny(msg, connectionSignals...):
		return Result{
			Status:   http.StatusServiceUnavailable,
			Category: CategoryCacheUnavailable,
			Summary:  "Cache service is temporarily unavailable",
			Detail:   cacheDetail(kind, msg, "Redis Connection Error", "Check if Redis server is running and accessible"),
		}, true
	case strings.Contains(msg, "OOM") || strings.Contains(msg, "memory"):
		return Result{
			Status:   http.StatusInsufficientStorage,
			Category: CategoryCacheStorageFull,
			Summary:  "Cache storage is full",
			Detail:   cacheDetail(kind, msg, "Redis Storage Error", "Check Redis memory configuration and available storage"),
		}, true
	case kind == cache.KindAbort:
		return Result{
			Status:   http.StatusServiceUnavailable,
			Category: CategoryCacheConnectionAborted,
			Summary:  "Cache connection was aborted",
			Detail:   cacheDetail(kind, msg, "Redis Connection Error", "Check if Redis server is running and accessible"),
		}, true
	case kind == cache.KindParser:
		return Result{
			Status:   http.StatusInternalServerError,
			Category: CategoryCacheParse,
			Summary:  "Cache data parsing failed",
			Detail:   cacheDetail(kind, msg, "Redis Parser Error", "Check Redis data format and encoding"),
		}, true
	case kind == cache.KindReply:
		return Result{
			Status:   http.StatusBadRequest,
			Category: CategoryCacheCommand,
			Summary:  "Cache command failed",
			Detail:   cacheDetail(kind, msg, "Redis Reply Error", "Check if the Redis command is valid and supported"),
		}, true
	default:
		return Result{
			Status:   http.StatusInternalServerError,
			Category: CategoryGenericCache,
			Summary:  "Cache operation failed",
			Detail:   cacheDetail(kind, msg, "Redis Error", ""),
		}, true
	}
}

// reports whether err came from the cache layer and which kind it is
func cacheKind(err error) (cache.Kind, bool) {
	var cacheErr *cache.Error
	if errors.As(err, &cacheErr) {
		return cacheErr.Kind, true
	}

	var n named
	if errors.As(err, &n) {
		if kind, ok := cacheErrorNames[n.Name()]; ok {
			return kind, true
		}
	}

	var reply redis.Error
	if errors.As(err, &reply) || errors.Is(err, redis.ErrClosed) {
		return cache.KindOf(err), true
	}

	msg := err.Error()
	if strings.Contains(msg, "redis") || strings.Contains(msg, "Redis") || strings.Contains(msg, "cache") {
		return cache.KindOf(err), true
	}

	return "", false
}

func cacheDetail(kind cache.Kind, msg, typ, suggestion string) CacheDetail {
	return CacheDetail{
		Name:       string(kind),
		Message:    msg,
		Type:       typ,
		Suggestion: suggestion,
	}
}
