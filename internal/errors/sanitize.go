package errors

import (
	"reflect"
	"unicode/utf8"
)

const (
	maxDetailLength     = 100
	truncationMarker    = "..."
	objectPlaceholder   = "[Object]"
	genericInternalText = "Internal server error"
)

// Sanitizer redacts the client-facing detail of a Result according to the
// environment mode. Applying it more than once has no further effect.
type Sanitizer struct {
	Mode Mode
}

// returns res with its detail redacted for the sanitizer's mode
func (s Sanitizer) Apply(res Result) Result {
	if !s.Mode.IsProduction() {
		return res
	}

	if res.Category == CategoryInternal || res.Category == CategoryUnknown {
		res.Detail = Message(genericInternalText)
		return res
	}

	switch d := res.Detail.(type) {
	case Passthrough:
		// explicit application bodies are authored for the client
	case Message:
		res.Detail = Message(truncate(string(d)))
	case FieldErrors:
		res.Detail = sanitizeFields(d)
	case CacheDetail:
		res.Detail = CacheDetail{
			Name:       d.Name,
			Message:    truncate(d.Message),
			Type:       d.Type,
			Suggestion: d.Suggestion,
		}
	case nil:
		res.Detail = Message(truncate(res.Summary))
	}

	return res
}

func sanitizeFields(fields FieldErrors) FieldErrors {
	out := make(FieldErrors, len(fields))

	for path, fd := range fields {
		out[path] = FieldDetail{
			Message: truncate(fd.Message),
			Value:   sanitizeValue(fd.Value),
			Kind:    fd.Kind,
		}
	}

	return out
}

// keeps scalars (strings truncated) and replaces anything structured
func sanitizeValue(v any) any {
	if v == nil {
		return nil
	}

	if s, ok := v.(string); ok {
		return truncate(s)
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v
	case reflect.String:
		return truncate(reflect.ValueOf(v).String())
	default:
		return objectPlaceholder
	}
}

// cuts s to maxDetailLength runes followed by the truncation marker
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDetailLength {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxDetailLength]) + truncationMarker
}
