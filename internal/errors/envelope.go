package errors

import "time"

// ISO-8601 with millisecond precision, always UTC
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// builds the response envelope for a classified failure
func BuildEnvelope(res Result, path string, now time.Time) Envelope {
	return Envelope{
		Success:    false,
		StatusCode: res.Status,
		Timestamp:  now.UTC().Format(TimestampLayout),
		Path:       path,
		Response:   res.Detail,
	}
}
