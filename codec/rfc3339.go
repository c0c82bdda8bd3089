// Package codec holds the textual wire formats shared by coercion and
// serialization.
package codec

import (
	"errors"
	"time"
)

// TimestampFormat names the single accepted textual timestamp format.
const TimestampFormat = "RFC3339"

// ErrTimestampFormat is returned for text outside the accepted format.
var ErrTimestampFormat = errors.New("codec: timestamp is not RFC3339")

// ParseTimestamp parses an RFC 3339 timestamp (fractional seconds optional,
// numeric offset or Z required). No other layout is attempted.
func ParseTimestamp(s string) (time.Time, error) {
	// RFC3339Nano accepts inputs with or without fractional seconds.
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Join(ErrTimestampFormat, err)
	}
	return t, nil
}

// FormatTimestamp renders t canonically: UTC, RFC3339Nano (trailing zeros
// trimmed).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
