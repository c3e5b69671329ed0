// Package normalize converts YouTube's duration and count encodings into
// canonical integers.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/sosodev/duration"
)

// ParseError reports a token that does not match the upstream contract.
type ParseError struct {
	Kind  string // "duration" or "count"
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("normalize: invalid %s %q: %v", e.Kind, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errEmpty     = errors.New("empty token")
	errCalendar  = errors.New("year and month components have no fixed length")
	errNegative  = errors.New("negative value")
	errNonDigits = errors.New("not a base-10 digit string")
)

// ToSeconds parses an ISO-8601 duration such as "PT2M10S" into whole seconds.
// Omitted components count as zero; fractional seconds are truncated.
func ToSeconds(token string) (int64, error) {
	if token == "" {
		return 0, &ParseError{Kind: "duration", Token: token, Err: errEmpty}
	}

	d, err := duration.Parse(token)
	if err != nil {
		return 0, &ParseError{Kind: "duration", Token: token, Err: err}
	}
	if d.Negative {
		return 0, &ParseError{Kind: "duration", Token: token, Err: errNegative}
	}
	if d.Years != 0 || d.Months != 0 {
		return 0, &ParseError{Kind: "duration", Token: token, Err: errCalendar}
	}

	total := d.Weeks*7*86400 + d.Days*86400 + d.Hours*3600 + d.Minutes*60 + d.Seconds
	return int64(math.Floor(total)), nil
}

// ToCount parses a digits-only count such as a view count.
func ToCount(token string) (int64, error) {
	if token == "" {
		return 0, &ParseError{Kind: "count", Token: token, Err: errEmpty}
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, &ParseError{Kind: "count", Token: token, Err: errNonDigits}
		}
	}

	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, &ParseError{Kind: "count", Token: token, Err: err}
	}
	return n, nil
}
