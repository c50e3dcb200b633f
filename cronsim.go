// Package cronsim parses cron expressions and walks the moments at which
// they fire, forward or backward, across time zone transitions.
package cronsim

import (
	"errors"
	"fmt"
	"time"
)

var sleep = time.Sleep

var (
	// ErrBadExpression is wrapped by every parse failure.
	ErrBadExpression = errors.New("bad cron expression")

	ErrFieldCount  = errors.New("wrong number of fields")
	ErrValue       = errors.New("bad value")
	ErrRange       = errors.New("range end before start")
	ErrStep        = errors.New("zero or missing step")
	ErrNth         = errors.New("nth weekday out of range")
	ErrCalendar    = errors.New("business day token without a calendar")
	ErrUnreachable = errors.New("day not reached in any selected month")
	ErrEndOfDay    = errors.New("end of business day needs EB hour")
)

// Error describes why a field of an expression was rejected.
// Field is -1 when the expression as a whole is malformed.
type Error struct {
	Field Field
	Err   error
	Text  string
}

func (e *Error) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("bad %s: %s", e.Field, e.Err)
	}
	return fmt.Sprintf("bad %s: %s: %q", e.Field, e.Err, e.Text)
}

func (e *Error) Unwrap() []error {
	return []error{ErrBadExpression, e.Err}
}

func fail(f Field, err error, text string) error {
	return &Error{Field: f, Err: err, Text: text}
}
