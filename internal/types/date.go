package types

import (
	"time"

	ierr "github.com/milkround/milkround/internal/errors"
)

// DateFormat is the wire format for calendar dates. Delivery entries,
// adjustment requests and invoice spans are all keyed on whole days.
const DateFormat = "2006-01-02"

// ParseDate parses a yyyy-mm-dd string into a UTC midnight time
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("Invalid date %q, expected format %s", s, DateFormat).
			Mark(ierr.ErrValidation)
	}
	return t.UTC(), nil
}

// TruncateToDate drops the time-of-day component, keeping UTC midnight
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a time as yyyy-mm-dd
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// SameDate reports whether two times fall on the same UTC calendar day
func SameDate(a, b time.Time) bool {
	return TruncateToDate(a).Equal(TruncateToDate(b))
}
