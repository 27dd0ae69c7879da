package application

import (
	"time"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/pkg/apperror"
)

var (
	errDateFormat      = apperror.InvalidInput("invalid date format (use YYYY-MM-DD)")
	errDateOrder       = apperror.InvalidInput("endDate cannot be before startDate")
	errTimestampFormat = apperror.InvalidInput("invalid timestamp format (use RFC 3339)")
	errTimestampOrder  = apperror.InvalidInput("endTs must be after startTs")
)

// ParseDate parses a plan calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return time.Time{}, errDateFormat
	}
	return d, nil
}

// ParseTimestamp parses an event instant and normalises it to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errTimestampFormat
	}
	return ts.UTC(), nil
}

// ValidatePlanDates allows a single-day plan; end before start is rejected.
func ValidatePlanDates(start, end time.Time) error {
	if end.Before(start) {
		return errDateOrder
	}
	return nil
}

// ValidateEventTimes requires end to be strictly after start.
func ValidateEventTimes(start, end time.Time) error {
	if !end.After(start) {
		return errTimestampOrder
	}
	return nil
}
