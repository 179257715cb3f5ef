package listing

import (
	"strconv"
	"strings"
)

// Validate checks that r is a record the estimation stage can consume.
func Validate(r Record, currentYear int) error {
	if strings.TrimSpace(r.Make) == "" {
		return NewValidationError("make", r.Make, ErrMissingMake)
	}
	if !PlausibleYear(r.Year, currentYear) {
		return NewValidationError("year", strconv.Itoa(r.Year), ErrYearOutOfRange)
	}
	if r.Price < 0 {
		return NewValidationError("price", strconv.FormatFloat(r.Price, 'f', -1, 64), ErrNegativePrice)
	}
	if r.Mileage < 0 {
		return NewValidationError("mileage", strconv.Itoa(r.Mileage), ErrNegativeMileage)
	}
	return nil
}
