package mealplan

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPeriod      = errors.New("period must be day, week or month")
	ErrInvalidMealTypes   = errors.New("meal types must be a non-empty subset of breakfast, lunch, dinner, snack")
	ErrInvalidQuota       = errors.New("snacks and desserts per day must not be negative")
	ErrCalendarNotFound   = errors.New("calendar not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrEmptyPool          = errors.New("no eligible recipes")
)

// EmptyPoolError names the category whose selection pool came up empty.
// It matches ErrEmptyPool under errors.Is.
type EmptyPoolError struct {
	Category string
}

func (e *EmptyPoolError) Error() string {
	return fmt.Sprintf("no eligible recipes for category %q", e.Category)
}

func (e *EmptyPoolError) Unwrap() error { return ErrEmptyPool }
