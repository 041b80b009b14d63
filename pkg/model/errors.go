package model

import "errors"

var (
	// ErrNotFound is returned when an id is absent from the supplied collection.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRange is returned for an importance/urgency score outside [0,100].
	ErrInvalidRange = errors.New("score out of range")
	// ErrInvalidTarget is returned for a routine whose targetDays is not positive.
	ErrInvalidTarget = errors.New("target days must be at least 1")
	ErrInvalidDate   = errors.New("invalid calendar date")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrDuplicateDate = errors.New("duplicate completion date")
	ErrEmptyName     = errors.New("name must not be empty")
)
