package confguard

import "errors"

var (
	// ErrConfigPathNotSet is returned when no path was given and CONFIG_PATH is empty
	ErrConfigPathNotSet = errors.New("CONFIG_PATH not set and no path provided")
	// ErrNotFound is returned when a recorded run does not exist
	ErrNotFound = errors.New("not found")
	// ErrHistoryDisabled is returned when run history is requested without a repository
	ErrHistoryDisabled = errors.New("history disabled")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
