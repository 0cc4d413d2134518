package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Persistence errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrSongInUse     = fmt.Errorf("song is used by a setlist")
	ErrBandInUse     = fmt.Errorf("band has scheduled events")
	ErrBandNotFound  = fmt.Errorf("band not found")
	ErrEventNotFound = fmt.Errorf("event not found")
	ErrSongNotFound  = fmt.Errorf("song not found")
	ErrTagNotFound   = fmt.Errorf("tag not found")
	ErrTagExists     = fmt.Errorf("tag already exists")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Sharing errors
	ErrInvalidRedirect = fmt.Errorf("invalid redirect target")
)
