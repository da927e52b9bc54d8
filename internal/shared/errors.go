package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// ErrUnknownSource signals a program configured with a source kind the
	// dispatcher does not recognize. Unlike fetch failures this is a caller
	// defect and is allowed to propagate.
	ErrUnknownSource = fmt.Errorf("unknown program source")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Absence errors. Off-air days, restructured pages and timeouts all
	// collapse into these: "could not get an answer" reads the same as
	// "there is no answer".
	ErrSongsNotFound    = fmt.Errorf("no songs found")
	ErrTrackNotFound    = fmt.Errorf("track not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")

	ErrTimeout = fmt.Errorf("operation timed out")
)
