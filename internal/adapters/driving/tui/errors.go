package tui

import "errors"

var (
	// ErrMissingQueryService means the app has nothing to answer questions with.
	ErrMissingQueryService = errors.New("tui: query service is required")

	// ErrInvalidPorts covers a nil Ports or a negative TopK.
	ErrInvalidPorts = errors.New("tui: invalid ports configuration")
)
