package providers

import "errors"

var (
	// ErrAuthTokenIsRequired is returned if you are trying to initialize
	// a provider which requires some token to work.
	ErrAuthTokenIsRequired = errors.New("auth token is required")

	// ErrUnknownProvider is returned for unsupported provider names.
	ErrUnknownProvider = errors.New("unknown provider")
)
