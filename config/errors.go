package config

import "errors"

var (
	// ErrParse indicates environment variables could not be parsed
	// into the configuration struct.
	ErrParse = errors.New("config: failed to parse environment")

	// ErrMissingSecret indicates no JWT shared secret is configured
	// while the HS256 algorithm is selected.
	ErrMissingSecret = errors.New("config: JWT secret is required for HS256")

	// ErrMissingDiscoveryURL indicates the RS256 algorithm is selected
	// without a project URL to discover signing keys from.
	ErrMissingDiscoveryURL = errors.New("config: project URL is required for RS256")

	// ErrInvalidAlgorithm indicates an unsupported JWT algorithm name.
	ErrInvalidAlgorithm = errors.New("config: unsupported JWT algorithm")
)
