package ai

import "errors"

// ErrMissingAPIKey indicates an adapter was invoked without a configured
// provider credential. Surfaces at call time, not at startup.
var ErrMissingAPIKey = errors.New("ai provider api key not configured")
