package llm

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no provider credential is present.
// Callers should treat it as a degrade signal, not a transient fault:
// retrying will not help until the deployment is reconfigured.
var ErrNotConfigured = errors.New("llm: no provider configured")

// ProviderError wraps a provider failure that survived the retry policy.
type ProviderError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider %s failed after %d attempts: %v", e.Provider, e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// apiError is a non-2xx response from a provider HTTP API.
type apiError struct {
	provider string
	status   int
	body     string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.provider, e.status, e.body)
}

// transient reports whether the status is worth retrying. Rate limits,
// timeouts, and server-side errors are; other 4xx are not.
func (e *apiError) transient() bool {
	return e.status == 408 || e.status == 429 || e.status >= 500
}
