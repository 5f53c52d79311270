package vocsearch

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is returned when the server rejects the request
// parameters. Use errors.Is().
var ErrInvalidParameters = errors.New("vocsearch: invalid parameters")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vocsearch: api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps the invalid_parameters error code onto the sentinel.
func (e *APIError) Is(target error) bool {
	return target == ErrInvalidParameters && e.Code == "invalid_parameters"
}
