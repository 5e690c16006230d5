// internal/services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/javajoker/tecnova-catalog/internal/utils"
)

// ErrSuperseded is returned by a refresh whose result was discarded because a
// newer refresh was issued before it completed.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// NetworkError is a transport failure: no HTTP response was received.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// RemoteError is a non-success HTTP status returned by the catalog backend.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// NotFound reports whether the backend answered 404.
func (e *RemoteError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// ValidationError rejects a draft before any request is sent.
type ValidationError struct {
	Fields []utils.ValidationError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

func newValidationError(field, tag, message string) *ValidationError {
	return &ValidationError{Fields: []utils.ValidationError{{Field: field, Tag: tag, Message: message}}}
}

// IsNotFound reports whether err carries a 404 from the backend.
func IsNotFound(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.NotFound()
}
