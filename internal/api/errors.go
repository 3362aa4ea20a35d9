package api

import (
	"errors"
	"fmt"
)

var ErrMalformedResponse = errors.New("api: malformed response")

// NetworkError is a transport failure or a non-2xx response. The user may
// retry the same action.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": network error"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a response the backend delivered but that reports a
// logical failure: success=false, an error field, or an undecodable body.
type BackendError struct {
	Op      string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return e.Op + ": request rejected"
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Err }

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// BackendMessage returns the message the backend attached to err, if any.
func BackendMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Message
	}
	return ""
}
