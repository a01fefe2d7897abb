// services/errors.go
package services

import (
	"errors"
	"fmt"
)

// RemoteError is a failed remote operation. Message is what the caches surface verbatim.
type RemoteError struct {
	Op      string // remote operation name, e.g. "updateGameStatus"
	Status  int    // HTTP status, 0 when the request never got a response
	Message string
	Cause   error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// NewRemoteError builds a RemoteError for op, taking the message from cause when none is given.
func NewRemoteError(op string, status int, message string, cause error) *RemoteError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	if message == "" {
		message = fmt.Sprintf("%s failed", op)
	}
	return &RemoteError{Op: op, Status: status, Message: message, Cause: cause}
}

// ErrorMessage is the string stored in a cache's shared error slot.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
