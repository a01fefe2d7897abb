// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// DefaultRemoteTimeout bounds a single call to the catalog API.
const DefaultRemoteTimeout = 30 * time.Second

// NewHTTPClient returns the client used for remote catalog calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &http.Client{Timeout: timeout}
}
