package swift

import (
	"errors"
	"net/http"

	ncw "github.com/ncw/swift"
)

var (
	// ErrUnauthorized is returned when the session token was rejected and cannot be renewed
	ErrUnauthorized = errors.New("swift: session expired")
	// ErrNotAuthenticated is returned by clients connected without a token
	ErrNotAuthenticated = errors.New("swift: not authenticated")
)

// StatusCode extracts the HTTP status of a Swift error, or 0
func StatusCode(err error) int {
	var swiftErr *ncw.Error
	if errors.As(err, &swiftErr) {
		return swiftErr.StatusCode
	}
	return 0
}

// IsForbidden reports a 403 from Swift
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound reports a 404 from Swift
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports a rejected or expired token
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotAuthenticated) ||
		StatusCode(err) == http.StatusUnauthorized
}

// NewStatusError builds an error carrying an HTTP status, classified like errors from the Swift API
func NewStatusError(code int, text string) error {
	return &ncw.Error{StatusCode: code, Text: text}
}
