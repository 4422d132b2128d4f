package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrUnknownProvider    = fmt.Errorf("unknown provider")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// TransportError wraps a failure to reach a provider (DNS, TCP, TLS, timeout, body read).
type TransportError struct {
	Provider string
	URL      string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request %s: %v", e.Provider, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a response did not match the expected JSON schema or HTML structure.
type DecodeError struct {
	Provider string
	What     string // e.g. "playlist list", "song info", "cover image"
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %s: %v", e.Provider, e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CryptoError reports a request-signing failure. It only happens with malformed constants or keys.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("weapi %s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// ProviderError is a well-formed payload that carries a non-success business status.
type ProviderError struct {
	Provider string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrAPIRequest }

// HTTPStatusError means the provider answered with a non-2xx HTTP status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

func (e *HTTPStatusError) Unwrap() error { return ErrAPIRequest }

// ErrorKind names the error category of err for logs and partial-failure reports.
func ErrorKind(err error) string {
	var (
		transport *TransportError
		decode    *DecodeError
		crypto    *CryptoError
		provider  *ProviderError
		status    *HTTPStatusError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &crypto):
		return "crypto"
	case errors.As(err, &decode):
		return "decode"
	case errors.As(err, &provider):
		return "provider"
	case errors.As(err, &status):
		return "http_status"
	case errors.As(err, &transport):
		return "transport"
	default:
		return "other"
	}
}
