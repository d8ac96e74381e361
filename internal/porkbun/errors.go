package porkbun

import (
	"fmt"
	"strings"
)

// AuthError indicates the API key pair was rejected
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("porkbun authentication failed: %s (check your API key and secret)", e.Message)
}

// APIAccessDisabledError indicates API access is not enabled for a domain.
// Retrying never succeeds; the owner must flip the API ACCESS toggle on the
// Porkbun website.
type APIAccessDisabledError struct {
	Domain  string
	Message string
}

func (e *APIAccessDisabledError) Error() string {
	return fmt.Sprintf(
		"API access is disabled for domain %q.\n"+
			"To fix: log in at https://porkbun.com, open Domain Management, "+
			"select %q, find the API ACCESS section under Details and turn it ON, "+
			"then retry", e.Domain, e.Domain)
}

// APIError is a business error reported by the API (status=ERROR)
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("porkbun API error: %s", e.Message)
}

// RequestError wraps a transport-level failure (network, HTTP, bad payload)
type RequestError struct {
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("porkbun request %s failed: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ValidationError indicates the input was rejected before any network call
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// translateAPIError maps an ERROR response message to a typed error.
// The API signals error classes only through message text.
func translateAPIError(endpoint, message string) error {
	if strings.Contains(message, "API keys") {
		return &AuthError{Message: message}
	}
	if strings.Contains(message, "not enabled for API access") ||
		strings.Contains(message, "not opted in to API access") {
		// Domain-scoped endpoints end with the domain name
		parts := strings.Split(endpoint, "/")
		domain := parts[len(parts)-1]
		return &APIAccessDisabledError{Domain: domain, Message: message}
	}
	return &APIError{Message: message}
}
