// Package errors defines the framework's error taxonomy. Every failure the
// core surfaces is one of a small set of typed, matchable errors so callers
// can branch on kind with errors.Is / errors.As and an HTTP layer can map
// them to status codes without string matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for conditions with no per-instance detail.
var (
	// ErrNotInitialized is returned when service composition is attempted
	// before the framework has been initialized.
	ErrNotInitialized = errors.New("Pancakes has not yet been initialized")

	// ErrModuleNotFound is wrapped by loader implementations when a module
	// path cannot be located.
	ErrModuleNotFound = errors.New("module not found")
)

// ResourceNotFoundError reports a resource module that could not be located.
type ResourceNotFoundError struct {
	ResourceName string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("ServiceFactory could not find resource %s", e.ResourceName)
}

// HTTPStatus implements the statusCoder contract used by the web adapter.
func (e *ResourceNotFoundError) HTTPStatus() int { return http.StatusInternalServerError }

// AdapterNotFoundError reports an adapter module that could not be located.
type AdapterNotFoundError struct {
	Path string
}

func (e *AdapterNotFoundError) Error() string {
	return fmt.Sprintf("ServiceFactory could not find adapter %s", e.Path)
}

func (e *AdapterNotFoundError) HTTPStatus() int { return http.StatusInternalServerError }

// RouteNotFoundError reports a request URL that matched no compiled route.
// The web adapter translates it into a 404 response.
type RouteNotFoundError struct {
	AppName string
	URL     string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("404: %s %s is not a valid request", e.AppName, e.URL)
}

func (e *RouteNotFoundError) HTTPStatus() int { return http.StatusNotFound }

// ConfigurationError reports an invalid resource, route or page declaration.
// These are programmer errors: fatal, synchronous and never cached.
type ConfigurationError struct {
	Subject string
	Detail  string
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return e.Subject
	}
	return e.Subject + ": " + e.Detail
}

func (e *ConfigurationError) HTTPStatus() int { return http.StatusInternalServerError }

// NoMethodsError reports a resource whose methods list is empty or absent.
type NoMethodsError struct {
	ResourceName string
}

func (e *NoMethodsError) Error() string {
	return fmt.Sprintf("Resource %s has no methods", e.ResourceName)
}

func (e *NoMethodsError) HTTPStatus() int { return http.StatusInternalServerError }

// statusCoder is satisfied by framework errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// HTTPStatus returns the HTTP status an error maps to, defaulting to 500 for
// errors outside the framework taxonomy.
func HTTPStatus(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is any of the not-found kinds (resource,
// adapter, route or module).
func IsNotFound(err error) bool {
	if errors.Is(err, ErrModuleNotFound) {
		return true
	}
	var r *ResourceNotFoundError
	var a *AdapterNotFoundError
	var rt *RouteNotFoundError
	return errors.As(err, &r) || errors.As(err, &a) || errors.As(err, &rt)
}

// Re-exported stdlib helpers so callers need a single errors import.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// New returns an error that formats as the given text.
func New(text string) error { return errors.New(text) }
