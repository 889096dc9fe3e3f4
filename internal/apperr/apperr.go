// Package apperr defines the failure taxonomy shared by repositories,
// controllers and HTTP handlers, and the policy deciding which failures are
// surfaced to users and which are handled silently.
package apperr

import (
	"errors"
	"net/http"
)

// Kind categorizes a failed operation.
type Kind string

const (
	// KindPermission is a role mismatch, e.g. an employer hitting a candidate endpoint
	KindPermission Kind = "permission"
	// KindAuth is an expired or missing credential
	KindAuth Kind = "auth"
	// KindOffline is a network-unreachable or timed-out call
	KindOffline Kind = "offline"
	// KindValidation is a business-rule or input violation
	KindValidation Kind = "validation"
	// KindNotFound is an explicitly referenced resource that no longer exists
	KindNotFound Kind = "not_found"
	// KindConflict is a uniqueness or state conflict
	KindConflict Kind = "conflict"
	// KindUnknown is everything else
	KindUnknown Kind = "unknown"
)

// Business-rule and infrastructure sentinels. Callers match with errors.Is.
var (
	ErrMissingEmployer      = errors.New("job post has no owning employer")
	ErrDuplicateApplication = errors.New("an active application for this job already exists")
	ErrTerminalState        = errors.New("application is in a terminal state")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAuthExpired          = errors.New("credential expired or missing")
	ErrOffline              = errors.New("service unreachable")
	ErrNotFound             = errors.New("resource not found")
	ErrCVGone               = errors.New("CV no longer exists")
	ErrLocalCVReference     = errors.New("CV reference points at a local file")
	ErrNoDefaultCV          = errors.New("no default CV configured")
)

// Surfaced reports whether a failure of this kind carries a user-facing
// message. Permission and auth failures are contained: the caller degrades
// to a "no relationship known" state instead of showing an error.
func (k Kind) Surfaced() bool {
	switch k {
	case KindPermission, KindAuth:
		return false
	}
	return true
}

// Retryable reports whether a retry affordance should accompany the message.
// Only environmental failures qualify; business-rule violations never retry.
func (k Kind) Retryable() bool {
	return k == KindOffline
}

// HTTPStatus maps a kind to the status code handlers respond with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindPermission:
		return http.StatusForbidden
	case KindAuth:
		return http.StatusUnauthorized
	case KindOffline:
		return http.StatusServiceUnavailable
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the generic user-facing message for kinds that surface one.
func (k Kind) Message() string {
	switch k {
	case KindOffline:
		return "Service unreachable. Please check your connection and retry."
	case KindUnknown:
		return "Something went wrong. Please try again."
	default:
		return ""
	}
}
