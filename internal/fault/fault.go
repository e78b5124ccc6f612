// Copyright 2026 The Keygate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fault defines the error taxonomy surfaced by the identity API.
// Business code returns *Fault values; the transport layer renders them as
// fault documents in the negotiated content type.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a fault class. The string form doubles as the JSON root
// element of the rendered fault document.
type Kind string

const (
	KindBadRequest     Kind = "badRequest"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "itemNotFound"
	KindConflict       Kind = "conflict"
	KindOverLimit      Kind = "overLimit"
	KindUserDisabled   Kind = "userDisabled"
	KindTenantDisabled Kind = "tenantDisabled"
	KindInternal       Kind = "identityFault"
)

// Fault is an API-visible error with a stable kind and HTTP status.
type Fault struct {
	Kind    Kind
	Code    int
	Message string
	Details string

	// wrapped carries the underlying cause for errors.Is/As chains.
	wrapped error
}

func (f *Fault) Error() string {
	if f.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Kind, f.Message, f.Details)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.wrapped }

// Is reports kind equality so callers can match against template faults.
func (f *Fault) Is(target error) bool {
	var other *Fault
	if errors.As(target, &other) {
		return f.Kind == other.Kind
	}
	return false
}

// WithCause attaches the underlying error without changing the wire shape.
func (f *Fault) WithCause(err error) *Fault {
	f.wrapped = err
	return f
}

// WithDetails attaches operator-facing detail text.
func (f *Fault) WithDetails(details string) *Fault {
	f.Details = details
	return f
}

func newFault(kind Kind, code int, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports malformed input, unknown attributes, or empty
// required fields.
func BadRequest(format string, args ...any) *Fault {
	return newFault(KindBadRequest, http.StatusBadRequest, format, args...)
}

// Unauthorized reports missing or invalid credentials or tokens.
func Unauthorized(format string, args ...any) *Fault {
	return newFault(KindUnauthorized, http.StatusUnauthorized, format, args...)
}

// Forbidden reports valid credentials denied by policy.
func Forbidden(format string, args ...any) *Fault {
	return newFault(KindForbidden, http.StatusForbidden, format, args...)
}

// NotFound reports a missing entity. The check-token flow also uses it to
// avoid confirming token existence to unprivileged callers.
func NotFound(format string, args ...any) *Fault {
	return newFault(KindNotFound, http.StatusNotFound, format, args...)
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) *Fault {
	return newFault(KindConflict, http.StatusConflict, format, args...)
}

// OverLimit reports a rate-limited caller.
func OverLimit(format string, args ...any) *Fault {
	return newFault(KindOverLimit, http.StatusTooManyRequests, format, args...)
}

// UserDisabled reports a deactivated principal.
func UserDisabled(format string, args ...any) *Fault {
	return newFault(KindUserDisabled, http.StatusForbidden, format, args...)
}

// TenantDisabled reports a deactivated scope.
func TenantDisabled(format string, args ...any) *Fault {
	return newFault(KindTenantDisabled, http.StatusForbidden, format, args...)
}

// Internal reports a backend or repository failure.
func Internal(format string, args ...any) *Fault {
	return newFault(KindInternal, http.StatusInternalServerError, format, args...)
}

// As extracts a *Fault from an error chain, or wraps unknown errors as
// internal faults so the transport always has something renderable.
func As(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return Internal("service unavailable").WithCause(err)
}
