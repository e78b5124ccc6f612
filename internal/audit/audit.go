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

package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event types
const (
	TypeAuthSuccess       = "auth_success"
	TypeAuthFailed        = "auth_failed"
	TypeTokenIssued       = "token_issued"
	TypeTokenReused       = "token_reused"
	TypeTokenRevoked      = "token_revoked"
	TypeRoleGranted       = "role_granted"
	TypeRoleRevoked       = "role_revoked"
	TypeTenantCreated     = "tenant_created"
	TypeTenantDeleted     = "tenant_deleted"
	TypeUserCreated       = "user_created"
	TypeUserDeleted       = "user_deleted"
	TypePasswordChanged   = "password_changed"
	TypeServiceCreated    = "service_created"
	TypeServiceDeleted    = "service_deleted"
	TypeCredentialCreated = "credential_created"
	TypeCredentialDeleted = "credential_deleted"
)

// Common metadata keys
const (
	AttrReason = "reason"
	AttrScope  = "scope"
	AttrMethod = "method"
)

// Event is one auditable action. TenantID is the scope the action ran
// under, ActorID the authenticated principal; both stay empty on failed
// authentication where no principal exists yet.
type Event struct {
	Type      string
	TenantID  string
	ActorID   string
	Resource  string
	Metadata  map[string]any
	Timestamp time.Time
	IPAddress string
	UserAgent string
}

// Logger records audit events. Implementations must not fail the calling
// operation.
type Logger interface {
	Log(ctx context.Context, event Event)
}

// SlogLogger writes audit events to the process logger at info level,
// tagged with the audit component so sinks can route them.
type SlogLogger struct{}

func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// Log records an audit event. Metadata values under secret-looking keys
// are redacted before the record leaves this package.
func (l *SlogLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	attrs := []any{
		slog.String("audit_type", event.Type),
		slog.String("resource", event.Resource),
		slog.Time("timestamp", event.Timestamp),
		slog.String("component", "audit"),
	}
	if event.TenantID != "" {
		attrs = append(attrs, slog.String("tenant_id", event.TenantID))
	}
	if event.ActorID != "" {
		attrs = append(attrs, slog.String("actor_id", event.ActorID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if len(event.Metadata) > 0 {
		group := make([]any, 0, len(event.Metadata))
		for k, v := range event.Metadata {
			if isSecret(k) {
				v = "[REDACTED]"
			}
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	slog.InfoContext(ctx, "AUDIT_EVENT", attrs...)
}

var secretFragments = []string{
	"password", "secret", "token", "key", "hash",
	"credential", "signature", "authorization",
}

// isSecret reports whether a metadata key looks like it names a secret.
func isSecret(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range secretFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
