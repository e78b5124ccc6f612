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

package token

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrTokenNotFound = errors.New("token not found")
)

// DefaultTTL applies when no token_ttl_seconds is configured.
const DefaultTTL = 24 * time.Hour

// Token is an opaque bearer credential. A nil TenantID means the token is
// unscoped and usable only to discover tenants and re-scope.
type Token struct {
	ID        string
	UserID    string
	TenantID  *string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry.
func (t *Token) Expired() bool {
	return !t.Expires.After(time.Now())
}

// ScopedTo reports whether the token is scoped to the given tenant.
func (t *Token) ScopedTo(tenantID string) bool {
	return t.TenantID != nil && *t.TenantID == tenantID
}

// Repository defines token persistence. Expired rows linger until reaped;
// readers must check Expires themselves.
type Repository interface {
	// Create stores a new token
	Create(ctx context.Context, t *Token) error

	// GetByID retrieves a token by id
	GetByID(ctx context.Context, id string) (*Token, error)

	// Delete revokes a token
	Delete(ctx context.Context, id string) error

	// GetForUser returns the user's unscoped token with the greatest
	// expiry, or ErrTokenNotFound
	GetForUser(ctx context.Context, userID string) (*Token, error)

	// GetForUserByTenant returns the user's token scoped to the tenant
	// with the greatest expiry, or ErrTokenNotFound
	GetForUserByTenant(ctx context.Context, userID, tenantID string) (*Token, error)

	// DeleteByUser removes every token belonging to the user
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired reaps tokens whose expiry has passed and reports how
	// many rows were removed
	DeleteExpired(ctx context.Context) (int64, error)
}
