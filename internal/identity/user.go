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

package identity

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user name already exists")
	ErrEmailAlreadyExists = errors.New("user email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an authenticatable principal. Name is unique and non-empty;
// Email is unique when set. TenantID points at the default tenant used to
// scope password authentication that names no tenant.
type User struct {
	ID           string
	Name         string
	PasswordHash string
	Email        string
	Enabled      bool
	TenantID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Extra carries attributes outside the contract set.
	Extra map[string]any
}

// UserRepository defines user persistence. Collections page in stable
// descending id order; an empty marker means the first page.
type UserRepository interface {
	// Create stores a new user
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByName retrieves a user by its unique name
	GetByName(ctx context.Context, name string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update replaces the stored row, including the password hash
	Update(ctx context.Context, u *User) error

	// Delete removes the user and, atomically, everything hanging off it:
	// role grants, tokens, and credentials
	Delete(ctx context.Context, id string) error

	GetPage(ctx context.Context, marker string, limit int) ([]*User, error)
	GetPageMarkers(ctx context.Context, marker string, limit int) (prev, next string, err error)

	// GetByTenantPage lists users that default to the tenant or hold a
	// grant on it. A non-empty roleID narrows to users granted that role
	// on the tenant.
	GetByTenantPage(ctx context.Context, tenantID, roleID, marker string, limit int) ([]*User, error)
	GetByTenantPageMarkers(ctx context.Context, tenantID, roleID, marker string, limit int) (prev, next string, err error)
}
