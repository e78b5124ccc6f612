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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/keygate/keygate/internal/identity"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, password_hash, email, enabled, tenant_id, extra, created_at, updated_at"

func scanUser(row pgx.Row) (*identity.User, error) {
	var u identity.User
	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Email, &u.Enabled,
		&u.TenantID, &u.Extra, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func userConflict(err error) error {
	switch {
	case isUniqueViolation(err, "users_name_key"):
		return identity.ErrUserAlreadyExists
	case isUniqueViolation(err, "users_email_key"):
		return identity.ErrEmailAlreadyExists
	}
	return nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *identity.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, name, password_hash, email, enabled, tenant_id, extra, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Name, u.PasswordHash, u.Email, u.Enabled, u.TenantID, u.Extra, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if conflict := userConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	u, err := scanUser(r.db.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByName retrieves a user by its unique name
func (r *UserRepository) GetByName(ctx context.Context, name string) (*identity.User, error) {
	u, err := scanUser(r.db.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE name = $1", name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	u, err := scanUser(r.db.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Update replaces the stored user row, including the password hash
func (r *UserRepository) Update(ctx context.Context, u *identity.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET name = $2, password_hash = $3, email = $4, enabled = $5,
			tenant_id = $6, extra = $7, updated_at = $8
		WHERE id = $1
	`, u.ID, u.Name, u.PasswordHash, u.Email, u.Enabled, u.TenantID, u.Extra, u.UpdatedAt)
	if err != nil {
		if conflict := userConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// Delete removes the user row; grants, tokens, and credentials go with it
// atomically via the schema cascades
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// GetPage returns one marker window of users, newest first
func (r *UserRepository) GetPage(ctx context.Context, marker string, limit int) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE ($1 = '' OR id < $1)
		ORDER BY id DESC LIMIT $2
	`, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// GetPageMarkers returns the prev/next markers for GetPage
func (r *UserRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: "SELECT id FROM users"}
	return p.markers(ctx, marker, limit)
}

// usersByTenantIDs selects users defaulting to the tenant or granted any
// role on it; $2 narrows to one role and disables the default-membership
// arm, matching the list-users-with-role contract.
const usersByTenantIDs = `
	SELECT u.id FROM users u
	WHERE ($2 = '' AND u.tenant_id = $1)
	   OR EXISTS (
		SELECT 1 FROM role_grants g
		WHERE g.user_id = u.id AND g.tenant_id = $1
		  AND ($2 = '' OR g.role_id = $2)
	)`

// GetByTenantPage lists users that default to the tenant or hold a grant
// on it
func (r *UserRepository) GetByTenantPage(ctx context.Context, tenantID, roleID, marker string, limit int) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id IN (`+usersByTenantIDs+`)
		  AND ($3 = '' OR id < $3)
		ORDER BY id DESC LIMIT $4
	`, tenantID, roleID, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// GetByTenantPageMarkers returns the prev/next markers for GetByTenantPage
func (r *UserRepository) GetByTenantPageMarkers(ctx context.Context, tenantID, roleID, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: usersByTenantIDs, args: []any{tenantID, roleID}}
	return p.markers(ctx, marker, limit)
}

func collectUsers(rows pgx.Rows) ([]*identity.User, error) {
	out := make([]*identity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return out, nil
}
