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

	"github.com/keygate/keygate/internal/role"
)

// RoleRepository implements role.Repository
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

const roleColumns = "id, name, description, service_id, extra, created_at"

// grantColumns joins the owning role so every grant row carries its
// denormalized role name.
const grantColumns = "g.id, g.user_id, g.role_id, g.tenant_id, r.name"

func scanRole(row pgx.Row) (*role.Role, error) {
	var rl role.Role
	err := row.Scan(&rl.ID, &rl.Name, &rl.Description, &rl.ServiceID, &rl.Extra, &rl.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rl, nil
}

func scanGrant(row pgx.Row) (*role.Grant, error) {
	var g role.Grant
	err := row.Scan(&g.ID, &g.UserID, &g.RoleID, &g.TenantID, &g.RoleName)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new role
func (r *RoleRepository) Create(ctx context.Context, rl *role.Role) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO roles (id, name, description, service_id, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rl.ID, rl.Name, rl.Description, rl.ServiceID, rl.Extra, rl.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "roles_name_key") {
			return role.ErrRoleAlreadyExists
		}
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

// GetByID retrieves a role by id
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*role.Role, error) {
	rl, err := scanRole(r.db.pool.QueryRow(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, role.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return rl, nil
}

// GetByName retrieves a role by its unique name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*role.Role, error) {
	rl, err := scanRole(r.db.pool.QueryRow(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE name = $1", name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, role.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return rl, nil
}

// Delete removes a role; its grants follow via the schema cascade
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	// role_grants.role_id cascades, so the grants go with the row.
	result, err := r.db.pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return role.ErrRoleNotFound
	}
	return nil
}

// GetPage returns one marker window of roles, newest first
func (r *RoleRepository) GetPage(ctx context.Context, marker string, limit int) ([]*role.Role, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+roleColumns+` FROM roles
		WHERE ($1 = '' OR id < $1)
		ORDER BY id DESC LIMIT $2
	`, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	out := make([]*role.Role, 0)
	for rows.Next() {
		rl, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		out = append(out, rl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roles: %w", err)
	}
	return out, nil
}

// GetPageMarkers returns the prev/next markers for GetPage
func (r *RoleRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: "SELECT id FROM roles"}
	return p.markers(ctx, marker, limit)
}

// Grant inserts a role grant; at most one (user, role, tenant) row exists
func (r *RoleRepository) Grant(ctx context.Context, g *role.Grant) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO role_grants (id, user_id, role_id, tenant_id)
		VALUES ($1, $2, $3, $4)
	`, g.ID, g.UserID, g.RoleID, g.TenantID)
	if err != nil {
		if isUniqueViolation(err, "role_grants_user_id_role_id_tenant_id_key") {
			return role.ErrGrantAlreadyExists
		}
		return fmt.Errorf("failed to insert role grant: %w", err)
	}
	return nil
}

// RevokeGrant removes one grant by id
func (r *RoleRepository) RevokeGrant(ctx context.Context, grantID string) error {
	result, err := r.db.pool.Exec(ctx, "DELETE FROM role_grants WHERE id = $1", grantID)
	if err != nil {
		return fmt.Errorf("failed to delete role grant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return role.ErrGrantNotFound
	}
	return nil
}

// GetGrant retrieves the grant for one (user, role, tenant) triple
func (r *RoleRepository) GetGrant(ctx context.Context, userID, roleID string, tenantID *string) (*role.Grant, error) {
	g, err := scanGrant(r.db.pool.QueryRow(ctx, `
		SELECT `+grantColumns+` FROM role_grants g
		JOIN roles r ON r.id = g.role_id
		WHERE g.user_id = $1 AND g.role_id = $2
		  AND g.tenant_id IS NOT DISTINCT FROM $3
	`, userID, roleID, tenantID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, role.ErrGrantNotFound
		}
		return nil, fmt.Errorf("failed to get role grant: %w", err)
	}
	return g, nil
}

// grantsForUserIDs narrows to one tenant scope when $2 is non-null.
const grantsForUserIDs = `
	SELECT id FROM role_grants
	WHERE user_id = $1 AND ($2::text IS NULL OR tenant_id = $2)`

// GetGrantsForUserPage pages a user's grants, every scope when tenantID is
// nil and only that tenant's otherwise
func (r *RoleRepository) GetGrantsForUserPage(ctx context.Context, userID string, tenantID *string, marker string, limit int) ([]*role.Grant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+grantColumns+` FROM role_grants g
		JOIN roles r ON r.id = g.role_id
		WHERE g.user_id = $1 AND ($2::text IS NULL OR g.tenant_id = $2)
		  AND ($3 = '' OR g.id < $3)
		ORDER BY g.id DESC LIMIT $4
	`, userID, tenantID, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user grants: %w", err)
	}
	defer rows.Close()
	return collectGrants(rows)
}

// GetGrantsForUserPageMarkers returns the prev/next markers for
// GetGrantsForUserPage
func (r *RoleRepository) GetGrantsForUserPageMarkers(ctx context.Context, userID string, tenantID *string, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: grantsForUserIDs, args: []any{userID, tenantID}}
	return p.markers(ctx, marker, limit)
}

// GetGlobalGrantsForUser returns grants with no tenant scope
func (r *RoleRepository) GetGlobalGrantsForUser(ctx context.Context, userID string) ([]*role.Grant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+grantColumns+` FROM role_grants g
		JOIN roles r ON r.id = g.role_id
		WHERE g.user_id = $1 AND g.tenant_id IS NULL
		ORDER BY g.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query global grants: %w", err)
	}
	defer rows.Close()
	return collectGrants(rows)
}

// GetTenantGrantsForUser returns grants scoped to one tenant
func (r *RoleRepository) GetTenantGrantsForUser(ctx context.Context, userID, tenantID string) ([]*role.Grant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+grantColumns+` FROM role_grants g
		JOIN roles r ON r.id = g.role_id
		WHERE g.user_id = $1 AND g.tenant_id = $2
		ORDER BY g.id DESC
	`, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant grants: %w", err)
	}
	defer rows.Close()
	return collectGrants(rows)
}

func collectGrants(rows pgx.Rows) ([]*role.Grant, error) {
	out := make([]*role.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role grant: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read role grants: %w", err)
	}
	return out, nil
}
