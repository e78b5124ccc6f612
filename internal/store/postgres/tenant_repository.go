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

	"github.com/keygate/keygate/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantColumns = "id, name, description, enabled, extra, created_at, updated_at"

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Enabled, &t.Extra, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, description, enabled, extra, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.Name, t.Description, t.Enabled, t.Extra, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "tenants_name_key") {
			return tenant.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by id
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, err := scanTenant(r.db.pool.QueryRow(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// GetByName retrieves a tenant by its unique name
func (r *TenantRepository) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	t, err := scanTenant(r.db.pool.QueryRow(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE name = $1", name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// Update replaces the stored tenant row
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE tenants SET name = $2, description = $3, enabled = $4, extra = $5, updated_at = $6
		WHERE id = $1
	`, t.ID, t.Name, t.Description, t.Enabled, t.Extra, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "tenants_name_key") {
			return tenant.ErrDuplicateName
		}
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// Delete removes an empty tenant. The emptiness check and the delete run
// in one transaction so a concurrent grant cannot slip in between.
func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var empty bool
	err = tx.QueryRow(ctx, `
		SELECT NOT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1)
		   AND NOT EXISTS (SELECT 1 FROM role_grants WHERE tenant_id = $1)
	`, id).Scan(&empty)
	if err != nil {
		return fmt.Errorf("failed to check tenant emptiness: %w", err)
	}
	if !empty {
		return tenant.ErrTenantNotEmpty
	}

	result, err := tx.Exec(ctx, "DELETE FROM tenants WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return tx.Commit(ctx)
}

// GetPage returns one marker window of tenants, newest first
func (r *TenantRepository) GetPage(ctx context.Context, marker string, limit int) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+tenantColumns+` FROM tenants
		WHERE ($1 = '' OR id < $1)
		ORDER BY id DESC LIMIT $2
	`, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()
	return collectTenants(rows)
}

// GetPageMarkers returns the prev/next markers for GetPage
func (r *TenantRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: "SELECT id FROM tenants"}
	return p.markers(ctx, marker, limit)
}

const tenantsForUserIDs = `
	SELECT DISTINCT t.id FROM tenants t
	JOIN role_grants g ON g.tenant_id = t.id
	WHERE g.user_id = $1`

// GetForUserPage lists the tenants the user holds a role grant on
func (r *TenantRepository) GetForUserPage(ctx context.Context, userID, marker string, limit int) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+tenantColumns+` FROM tenants
		WHERE id IN (`+tenantsForUserIDs+`)
		  AND ($2 = '' OR id < $2)
		ORDER BY id DESC LIMIT $3
	`, userID, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tenants: %w", err)
	}
	defer rows.Close()
	return collectTenants(rows)
}

// GetForUserPageMarkers returns the prev/next markers for GetForUserPage
func (r *TenantRepository) GetForUserPageMarkers(ctx context.Context, userID, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: tenantsForUserIDs, args: []any{userID}}
	return p.markers(ctx, marker, limit)
}

// IsEmpty reports whether no user or role grant references the tenant
func (r *TenantRepository) IsEmpty(ctx context.Context, id string) (bool, error) {
	var empty bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT NOT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1)
		   AND NOT EXISTS (SELECT 1 FROM role_grants WHERE tenant_id = $1)
	`, id).Scan(&empty)
	if err != nil {
		return false, fmt.Errorf("failed to check tenant emptiness: %w", err)
	}
	return empty, nil
}

func collectTenants(rows pgx.Rows) ([]*tenant.Tenant, error) {
	out := make([]*tenant.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tenants: %w", err)
	}
	return out, nil
}
