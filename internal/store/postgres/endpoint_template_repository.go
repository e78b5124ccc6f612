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

	"github.com/keygate/keygate/internal/catalog"
)

// EndpointTemplateRepository implements catalog.EndpointTemplateRepository
type EndpointTemplateRepository struct {
	db *DB
}

// NewEndpointTemplateRepository creates a new endpoint template repository
func NewEndpointTemplateRepository(db *DB) *EndpointTemplateRepository {
	return &EndpointTemplateRepository{db: db}
}

const templateColumns = `id, region, service_id, public_url, admin_url, internal_url,
	enabled, is_global, version_id, version_list, version_info, created_at`

func scanTemplate(row pgx.Row) (*catalog.EndpointTemplate, error) {
	var t catalog.EndpointTemplate
	err := row.Scan(&t.ID, &t.Region, &t.ServiceID, &t.PublicURL, &t.AdminURL, &t.InternalURL,
		&t.Enabled, &t.IsGlobal, &t.VersionID, &t.VersionList, &t.VersionInfo, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTenantEndpoint(row pgx.Row) (*catalog.TenantEndpoint, error) {
	var e catalog.TenantEndpoint
	err := row.Scan(&e.ID, &e.TenantID, &e.TemplateID, &e.Region, &e.ServiceName, &e.ServiceType,
		&e.PublicURL, &e.AdminURL, &e.InternalURL, &e.VersionID, &e.VersionList, &e.VersionInfo)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new endpoint template
func (r *EndpointTemplateRepository) Create(ctx context.Context, t *catalog.EndpointTemplate) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO endpoint_templates (`+templateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, t.ID, t.Region, t.ServiceID, t.PublicURL, t.AdminURL, t.InternalURL,
		t.Enabled, t.IsGlobal, t.VersionID, t.VersionList, t.VersionInfo, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert endpoint template: %w", err)
	}
	return nil
}

// GetByID retrieves a template by id
func (r *EndpointTemplateRepository) GetByID(ctx context.Context, id string) (*catalog.EndpointTemplate, error) {
	t, err := scanTemplate(r.db.pool.QueryRow(ctx,
		"SELECT "+templateColumns+" FROM endpoint_templates WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, catalog.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get endpoint template: %w", err)
	}
	return t, nil
}

// Update replaces the stored template row
func (r *EndpointTemplateRepository) Update(ctx context.Context, t *catalog.EndpointTemplate) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE endpoint_templates SET region = $2, service_id = $3, public_url = $4,
			admin_url = $5, internal_url = $6, enabled = $7, is_global = $8,
			version_id = $9, version_list = $10, version_info = $11
		WHERE id = $1
	`, t.ID, t.Region, t.ServiceID, t.PublicURL, t.AdminURL, t.InternalURL,
		t.Enabled, t.IsGlobal, t.VersionID, t.VersionList, t.VersionInfo)
	if err != nil {
		return fmt.Errorf("failed to update endpoint template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrTemplateNotFound
	}
	return nil
}

// Delete removes a template; its tenant bindings follow via the schema
// cascade
func (r *EndpointTemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, "DELETE FROM endpoint_templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete endpoint template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrTemplateNotFound
	}
	return nil
}

// GetPage returns one marker window of templates, newest first
func (r *EndpointTemplateRepository) GetPage(ctx context.Context, marker string, limit int) ([]*catalog.EndpointTemplate, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+templateColumns+` FROM endpoint_templates
		WHERE ($1 = '' OR id < $1)
		ORDER BY id DESC LIMIT $2
	`, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query endpoint templates: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// GetPageMarkers returns the prev/next markers for GetPage
func (r *EndpointTemplateRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: "SELECT id FROM endpoint_templates"}
	return p.markers(ctx, marker, limit)
}

// GetByServicePage lists templates owned by one service
func (r *EndpointTemplateRepository) GetByServicePage(ctx context.Context, serviceID, marker string, limit int) ([]*catalog.EndpointTemplate, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+templateColumns+` FROM endpoint_templates
		WHERE service_id = $1 AND ($2 = '' OR id < $2)
		ORDER BY id DESC LIMIT $3
	`, serviceID, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query service templates: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// GetByServicePageMarkers returns the prev/next markers for
// GetByServicePage
func (r *EndpointTemplateRepository) GetByServicePageMarkers(ctx context.Context, serviceID, marker string, limit int) (string, string, error) {
	p := pager{
		pool: r.db.pool,
		ids:  "SELECT id FROM endpoint_templates WHERE service_id = $1",
		args: []any{serviceID},
	}
	return p.markers(ctx, marker, limit)
}

// Bind creates a tenant endpoint from a template
func (r *EndpointTemplateRepository) Bind(ctx context.Context, e *catalog.Endpoint) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO endpoints (id, tenant_id, template_id) VALUES ($1, $2, $3)
	`, e.ID, e.TenantID, e.TemplateID)
	if err != nil {
		if isUniqueViolation(err, "endpoints_tenant_id_template_id_key") {
			return catalog.ErrEndpointAlreadyExists
		}
		return fmt.Errorf("failed to bind endpoint: %w", err)
	}
	return nil
}

// Unbind removes one tenant endpoint
func (r *EndpointTemplateRepository) Unbind(ctx context.Context, endpointID string) error {
	result, err := r.db.pool.Exec(ctx, "DELETE FROM endpoints WHERE id = $1", endpointID)
	if err != nil {
		return fmt.Errorf("failed to unbind endpoint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrEndpointNotFound
	}
	return nil
}

// boundEndpointsSQL denormalizes the tenant's bindings with the template
// and owning service. Rows carry the binding id.
const boundEndpointsSQL = `
	SELECT e.id AS id, e.tenant_id AS tenant_id, t.id AS template_id,
		t.region AS region, s.name AS service_name, s.type AS service_type,
		t.public_url AS public_url, t.admin_url AS admin_url,
		t.internal_url AS internal_url, t.version_id AS version_id,
		t.version_list AS version_list, t.version_info AS version_info
	FROM endpoints e
	JOIN endpoint_templates t ON t.id = e.template_id
	JOIN services s ON s.id = t.service_id
	WHERE e.tenant_id = $1`

// unionEndpointsSQL merges global templates into the bound set, one row
// per template. Bound rows carry the binding id and win over a global
// duplicate; purely global rows carry the template id.
const unionEndpointsSQL = boundEndpointsSQL + `
	UNION ALL
	SELECT t.id, $1, t.id, t.region, s.name, s.type,
		t.public_url, t.admin_url, t.internal_url,
		t.version_id, t.version_list, t.version_info
	FROM endpoint_templates t
	JOIN services s ON s.id = t.service_id
	WHERE t.is_global AND NOT EXISTS (
		SELECT 1 FROM endpoints e2 WHERE e2.tenant_id = $1 AND e2.template_id = t.id
	)`

const unionEndpointIDs = `
	SELECT e.id FROM endpoints e WHERE e.tenant_id = $1
	UNION ALL
	SELECT t.id FROM endpoint_templates t
	WHERE t.is_global AND NOT EXISTS (
		SELECT 1 FROM endpoints e2 WHERE e2.tenant_id = $1 AND e2.template_id = t.id
	)`

// GetEndpointsForTenantPage lists the tenant's bound endpoints,
// denormalized with service name and type
func (r *EndpointTemplateRepository) GetEndpointsForTenantPage(ctx context.Context, tenantID, marker string, limit int) ([]*catalog.TenantEndpoint, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT * FROM (`+boundEndpointsSQL+`) w
		WHERE ($2 = '' OR id < $2)
		ORDER BY id DESC LIMIT $3
	`, tenantID, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant endpoints: %w", err)
	}
	defer rows.Close()
	return collectTenantEndpoints(rows)
}

// GetEndpointsForTenantPageMarkers returns the prev/next markers for
// GetEndpointsForTenantPage
func (r *EndpointTemplateRepository) GetEndpointsForTenantPageMarkers(ctx context.Context, tenantID, marker string, limit int) (string, string, error) {
	p := pager{
		pool: r.db.pool,
		ids:  "SELECT e.id FROM endpoints e WHERE e.tenant_id = $1",
		args: []any{tenantID},
	}
	return p.markers(ctx, marker, limit)
}

// GetAllEndpointsForTenant returns the catalog union: global templates
// plus the tenant's bound templates, denormalized with the service
func (r *EndpointTemplateRepository) GetAllEndpointsForTenant(ctx context.Context, tenantID string) ([]*catalog.TenantEndpoint, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT * FROM (`+unionEndpointsSQL+`) w ORDER BY id DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant catalog: %w", err)
	}
	defer rows.Close()
	return collectTenantEndpoints(rows)
}

// GetAllEndpointsForTenantPage pages the same union. Bound rows page by
// binding id, global rows by template id.
func (r *EndpointTemplateRepository) GetAllEndpointsForTenantPage(ctx context.Context, tenantID, marker string, limit int) ([]*catalog.TenantEndpoint, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT * FROM (`+unionEndpointsSQL+`) w
		WHERE ($2 = '' OR id < $2)
		ORDER BY id DESC LIMIT $3
	`, tenantID, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant catalog: %w", err)
	}
	defer rows.Close()
	return collectTenantEndpoints(rows)
}

// GetAllEndpointsForTenantPageMarkers returns the prev/next markers for
// GetAllEndpointsForTenantPage
func (r *EndpointTemplateRepository) GetAllEndpointsForTenantPageMarkers(ctx context.Context, tenantID, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: unionEndpointIDs, args: []any{tenantID}}
	return p.markers(ctx, marker, limit)
}

func collectTemplates(rows pgx.Rows) ([]*catalog.EndpointTemplate, error) {
	out := make([]*catalog.EndpointTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan endpoint template: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read endpoint templates: %w", err)
	}
	return out, nil
}

func collectTenantEndpoints(rows pgx.Rows) ([]*catalog.TenantEndpoint, error) {
	out := make([]*catalog.TenantEndpoint, 0)
	for rows.Next() {
		e, err := scanTenantEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant endpoint: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tenant endpoints: %w", err)
	}
	return out, nil
}
