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

// ServiceRepository implements catalog.ServiceRepository
type ServiceRepository struct {
	db *DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = "id, name, type, description, owner_id, extra, created_at"

func scanService(row pgx.Row) (*catalog.Service, error) {
	var s catalog.Service
	err := row.Scan(&s.ID, &s.Name, &s.Type, &s.Description, &s.OwnerID, &s.Extra, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new service
func (r *ServiceRepository) Create(ctx context.Context, s *catalog.Service) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO services (id, name, type, description, owner_id, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.Name, s.Type, s.Description, s.OwnerID, s.Extra, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "services_name_type_key") {
			return catalog.ErrServiceAlreadyExists
		}
		return fmt.Errorf("failed to insert service: %w", err)
	}
	return nil
}

// GetByID retrieves a service by id
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*catalog.Service, error) {
	s, err := scanService(r.db.pool.QueryRow(ctx,
		"SELECT "+serviceColumns+" FROM services WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// GetByName retrieves a service by name. Names are unique per type, so a
// bare name lookup returns the newest match.
func (r *ServiceRepository) GetByName(ctx context.Context, name string) (*catalog.Service, error) {
	s, err := scanService(r.db.pool.QueryRow(ctx,
		"SELECT "+serviceColumns+" FROM services WHERE name = $1 ORDER BY id DESC LIMIT 1", name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// GetByNameAndType retrieves a service by its unique (name, type) pair
func (r *ServiceRepository) GetByNameAndType(ctx context.Context, name, typ string) (*catalog.Service, error) {
	s, err := scanService(r.db.pool.QueryRow(ctx,
		"SELECT "+serviceColumns+" FROM services WHERE name = $1 AND type = $2", name, typ))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// Delete removes the service and everything it owns in one transaction.
// Tenant endpoint bindings follow their templates and grants follow their
// roles via the schema cascades; either all rows go or none do.
func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin service delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM endpoint_templates WHERE service_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete service templates: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM roles WHERE service_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete service roles: %w", err)
	}
	result, err := tx.Exec(ctx, "DELETE FROM services WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrServiceNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit service delete: %w", err)
	}
	return nil
}

// GetPage returns one marker window of services, newest first
func (r *ServiceRepository) GetPage(ctx context.Context, marker string, limit int) ([]*catalog.Service, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+serviceColumns+` FROM services
		WHERE ($1 = '' OR id < $1)
		ORDER BY id DESC LIMIT $2
	`, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	out := make([]*catalog.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read services: %w", err)
	}
	return out, nil
}

// GetPageMarkers returns the prev/next markers for GetPage
func (r *ServiceRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	p := pager{pool: r.db.pool, ids: "SELECT id FROM services"}
	return p.markers(ctx, marker, limit)
}
