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
	"fmt"
	"time"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/tenant"
)

// CreateTenant creates a tenant with a fresh id. Admin only; the name must
// be non-empty and unique.
func (s *Service) CreateTenant(ctx context.Context, authToken string, t *tenant.Tenant) (*tenant.Tenant, error) {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		return nil, fault.BadRequest("expecting a unique tenant name")
	}
	if _, err := s.tenants.GetByName(ctx, t.Name); err == nil {
		return nil, fault.Conflict("a tenant with that name already exists")
	} else if !errors.Is(err, tenant.ErrTenantNotFound) {
		return nil, fmt.Errorf("check tenant name: %w", err)
	}

	now := time.Now().UTC()
	created := &tenant.Tenant{
		ID:          id.NewUUIDv7(),
		Name:        t.Name,
		Description: t.Description,
		Enabled:     t.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
		Extra:       t.Extra,
	}
	if err := s.tenants.Create(ctx, created); err != nil {
		if errors.Is(err, tenant.ErrDuplicateName) {
			return nil, fault.Conflict("a tenant with that name already exists")
		}
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: created.ID,
		ActorID:  caller.ID,
		Resource: created.Name,
	})
	return created, nil
}

// GetTenant returns one tenant by id. Admin only.
func (s *Service) GetTenant(ctx context.Context, authToken, tenantID string) (*tenant.Tenant, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, fault.NotFound("the tenant could not be found")
		}
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	return t, nil
}

// GetTenantByName returns one tenant by its unique name. Admin only.
func (s *Service) GetTenantByName(ctx context.Context, authToken, name string) (*tenant.Tenant, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	t, err := s.tenants.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, fault.NotFound("the tenant could not be found")
		}
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	return t, nil
}

// UpdateTenant changes a tenant's name, description, or enabled flag.
// Admin only; renames must preserve name uniqueness.
func (s *Service) UpdateTenant(ctx context.Context, authToken, tenantID string, updates *tenant.Tenant) (*tenant.Tenant, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, fault.NotFound("the tenant could not be found")
		}
		return nil, fmt.Errorf("load tenant: %w", err)
	}

	if updates.Name != "" && updates.Name != t.Name {
		if _, err := s.tenants.GetByName(ctx, updates.Name); err == nil {
			return nil, fault.Conflict("a tenant with that name already exists")
		} else if !errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, fmt.Errorf("check tenant name: %w", err)
		}
		t.Name = updates.Name
	}
	t.Description = updates.Description
	t.Enabled = updates.Enabled
	if updates.Extra != nil {
		t.Extra = updates.Extra
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.tenants.Update(ctx, t); err != nil {
		if errors.Is(err, tenant.ErrDuplicateName) {
			return nil, fault.Conflict("a tenant with that name already exists")
		}
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	return t, nil
}

// DeleteTenant removes an empty tenant. Admin only; a tenant still
// referenced by users or role grants is refused.
func (s *Service) DeleteTenant(ctx context.Context, authToken, tenantID string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return fault.NotFound("the tenant could not be found")
		}
		return fmt.Errorf("load tenant: %w", err)
	}

	empty, err := s.tenants.IsEmpty(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("check tenant references: %w", err)
	}
	if !empty {
		return fault.Forbidden("tenant %s is not empty", t.ID)
	}

	if err := s.tenants.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, tenant.ErrTenantNotEmpty) {
			return fault.Forbidden("tenant %s is not empty", t.ID)
		}
		return fmt.Errorf("delete tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeleted,
		TenantID: t.ID,
		ActorID:  caller.ID,
		Resource: t.Name,
	})
	return nil
}

// ListTenants pages tenants for the caller. Admin callers see every
// tenant; any other valid token sees only the tenants its user belongs
// to, so the service API can serve tenant discovery with the same call.
func (s *Service) ListTenants(ctx context.Context, authToken, marker string, limit int) ([]*tenant.Tenant, string, string, error) {
	limit = s.clampLimit(limit)

	if _, err := s.requireAdmin(ctx, authToken); err == nil {
		tenants, lerr := s.tenants.GetPage(ctx, marker, limit)
		if lerr != nil {
			return nil, "", "", fmt.Errorf("list tenants: %w", lerr)
		}
		prev, next, lerr := s.tenants.GetPageMarkers(ctx, marker, limit)
		if lerr != nil {
			return nil, "", "", fmt.Errorf("page tenants: %w", lerr)
		}
		return tenants, prev, next, nil
	} else if !errors.Is(err, fault.Unauthorized("")) {
		return nil, "", "", err
	}

	// Not an admin: fall back to the tenants the token's user belongs to.
	_, user, err := s.validateToken(ctx, authToken, "", false)
	if err != nil {
		return nil, "", "", err
	}
	tenants, err := s.tenants.GetForUserPage(ctx, user.ID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list user tenants: %w", err)
	}
	prev, next, err := s.tenants.GetForUserPageMarkers(ctx, user.ID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page user tenants: %w", err)
	}
	return tenants, prev, next, nil
}
