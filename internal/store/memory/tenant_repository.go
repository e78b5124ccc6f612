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

package memory

import (
	"context"
	"maps"

	"github.com/keygate/keygate/internal/tenant"
)

type tenantRepository struct {
	s *Store
}

func cloneTenant(t *tenant.Tenant) *tenant.Tenant {
	c := *t
	c.Extra = maps.Clone(t.Extra)
	return &c
}

func (r *tenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tenants {
		if existing.Name == t.Name {
			return tenant.ErrDuplicateName
		}
	}
	r.s.tenants[t.ID] = cloneTenant(t)
	return nil
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return cloneTenant(t), nil
}

func (r *tenantRepository) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.tenants {
		if t.Name == name {
			return cloneTenant(t), nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (r *tenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tenants[t.ID]; !ok {
		return tenant.ErrTenantNotFound
	}
	for _, existing := range r.s.tenants {
		if existing.ID != t.ID && existing.Name == t.Name {
			return tenant.ErrDuplicateName
		}
	}
	r.s.tenants[t.ID] = cloneTenant(t)
	return nil
}

func (r *tenantRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tenants[id]; !ok {
		return tenant.ErrTenantNotFound
	}
	if !r.emptyLocked(id) {
		return tenant.ErrTenantNotEmpty
	}
	delete(r.s.tenants, id)
	return nil
}

func (r *tenantRepository) GetPage(ctx context.Context, marker string, limit int) ([]*tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.allLocked(), tenantID, marker, limit), nil
}

func (r *tenantRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.allLocked(), tenantID, marker, limit)
	return prev, next, nil
}

func (r *tenantRepository) GetForUserPage(ctx context.Context, userID, marker string, limit int) ([]*tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.forUserLocked(userID), tenantID, marker, limit), nil
}

func (r *tenantRepository) GetForUserPageMarkers(ctx context.Context, userID, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.forUserLocked(userID), tenantID, marker, limit)
	return prev, next, nil
}

func (r *tenantRepository) IsEmpty(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.emptyLocked(id), nil
}

func (r *tenantRepository) emptyLocked(id string) bool {
	for _, u := range r.s.users {
		if u.TenantID != nil && *u.TenantID == id {
			return false
		}
	}
	for _, g := range r.s.grants {
		if g.TenantID != nil && *g.TenantID == id {
			return false
		}
	}
	return true
}

func (r *tenantRepository) allLocked() []*tenant.Tenant {
	out := make([]*tenant.Tenant, 0, len(r.s.tenants))
	for _, t := range r.s.tenants {
		out = append(out, cloneTenant(t))
	}
	sortDesc(out, tenantID)
	return out
}

// forUserLocked collects the distinct tenants the user holds grants on.
func (r *tenantRepository) forUserLocked(userID string) []*tenant.Tenant {
	seen := make(map[string]bool)
	var out []*tenant.Tenant
	for _, g := range r.s.grants {
		if g.UserID != userID || g.TenantID == nil || seen[*g.TenantID] {
			continue
		}
		seen[*g.TenantID] = true
		if t, ok := r.s.tenants[*g.TenantID]; ok {
			out = append(out, cloneTenant(t))
		}
	}
	sortDesc(out, tenantID)
	return out
}

func tenantID(t *tenant.Tenant) string { return t.ID }
