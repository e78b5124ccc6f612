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

	"github.com/keygate/keygate/internal/role"
)

type roleRepository struct {
	s *Store
}

func cloneRole(r *role.Role) *role.Role {
	c := *r
	c.Extra = maps.Clone(r.Extra)
	return &c
}

func cloneGrant(g *role.Grant) *role.Grant {
	c := *g
	if g.TenantID != nil {
		tid := *g.TenantID
		c.TenantID = &tid
	}
	return &c
}

// sameScope compares grant scopes: both global, or both on the same tenant.
func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *roleRepository) Create(ctx context.Context, rl *role.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.roles {
		if existing.Name == rl.Name {
			return role.ErrRoleAlreadyExists
		}
	}
	r.s.roles[rl.ID] = cloneRole(rl)
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rl, ok := r.s.roles[id]
	if !ok {
		return nil, role.ErrRoleNotFound
	}
	return cloneRole(rl), nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rl := range r.s.roles {
		if rl.Name == name {
			return cloneRole(rl), nil
		}
	}
	return nil, role.ErrRoleNotFound
}

// Delete removes the role and every grant of it under one lock hold.
func (r *roleRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[id]; !ok {
		return role.ErrRoleNotFound
	}
	for gid, g := range r.s.grants {
		if g.RoleID == id {
			delete(r.s.grants, gid)
		}
	}
	delete(r.s.roles, id)
	return nil
}

func (r *roleRepository) GetPage(ctx context.Context, marker string, limit int) ([]*role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.allLocked(), roleID, marker, limit), nil
}

func (r *roleRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.allLocked(), roleID, marker, limit)
	return prev, next, nil
}

func (r *roleRepository) Grant(ctx context.Context, g *role.Grant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.grants {
		if existing.UserID == g.UserID && existing.RoleID == g.RoleID && sameScope(existing.TenantID, g.TenantID) {
			return role.ErrGrantAlreadyExists
		}
	}
	r.s.grants[g.ID] = cloneGrant(g)
	return nil
}

func (r *roleRepository) RevokeGrant(ctx context.Context, grantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.grants[grantID]; !ok {
		return role.ErrGrantNotFound
	}
	delete(r.s.grants, grantID)
	return nil
}

func (r *roleRepository) GetGrant(ctx context.Context, userID, roleID string, tenantID *string) (*role.Grant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, g := range r.s.grants {
		if g.UserID == userID && g.RoleID == roleID && sameScope(g.TenantID, tenantID) {
			return cloneGrant(g), nil
		}
	}
	return nil, role.ErrGrantNotFound
}

func (r *roleRepository) GetGrantsForUserPage(ctx context.Context, userID string, tenantID *string, marker string, limit int) ([]*role.Grant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.forUserLocked(userID, tenantID), grantID, marker, limit), nil
}

func (r *roleRepository) GetGrantsForUserPageMarkers(ctx context.Context, userID string, tenantID *string, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.forUserLocked(userID, tenantID), grantID, marker, limit)
	return prev, next, nil
}

func (r *roleRepository) GetGlobalGrantsForUser(ctx context.Context, userID string) ([]*role.Grant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*role.Grant
	for _, g := range r.s.grants {
		if g.UserID == userID && g.TenantID == nil {
			out = append(out, cloneGrant(g))
		}
	}
	sortDesc(out, grantID)
	return out, nil
}

func (r *roleRepository) GetTenantGrantsForUser(ctx context.Context, userID, tenantID string) ([]*role.Grant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*role.Grant
	for _, g := range r.s.grants {
		if g.UserID == userID && g.TenantID != nil && *g.TenantID == tenantID {
			out = append(out, cloneGrant(g))
		}
	}
	sortDesc(out, grantID)
	return out, nil
}

func (r *roleRepository) allLocked() []*role.Role {
	out := make([]*role.Role, 0, len(r.s.roles))
	for _, rl := range r.s.roles {
		out = append(out, cloneRole(rl))
	}
	sortDesc(out, roleID)
	return out
}

// forUserLocked collects a user's grants, every scope when tenantID is nil
// and only that tenant's otherwise.
func (r *roleRepository) forUserLocked(userID string, tenantID *string) []*role.Grant {
	var out []*role.Grant
	for _, g := range r.s.grants {
		if g.UserID != userID {
			continue
		}
		if tenantID != nil && (g.TenantID == nil || *g.TenantID != *tenantID) {
			continue
		}
		out = append(out, cloneGrant(g))
	}
	sortDesc(out, grantID)
	return out
}

func roleID(r *role.Role) string   { return r.ID }
func grantID(g *role.Grant) string { return g.ID }
