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

	"github.com/keygate/keygate/internal/identity"
)

type userRepository struct {
	s *Store
}

func cloneUser(u *identity.User) *identity.User {
	c := *u
	c.Extra = maps.Clone(u.Extra)
	return &c
}

func (r *userRepository) Create(ctx context.Context, u *identity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Name == u.Name {
			return identity.ErrUserAlreadyExists
		}
		if u.Email != "" && existing.Email == u.Email {
			return identity.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Name == name {
			return cloneUser(u), nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (r *userRepository) Update(ctx context.Context, u *identity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return identity.ErrUserNotFound
	}
	for _, existing := range r.s.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Name == u.Name {
			return identity.ErrUserAlreadyExists
		}
		if u.Email != "" && existing.Email == u.Email {
			return identity.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

// Delete removes the user and its grants, tokens, and credentials under
// one lock hold, matching the schema cascades of the postgres store.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return identity.ErrUserNotFound
	}
	for gid, g := range r.s.grants {
		if g.UserID == id {
			delete(r.s.grants, gid)
		}
	}
	for tid, tok := range r.s.tokens {
		if tok.UserID == id {
			delete(r.s.tokens, tid)
		}
	}
	for cid, c := range r.s.creds {
		if c.UserID == id {
			delete(r.s.creds, cid)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepository) GetPage(ctx context.Context, marker string, limit int) ([]*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.allLocked(), userID, marker, limit), nil
}

func (r *userRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.allLocked(), userID, marker, limit)
	return prev, next, nil
}

func (r *userRepository) GetByTenantPage(ctx context.Context, tenantID, roleID, marker string, limit int) ([]*identity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.byTenantLocked(tenantID, roleID), userID, marker, limit), nil
}

func (r *userRepository) GetByTenantPageMarkers(ctx context.Context, tenantID, roleID, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.byTenantLocked(tenantID, roleID), userID, marker, limit)
	return prev, next, nil
}

func (r *userRepository) allLocked() []*identity.User {
	out := make([]*identity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sortDesc(out, userID)
	return out
}

// byTenantLocked collects users that default to the tenant or hold a grant
// on it. A non-empty roleID narrows to holders of that role on the tenant.
func (r *userRepository) byTenantLocked(tenantID, roleID string) []*identity.User {
	member := make(map[string]bool)
	if roleID == "" {
		for _, u := range r.s.users {
			if u.TenantID != nil && *u.TenantID == tenantID {
				member[u.ID] = true
			}
		}
	}
	for _, g := range r.s.grants {
		if g.TenantID == nil || *g.TenantID != tenantID {
			continue
		}
		if roleID != "" && g.RoleID != roleID {
			continue
		}
		member[g.UserID] = true
	}
	out := make([]*identity.User, 0, len(member))
	for id := range member {
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	sortDesc(out, userID)
	return out
}

func userID(u *identity.User) string { return u.ID }
