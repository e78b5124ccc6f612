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
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/tenant"
)

// CreateUser creates a user with a fresh id. Admin only. The name must be
// non-empty and unique, the email unique when set, and the default tenant,
// when named, must exist. An empty password leaves the user unable to
// authenticate by password until credentials are added.
func (s *Service) CreateUser(ctx context.Context, authToken string, u *User, password string) (*User, error) {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if u.Name == "" {
		return nil, fault.BadRequest("expecting a unique username")
	}
	if _, err := s.users.GetByName(ctx, u.Name); err == nil {
		return nil, fault.Conflict("a user with that name already exists")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if u.Email != "" {
		if _, err := s.users.GetByEmail(ctx, u.Email); err == nil {
			return nil, fault.Conflict("a user with that email already exists")
		} else if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
	}
	if u.TenantID != nil {
		if _, err := s.tenants.GetByID(ctx, *u.TenantID); err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				return nil, fault.NotFound("the tenant could not be found")
			}
			return nil, fmt.Errorf("load tenant: %w", err)
		}
	}

	var hash string
	if password != "" {
		hash, err = s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	now := time.Now().UTC()
	created := &User{
		ID:           id.NewUUIDv7(),
		Name:         u.Name,
		PasswordHash: hash,
		Email:        u.Email,
		Enabled:      u.Enabled,
		TenantID:     u.TenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Extra:        u.Extra,
	}
	if err := s.users.Create(ctx, created); err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyExists):
			return nil, fault.Conflict("a user with that name already exists")
		case errors.Is(err, ErrEmailAlreadyExists):
			return nil, fault.Conflict("a user with that email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		ActorID:  caller.ID,
		Resource: created.ID,
	})
	return created, nil
}

// GetUser returns one user by id. Admin only.
func (s *Service) GetUser(ctx context.Context, authToken, userID string) (*User, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	return s.loadUser(ctx, userID)
}

// GetUserByName returns one user by its unique name. Admin only.
func (s *Service) GetUserByName(ctx context.Context, authToken, name string) (*User, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	u, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fault.NotFound("the user could not be found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// UpdateUser changes a user's name or email. Admin only; both renames must
// preserve uniqueness.
func (s *Service) UpdateUser(ctx context.Context, authToken, userID string, updates *User) (*User, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" && updates.Name != u.Name {
		if _, err := s.users.GetByName(ctx, updates.Name); err == nil {
			return nil, fault.Conflict("a user with that name already exists")
		} else if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
		u.Name = updates.Name
	}
	if updates.Email != "" && updates.Email != u.Email {
		if _, err := s.users.GetByEmail(ctx, updates.Email); err == nil {
			return nil, fault.Conflict("a user with that email already exists")
		} else if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		u.Email = updates.Email
	}
	if updates.Extra != nil {
		u.Extra = updates.Extra
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// SetUserPassword replaces a user's password. Admin only.
func (s *Service) SetUserPassword(ctx context.Context, authToken, userID, password string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	if password == "" {
		return fault.BadRequest("expecting a password")
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordChanged,
		ActorID:  caller.ID,
		Resource: u.ID,
	})
	return nil
}

// SetUserEnabled flips a user's enabled flag. Admin only. Existing tokens
// stay stored; validation rejects them while the user is disabled.
func (s *Service) SetUserEnabled(ctx context.Context, authToken, userID string, enabled bool) error {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	u.Enabled = enabled
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateUserTenant moves a user to a new default tenant, or clears it with
// nil. Admin only; the tenant must exist.
func (s *Service) UpdateUserTenant(ctx context.Context, authToken, userID string, tenantID *string) error {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if tenantID != nil {
		if _, err := s.tenants.GetByID(ctx, *tenantID); err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				return fault.NotFound("the tenant could not be found")
			}
			return fmt.Errorf("load tenant: %w", err)
		}
	}
	u.TenantID = tenantID
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteUser removes a user and everything hanging off it: role grants,
// tokens, and credentials. Admin only.
func (s *Service) DeleteUser(ctx context.Context, authToken, userID string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	// Grants, tokens, and credentials go with the row atomically.
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserDeleted,
		ActorID:  caller.ID,
		Resource: u.ID,
	})
	return nil
}

// ListUsers pages all users. Admin only.
func (s *Service) ListUsers(ctx context.Context, authToken, marker string, limit int) ([]*User, string, string, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	limit = s.clampLimit(limit)
	users, err := s.users.GetPage(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list users: %w", err)
	}
	prev, next, err := s.users.GetPageMarkers(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page users: %w", err)
	}
	return users, prev, next, nil
}

// ListTenantUsers pages the users of one tenant, optionally narrowed to
// holders of one role on it. Admin only.
func (s *Service) ListTenantUsers(ctx context.Context, authToken, tenantID, roleID, marker string, limit int) ([]*User, string, string, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, "", "", fault.NotFound("the tenant could not be found")
		}
		return nil, "", "", fmt.Errorf("load tenant: %w", err)
	}

	limit = s.clampLimit(limit)
	users, err := s.users.GetByTenantPage(ctx, tenantID, roleID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list tenant users: %w", err)
	}
	prev, next, err := s.users.GetByTenantPageMarkers(ctx, tenantID, roleID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page tenant users: %w", err)
	}
	return users, prev, next, nil
}

// ListUserRoles pages the roles granted to a user across all scopes,
// resolved to full role records. Admin only.
func (s *Service) ListUserRoles(ctx context.Context, authToken, userID, marker string, limit int) ([]*role.Role, string, string, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, "", "", err
	}

	limit = s.clampLimit(limit)
	grants, err := s.roles.GetGrantsForUserPage(ctx, userID, nil, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list user grants: %w", err)
	}
	roles := make([]*role.Role, 0, len(grants))
	for _, g := range grants {
		r, err := s.roles.GetByID(ctx, g.RoleID)
		if err != nil {
			return nil, "", "", fmt.Errorf("resolve granted role: %w", err)
		}
		roles = append(roles, r)
	}
	prev, next, err := s.roles.GetGrantsForUserPageMarkers(ctx, userID, nil, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page user grants: %w", err)
	}
	return roles, prev, next, nil
}

// AddRoleToUser grants a role to a user, globally when tenantID is nil.
// Service-admin only; the (user, role, tenant) triple must be new.
func (s *Service) AddRoleToUser(ctx context.Context, authToken, userID, roleID string, tenantID *string) (*role.Grant, error) {
	caller, err := s.requireServiceAdmin(ctx, authToken)
	if err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	r, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, role.ErrRoleNotFound) {
			return nil, fault.NotFound("the role could not be found")
		}
		return nil, fmt.Errorf("load role: %w", err)
	}
	if tenantID != nil {
		if _, err := s.tenants.GetByID(ctx, *tenantID); err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				return nil, fault.NotFound("the tenant could not be found")
			}
			return nil, fmt.Errorf("load tenant: %w", err)
		}
	}

	if _, err := s.roles.GetGrant(ctx, u.ID, r.ID, tenantID); err == nil {
		return nil, fault.Conflict("user already has that role")
	} else if !errors.Is(err, role.ErrGrantNotFound) {
		return nil, fmt.Errorf("check grant: %w", err)
	}

	g := &role.Grant{
		ID:       id.NewUUIDv7(),
		UserID:   u.ID,
		RoleID:   r.ID,
		TenantID: tenantID,
		RoleName: r.Name,
	}
	if err := s.roles.Grant(ctx, g); err != nil {
		if errors.Is(err, role.ErrGrantAlreadyExists) {
			return nil, fault.Conflict("user already has that role")
		}
		return nil, fmt.Errorf("grant role: %w", err)
	}

	scope := ""
	if tenantID != nil {
		scope = *tenantID
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleGranted,
		TenantID: scope,
		ActorID:  caller.ID,
		Resource: u.ID,
		Metadata: map[string]any{"role": r.Name, audit.AttrScope: scope},
	})
	return g, nil
}

// RemoveRoleFromUser revokes a grant identified by its (user, role,
// tenant) triple. Service-admin only.
func (s *Service) RemoveRoleFromUser(ctx context.Context, authToken, userID, roleID string, tenantID *string) error {
	caller, err := s.requireServiceAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	g, err := s.roles.GetGrant(ctx, userID, roleID, tenantID)
	if err != nil {
		if errors.Is(err, role.ErrGrantNotFound) {
			return fault.NotFound("the grant could not be found")
		}
		return fmt.Errorf("load grant: %w", err)
	}
	if err := s.roles.RevokeGrant(ctx, g.ID); err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}

	scope := ""
	if tenantID != nil {
		scope = *tenantID
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleRevoked,
		TenantID: scope,
		ActorID:  caller.ID,
		Resource: userID,
		Metadata: map[string]any{"role": g.RoleName, audit.AttrScope: scope},
	})
	return nil
}

// loadUser fetches a user, translating absence into the API fault.
func (s *Service) loadUser(ctx context.Context, userID string) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fault.NotFound("the user could not be found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
