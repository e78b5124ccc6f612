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
	"strings"
	"time"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/role"
)

// CreateRole creates a role. Service-admin only. A "service:" name prefix
// must name an existing service; a service-bound role additionally
// requires the caller to own that service (or hold admin) and the name to
// carry the owning service's prefix.
func (s *Service) CreateRole(ctx context.Context, authToken string, r *role.Role) (*role.Role, error) {
	caller, err := s.requireServiceAdmin(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if r.Name == "" {
		return nil, fault.BadRequest("expecting a role name")
	}
	if _, err := s.roles.GetByName(ctx, r.Name); err == nil {
		return nil, fault.Conflict("a role with that name already exists")
	} else if !errors.Is(err, role.ErrRoleNotFound) {
		return nil, fmt.Errorf("check role name: %w", err)
	}

	if prefix := role.ServicePrefix(r.Name); prefix != "" {
		if _, err := s.services.GetByName(ctx, prefix); err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				return nil, fault.BadRequest("a service with the name %s does not exist", prefix)
			}
			return nil, fmt.Errorf("resolve name prefix: %w", err)
		}
	}

	if r.ServiceID != "" {
		svc, err := s.services.GetByID(ctx, r.ServiceID)
		if err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				return nil, fault.BadRequest("a service with that id does not exist")
			}
			return nil, fmt.Errorf("load service: %w", err)
		}
		if !strings.HasPrefix(r.Name, svc.Name+":") {
			return nil, fault.BadRequest("role name must start with %s:", svc.Name)
		}
		if err := s.requireOwnerOrAdmin(ctx, caller, svc); err != nil {
			return nil, err
		}
	}

	created := &role.Role{
		ID:          id.NewUUIDv7(),
		Name:        r.Name,
		Description: r.Description,
		ServiceID:   r.ServiceID,
		CreatedAt:   time.Now().UTC(),
		Extra:       r.Extra,
	}
	if err := s.roles.Create(ctx, created); err != nil {
		if errors.Is(err, role.ErrRoleAlreadyExists) {
			return nil, fault.Conflict("a role with that name already exists")
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	return created, nil
}

// GetRole returns one role by id. Service-admin only.
func (s *Service) GetRole(ctx context.Context, authToken, roleID string) (*role.Role, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	r, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, role.ErrRoleNotFound) {
			return nil, fault.NotFound("the role could not be found")
		}
		return nil, fmt.Errorf("load role: %w", err)
	}
	return r, nil
}

// GetRoleByName returns one role by its unique name. Service-admin only.
func (s *Service) GetRoleByName(ctx context.Context, authToken, name string) (*role.Role, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	r, err := s.roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, role.ErrRoleNotFound) {
			return nil, fault.NotFound("the role could not be found")
		}
		return nil, fmt.Errorf("load role: %w", err)
	}
	return r, nil
}

// ListRoles pages all roles. Service-admin only.
func (s *Service) ListRoles(ctx context.Context, authToken, marker string, limit int) ([]*role.Role, string, string, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	limit = s.clampLimit(limit)
	roles, err := s.roles.GetPage(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list roles: %w", err)
	}
	prev, next, err := s.roles.GetPageMarkers(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page roles: %w", err)
	}
	return roles, prev, next, nil
}

// DeleteRole removes a role and every grant of it. Service-admin only;
// deleting a service-bound role follows the same ownership rule as
// creating one.
func (s *Service) DeleteRole(ctx context.Context, authToken, roleID string) error {
	caller, err := s.requireServiceAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	r, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, role.ErrRoleNotFound) {
			return fault.NotFound("the role could not be found")
		}
		return fmt.Errorf("load role: %w", err)
	}

	if r.ServiceID != "" {
		svc, err := s.services.GetByID(ctx, r.ServiceID)
		if err == nil {
			if err := s.requireOwnerOrAdmin(ctx, caller, svc); err != nil {
				return err
			}
		} else if !errors.Is(err, catalog.ErrServiceNotFound) {
			return fmt.Errorf("load service: %w", err)
		}
	}

	// The repository drops the role's grants with the role itself.
	if err := s.roles.Delete(ctx, r.ID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}
