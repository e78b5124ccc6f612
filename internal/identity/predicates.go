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

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/role"
)

// hasRole reports whether the user holds a global grant of the role.
// Tenant-scoped grants never confer the built-in authorities.
func (s *Service) hasRole(ctx context.Context, userID, roleID string) (bool, error) {
	_, err := s.roles.GetGrant(ctx, userID, roleID, nil)
	if err != nil {
		if errors.Is(err, role.ErrGrantNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check role grant: %w", err)
	}
	return true, nil
}

// hasAdminAuthority reports whether the user holds the admin role.
func (s *Service) hasAdminAuthority(ctx context.Context, userID string) (bool, error) {
	return s.hasRole(ctx, userID, s.adminRoleID)
}

// hasServiceAdminAuthority reports whether the user holds the
// service-admin role. Admin implies service-admin.
func (s *Service) hasServiceAdminAuthority(ctx context.Context, userID string) (bool, error) {
	ok, err := s.hasRole(ctx, userID, s.serviceAdminRoleID)
	if err != nil || ok {
		return ok, err
	}
	return s.hasAdminAuthority(ctx, userID)
}

// requireAdmin validates the caller's token and requires the admin
// authority, returning the caller.
func (s *Service) requireAdmin(ctx context.Context, authToken string) (*User, error) {
	_, user, err := s.validateToken(ctx, authToken, "", false)
	if err != nil {
		return nil, err
	}
	ok, err := s.hasAdminAuthority(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.Unauthorized("you are not authorized to make this call")
	}
	return user, nil
}

// requireServiceAdmin validates the caller's token and requires the
// service-admin authority (or admin), returning the caller.
func (s *Service) requireServiceAdmin(ctx context.Context, authToken string) (*User, error) {
	_, user, err := s.validateToken(ctx, authToken, "", false)
	if err != nil {
		return nil, err
	}
	ok, err := s.hasServiceAdminAuthority(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.Unauthorized("you are not authorized to make this call")
	}
	return user, nil
}

// isOwner reports whether the user created the service.
func isOwner(u *User, svc *catalog.Service) bool {
	return svc.OwnerID != "" && svc.OwnerID == u.ID
}

// requireOwnerOrAdmin enforces the service ownership rule used by
// service-bound role creation and deletion.
func (s *Service) requireOwnerOrAdmin(ctx context.Context, caller *User, svc *catalog.Service) error {
	if isOwner(caller, svc) {
		return nil
	}
	ok, err := s.hasAdminAuthority(ctx, caller.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fault.Unauthorized("you do not own service %s", svc.ID)
	}
	return nil
}
