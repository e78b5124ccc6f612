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

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/tenant"
	"github.com/keygate/keygate/internal/token"
)

// ValidateData is the view of a validated token: the token, its scope
// tenant when set, the owning user with the name of the user's default
// tenant, and the role grants in effect for the scope.
type ValidateData struct {
	Token             *token.Token
	Tenant            *tenant.Tenant
	User              *User
	DefaultTenantName string
	Roles             []*role.Grant
}

// validateToken resolves and classifies a presented token id. The check
// flag selects the check-token classification, which reports not-found
// instead of unauthorized/forbidden so that probing cannot distinguish a
// revoked token from one that never existed.
func (s *Service) validateToken(ctx context.Context, tokenID, belongsTo string, check bool) (*token.Token, *User, error) {
	if tokenID == "" {
		return nil, nil, fault.Unauthorized("missing token")
	}

	tok, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			if check {
				return nil, nil, fault.NotFound("token does not exist")
			}
			return nil, nil, fault.Unauthorized("bad token, please reauthenticate")
		}
		return nil, nil, fmt.Errorf("load token: %w", err)
	}

	if tok.Expired() {
		if check {
			return nil, nil, fault.NotFound("token expired, please renew")
		}
		return nil, nil, fault.Forbidden("token expired, please renew")
	}

	user, err := s.users.GetByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// The owner was deleted out from under the token.
			return nil, nil, fault.Unauthorized("bad token, please reauthenticate")
		}
		return nil, nil, fmt.Errorf("load token user: %w", err)
	}
	if !user.Enabled {
		return nil, nil, fault.UserDisabled("user %s has been disabled", user.ID)
	}

	if user.TenantID != nil {
		if err := s.requireEnabledTenant(ctx, *user.TenantID); err != nil {
			return nil, nil, err
		}
	}
	if tok.TenantID != nil {
		if err := s.requireEnabledTenant(ctx, *tok.TenantID); err != nil {
			return nil, nil, err
		}
	}

	if belongsTo != "" && !tok.ScopedTo(belongsTo) {
		return nil, nil, fault.Unauthorized("unauthorized on this tenant")
	}

	return tok, user, nil
}

// requireEnabledTenant fails with tenant-disabled when the tenant is
// missing or disabled. A dangling reference is treated the same as a
// disabled tenant so that the caller learns nothing extra.
func (s *Service) requireEnabledTenant(ctx context.Context, tenantID string) error {
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return fault.TenantDisabled("tenant %s has been disabled", tenantID)
		}
		return fmt.Errorf("load tenant: %w", err)
	}
	if !t.Enabled {
		return fault.TenantDisabled("tenant %s has been disabled", tenantID)
	}
	return nil
}

// ValidateToken validates tokenID on behalf of a service-admin caller and
// returns its full view. A non-empty belongsTo additionally requires the
// token to be scoped to that tenant.
func (s *Service) ValidateToken(ctx context.Context, authToken, tokenID, belongsTo string) (*ValidateData, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	tok, user, err := s.validateToken(ctx, tokenID, belongsTo, false)
	if err != nil {
		return nil, err
	}
	return s.getValidateData(ctx, tok, user)
}

// CheckToken is the check-token flow: same rules as ValidateToken but
// failures surface as not-found so existence is not confirmed.
func (s *Service) CheckToken(ctx context.Context, authToken, tokenID, belongsTo string) error {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return err
	}
	_, _, err := s.validateToken(ctx, tokenID, belongsTo, true)
	return err
}

// RevokeToken deletes a token on behalf of an admin caller. The revoke is
// visible to all subsequent validations once the repository commit returns.
func (s *Service) RevokeToken(ctx context.Context, authToken, tokenID string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}

	tok, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			return fault.NotFound("token not found")
		}
		return fmt.Errorf("load token: %w", err)
	}
	if err := s.tokens.Delete(ctx, tok.ID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenRevoked,
		ActorID:  caller.ID,
		Resource: tok.UserID,
	})
	return nil
}

// EndpointsForToken returns the catalog page for a scoped token: global
// endpoint templates plus the ones bound to the token's tenant. An
// unscoped token has no catalog and reports not-found.
func (s *Service) EndpointsForToken(ctx context.Context, authToken, tokenID, marker string, limit int) ([]*catalog.TenantEndpoint, string, string, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}

	tok, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			return nil, "", "", fault.NotFound("token not found")
		}
		return nil, "", "", fmt.Errorf("load token: %w", err)
	}
	if tok.TenantID == nil {
		return nil, "", "", fault.NotFound("token not mapped to any tenant")
	}

	limit = s.clampLimit(limit)
	eps, err := s.templates.GetAllEndpointsForTenantPage(ctx, *tok.TenantID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("load tenant endpoints: %w", err)
	}
	prev, next, err := s.templates.GetAllEndpointsForTenantPageMarkers(ctx, *tok.TenantID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page tenant endpoints: %w", err)
	}

	// Admin URLs are only shown when the token's user carries the
	// service-admin authority.
	includeAdmin, err := s.hasServiceAdminAuthority(ctx, tok.UserID)
	if err != nil {
		return nil, "", "", err
	}
	if !includeAdmin {
		scrubAdminURLs(eps)
	}
	return eps, prev, next, nil
}

// getValidateData assembles the validated-token view: scope tenant, the
// grants in effect (tenant-local first, then global), and the name of the
// user's default tenant.
func (s *Service) getValidateData(ctx context.Context, tok *token.Token, user *User) (*ValidateData, error) {
	data := &ValidateData{Token: tok, User: user}

	if tok.TenantID != nil {
		t, err := s.tenants.GetByID(ctx, *tok.TenantID)
		if err != nil {
			return nil, fmt.Errorf("load token tenant: %w", err)
		}
		data.Tenant = t
	}

	roles, err := s.rolesInEffect(ctx, user.ID, tok.TenantID)
	if err != nil {
		return nil, err
	}
	data.Roles = roles

	if user.TenantID != nil {
		t, err := s.tenants.GetByID(ctx, *user.TenantID)
		if err != nil {
			return nil, fmt.Errorf("load default tenant: %w", err)
		}
		data.DefaultTenantName = t.Name
	}

	return data, nil
}

// rolesInEffect returns the grants a token scope confers: grants on the
// scope tenant when set, followed by global grants.
func (s *Service) rolesInEffect(ctx context.Context, userID string, tenantID *string) ([]*role.Grant, error) {
	var grants []*role.Grant
	if tenantID != nil {
		tenantGrants, err := s.roles.GetTenantGrantsForUser(ctx, userID, *tenantID)
		if err != nil {
			return nil, fmt.Errorf("load tenant grants: %w", err)
		}
		grants = append(grants, tenantGrants...)
	}
	globalGrants, err := s.roles.GetGlobalGrantsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load global grants: %w", err)
	}
	return append(grants, globalGrants...), nil
}

func scrubAdminURLs(eps []*catalog.TenantEndpoint) {
	for _, e := range eps {
		e.AdminURL = ""
	}
}
