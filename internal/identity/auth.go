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

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/credential"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/signer"
	"github.com/keygate/keygate/internal/tenant"
	"github.com/keygate/keygate/internal/token"
)

// PasswordCredentials names a user and proves the claim with a password.
type PasswordCredentials struct {
	Username string
	Password string
}

// TokenCredentials re-scopes an existing valid token.
type TokenCredentials struct {
	ID string
}

// EC2Credentials carries a signed request to be verified against the
// stored secret for the access key. Params excludes the Signature itself.
type EC2Credentials struct {
	Access    string
	Signature string
	Verb      string
	Host      string
	Path      string
	Params    map[string]string
}

// AuthRequest is one authentication attempt. Exactly one credential kind
// must be set; TenantID or TenantName optionally requests a scope.
type AuthRequest struct {
	TenantID   string
	TenantName string

	Password *PasswordCredentials
	Token    *TokenCredentials
	EC2      *EC2Credentials
}

// AuthData is the result of authentication: the issued (or reused) token,
// the principal, the scope tenant when scoped, the role grants in effect,
// and the endpoints catalog for the scope.
type AuthData struct {
	Token   *token.Token
	User    *User
	Tenant  *tenant.Tenant
	Roles   []*role.Grant
	Catalog []*catalog.TenantEndpoint
}

// Authenticate runs one of the three authentication flows and issues or
// reuses a token for (user, tenant). Failures that reveal nothing beyond
// "the credentials were wrong" are uniformly unauthorized.
func (s *Service) Authenticate(ctx context.Context, req *AuthRequest) (*AuthData, error) {
	tenantID, err := s.resolveRequestedTenant(ctx, req)
	if err != nil {
		return nil, err
	}

	var (
		user   *User
		method string
	)
	switch {
	case req.Password != nil:
		user, err = s.authenticatePassword(ctx, req.Password)
		method = "password"
	case req.Token != nil:
		user, err = s.authenticateToken(ctx, req.Token)
		method = "token"
	case req.EC2 != nil:
		user, err = s.authenticateEC2(ctx, req.EC2)
		method = "ec2"
	default:
		return nil, fault.BadRequest("invalid credentials")
	}
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAuthFailed,
			Resource: method,
			Metadata: map[string]any{audit.AttrReason: err.Error()},
		})
		return nil, err
	}

	data, err := s.issueToken(ctx, user, tenantID)
	if err != nil {
		return nil, err
	}

	scope := ""
	if data.Token.TenantID != nil {
		scope = *data.Token.TenantID
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAuthSuccess,
		TenantID: scope,
		ActorID:  user.ID,
		Resource: method,
		Metadata: map[string]any{audit.AttrMethod: method},
	})
	return data, nil
}

// resolveRequestedTenant maps the request's tenant name or id to an id, or
// "" when no scope was requested. An unknown tenant is indistinguishable
// from a denied one.
func (s *Service) resolveRequestedTenant(ctx context.Context, req *AuthRequest) (string, error) {
	if req.TenantName != "" {
		t, err := s.tenants.GetByName(ctx, req.TenantName)
		if err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				return "", fault.Unauthorized("unauthorized on this tenant")
			}
			return "", fmt.Errorf("resolve tenant name: %w", err)
		}
		return t.ID, nil
	}
	return req.TenantID, nil
}

func (s *Service) authenticatePassword(ctx context.Context, creds *PasswordCredentials) (*User, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, fault.BadRequest("expecting a username and password")
	}
	user, err := s.users.GetByName(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fault.Unauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	ok, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, fault.Unauthorized("invalid username or password")
	}
	return user, nil
}

// authenticateToken validates a presented token and returns its user, so
// the common tail can issue a token for the newly requested scope.
func (s *Service) authenticateToken(ctx context.Context, creds *TokenCredentials) (*User, error) {
	_, user, err := s.validateToken(ctx, creds.ID, "", false)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) authenticateEC2(ctx context.Context, creds *EC2Credentials) (*User, error) {
	if creds.Access == "" {
		return nil, fault.BadRequest("expecting an access key")
	}
	cred, err := s.creds.GetByAccessKey(ctx, creds.Access)
	if err != nil {
		if errors.Is(err, credential.ErrCredentialNotFound) {
			return nil, fault.Unauthorized("no credentials found for %s", creds.Access)
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	req := signer.Request{
		Verb:   creds.Verb,
		Host:   creds.Host,
		Path:   creds.Path,
		Params: creds.Params,
	}
	if !signer.Verify(cred.Secret, creds.Signature, req, false) {
		// Some clients sign against the bare hostname but transmit
		// host:port; retry with the port stripped.
		if !strings.Contains(creds.Host, ":") || !signer.Verify(cred.Secret, creds.Signature, req, true) {
			return nil, fault.Unauthorized("invalid signature")
		}
	}

	user, err := s.users.GetByID(ctx, cred.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fault.Unauthorized("no user found for access key")
		}
		return nil, fmt.Errorf("load credential user: %w", err)
	}
	return user, nil
}

// issueToken runs the common tail of every flow: check the principal and
// scope, reuse a live token for (user, tenant) when one exists, otherwise
// mint one, and assemble the AuthData view.
func (s *Service) issueToken(ctx context.Context, user *User, requestedTenantID string) (*AuthData, error) {
	if !user.Enabled {
		return nil, fault.UserDisabled("user %s has been disabled", user.ID)
	}

	// No requested scope falls back to the user's default tenant, which
	// may itself be unset, yielding an unscoped token.
	var scope *string
	if requestedTenantID != "" {
		if err := s.requireUserInTenant(ctx, user, requestedTenantID); err != nil {
			return nil, err
		}
		scope = &requestedTenantID
	} else if user.TenantID != nil {
		scope = user.TenantID
	}

	var scopeTenant *tenant.Tenant
	if scope != nil {
		t, err := s.tenants.GetByID(ctx, *scope)
		if err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				return nil, fault.Unauthorized("unauthorized on this tenant")
			}
			return nil, fmt.Errorf("load scope tenant: %w", err)
		}
		if !t.Enabled {
			return nil, fault.TenantDisabled("tenant %s has been disabled", t.ID)
		}
		scopeTenant = t
	}

	tok, err := s.reuseOrCreateToken(ctx, user.ID, scope)
	if err != nil {
		return nil, err
	}

	data := &AuthData{Token: tok, User: user, Tenant: scopeTenant}

	data.Roles, err = s.rolesInEffect(ctx, user.ID, scope)
	if err != nil {
		return nil, err
	}

	if scope != nil {
		data.Catalog, err = s.catalogForTenant(ctx, *scope, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// requireUserInTenant enforces the scope rule: the user's default tenant
// matches, or the user holds at least one grant on the tenant.
func (s *Service) requireUserInTenant(ctx context.Context, user *User, tenantID string) error {
	if user.TenantID != nil && *user.TenantID == tenantID {
		return nil
	}
	grants, err := s.roles.GetTenantGrantsForUser(ctx, user.ID, tenantID)
	if err != nil {
		return fmt.Errorf("load tenant grants: %w", err)
	}
	if len(grants) == 0 {
		return fault.Unauthorized("unauthorized on this tenant")
	}
	return nil
}

// reuseOrCreateToken returns a live token for (user, tenant), preferring
// the existing one with the greatest expiry. Two racing authentications
// may both create a token; both stay valid and the next call reuses the
// longer-lived one.
func (s *Service) reuseOrCreateToken(ctx context.Context, userID string, tenantID *string) (*token.Token, error) {
	var (
		existing *token.Token
		err      error
	)
	if tenantID != nil {
		existing, err = s.tokens.GetForUserByTenant(ctx, userID, *tenantID)
	} else {
		existing, err = s.tokens.GetForUser(ctx, userID)
	}
	if err == nil && !existing.Expired() {
		s.auditLogger.Log(ctx, audit.Event{
			Type:    audit.TypeTokenReused,
			ActorID: userID,
		})
		return existing, nil
	}
	if err != nil && !errors.Is(err, token.ErrTokenNotFound) {
		return nil, fmt.Errorf("look up token: %w", err)
	}

	now := time.Now().UTC()
	tok := &token.Token{
		ID:        id.NewUUID(),
		UserID:    userID,
		TenantID:  tenantID,
		Expires:   now.Add(s.tokenTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:    audit.TypeTokenIssued,
		ActorID: userID,
	})
	return tok, nil
}

// catalogForTenant assembles the full catalog for a tenant: global
// endpoint templates plus the tenant's bound ones, with admin URLs only
// for principals carrying the service-admin authority.
func (s *Service) catalogForTenant(ctx context.Context, tenantID, subjectUserID string) ([]*catalog.TenantEndpoint, error) {
	eps, err := s.templates.GetAllEndpointsForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	includeAdmin, err := s.hasServiceAdminAuthority(ctx, subjectUserID)
	if err != nil {
		return nil, err
	}
	if !includeAdmin {
		scrubAdminURLs(eps)
	}
	return eps, nil
}
