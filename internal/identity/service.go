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

// Package identity implements the identity core: authentication, token
// validation, authorization predicates, and the CRUD orchestration rules
// for tenants, users, roles, services, endpoints, and credentials. All
// persistence goes through the repository contracts held at construction.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/credential"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/tenant"
	"github.com/keygate/keygate/internal/token"
)

// Default paging bounds when the configuration leaves them unset.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Repositories bundles the persistence contracts the core operates on.
type Repositories struct {
	Users       UserRepository
	Tenants     tenant.Repository
	Roles       role.Repository
	Services    catalog.ServiceRepository
	Templates   catalog.EndpointTemplateRepository
	Tokens      token.Repository
	Credentials credential.Repository
}

// Config carries the core tunables.
type Config struct {
	// AdminRoleName and ServiceAdminRoleName are the role names that
	// confer the two built-in authorities. Both must resolve to existing
	// roles at construction time.
	AdminRoleName        string
	ServiceAdminRoleName string

	// TokenTTL is the lifetime of newly issued tokens.
	TokenTTL time.Duration

	// PageLimitDefault and PageLimitMax bound the ?limit= parameter.
	PageLimitDefault int
	PageLimitMax     int
}

// Service provides identity business logic
type Service struct {
	users     UserRepository
	tenants   tenant.Repository
	roles     role.Repository
	services  catalog.ServiceRepository
	templates catalog.EndpointTemplateRepository
	tokens    token.Repository
	creds     credential.Repository

	hasher      *PasswordHasher
	auditLogger audit.Logger

	tokenTTL         time.Duration
	pageLimitDefault int
	pageLimitMax     int

	// Resolved once at construction; never reassigned.
	adminRoleID        string
	serviceAdminRoleID string
}

// NewService creates the identity core. The admin and service-admin role
// names are resolved to ids here, once, so that a misconfigured deployment
// fails at startup instead of on the first privileged call.
func NewService(ctx context.Context, repos Repositories, hasher *PasswordHasher, auditLogger audit.Logger, cfg Config) (*Service, error) {
	adminRole, err := repos.Roles.GetByName(ctx, cfg.AdminRoleName)
	if err != nil {
		return nil, fmt.Errorf("resolve admin role %q: %w", cfg.AdminRoleName, err)
	}
	serviceAdminRole, err := repos.Roles.GetByName(ctx, cfg.ServiceAdminRoleName)
	if err != nil {
		return nil, fmt.Errorf("resolve service admin role %q: %w", cfg.ServiceAdminRoleName, err)
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = token.DefaultTTL
	}
	if cfg.PageLimitDefault <= 0 {
		cfg.PageLimitDefault = DefaultPageLimit
	}
	if cfg.PageLimitMax <= 0 {
		cfg.PageLimitMax = MaxPageLimit
	}

	return &Service{
		users:              repos.Users,
		tenants:            repos.Tenants,
		roles:              repos.Roles,
		services:           repos.Services,
		templates:          repos.Templates,
		tokens:             repos.Tokens,
		creds:              repos.Credentials,
		hasher:             hasher,
		auditLogger:        auditLogger,
		tokenTTL:           cfg.TokenTTL,
		pageLimitDefault:   cfg.PageLimitDefault,
		pageLimitMax:       cfg.PageLimitMax,
		adminRoleID:        adminRole.ID,
		serviceAdminRoleID: serviceAdminRole.ID,
	}, nil
}

// AdminRoleID returns the resolved id of the admin role.
func (s *Service) AdminRoleID() string { return s.adminRoleID }

// ServiceAdminRoleID returns the resolved id of the service-admin role.
func (s *Service) ServiceAdminRoleID() string { return s.serviceAdminRoleID }

// PageLimit exposes the clamped page size so the transport can build
// paging links with the limit actually applied.
func (s *Service) PageLimit(requested int) int { return s.clampLimit(requested) }

// clampLimit normalizes the caller-supplied page limit into the configured
// bounds. Zero or negative means the default.
func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.pageLimitDefault
	}
	if limit > s.pageLimitMax {
		return s.pageLimitMax
	}
	return limit
}
