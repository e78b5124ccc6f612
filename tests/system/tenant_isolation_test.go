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

// Package system provides integration tests that run against a real PostgreSQL database.
//
// Test Execution:
//
//	INTEGRATION_TEST=true go test -v ./tests/system/...
//
// Prerequisites:
//
//	docker compose up -d postgres
//
// Test Categories:
//   - TEN-*: Tenant scope isolation tests
//   - AUT-*: Authorization predicate tests
package system

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/store/postgres"
	"github.com/keygate/keygate/internal/tenant"
)

// testDB is the shared database connection for integration tests
var testDB *postgres.DB

// TestMain sets up and tears down the test database connection
func TestMain(m *testing.M) {
	// Skip if not integration test
	if os.Getenv("INTEGRATION_TEST") != "true" {
		os.Exit(0)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         getEnvOrDefault("KEYGATE_DB_HOST", "localhost"),
		Port:         getEnvOrDefault("KEYGATE_DB_PORT", "5432"),
		User:         getEnvOrDefault("KEYGATE_DB_USER", "keygate"),
		Password:     getEnvOrDefault("KEYGATE_DB_PASSWORD", "keygate_dev_password"),
		Database:     getEnvOrDefault("KEYGATE_DB_NAME", "keygate"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testDB = db

	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		panic("failed to apply schema: " + err.Error())
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// systemFixture carries the identity core over the real database plus a
// bootstrapped administrator token.
type systemFixture struct {
	svc        *identity.Service
	repos      identity.Repositories
	adminToken string
	adminPass  string
	adminName  string
}

// newSystemFixture wires the identity core over postgres repositories and
// seeds an administrator. Names are suffixed with a fresh id so repeated
// runs against a persistent database do not collide.
func newSystemFixture(t *testing.T) *systemFixture {
	t.Helper()
	ctx := context.Background()

	repos := identity.Repositories{
		Users:       postgres.NewUserRepository(testDB),
		Tenants:     postgres.NewTenantRepository(testDB),
		Roles:       postgres.NewRoleRepository(testDB),
		Services:    postgres.NewServiceRepository(testDB),
		Templates:   postgres.NewEndpointTemplateRepository(testDB),
		Tokens:      postgres.NewTokenRepository(testDB),
		Credentials: postgres.NewCredentialRepository(testDB),
	}
	hasher := identity.DefaultPasswordHasher()
	auditLogger := audit.NewSlogLogger()

	require.NoError(t, identity.Bootstrap(ctx, repos, hasher, auditLogger, identity.BootstrapConfig{
		AdminRoleName:        "Admin",
		ServiceAdminRoleName: "KeygateServiceAdmin",
	}))

	svc, err := identity.NewService(ctx, repos, hasher, auditLogger, identity.Config{
		AdminRoleName:        "Admin",
		ServiceAdminRoleName: "KeygateServiceAdmin",
		TokenTTL:             time.Hour,
	})
	require.NoError(t, err)

	adminName := "root-" + id.NewUUIDv7()[:8]
	hash, err := hasher.Hash("bootstrap-pass")
	require.NoError(t, err)
	now := time.Now().UTC()
	admin := &identity.User{
		ID:           id.NewUUIDv7(),
		Name:         adminName,
		PasswordHash: hash,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repos.Users.Create(ctx, admin))
	adminRole, err := repos.Roles.GetByName(ctx, "Admin")
	require.NoError(t, err)
	require.NoError(t, repos.Roles.Grant(ctx, &role.Grant{
		ID:       id.NewUUIDv7(),
		UserID:   admin.ID,
		RoleID:   adminRole.ID,
		RoleName: adminRole.Name,
	}))

	auth, err := svc.Authenticate(ctx, &identity.AuthRequest{
		Password: &identity.PasswordCredentials{Username: adminName, Password: "bootstrap-pass"},
	})
	require.NoError(t, err)

	return &systemFixture{
		svc:        svc,
		repos:      repos,
		adminToken: auth.Token.ID,
		adminPass:  "bootstrap-pass",
		adminName:  adminName,
	}
}

// createTenant provisions a tenant through the core as the administrator.
func (f *systemFixture) createTenant(t *testing.T, name string) *tenant.Tenant {
	t.Helper()
	created, err := f.svc.CreateTenant(context.Background(), f.adminToken, &tenant.Tenant{
		Name:    name,
		Enabled: true,
	})
	require.NoError(t, err)
	return created
}

// createUser provisions an enabled user with a password through the core.
func (f *systemFixture) createUser(t *testing.T, name, password string, tenantID *string) *identity.User {
	t.Helper()
	created, err := f.svc.CreateUser(context.Background(), f.adminToken, &identity.User{
		Name:     name,
		Enabled:  true,
		TenantID: tenantID,
	}, password)
	require.NoError(t, err)
	return created
}

// =============================================================================
// TENANT SCOPE ISOLATION TESTS
// =============================================================================

// TestPurpose: Validates that a user with access to Tenant A cannot obtain or hold a token scoped to Tenant B.
// Scope: Integration Test
// Security: Multi-tenancy boundary enforcement (prevents cross-tenant access)
// Expected: Scoping authentication to an unrelated tenant fails; a Tenant A token fails validation with belongsTo=Tenant B.
// Test Case ID: TEN-01
func TestTenant_Isolation_TokenScopeDoesNotCrossTenants(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}
	ctx := context.Background()
	f := newSystemFixture(t)

	suffix := id.NewUUIDv7()[:8]
	tenantA := f.createTenant(t, "tenant-a-"+suffix)
	tenantB := f.createTenant(t, "tenant-b-"+suffix)
	require.NotEqual(t, tenantA.ID, tenantB.ID, "TEN-01: Tenants must have unique IDs")

	alice := f.createUser(t, "alice-"+suffix, "alice-pass", &tenantA.ID)

	// Authentication scoped to the home tenant succeeds and the token
	// carries that scope.
	auth, err := f.svc.Authenticate(ctx, &identity.AuthRequest{
		TenantID: tenantA.ID,
		Password: &identity.PasswordCredentials{Username: alice.Name, Password: "alice-pass"},
	})
	require.NoError(t, err, "TEN-01: Authentication scoped to home tenant must succeed")
	require.NotNil(t, auth.Token.TenantID)
	assert.Equal(t, tenantA.ID, *auth.Token.TenantID)

	// CRITICAL: Authentication scoped to an unrelated tenant must fail.
	_, err = f.svc.Authenticate(ctx, &identity.AuthRequest{
		TenantID: tenantB.ID,
		Password: &identity.PasswordCredentials{Username: alice.Name, Password: "alice-pass"},
	})
	require.Error(t, err, "TEN-01 SECURITY: User MUST NOT authenticate into an unrelated tenant")
	assert.True(t, fault.As(err).Is(fault.Unauthorized("")),
		"TEN-01: Cross-tenant scoping is an unauthorized fault, got %v", err)

	// CRITICAL: A Tenant A token does not validate as belonging to Tenant B.
	_, err = f.svc.ValidateToken(ctx, f.adminToken, auth.Token.ID, tenantB.ID)
	assert.Error(t, err,
		"TEN-01 SECURITY: belongsTo must reject a token scoped to another tenant")

	_, err = f.svc.ValidateToken(ctx, f.adminToken, auth.Token.ID, tenantA.ID)
	assert.NoError(t, err, "TEN-01: belongsTo matching the token scope must validate")
}

// TestPurpose: Validates that role grants scoped to one tenant are not in effect in another tenant's token.
// Scope: Integration Test
// Security: RBAC scope containment
// Expected: A role granted on Tenant A appears in Tenant A scoped validation data and is absent from the unscoped default set of another tenant.
// Test Case ID: TEN-02
func TestTenant_Isolation_ScopedGrantsStayWithinTenant(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}
	ctx := context.Background()
	f := newSystemFixture(t)

	suffix := id.NewUUIDv7()[:8]
	tenantA := f.createTenant(t, "grants-a-"+suffix)
	tenantB := f.createTenant(t, "grants-b-"+suffix)

	operator, err := f.svc.CreateRole(ctx, f.adminToken, &role.Role{Name: "operator-" + suffix})
	require.NoError(t, err)

	// Bob's default tenant is B, but his operator grant is scoped to A.
	bob := f.createUser(t, "bob-"+suffix, "bob-pass", &tenantB.ID)
	_, err = f.svc.AddRoleToUser(ctx, f.adminToken, bob.ID, operator.ID, &tenantA.ID)
	require.NoError(t, err)

	authA, err := f.svc.Authenticate(ctx, &identity.AuthRequest{
		TenantID: tenantA.ID,
		Password: &identity.PasswordCredentials{Username: bob.Name, Password: "bob-pass"},
	})
	require.NoError(t, err, "TEN-02: The scoped grant itself confers tenant access")

	dataA, err := f.svc.ValidateToken(ctx, f.adminToken, authA.Token.ID, "")
	require.NoError(t, err)
	assert.True(t, hasRoleName(dataA.Roles, operator.Name),
		"TEN-02: Grant scoped to Tenant A must be in effect in the Tenant A token")

	// A token scoped to B (default membership) must not carry the A grant.
	authB, err := f.svc.Authenticate(ctx, &identity.AuthRequest{
		TenantID: tenantB.ID,
		Password: &identity.PasswordCredentials{Username: bob.Name, Password: "bob-pass"},
	})
	require.NoError(t, err)

	dataB, err := f.svc.ValidateToken(ctx, f.adminToken, authB.Token.ID, "")
	require.NoError(t, err)
	assert.False(t, hasRoleName(dataB.Roles, operator.Name),
		"TEN-02 SECURITY: Grant scoped to Tenant A MUST NOT be in effect in a Tenant B token")
}

func hasRoleName(grants []*role.Grant, name string) bool {
	for _, g := range grants {
		if g.RoleName == name {
			return true
		}
	}
	return false
}

// =============================================================================
// AUTHORIZATION PREDICATE TESTS
// =============================================================================

// TestPurpose: Validates that administrative operations are denied to tokens without the admin authority.
// Scope: Integration Test
// Security: RBAC enforcement at the identity core
// Expected: A plain user token is rejected with a forbidden fault on tenant creation and user listing; the admin token succeeds.
// Test Case ID: AUT-01
func TestAuthz_AdminOperationsRequireAdminAuthority(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}
	ctx := context.Background()
	f := newSystemFixture(t)

	suffix := id.NewUUIDv7()[:8]
	mallory := f.createUser(t, "mallory-"+suffix, "mallory-pass", nil)

	auth, err := f.svc.Authenticate(ctx, &identity.AuthRequest{
		Password: &identity.PasswordCredentials{Username: mallory.Name, Password: "mallory-pass"},
	})
	require.NoError(t, err)

	_, err = f.svc.CreateTenant(ctx, auth.Token.ID, &tenant.Tenant{Name: "forbidden-" + suffix, Enabled: true})
	require.Error(t, err, "AUT-01 SECURITY: Non-admin MUST NOT create tenants")
	assert.True(t, fault.As(err).Is(fault.Unauthorized("")),
		"AUT-01: Denial is an unauthorized fault, got %v", err)

	_, _, _, err = f.svc.ListUsers(ctx, auth.Token.ID, "", 10)
	assert.Error(t, err, "AUT-01 SECURITY: Non-admin MUST NOT list users")

	_, err = f.svc.CreateTenant(ctx, f.adminToken, &tenant.Tenant{Name: "allowed-" + suffix, Enabled: true})
	assert.NoError(t, err, "AUT-01: Admin tenant creation must succeed")
}

// TestPurpose: Validates that revoking a token makes it unusable for subsequent calls.
// Scope: Integration Test
// Security: Token lifecycle (revocation takes effect immediately)
// Expected: A revoked token fails validation and can no longer authorize its owner's requests.
// Test Case ID: AUT-02
func TestAuthz_RevokedTokenIsRejected(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}
	ctx := context.Background()
	f := newSystemFixture(t)

	suffix := id.NewUUIDv7()[:8]
	carol := f.createUser(t, "carol-"+suffix, "carol-pass", nil)

	auth, err := f.svc.Authenticate(ctx, &identity.AuthRequest{
		Password: &identity.PasswordCredentials{Username: carol.Name, Password: "carol-pass"},
	})
	require.NoError(t, err)

	_, err = f.svc.ValidateToken(ctx, f.adminToken, auth.Token.ID, "")
	require.NoError(t, err, "AUT-02: Token must validate before revocation")

	require.NoError(t, f.svc.RevokeToken(ctx, f.adminToken, auth.Token.ID))

	_, err = f.svc.ValidateToken(ctx, f.adminToken, auth.Token.ID, "")
	assert.Error(t, err, "AUT-02 SECURITY: Revoked token MUST fail validation")

	_, err = f.svc.GetUser(ctx, auth.Token.ID, carol.ID)
	assert.Error(t, err, "AUT-02 SECURITY: Revoked token MUST NOT authorize requests")
}
