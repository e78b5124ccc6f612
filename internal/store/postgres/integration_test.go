//go:build integration
// +build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/credential"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/tenant"
)

// testDB connects to the database named by the KEYGATE_DB_* environment,
// falling back to the docker-compose defaults, and applies the schema.
// Tests are skipped when no database is reachable.
func testDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	cfg := Config{
		Host:         envOr("KEYGATE_DB_HOST", "localhost"),
		Port:         envOr("KEYGATE_DB_PORT", "5432"),
		User:         envOr("KEYGATE_DB_USER", "keygate"),
		Password:     envOr("KEYGATE_DB_PASSWORD", "keygate_dev_password"),
		Database:     envOr("KEYGATE_DB_NAME", "keygate"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 5,
	}

	db, err := New(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to database: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx, InitialSchema))
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestPurpose: Validates tenant and user persistence round trips and the conflict sentinels the identity core depends on.
// Scope: Database Integration Test
// Expected: Duplicate tenant and user names surface the duplicate sentinels; a tenant holding a user refuses deletion.
// Test Case ID: PGS-01
func TestPostgres_TenantUserLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tenants := NewTenantRepository(db)
	users := NewUserRepository(db)

	now := time.Now().UTC()
	acme := &tenant.Tenant{ID: id.NewUUIDv7(), Name: "acme-" + id.NewUUIDv7(), Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tenants.Create(ctx, acme))

	dup := &tenant.Tenant{ID: id.NewUUIDv7(), Name: acme.Name, Enabled: true, CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, tenants.Create(ctx, dup), tenant.ErrDuplicateName)

	alice := &identity.User{
		ID: id.NewUUIDv7(), Name: "alice-" + id.NewUUIDv7(),
		Enabled: true, TenantID: &acme.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, users.Create(ctx, alice))
	assert.ErrorIs(t, users.Create(ctx, &identity.User{
		ID: id.NewUUIDv7(), Name: alice.Name, Enabled: true, CreatedAt: now, UpdatedAt: now,
	}), identity.ErrUserAlreadyExists)

	// A tenant with a member is not deletable.
	assert.ErrorIs(t, tenants.Delete(ctx, acme.ID), tenant.ErrTenantNotEmpty)

	got, err := users.GetByName(ctx, alice.Name)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	require.NotNil(t, got.TenantID)
	assert.Equal(t, acme.ID, *got.TenantID)

	require.NoError(t, users.Delete(ctx, alice.ID))
	require.NoError(t, tenants.Delete(ctx, acme.ID))
}

// TestPurpose: Validates grant uniqueness across scopes, including the global scope where tenant_id is NULL.
// Scope: Database Integration Test
// Expected: A second identical grant conflicts in both the global and the tenant scope; distinct scopes coexist.
// Test Case ID: PGS-02
func TestPostgres_GrantUniqueness(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tenants := NewTenantRepository(db)
	users := NewUserRepository(db)
	roles := NewRoleRepository(db)

	now := time.Now().UTC()
	acme := &tenant.Tenant{ID: id.NewUUIDv7(), Name: "acme-" + id.NewUUIDv7(), Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tenants.Create(ctx, acme))
	bob := &identity.User{ID: id.NewUUIDv7(), Name: "bob-" + id.NewUUIDv7(), Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, bob))
	member := &role.Role{ID: id.NewUUIDv7(), Name: "member-" + id.NewUUIDv7(), CreatedAt: now}
	require.NoError(t, roles.Create(ctx, member))

	global := &role.Grant{ID: id.NewUUIDv7(), UserID: bob.ID, RoleID: member.ID}
	require.NoError(t, roles.Grant(ctx, global))
	assert.ErrorIs(t, roles.Grant(ctx, &role.Grant{
		ID: id.NewUUIDv7(), UserID: bob.ID, RoleID: member.ID,
	}), role.ErrGrantAlreadyExists)

	scoped := &role.Grant{ID: id.NewUUIDv7(), UserID: bob.ID, RoleID: member.ID, TenantID: &acme.ID}
	require.NoError(t, roles.Grant(ctx, scoped))
	assert.ErrorIs(t, roles.Grant(ctx, &role.Grant{
		ID: id.NewUUIDv7(), UserID: bob.ID, RoleID: member.ID, TenantID: &acme.ID,
	}), role.ErrGrantAlreadyExists)

	got, err := roles.GetGrant(ctx, bob.ID, member.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, member.Name, got.RoleName)

	require.NoError(t, users.Delete(ctx, bob.ID))
	require.NoError(t, tenants.Delete(ctx, acme.ID))
	require.NoError(t, roles.Delete(ctx, member.ID))
}

// TestPurpose: Validates marker pagination consistency: walking forward with next and back with prev returns to the same page.
// Scope: Database Integration Test
// Expected: Page two's prev marker re-fetches page one exactly; the first page carries no prev.
// Test Case ID: PGS-03
func TestPostgres_MarkerRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	creds := NewCredentialRepository(db)
	users := NewUserRepository(db)

	now := time.Now().UTC()
	owner := &identity.User{ID: id.NewUUIDv7(), Name: "pager-" + id.NewUUIDv7(), Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, owner))
	defer func() {
		require.NoError(t, creds.DeleteByUser(ctx, owner.ID))
		require.NoError(t, users.Delete(ctx, owner.ID))
	}()

	for i := 0; i < 7; i++ {
		require.NoError(t, creds.Create(ctx, &credential.Credential{
			ID: id.NewUUIDv7(), UserID: owner.ID, Type: credential.TypeEC2,
			Key: fmt.Sprintf("ak-%s-%d", owner.ID, i), Secret: "s",
		}))
	}

	const limit = 3
	pageOne, err := creds.GetForUserPage(ctx, owner.ID, "", limit)
	require.NoError(t, err)
	require.Len(t, pageOne, limit)

	prev, next, err := creds.GetForUserPageMarkers(ctx, owner.ID, "", limit)
	require.NoError(t, err)
	assert.Empty(t, prev)
	require.Equal(t, pageOne[limit-1].ID, next)

	pageTwo, err := creds.GetForUserPage(ctx, owner.ID, next, limit)
	require.NoError(t, err)
	require.Len(t, pageTwo, limit)

	prev2, _, err := creds.GetForUserPageMarkers(ctx, owner.ID, next, limit)
	require.NoError(t, err)

	back, err := creds.GetForUserPage(ctx, owner.ID, prev2, limit)
	require.NoError(t, err)
	assert.Equal(t, pageOne, back)
}

// TestPurpose: Validates that the service delete removes templates, tenant bindings, roles, and grants together with the service row.
// Scope: Database Integration Test
// Expected: After the delete every owned row is gone; deleting again reports the service as missing.
// Test Case ID: PGS-04
func TestPostgres_ServiceDeleteCascade(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tenants := NewTenantRepository(db)
	users := NewUserRepository(db)
	roles := NewRoleRepository(db)
	services := NewServiceRepository(db)
	templates := NewEndpointTemplateRepository(db)

	now := time.Now().UTC()
	acme := &tenant.Tenant{ID: id.NewUUIDv7(), Name: "acme-" + id.NewUUIDv7(), Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tenants.Create(ctx, acme))
	carol := &identity.User{ID: id.NewUUIDv7(), Name: "carol-" + id.NewUUIDv7(), Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, carol))

	svc := &catalog.Service{ID: id.NewUUIDv7(), Name: "registry-" + id.NewUUIDv7(), Type: "registry", CreatedAt: now}
	require.NoError(t, services.Create(ctx, svc))
	tpl := &catalog.EndpointTemplate{
		ID: id.NewUUIDv7(), ServiceID: svc.ID, Region: "RegionOne",
		PublicURL: "https://registry.example.com/v2", Enabled: true, CreatedAt: now,
	}
	require.NoError(t, templates.Create(ctx, tpl))
	require.NoError(t, templates.Bind(ctx, &catalog.Endpoint{
		ID: id.NewUUIDv7(), TenantID: acme.ID, TemplateID: tpl.ID,
	}))
	operator := &role.Role{ID: id.NewUUIDv7(), Name: svc.Name + ":operator", ServiceID: svc.ID, CreatedAt: now}
	require.NoError(t, roles.Create(ctx, operator))
	require.NoError(t, roles.Grant(ctx, &role.Grant{
		ID: id.NewUUIDv7(), UserID: carol.ID, RoleID: operator.ID, TenantID: &acme.ID,
	}))

	require.NoError(t, services.Delete(ctx, svc.ID))

	_, err := services.GetByID(ctx, svc.ID)
	assert.ErrorIs(t, err, catalog.ErrServiceNotFound)
	_, err = templates.GetByID(ctx, tpl.ID)
	assert.ErrorIs(t, err, catalog.ErrTemplateNotFound)
	_, err = roles.GetByID(ctx, operator.ID)
	assert.ErrorIs(t, err, role.ErrRoleNotFound)
	_, err = roles.GetGrant(ctx, carol.ID, operator.ID, &acme.ID)
	assert.ErrorIs(t, err, role.ErrGrantNotFound)

	assert.ErrorIs(t, services.Delete(ctx, svc.ID), catalog.ErrServiceNotFound)

	require.NoError(t, users.Delete(ctx, carol.ID))
	require.NoError(t, tenants.Delete(ctx, acme.ID))
}
