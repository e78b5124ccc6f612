package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/credential"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/store/memory"
	"github.com/keygate/keygate/internal/tenant"
	"github.com/keygate/keygate/internal/token"
)

// TestPurpose: Validates the marker pagination contract on the in-process store.
// Scope: Unit Test
// Expected: Pages hold the first limit ids strictly below the marker in
// descending order; next is the last id of a window with rows after it; prev
// re-fetches the window just above and stays empty on the first page.
// Test Case ID: MEM-01
func TestMemory_MarkerPagination(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Tenants()

	var all []*tenant.Tenant
	for i := 0; i < 7; i++ {
		tn := &tenant.Tenant{
			ID:      id.NewUUIDv7(),
			Name:    fmt.Sprintf("tenant-%d", i),
			Enabled: true,
		}
		require.NoError(t, repo.Create(ctx, tn))
		all = append(all, tn)
	}
	// UUIDv7 ids sort by creation time, so the newest row leads the page.
	newest := all[len(all)-1]

	pageOne, err := repo.GetPage(ctx, "", 3)
	require.NoError(t, err)
	require.Len(t, pageOne, 3)
	assert.Equal(t, newest.ID, pageOne[0].ID)
	prev, next, err := repo.GetPageMarkers(ctx, "", 3)
	require.NoError(t, err)
	assert.Empty(t, prev, "the first page has no previous window")
	assert.Equal(t, pageOne[2].ID, next, "next is the last id of the window")

	pageTwo, err := repo.GetPage(ctx, next, 3)
	require.NoError(t, err)
	require.Len(t, pageTwo, 3)
	assert.True(t, pageTwo[0].ID < pageOne[2].ID, "pages never overlap")
	prev, next2, err := repo.GetPageMarkers(ctx, next, 3)
	require.NoError(t, err)
	assert.Equal(t, pageTwo[2].ID, next2)
	// The window above page two is the first page, which the empty marker
	// already selects.
	assert.Empty(t, prev)
	back, err := repo.GetPage(ctx, prev, 3)
	require.NoError(t, err)
	assert.Equal(t, pageOne, back, "prev from page two re-fetches page one")

	pageThree, err := repo.GetPage(ctx, next2, 3)
	require.NoError(t, err)
	require.Len(t, pageThree, 1, "seven rows paged by three leave one")
	prev3, next3, err := repo.GetPageMarkers(ctx, next2, 3)
	require.NoError(t, err)
	assert.Empty(t, next3, "the last page has no next window")
	assert.Equal(t, pageOne[2].ID, prev3, "prev from page three re-fetches page two")
	back, err = repo.GetPage(ctx, prev3, 3)
	require.NoError(t, err)
	assert.Equal(t, pageTwo, back)
}

// TestPurpose: Validates name uniqueness and referential rules in the in-process store.
// Scope: Unit Test
// Expected: Duplicate tenant and user names fail with their sentinel errors;
// a tenant with members cannot be deleted; lookups after delete are not-found.
// Test Case ID: MEM-02
func TestMemory_UniquenessAndLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tenants, users := store.Tenants(), store.Users()

	tn := &tenant.Tenant{ID: id.NewUUIDv7(), Name: "acme", Enabled: true}
	require.NoError(t, tenants.Create(ctx, tn))
	err := tenants.Create(ctx, &tenant.Tenant{ID: id.NewUUIDv7(), Name: "acme"})
	assert.ErrorIs(t, err, tenant.ErrDuplicateName)

	u := &identity.User{ID: id.NewUUIDv7(), Name: "alice", Enabled: true, TenantID: &tn.ID}
	require.NoError(t, users.Create(ctx, u))
	err = users.Create(ctx, &identity.User{ID: id.NewUUIDv7(), Name: "alice"})
	assert.ErrorIs(t, err, identity.ErrUserAlreadyExists)

	err = tenants.Delete(ctx, tn.ID)
	assert.ErrorIs(t, err, tenant.ErrTenantNotEmpty, "a tenant with members must not be deletable")

	require.NoError(t, users.Delete(ctx, u.ID))
	require.NoError(t, tenants.Delete(ctx, tn.ID))
	_, err = tenants.GetByID(ctx, tn.ID)
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	_, err = users.GetByName(ctx, "alice")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

// TestPurpose: Validates token selection and reaping in the in-process store.
// Scope: Unit Test
// Expected: GetForUserByTenant returns the live token with the greatest expiry
// for the (user, tenant) pair; DeleteExpired reaps exactly the expired rows;
// DeleteByUser clears every token of the user.
// Test Case ID: MEM-03
func TestMemory_TokenSelection(t *testing.T) {
	ctx := context.Background()
	tokens := memory.New().Tokens()

	userID := id.NewUUIDv7()
	tenantID := id.NewUUIDv7()
	now := time.Now().UTC()

	mk := func(scope *string, expires time.Time) *token.Token {
		tok := &token.Token{ID: id.NewUUID(), UserID: userID, TenantID: scope,
			Expires: expires, CreatedAt: now}
		require.NoError(t, tokens.Create(ctx, tok))
		return tok
	}
	short := mk(&tenantID, now.Add(10*time.Minute))
	long := mk(&tenantID, now.Add(time.Hour))
	unscoped := mk(nil, now.Add(time.Hour))
	expired := mk(&tenantID, now.Add(-time.Minute))

	got, err := tokens.GetForUserByTenant(ctx, userID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, long.ID, got.ID, "selection prefers the greatest expiry")

	got, err = tokens.GetForUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, unscoped.ID, got.ID, "GetForUser only considers unscoped tokens")

	removed, err := tokens.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	_, err = tokens.GetByID(ctx, expired.ID)
	assert.ErrorIs(t, err, token.ErrTokenNotFound)
	_, err = tokens.GetByID(ctx, short.ID)
	assert.NoError(t, err, "live tokens survive the reaper")

	require.NoError(t, tokens.DeleteByUser(ctx, userID))
	_, err = tokens.GetForUser(ctx, userID)
	assert.ErrorIs(t, err, token.ErrTokenNotFound)
}

// TestPurpose: Validates that deleting a user removes its grants, tokens, and credentials in the same operation.
// Scope: Unit Test
// Security: Privilege Retention (CWE-459)
// Expected: After the delete the user's grant, token, and credential lookups all report not-found; unrelated rows survive.
// Test Case ID: MEM-04
func TestMemory_UserDeleteCascade(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	users := store.Users()
	roles := store.Roles()
	tokens := store.Tokens()
	creds := store.Credentials()

	dora := &identity.User{ID: id.NewUUIDv7(), Name: "dora", Enabled: true}
	erik := &identity.User{ID: id.NewUUIDv7(), Name: "erik", Enabled: true}
	require.NoError(t, users.Create(ctx, dora))
	require.NoError(t, users.Create(ctx, erik))

	member := &role.Role{ID: id.NewUUIDv7(), Name: "member"}
	require.NoError(t, roles.Create(ctx, member))
	require.NoError(t, roles.Grant(ctx, &role.Grant{
		ID: id.NewUUIDv7(), UserID: dora.ID, RoleID: member.ID,
	}))
	require.NoError(t, roles.Grant(ctx, &role.Grant{
		ID: id.NewUUIDv7(), UserID: erik.ID, RoleID: member.ID,
	}))
	require.NoError(t, tokens.Create(ctx, &token.Token{
		ID: id.NewUUID(), UserID: dora.ID, Expires: time.Now().Add(time.Hour),
	}))
	require.NoError(t, creds.Create(ctx, &credential.Credential{
		ID: id.NewUUIDv7(), UserID: dora.ID, Type: credential.TypeEC2,
		Key: "ak-dora", Secret: "s",
	}))

	require.NoError(t, users.Delete(ctx, dora.ID))

	_, err := roles.GetGrant(ctx, dora.ID, member.ID, nil)
	assert.ErrorIs(t, err, role.ErrGrantNotFound,
		"SECURITY: Grants MUST NOT outlive their user")
	_, err = tokens.GetForUser(ctx, dora.ID)
	assert.Error(t, err, "tokens must go with the user")
	_, err = creds.GetByAccessKey(ctx, "ak-dora")
	assert.Error(t, err, "credentials must go with the user")

	// The other user's grant is untouched.
	_, err = roles.GetGrant(ctx, erik.ID, member.ID, nil)
	require.NoError(t, err)
}
