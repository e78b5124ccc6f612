package authtoken

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/store/memory"
	"github.com/keygate/keygate/internal/tenant"
)

// testIdentity is the seeded fixture behind the embedded validator: an
// admin token for validation calls and a scoped member token to present.
type testIdentity struct {
	svc        *identity.Service
	adminToken string
	userToken  string
	tenantID   string
	userID     string
}

// newTestIdentity wires the identity core over the in-process store and
// seeds tenant "acme" with member "alice" holding the Member role there.
func newTestIdentity(t *testing.T) *testIdentity {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	repos := identity.Repositories{
		Users:       store.Users(),
		Tenants:     store.Tenants(),
		Roles:       store.Roles(),
		Services:    store.Services(),
		Templates:   store.EndpointTemplates(),
		Tokens:      store.Tokens(),
		Credentials: store.Credentials(),
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

	now := time.Now().UTC()
	seedUser := func(name, password string) *identity.User {
		hash, err := hasher.Hash(password)
		require.NoError(t, err)
		u := &identity.User{
			ID:           id.NewUUIDv7(),
			Name:         name,
			PasswordHash: hash,
			Enabled:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, repos.Users.Create(ctx, u))
		return u
	}

	admin := seedUser("root", "bootstrap-pass")
	adminRole, err := repos.Roles.GetByName(ctx, "Admin")
	require.NoError(t, err)
	require.NoError(t, repos.Roles.Grant(ctx, &role.Grant{
		ID:       id.NewUUIDv7(),
		UserID:   admin.ID,
		RoleID:   adminRole.ID,
		RoleName: adminRole.Name,
	}))

	acme := &tenant.Tenant{
		ID:        id.NewUUIDv7(),
		Name:      "acme",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repos.Tenants.Create(ctx, acme))

	alice := seedUser("alice", "alice-pass")
	member := &role.Role{ID: id.NewUUIDv7(), Name: "Member", CreatedAt: now}
	require.NoError(t, repos.Roles.Create(ctx, member))
	require.NoError(t, repos.Roles.Grant(ctx, &role.Grant{
		ID:       id.NewUUIDv7(),
		UserID:   alice.ID,
		RoleID:   member.ID,
		TenantID: &acme.ID,
		RoleName: member.Name,
	}))

	authenticate := func(username, password, tenantID string) string {
		data, err := svc.Authenticate(ctx, &identity.AuthRequest{
			TenantID: tenantID,
			Password: &identity.PasswordCredentials{Username: username, Password: password},
		})
		require.NoError(t, err)
		return data.Token.ID
	}

	return &testIdentity{
		svc:        svc,
		adminToken: authenticate("root", "bootstrap-pass", ""),
		userToken:  authenticate("alice", "alice-pass", acme.ID),
		tenantID:   acme.ID,
		userID:     alice.ID,
	}
}

// capture records the downstream request headers the middleware forwarded.
type capture struct {
	called bool
	header http.Header
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.header = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	})
}

// TestPurpose: Validates that a valid scoped token decorates the downstream request with the full confirmed identity header set.
// Scope: Integration Test
// Security: The decorated headers are the trust boundary between the middleware and the protected service.
// Expected: Downstream sees Confirmed status, user and tenant ids and names, comma-separated roles, proxy authorization, and the deprecated aliases.
// Test Case ID: ATK-01
func TestAuthToken_DecoratesConfirmedIdentity(t *testing.T) {
	fix := newTestIdentity(t)
	down := &capture{}
	mw := Middleware(
		&EmbeddedValidator{Service: fix.svc, AdminToken: fix.adminToken},
		Config{AuthURI: "http://auth:35357"},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	req.Header.Set(HeaderAuthToken, fix.userToken)
	mw(down.handler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, down.called)

	assert.Equal(t, StatusConfirmed, down.header.Get(HeaderIdentityStatus))
	assert.Equal(t, "Proxy alice", down.header.Get(HeaderAuthorization))
	assert.Equal(t, fix.tenantID, down.header.Get(HeaderTenantID))
	assert.Equal(t, "acme", down.header.Get(HeaderTenantName))
	assert.Equal(t, fix.userID, down.header.Get(HeaderUserID))
	assert.Equal(t, "alice", down.header.Get(HeaderUserName))
	assert.Equal(t, "Member", down.header.Get(HeaderRoles))

	assert.Equal(t, fix.tenantID, down.header.Get(HeaderTenantDeprecated))
	assert.Equal(t, fix.userID, down.header.Get(HeaderUserDeprecated))
	assert.Equal(t, "Member", down.header.Get(HeaderRoleDeprecated))
}

// TestPurpose: Validates the storage-token fallback claim source.
// Scope: Integration Test
// Expected: A claim presented only via X-Storage-Token validates and decorates the same way.
// Test Case ID: ATK-02
func TestAuthToken_StorageTokenFallback(t *testing.T) {
	fix := newTestIdentity(t)
	down := &capture{}
	mw := Middleware(
		&EmbeddedValidator{Service: fix.svc, AdminToken: fix.adminToken},
		Config{AuthURI: "http://auth:35357"},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	req.Header.Set(HeaderStorageToken, fix.userToken)
	mw(down.handler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusConfirmed, down.header.Get(HeaderIdentityStatus))
	assert.Equal(t, "alice", down.header.Get(HeaderUserName))
}

// TestPurpose: Validates rejection of unauthenticated requests with the identity challenge.
// Scope: Integration Test
// Security: The challenge tells clients where to authenticate without leaking anything else.
// Expected: 401 with WWW-Authenticate naming the configured auth URI; downstream is never invoked.
// Test Case ID: ATK-03
func TestAuthToken_MissingClaimRejected(t *testing.T) {
	fix := newTestIdentity(t)
	down := &capture{}
	mw := Middleware(
		&EmbeddedValidator{Service: fix.svc, AdminToken: fix.adminToken},
		Config{AuthURI: "http://auth:35357"},
	)

	rec := httptest.NewRecorder()
	mw(down.handler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatever", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Keystone uri='http://auth:35357'", rec.Header().Get("WWW-Authenticate"))
	assert.False(t, down.called)
}

// TestPurpose: Validates that an invalid claim is rejected without a challenge and without reaching downstream.
// Scope: Integration Test
// Expected: 401 for a garbage token; downstream is never invoked.
// Test Case ID: ATK-04
func TestAuthToken_InvalidClaimRejected(t *testing.T) {
	fix := newTestIdentity(t)
	down := &capture{}
	mw := Middleware(
		&EmbeddedValidator{Service: fix.svc, AdminToken: fix.adminToken},
		Config{AuthURI: "http://auth:35357"},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	req.Header.Set(HeaderAuthToken, "no-such-token")
	mw(down.handler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, down.called)
}

// TestPurpose: Validates delay-auth-decision mode for both missing and rejected claims.
// Scope: Integration Test
// Expected: The request reaches downstream stamped X-Identity-Status: Invalid instead of being rejected.
// Test Case ID: ATK-05
func TestAuthToken_DelayAuthDecision(t *testing.T) {
	fix := newTestIdentity(t)
	mw := Middleware(
		&EmbeddedValidator{Service: fix.svc, AdminToken: fix.adminToken},
		Config{AuthURI: "http://auth:35357", DelayAuthDecision: true},
	)

	for _, claim := range []string{"", "no-such-token"} {
		down := &capture{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
		if claim != "" {
			req.Header.Set(HeaderAuthToken, claim)
		}
		mw(down.handler()).ServeHTTP(rec, req)

		require.True(t, down.called, "claim %q", claim)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, StatusInvalid, down.header.Get(HeaderIdentityStatus), "claim %q", claim)
	}
}

// TestPurpose: Validates that client-supplied identity headers are stripped before decoration.
// Scope: Integration Test
// Security: A client must not be able to smuggle a forged identity past validation.
// Expected: Spoofed headers never reach downstream; the middleware's own stamps are the only identity headers present.
// Test Case ID: ATK-06
func TestAuthToken_StripsInboundIdentityHeaders(t *testing.T) {
	fix := newTestIdentity(t)
	down := &capture{}
	mw := Middleware(
		&EmbeddedValidator{Service: fix.svc, AdminToken: fix.adminToken},
		Config{AuthURI: "http://auth:35357", DelayAuthDecision: true},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whatever", nil)
	req.Header.Set(HeaderIdentityStatus, StatusConfirmed)
	req.Header.Set(HeaderUserID, "forged-user")
	req.Header.Set(HeaderRoles, "Admin")
	mw(down.handler()).ServeHTTP(rec, req)

	require.True(t, down.called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusInvalid, down.header.Get(HeaderIdentityStatus))
	assert.Empty(t, down.header.Get(HeaderUserID))
	assert.Empty(t, down.header.Get(HeaderRoles))
}

// TestPurpose: Validates remote validation against the identity API's wire contract, including compute capabilities.
// Scope: Integration Test
// Security: Validation calls must present the admin token, and only the admin token.
// Expected: The validator parses the access document into an Identity and lifts the capability list off the compute endpoint entry.
// Test Case ID: ATK-07
func TestAuthToken_RemoteValidator(t *testing.T) {
	var sawAdminToken string
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdminToken = r.Header.Get(HeaderAuthToken)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2.0/tokens/tok-1":
			fmt.Fprint(w, `{"access": {
				"token": {"id": "tok-1", "expires": "2027-01-01T00:00:00Z", "tenant": {"id": "t1", "name": "acme"}},
				"user": {"id": "u1", "name": "alice", "roles": [{"id": "r1", "name": "Member"}]}
			}}`)
		case "/v2.0/tokens/tok-1/endpoints":
			fmt.Fprint(w, `{"endpoints": [
				{"id": "e1", "type": "object-store"},
				{"id": "e2", "type": "compute", "RAX-RBAC-capabilities": ["start", "reboot"]}
			], "endpoints_links": []}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer auth.Close()

	v, err := NewRemoteValidator(RemoteValidatorConfig{
		AuthURL:    auth.URL,
		AdminToken: "admin-tok",
	})
	require.NoError(t, err)
	defer v.Close()

	ident, err := v.Validate(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "admin-tok", sawAdminToken)
	assert.Equal(t, "u1", ident.UserID)
	assert.Equal(t, "alice", ident.UserName)
	assert.Equal(t, "t1", ident.TenantID)
	assert.Equal(t, "acme", ident.TenantName)
	assert.Equal(t, []string{"Member"}, ident.Roles)
	assert.Equal(t, []string{"start", "reboot"}, ident.Capabilities)

	_, err = v.Validate(context.Background(), "tok-unknown")
	assert.Error(t, err)
}

// TestPurpose: Validates proxy-mode forwarding, claim-header hygiene, and the downstream 401 challenge rewrite.
// Scope: Integration Test
// Security: The caller's token must not cross to the proxied service.
// Expected: 200 bodies pass through untouched; a downstream 401 gains the Keystone challenge; X-Auth-Token is absent downstream.
// Test Case ID: ATK-08
func TestAuthToken_RemoteProxyForwarding(t *testing.T) {
	fix := newTestIdentity(t)

	var sawHeader http.Header
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeader = r.Header.Clone()
		if r.URL.Path == "/denied" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "downstream-body")
	}))
	defer service.Close()

	mw := Middleware(
		&EmbeddedValidator{Service: fix.svc, AdminToken: fix.adminToken},
		Config{AuthURI: "http://auth:35357", ServiceURL: service.URL, ServicePass: "svc-pass"},
	)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("embedded next handler must not run in proxy mode")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set(HeaderAuthToken, fix.userToken)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "downstream-body", rec.Body.String())
	assert.Empty(t, sawHeader.Get(HeaderAuthToken))
	assert.Equal(t, StatusConfirmed, sawHeader.Get(HeaderIdentityStatus))
	assert.Equal(t, "alice", sawHeader.Get(HeaderUserName))
	assert.Equal(t, "Basic svc-pass", sawHeader.Get("Authorization"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/denied", nil)
	req.Header.Set(HeaderAuthToken, fix.userToken)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Keystone uri='http://auth:35357'", rec.Header().Get("WWW-Authenticate"))
}
