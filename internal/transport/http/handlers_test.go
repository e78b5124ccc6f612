package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/store/memory"
)

// newTestRouter wires the identity core over the in-process store, seeds an
// administrator, and returns the admin router plus the admin's token.
func newTestRouter(t *testing.T) (*testRouter, string) {
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

	// Seed the administrator directly through the repositories.
	hash, err := hasher.Hash("bootstrap-pass")
	require.NoError(t, err)
	now := time.Now().UTC()
	admin := &identity.User{
		ID:           id.NewUUIDv7(),
		Name:         "root",
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

	router := NewAdminRouter(NewHandler(svc), NewRateLimiter(100, 100))

	// Authenticate over the API itself to obtain the admin token.
	rec := httptest.NewRecorder()
	body := `{"auth": {"passwordCredentials": {"username": "root", "password": "bootstrap-pass"}}}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v2.0/tokens", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var access struct {
		Access struct {
			Token struct {
				ID string `json:"id"`
			} `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &access))
	require.NotEmpty(t, access.Access.Token.ID)

	return &testRouter{router}, access.Access.Token.ID
}

// testRouter wraps the router so test helpers can attach conveniences
// without leaking into production code.
type testRouter struct{ http.Handler }

func (c *testRouter) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, req)
	return rec
}

// TestPurpose: Validates the authenticate endpoint end to end over the admin router.
// Scope: Integration Test (in-process store)
// Security: Authentication (CWE-287)
// Expected: Valid credentials return an access document; invalid credentials return a 401 unauthorized fault document.
// Test Case ID: HTP-01
func TestHandlers_Authenticate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := router.do(http.MethodPost, "/v2.0/tokens", "",
		`{"auth": {"passwordCredentials": {"username": "root", "password": "wrong"}}}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = router.do(http.MethodPost, "/v2.0/tokens", "",
		`{"auth": {"passwordCredentials": {"username": "root", "password": "bootstrap-pass"}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access"`)
}

// TestPurpose: Validates the tenant CRUD cycle over HTTP, including status codes and fault rendering.
// Scope: Integration Test (in-process store)
// Expected: 201 on create, 200 on get/update, 204 on delete, 404 itemNotFound after delete, 409 conflict on duplicate name.
// Test Case ID: HTP-02
func TestHandlers_TenantCRUD(t *testing.T) {
	router, adminToken := newTestRouter(t)

	rec := router.do(http.MethodPost, "/v2.0/tenants", adminToken,
		`{"tenant": {"name": "acme", "description": "the acme tenant", "enabled": true}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Tenant struct {
			ID string `json:"id"`
		} `json:"tenant"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	tenantID := created.Tenant.ID
	require.NotEmpty(t, tenantID)

	rec = router.do(http.MethodPost, "/v2.0/tenants", adminToken, `{"tenant": {"name": "acme"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")

	rec = router.do(http.MethodGet, "/v2.0/tenants/"+tenantID, adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = router.do(http.MethodGet, "/v2.0/tenants?name=acme", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), tenantID)

	rec = router.do(http.MethodPut, "/v2.0/tenants/"+tenantID, adminToken,
		`{"tenant": {"description": "renovated"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "renovated")

	rec = router.do(http.MethodDelete, "/v2.0/tenants/"+tenantID, adminToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = router.do(http.MethodGet, "/v2.0/tenants/"+tenantID, adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "itemNotFound")
}

// TestPurpose: Validates that privileged routes reject callers without a valid admin token.
// Scope: Integration Test (in-process store)
// Security: Authorization (CWE-862)
// Expected: Requests with a missing or unprivileged token get a 401 fault document; the header name is X-Auth-Token.
// Test Case ID: HTP-03
func TestHandlers_AdminRequired(t *testing.T) {
	router, adminToken := newTestRouter(t)

	rec := router.do(http.MethodGet, "/v2.0/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A valid but unprivileged token must be rejected the same way.
	rec = router.do(http.MethodPost, "/v2.0/users", adminToken,
		`{"user": {"name": "joe", "password": "joes-password", "enabled": true}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = router.do(http.MethodPost, "/v2.0/tokens", "",
		`{"auth": {"passwordCredentials": {"username": "joe", "password": "joes-password"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var access struct {
		Access struct {
			Token struct {
				ID string `json:"id"`
			} `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &access))

	rec = router.do(http.MethodGet, "/v2.0/users", access.Access.Token.ID, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates token lifecycle routes: validate, HEAD check, revoke, and post-revoke classification.
// Scope: Integration Test (in-process store)
// Security: Session management (CWE-613)
// Expected: GET returns the access document, HEAD returns 204, DELETE returns 204, and a revoked token then checks as 404.
// Test Case ID: HTP-04
func TestHandlers_TokenLifecycle(t *testing.T) {
	router, adminToken := newTestRouter(t)

	rec := router.do(http.MethodPost, "/v2.0/users", adminToken,
		`{"user": {"name": "joe", "password": "joes-password", "enabled": true}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = router.do(http.MethodPost, "/v2.0/tokens", "",
		`{"auth": {"passwordCredentials": {"username": "joe", "password": "joes-password"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var access struct {
		Access struct {
			Token struct {
				ID string `json:"id"`
			} `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &access))
	subject := access.Access.Token.ID

	rec = router.do(http.MethodGet, "/v2.0/tokens/"+subject, adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user"`)

	rec = router.do(http.MethodHead, "/v2.0/tokens/"+subject, adminToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = router.do(http.MethodDelete, "/v2.0/tokens/"+subject, adminToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = router.do(http.MethodHead, "/v2.0/tokens/"+subject, adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestPurpose: Validates XML content negotiation on the HTTP surface.
// Scope: Integration Test (in-process store)
// Expected: An XML Accept header yields an application/xml body with the identity namespace.
// Test Case ID: HTP-05
func TestHandlers_XMLNegotiation(t *testing.T) {
	router, adminToken := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v2.0/tenants", nil)
	req.Header.Set("X-Auth-Token", adminToken)
	req.Header.Set("Accept", "application/xml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "http://docs.openstack.org/identity/api/v2.0")
}

// TestPurpose: Validates the service router exposes only authentication and tenant discovery.
// Scope: Integration Test (in-process store)
// Expected: POST /tokens and GET /tenants are served; admin routes are absent (404).
// Test Case ID: HTP-06
func TestHandlers_ServiceRouterSurface(t *testing.T) {
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
	})
	require.NoError(t, err)

	router := NewServiceRouter(NewHandler(svc), NewRateLimiter(100, 100))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2.0/users", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2.0/tenants", nil))
	// Reachable but unauthorized without a token.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates marker pagination and link rendering over the user collection.
// Scope: Integration Test (in-process store)
// Expected: The first page carries a next link only, the middle page both, and following next walks every user exactly once.
// Test Case ID: HTP-07
func TestHandlers_UserPagination(t *testing.T) {
	router, adminToken := newTestRouter(t)

	for i := 0; i < 7; i++ {
		rec := router.do(http.MethodPost, "/v2.0/users", adminToken,
			fmt.Sprintf(`{"user": {"name": "user-%d", "enabled": true}}`, i))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	seen := map[string]bool{}
	path := "/v2.0/users?limit=3"
	for hops := 0; hops < 10; hops++ {
		rec := router.do(http.MethodGet, path, adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var page struct {
			Users []struct {
				ID string `json:"id"`
			} `json:"users"`
			Links []struct {
				Rel  string `json:"rel"`
				Href string `json:"href"`
			} `json:"users_links"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		for _, u := range page.Users {
			assert.False(t, seen[u.ID], "user %s appeared on two pages", u.ID)
			seen[u.ID] = true
		}
		next := ""
		for _, l := range page.Links {
			if l.Rel == "next" {
				next = l.Href
			}
		}
		if next == "" {
			break
		}
		path = next
	}
	// 7 created users plus the seeded administrator.
	assert.Len(t, seen, 8)
}
