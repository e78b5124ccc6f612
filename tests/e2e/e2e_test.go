//go:build e2e

// Package e2e exercises a running keygate deployment over the wire.
//
// Test Execution:
//
//	docker compose up -d
//	go test -tags e2e -v ./tests/e2e/...
//
// The admin credentials must match the KEYGATE_BOOTSTRAP_ADMIN_USER and
// KEYGATE_BOOTSTRAP_ADMIN_PASSWORD the server was started with.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminBase   = getEnv("KEYGATE_ADMIN_URL", "http://127.0.0.1:35357") + "/v2.0"
	serviceBase = getEnv("KEYGATE_SERVICE_URL", "http://127.0.0.1:5000") + "/v2.0"
	adminUser   = getEnv("KEYGATE_E2E_ADMIN_USER", "root")
	adminPass   = getEnv("KEYGATE_E2E_ADMIN_PASSWORD", "bootstrap-pass")
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// client is a thin wrapper carrying the X-Auth-Token header.
type client struct {
	httpClient *http.Client
	token      string
}

func newClient(token string) *client {
	return &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
	}
}

func (c *client) do(method, url string, body any) (*http.Response, map[string]any, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	doc := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return resp, nil, fmt.Errorf("decode %s %s response: %w: %s", method, url, err, raw)
		}
	}
	return resp, doc, nil
}

// authenticate posts password credentials and returns the token id.
func authenticate(t *testing.T, base, username, password, tenantID string) string {
	t.Helper()
	creds := map[string]any{
		"passwordCredentials": map[string]any{"username": username, "password": password},
	}
	if tenantID != "" {
		creds["tenantId"] = tenantID
	}
	resp, doc, err := newClient("").do("POST", base+"/tokens", map[string]any{"auth": creds})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "authenticate: %v", doc)

	access := doc["access"].(map[string]any)
	tok := access["token"].(map[string]any)
	return tok["id"].(string)
}

func TestE2E_Workflows(t *testing.T) {
	// Probe the deployment before running anything.
	probe, err := http.Get(getEnv("KEYGATE_ADMIN_URL", "http://127.0.0.1:35357") + "/health")
	if err != nil {
		t.Skipf("Skipping e2e: keygate not reachable: %v", err)
	}
	probe.Body.Close()

	adminToken := authenticate(t, adminBase, adminUser, adminPass, "")
	admin := newClient(adminToken)

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	var (
		tenantID string
		userID   string
		roleID   string
	)
	userName := "e2e-user-" + suffix
	userPass := "e2e-pass-" + suffix

	// 1. Admin provisioning flow
	t.Run("AdminProvisioning", func(t *testing.T) {
		resp, doc, err := admin.do("POST", adminBase+"/tenants", map[string]any{
			"tenant": map[string]any{"name": "e2e-tenant-" + suffix, "enabled": true},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create tenant: %v", doc)
		tenantID = doc["tenant"].(map[string]any)["id"].(string)

		resp, doc, err = admin.do("POST", adminBase+"/users", map[string]any{
			"user": map[string]any{
				"name":     userName,
				"password": userPass,
				"enabled":  true,
				"tenantId": tenantID,
			},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create user: %v", doc)
		userID = doc["user"].(map[string]any)["id"].(string)

		resp, doc, err = admin.do("POST", adminBase+"/OS-KSADM/roles", map[string]any{
			"role": map[string]any{"name": "e2e-role-" + suffix},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create role: %v", doc)
		roleID = doc["role"].(map[string]any)["id"].(string)

		resp, _, err = admin.do("PUT",
			fmt.Sprintf("%s/users/%s/roles/OS-KSADM/%s/tenant/%s", adminBase, userID, roleID, tenantID), nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	// 2. Token lifecycle over the admin endpoint
	t.Run("TokenLifecycle", func(t *testing.T) {
		require.NotEmpty(t, tenantID, "provisioning must run first")

		userToken := authenticate(t, adminBase, userName, userPass, tenantID)

		// The admin validates the user's token against the matching scope.
		resp, doc, err := admin.do("GET",
			fmt.Sprintf("%s/tokens/%s?belongsTo=%s", adminBase, userToken, tenantID), nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "validate: %v", doc)
		access := doc["access"].(map[string]any)
		assert.Equal(t, userName, access["user"].(map[string]any)["name"])

		// The user's own token does not confer validation authority.
		resp, _, err = newClient(userToken).do("GET", adminBase+"/tokens/"+userToken, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
			"plain users must not validate tokens")

		// Revocation takes effect immediately.
		resp, _, err = admin.do("DELETE", adminBase+"/tokens/"+userToken, nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _, err = admin.do("GET", adminBase+"/tokens/"+userToken, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
			"revoked token must fail validation")
	})

	// 3. Service endpoint carries authentication and tenant discovery only
	t.Run("ServiceEndpoint", func(t *testing.T) {
		require.NotEmpty(t, tenantID, "provisioning must run first")

		userToken := authenticate(t, serviceBase, userName, userPass, tenantID)

		resp, doc, err := newClient(userToken).do("GET", serviceBase+"/tenants", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "discover tenants: %v", doc)
		found := false
		for _, item := range doc["tenants"].([]any) {
			if item.(map[string]any)["id"] == tenantID {
				found = true
			}
		}
		assert.True(t, found, "the caller's tenant must be discoverable")

		// The CRUD surface is not mounted on the service endpoint.
		resp, _, err = newClient(userToken).do("GET", serviceBase+"/users", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	// 4. Cleanup
	t.Run("Cleanup", func(t *testing.T) {
		if userID != "" {
			resp, _, err := admin.do("DELETE", adminBase+"/users/"+userID, nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		}
		if roleID != "" {
			resp, _, err := admin.do("DELETE", adminBase+"/OS-KSADM/roles/"+roleID, nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		}
		if tenantID != "" {
			resp, _, err := admin.do("DELETE", adminBase+"/tenants/"+tenantID, nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		}
	})
}
