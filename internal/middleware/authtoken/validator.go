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

package authtoken

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/identity"
)

// maxValidationBody caps how much of a validation response is read.
const maxValidationBody = 1 << 20

// Identity is the verified claim set the middleware stamps onto the
// downstream request.
type Identity struct {
	UserID       string
	UserName     string
	TenantID     string
	TenantName   string
	Roles        []string
	Capabilities []string
}

// TokenValidator verifies a presented token claim. Implementations return
// an unauthorized fault for any claim the identity service rejects.
type TokenValidator interface {
	Validate(ctx context.Context, tokenID string) (*Identity, error)
}

// EmbeddedValidator validates claims with in-process calls into the
// identity core. Validation is a privileged operation, so the validator
// carries its own admin token.
type EmbeddedValidator struct {
	Service    *identity.Service
	AdminToken string
}

func (v *EmbeddedValidator) Validate(ctx context.Context, tokenID string) (*Identity, error) {
	data, err := v.Service.ValidateToken(ctx, v.AdminToken, tokenID, "")
	if err != nil {
		return nil, err
	}

	ident := &Identity{
		UserID:   data.User.ID,
		UserName: data.User.Name,
	}
	if data.Tenant != nil {
		ident.TenantID = data.Tenant.ID
		ident.TenantName = data.Tenant.Name
	}
	for _, g := range data.Roles {
		ident.Roles = append(ident.Roles, g.RoleName)
	}
	return ident, nil
}

// RemoteValidatorConfig configures a validator that talks to a remote
// identity service over HTTP(S).
type RemoteValidatorConfig struct {
	// AuthURL is the identity service base, e.g. "https://auth:35357".
	AuthURL string

	// AdminToken authenticates the validation calls themselves.
	AdminToken string

	// CertFile and KeyFile hold optional client TLS material.
	CertFile string
	KeyFile  string

	// Timeout bounds each validation call. Defaults to 30s.
	Timeout time.Duration

	// CacheTTL enables a short-lived validation cache when positive.
	// Cached entries delay revocation visibility by up to the TTL, so
	// the cache is off unless an operator opts in.
	CacheTTL time.Duration
}

// RemoteValidator verifies claims with GET /v2.0/tokens/{id} against a
// remote identity service, plus a best-effort endpoints fetch for
// compute capabilities.
type RemoteValidator struct {
	client     *http.Client
	authURL    string
	adminToken string
	cacheTTL   time.Duration
	cache      *ristretto.Cache[string, *Identity]
}

// NewRemoteValidator builds the long-lived client pool shared by all
// requests. Call Close when done to release the cache.
func NewRemoteValidator(cfg RemoteValidatorConfig) (*RemoteValidator, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		transport.TLSClientConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	v := &RemoteValidator{
		client: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   timeout,
		},
		authURL:    strings.TrimRight(cfg.AuthURL, "/"),
		adminToken: cfg.AdminToken,
		cacheTTL:   cfg.CacheTTL,
	}

	if cfg.CacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, *Identity]{
			NumCounters: 10_000,
			MaxCost:     1 << 20,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("building validation cache: %w", err)
		}
		v.cache = cache
	}
	return v, nil
}

// Close releases the validation cache, if one was configured.
func (v *RemoteValidator) Close() {
	if v.cache != nil {
		v.cache.Close()
	}
}

func (v *RemoteValidator) Validate(ctx context.Context, tokenID string) (*Identity, error) {
	if v.cache != nil {
		if ident, ok := v.cache.Get(tokenID); ok {
			return ident, nil
		}
	}

	body, err := v.get(ctx, "/v2.0/tokens/"+url.PathEscape(tokenID))
	if err != nil {
		return nil, err
	}

	var doc struct {
		Access struct {
			Token struct {
				Tenant *struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"tenant"`
			} `json:"token"`
			User struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Roles []struct {
					Name string `json:"name"`
				} `json:"roles"`
			} `json:"user"`
		} `json:"access"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fault.Unauthorized("malformed validation response").WithCause(err)
	}

	ident := &Identity{
		UserID:   doc.Access.User.ID,
		UserName: doc.Access.User.Name,
	}
	if doc.Access.Token.Tenant != nil {
		ident.TenantID = doc.Access.Token.Tenant.ID
		ident.TenantName = doc.Access.Token.Tenant.Name
	}
	for _, r := range doc.Access.User.Roles {
		ident.Roles = append(ident.Roles, r.Name)
	}
	ident.Capabilities = v.fetchCapabilities(ctx, tokenID)

	if v.cache != nil {
		v.cache.SetWithTTL(tokenID, ident, 1, v.cacheTTL)
	}
	return ident, nil
}

// fetchCapabilities pulls the token's endpoint catalog and extracts the
// capability list carried by the first compute entry, when the identity
// service publishes one. Failures here never fail validation.
func (v *RemoteValidator) fetchCapabilities(ctx context.Context, tokenID string) []string {
	body, err := v.get(ctx, "/v2.0/tokens/"+url.PathEscape(tokenID)+"/endpoints")
	if err != nil {
		return nil
	}

	var doc struct {
		Endpoints []struct {
			Type         string   `json:"type"`
			Capabilities []string `json:"RAX-RBAC-capabilities"`
		} `json:"endpoints"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}
	for _, ep := range doc.Endpoints {
		if ep.Type == "compute" && len(ep.Capabilities) > 0 {
			return ep.Capabilities
		}
	}
	return nil
}

func (v *RemoteValidator) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.authURL+path, nil)
	if err != nil {
		return nil, fault.Internal("building validation request").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Auth-Token", v.adminToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fault.Unauthorized("identity service unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fault.Unauthorized("token rejected by identity service")
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxValidationBody))
	if err != nil {
		return nil, fault.Unauthorized("reading validation response").WithCause(err)
	}
	return body, nil
}
