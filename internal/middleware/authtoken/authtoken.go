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

// Package authtoken guards a protected service behind the identity API.
// It extracts the caller's token claim, validates it, and decorates the
// downstream request with the verified identity headers. Deployments
// either chain it in front of an in-process handler or point it at a
// remote service, in which case it acts as an authenticating proxy.
package authtoken

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/keygate/keygate/internal/observability/logger"
)

// Request headers the middleware owns. Inbound values are stripped before
// decoration so a client cannot smuggle identity claims past validation.
const (
	HeaderAuthToken    = "X-Auth-Token"
	HeaderStorageToken = "X-Storage-Token"

	HeaderIdentityStatus = "X-Identity-Status"
	HeaderAuthorization  = "X-Authorization"
	HeaderTenantID       = "X-Tenant-Id"
	HeaderTenantName     = "X-Tenant-Name"
	HeaderUserID         = "X-User-Id"
	HeaderUserName       = "X-User-Name"
	HeaderRoles          = "X-Roles"
	HeaderCapabilities   = "X-Capabilities"

	// Deprecated aliases kept for services that predate the split
	// id/name headers.
	HeaderTenantDeprecated = "X-Tenant"
	HeaderUserDeprecated   = "X-User"
	HeaderRoleDeprecated   = "X-Role"
)

// Identity status values stamped on the downstream request.
const (
	StatusConfirmed = "Confirmed"
	StatusInvalid   = "Invalid"
)

var identityHeaders = []string{
	HeaderIdentityStatus,
	HeaderAuthorization,
	HeaderTenantID,
	HeaderTenantName,
	HeaderUserID,
	HeaderUserName,
	HeaderRoles,
	HeaderCapabilities,
	HeaderTenantDeprecated,
	HeaderUserDeprecated,
	HeaderRoleDeprecated,
}

// Config carries the per-deployment settings. The validator itself is
// passed separately so embedded and remote deployments share one code
// path.
type Config struct {
	// AuthURI is advertised to rejected clients in the
	// WWW-Authenticate challenge.
	AuthURI string

	// DelayAuthDecision forwards unauthenticated requests downstream
	// with X-Identity-Status: Invalid instead of rejecting them,
	// leaving the final decision to the protected service.
	DelayAuthDecision bool

	// ServiceURL, when set, switches the middleware into proxy mode:
	// requests are forwarded to this base URL instead of the next
	// handler in the chain.
	ServiceURL string

	// ServicePass authenticates the proxy to the downstream service
	// as a basic credential. Only used in proxy mode.
	ServicePass string
}

// Middleware returns a chi-style middleware that authenticates requests
// with the given validator before handing them to next. In proxy mode
// next is still required by the signature but never invoked.
func Middleware(v TokenValidator, cfg Config) func(http.Handler) http.Handler {
	forward := newForwarder(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scrubIdentityHeaders(r)

			claim := r.Header.Get(HeaderAuthToken)
			if claim == "" {
				claim = r.Header.Get(HeaderStorageToken)
			}

			if claim == "" {
				if cfg.DelayAuthDecision {
					r.Header.Set(HeaderIdentityStatus, StatusInvalid)
					forward(next, w, r)
					return
				}
				challenge(w, cfg.AuthURI)
				return
			}

			ident, err := v.Validate(r.Context(), claim)
			if err != nil {
				if cfg.DelayAuthDecision {
					r.Header.Set(HeaderIdentityStatus, StatusInvalid)
					forward(next, w, r)
					return
				}
				slog.DebugContext(r.Context(), "token_claim_rejected",
					logger.Path(r.URL.Path),
					logger.Error(err),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			decorate(r, ident)
			forward(next, w, r)
		})
	}
}

// challenge rejects an unauthenticated client and points it at the
// identity service.
func challenge(w http.ResponseWriter, authURI string) {
	w.Header().Set("WWW-Authenticate", "Keystone uri='"+authURI+"'")
	http.Error(w, "Authentication required", http.StatusUnauthorized)
}

// scrubIdentityHeaders drops any inbound identity headers. Everything in
// the decoration set must originate here, never from the client.
func scrubIdentityHeaders(r *http.Request) {
	for _, h := range identityHeaders {
		r.Header.Del(h)
	}
}

// decorate stamps the verified identity onto the request headers.
func decorate(r *http.Request, ident *Identity) {
	roles := strings.Join(ident.Roles, ",")

	r.Header.Set(HeaderIdentityStatus, StatusConfirmed)
	r.Header.Set(HeaderAuthorization, "Proxy "+ident.UserName)
	r.Header.Set(HeaderUserID, ident.UserID)
	r.Header.Set(HeaderUserName, ident.UserName)
	r.Header.Set(HeaderRoles, roles)

	r.Header.Set(HeaderUserDeprecated, ident.UserID)
	r.Header.Set(HeaderRoleDeprecated, roles)

	if ident.TenantID != "" {
		r.Header.Set(HeaderTenantID, ident.TenantID)
		r.Header.Set(HeaderTenantDeprecated, ident.TenantID)
	}
	if ident.TenantName != "" {
		r.Header.Set(HeaderTenantName, ident.TenantName)
	}
	if len(ident.Capabilities) > 0 {
		r.Header.Set(HeaderCapabilities, strings.Join(ident.Capabilities, ","))
	}
}

// forwarder sends the processed request downstream, either to the next
// in-process handler or to a remote service.
type forwarder func(next http.Handler, w http.ResponseWriter, r *http.Request)

func newForwarder(cfg Config) forwarder {
	if cfg.ServiceURL == "" {
		return func(next http.Handler, w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}
	}

	serviceURL := strings.TrimRight(cfg.ServiceURL, "/")
	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	return func(_ http.Handler, w http.ResponseWriter, r *http.Request) {
		proxy(client, serviceURL, cfg, w, r)
	}
}

// proxy replays the request against the remote service and copies the
// response back. A 401 or 305 from downstream gains the identity
// challenge so the client knows where to authenticate.
func proxy(client *http.Client, serviceURL string, cfg Config, w http.ResponseWriter, r *http.Request) {
	out, err := http.NewRequestWithContext(r.Context(), r.Method, serviceURL+r.URL.RequestURI(), r.Body)
	if err != nil {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	copyProxyHeaders(out.Header, r.Header)
	if cfg.ServicePass != "" {
		out.Header.Set("Authorization", "Basic "+cfg.ServicePass)
	}

	resp, err := client.Do(out)
	if err != nil {
		slog.ErrorContext(r.Context(), "proxy_forward_failed",
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusUseProxy {
		w.Header().Set("WWW-Authenticate", "Keystone uri='"+cfg.AuthURI+"'")
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.ErrorContext(r.Context(), "proxy_copy_failed", logger.Error(err))
	}
}

// copyProxyHeaders forwards request headers minus the claim tokens. The
// downstream service trusts the decorated identity headers instead, and
// nothing credential-shaped crosses over.
func copyProxyHeaders(dst, src http.Header) {
	for k, vs := range src {
		if k == HeaderAuthToken || k == HeaderStorageToken {
			continue
		}
		dst[k] = append(dst[k], vs...)
	}
}
