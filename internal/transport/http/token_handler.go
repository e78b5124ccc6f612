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

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/wire"
)

// Authenticate issues or reuses a token
// @Summary Authenticate
// @Description Authenticates by password, existing token, or EC2 signature and returns an access document
// @Tags Tokens
// @Accept json,xml
// @Produce json,xml
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /tokens [post]
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	req, err := wire.UnmarshalAuthRequest(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}

	data, err := h.identity.Authenticate(r.Context(), req)
	if err != nil {
		respondFault(w, r, err)
		return
	}

	access := &wire.Access{
		Token:   data.Token,
		User:    data.User,
		Roles:   data.Roles,
		Catalog: data.Catalog,
	}
	if data.Tenant != nil {
		access.TenantName = data.Tenant.Name
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalAccess(access, f)
	})
}

// ValidateToken validates a token on behalf of another service
// @Summary Validate token
// @Description Returns the access document for a token, optionally scoped with belongsTo
// @Tags Tokens
// @Produce json,xml
// @Security XAuthToken
// @Param tokenID path string true "Token ID"
// @Param belongsTo query string false "Required tenant scope"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Router /tokens/{tokenID} [get]
func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	data, err := h.identity.ValidateToken(r.Context(),
		authToken(r), chi.URLParam(r, "tokenID"), r.URL.Query().Get("belongsTo"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalAccess(validateAccess(data), f)
	})
}

// CheckToken is the HEAD form of validation
// @Summary Check token
// @Description Lightweight token check; not-found classification hides token existence
// @Tags Tokens
// @Security XAuthToken
// @Param tokenID path string true "Token ID"
// @Param belongsTo query string false "Required tenant scope"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /tokens/{tokenID} [head]
func (h *Handler) CheckToken(w http.ResponseWriter, r *http.Request) {
	err := h.identity.CheckToken(r.Context(),
		authToken(r), chi.URLParam(r, "tokenID"), r.URL.Query().Get("belongsTo"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevokeToken deletes a token
// @Summary Revoke token
// @Tags Tokens
// @Security XAuthToken
// @Param tokenID path string true "Token ID"
// @Success 204
// @Failure 401 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /tokens/{tokenID} [delete]
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.RevokeToken(r.Context(), authToken(r), chi.URLParam(r, "tokenID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TokenEndpoints lists the endpoints of a token's scope tenant
// @Summary Token endpoints
// @Tags Tokens
// @Produce json,xml
// @Security XAuthToken
// @Param tokenID path string true "Token ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /tokens/{tokenID}/endpoints [get]
func (h *Handler) TokenEndpoints(w http.ResponseWriter, r *http.Request) {
	marker, limit := pageParams(r)
	eps, prev, next, err := h.identity.EndpointsForToken(r.Context(),
		authToken(r), chi.URLParam(r, "tokenID"), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEndpoints(eps, links, f)
	})
}

func validateAccess(data *identity.ValidateData) *wire.Access {
	access := &wire.Access{
		Token:             data.Token,
		User:              data.User,
		DefaultTenantName: data.DefaultTenantName,
		Roles:             data.Roles,
	}
	if data.Tenant != nil {
		access.TenantName = data.Tenant.Name
	}
	return access
}
