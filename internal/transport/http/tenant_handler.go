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

	"github.com/keygate/keygate/internal/wire"
)

// ListTenants pages tenants, or looks one up when ?name= is present.
// Admin callers see every tenant; other valid tokens see their own.
// @Summary List tenants
// @Tags Tenants
// @Produce json,xml
// @Security XAuthToken
// @Param name query string false "Lookup by name instead of paging"
// @Param marker query string false "Paging marker"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /tenants [get]
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		t, err := h.identity.GetTenantByName(r.Context(), authToken(r), name)
		if err != nil {
			respondFault(w, r, err)
			return
		}
		respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
			return wire.MarshalTenant(t, f)
		})
		return
	}

	marker, limit := pageParams(r)
	tenants, prev, next, err := h.identity.ListTenants(r.Context(), authToken(r), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalTenants(tenants, links, f)
	})
}

// CreateTenant creates a tenant
// @Summary Create tenant
// @Tags Tenants
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /tenants [post]
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	t, err := wire.UnmarshalTenant(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	created, err := h.identity.CreateTenant(r.Context(), authToken(r), t)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalTenant(created, f)
	})
}

// GetTenant fetches a tenant by id
// @Summary Get tenant
// @Tags Tenants
// @Produce json,xml
// @Security XAuthToken
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /tenants/{tenantID} [get]
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.identity.GetTenant(r.Context(), authToken(r), chi.URLParam(r, "tenantID"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalTenant(t, f)
	})
}

// UpdateTenant applies a patch document to a tenant
// @Summary Update tenant
// @Tags Tenants
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /tenants/{tenantID} [put]
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	patch, err := wire.UnmarshalTenant(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	updated, err := h.identity.UpdateTenant(r.Context(), authToken(r), chi.URLParam(r, "tenantID"), patch)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalTenant(updated, f)
	})
}

// DeleteTenant deletes an empty tenant
// @Summary Delete tenant
// @Tags Tenants
// @Security XAuthToken
// @Param tenantID path string true "Tenant ID"
// @Success 204
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /tenants/{tenantID} [delete]
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteTenant(r.Context(), authToken(r), chi.URLParam(r, "tenantID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTenantUsers pages a tenant's users, optionally filtered by role
// @Summary List tenant users
// @Tags Tenants
// @Produce json,xml
// @Security XAuthToken
// @Param tenantID path string true "Tenant ID"
// @Param roleId query string false "Only users holding this role on the tenant"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /tenants/{tenantID}/users [get]
func (h *Handler) ListTenantUsers(w http.ResponseWriter, r *http.Request) {
	marker, limit := pageParams(r)
	users, prev, next, err := h.identity.ListTenantUsers(r.Context(),
		authToken(r), chi.URLParam(r, "tenantID"), r.URL.Query().Get("roleId"), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalUsers(users, links, f)
	})
}

// ListTenantEndpoints pages a tenant's endpoint bindings
// @Summary List tenant endpoints
// @Tags Catalog
// @Produce json,xml
// @Security XAuthToken
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /tenants/{tenantID}/OS-KSCATALOG/endpoints [get]
func (h *Handler) ListTenantEndpoints(w http.ResponseWriter, r *http.Request) {
	marker, limit := pageParams(r)
	eps, prev, next, err := h.identity.ListTenantEndpoints(r.Context(),
		authToken(r), chi.URLParam(r, "tenantID"), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEndpoints(eps, links, f)
	})
}

// AddTenantEndpoint binds an endpoint template to a tenant
// @Summary Bind endpoint to tenant
// @Tags Catalog
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param tenantID path string true "Tenant ID"
// @Success 201 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /tenants/{tenantID}/OS-KSCATALOG/endpoints [post]
func (h *Handler) AddTenantEndpoint(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	templateID, err := wire.UnmarshalEndpointRef(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	ep, err := h.identity.AddEndpointToTenant(r.Context(), authToken(r), chi.URLParam(r, "tenantID"), templateID)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEndpoint(ep, f)
	})
}

// RemoveTenantEndpoint unbinds an endpoint from a tenant
// @Summary Unbind endpoint from tenant
// @Tags Catalog
// @Security XAuthToken
// @Param tenantID path string true "Tenant ID"
// @Param endpointID path string true "Endpoint ID"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /tenants/{tenantID}/OS-KSCATALOG/endpoints/{endpointID} [delete]
func (h *Handler) RemoveTenantEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.RemoveEndpointFromTenant(r.Context(), authToken(r), chi.URLParam(r, "endpointID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
