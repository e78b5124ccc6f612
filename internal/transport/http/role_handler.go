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

// ListRoles pages roles, or looks one up when ?name= is present
// @Summary List roles
// @Tags Roles
// @Produce json,xml
// @Security XAuthToken
// @Param name query string false "Lookup by name instead of paging"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /OS-KSADM/roles [get]
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		role, err := h.identity.GetRoleByName(r.Context(), authToken(r), name)
		if err != nil {
			respondFault(w, r, err)
			return
		}
		respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
			return wire.MarshalRole(role, f)
		})
		return
	}

	marker, limit := pageParams(r)
	roles, prev, next, err := h.identity.ListRoles(r.Context(), authToken(r), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalRoles(roles, links, f)
	})
}

// CreateRole creates a role; service-bound names use the service:role form
// @Summary Create role
// @Tags Roles
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /OS-KSADM/roles [post]
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	role, err := wire.UnmarshalRole(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	created, err := h.identity.CreateRole(r.Context(), authToken(r), role)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalRole(created, f)
	})
}

// GetRole fetches a role by id
// @Summary Get role
// @Tags Roles
// @Produce json,xml
// @Security XAuthToken
// @Param roleID path string true "Role ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /OS-KSADM/roles/{roleID} [get]
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.identity.GetRole(r.Context(), authToken(r), chi.URLParam(r, "roleID"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalRole(role, f)
	})
}

// DeleteRole deletes a role and its grants
// @Summary Delete role
// @Tags Roles
// @Security XAuthToken
// @Param roleID path string true "Role ID"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /OS-KSADM/roles/{roleID} [delete]
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteRole(r.Context(), authToken(r), chi.URLParam(r, "roleID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
