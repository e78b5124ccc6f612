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

	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/wire"
)

// ListUsers pages users, or looks one up when ?name= is present
// @Summary List users
// @Tags Users
// @Produce json,xml
// @Security XAuthToken
// @Param name query string false "Lookup by name instead of paging"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		u, err := h.identity.GetUserByName(r.Context(), authToken(r), name)
		if err != nil {
			respondFault(w, r, err)
			return
		}
		respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
			return wire.MarshalUser(u, f)
		})
		return
	}

	marker, limit := pageParams(r)
	users, prev, next, err := h.identity.ListUsers(r.Context(), authToken(r), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalUsers(users, links, f)
	})
}

// CreateUser creates a user, optionally with an initial password
// @Summary Create user
// @Tags Users
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalUser(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	created, err := h.identity.CreateUser(r.Context(), authToken(r), parsed.User, parsed.Password)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalUser(created, f)
	})
}

// GetUser fetches a user by id
// @Summary Get user
// @Tags Users
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.identity.GetUser(r.Context(), authToken(r), chi.URLParam(r, "userID"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalUser(u, f)
	})
}

// UpdateUser applies a patch document to a user
// @Summary Update user
// @Tags Users
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalUser(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	updated, err := h.identity.UpdateUser(r.Context(), authToken(r), chi.URLParam(r, "userID"), parsed.User)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalUser(updated, f)
	})
}

// DeleteUser deletes a user and detaches its grants, credentials, tokens
// @Summary Delete user
// @Tags Users
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /users/{userID} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteUser(r.Context(), authToken(r), chi.URLParam(r, "userID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetUserPassword replaces a user's password
// @Summary Set user password
// @Tags Users
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/password [put]
func (h *Handler) SetUserPassword(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalUser(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	userID := chi.URLParam(r, "userID")
	if err := h.identity.SetUserPassword(r.Context(), authToken(r), userID, parsed.Password); err != nil {
		respondFault(w, r, err)
		return
	}
	h.respondUser(w, r, userID)
}

// SetUserEnabled flips a user's enabled flag
// @Summary Enable or disable user
// @Tags Users
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/enabled [put]
func (h *Handler) SetUserEnabled(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalUser(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	userID := chi.URLParam(r, "userID")
	if err := h.identity.SetUserEnabled(r.Context(), authToken(r), userID, parsed.User.Enabled); err != nil {
		respondFault(w, r, err)
		return
	}
	h.respondUser(w, r, userID)
}

// SetUserTenant moves a user to a tenant, or detaches it when the
// document names none
// @Summary Set user tenant
// @Tags Users
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/tenant [put]
func (h *Handler) SetUserTenant(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalUser(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	userID := chi.URLParam(r, "userID")
	if err := h.identity.UpdateUserTenant(r.Context(), authToken(r), userID, parsed.User.TenantID); err != nil {
		respondFault(w, r, err)
		return
	}
	h.respondUser(w, r, userID)
}

// ListUserRoles pages the roles a user holds
// @Summary List user roles
// @Tags Users
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/roles [get]
func (h *Handler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	marker, limit := pageParams(r)
	roles, prev, next, err := h.identity.ListUserRoles(r.Context(),
		authToken(r), chi.URLParam(r, "userID"), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalRoles(roles, links, f)
	})
}

// GrantRole grants a role to a user, globally or on a tenant
// @Summary Grant role
// @Tags Users
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Param roleID path string true "Role ID"
// @Success 201 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /users/{userID}/roles/OS-KSADM/{roleID} [put]
func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	grant, err := h.identity.AddRoleToUser(r.Context(), authToken(r),
		chi.URLParam(r, "userID"), chi.URLParam(r, "roleID"), grantScope(r))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalRole(&role.Role{ID: grant.RoleID, Name: grant.RoleName}, f)
	})
}

// RevokeRole removes a role grant from a user
// @Summary Revoke role
// @Tags Users
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Param roleID path string true "Role ID"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/roles/OS-KSADM/{roleID} [delete]
func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	err := h.identity.RemoveRoleFromUser(r.Context(), authToken(r),
		chi.URLParam(r, "userID"), chi.URLParam(r, "roleID"), grantScope(r))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// grantScope reads the optional tenant segment of grant routes.
func grantScope(r *http.Request) *string {
	if tid := chi.URLParam(r, "tenantID"); tid != "" {
		return &tid
	}
	return nil
}

// respondUser renders the user named in the route, used by the PUT
// sub-resource mutations that return the updated user.
func (h *Handler) respondUser(w http.ResponseWriter, r *http.Request, userID string) {
	u, err := h.identity.GetUser(r.Context(), authToken(r), userID)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalUser(u, f)
	})
}
