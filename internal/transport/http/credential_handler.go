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

// ListCredentials pages a user's credentials
// @Summary List user credentials
// @Tags Credentials
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/OS-KSADM/credentials [get]
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	marker, limit := pageParams(r)
	creds, prev, next, err := h.identity.ListUserCredentials(r.Context(),
		authToken(r), chi.URLParam(r, "userID"), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalCredentials(creds, links, f)
	})
}

// CreateCredentials attaches a credential of either kind to a user
// @Summary Create user credential
// @Tags Credentials
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /users/{userID}/OS-KSADM/credentials [post]
func (h *Handler) CreateCredentials(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalCredential(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	userID := chi.URLParam(r, "userID")

	if parsed.HasPass {
		if err := h.identity.CreatePasswordCredentials(r.Context(), authToken(r), userID, parsed.Username, parsed.Password); err != nil {
			respondFault(w, r, err)
			return
		}
		username, err := h.identity.GetPasswordCredentials(r.Context(), authToken(r), userID)
		if err != nil {
			respondFault(w, r, err)
			return
		}
		respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
			return wire.MarshalPasswordCredentials(username, f)
		})
		return
	}

	created, err := h.identity.CreateEC2Credentials(r.Context(), authToken(r), userID, parsed.EC2)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEC2Credential(created, f)
	})
}

// GetPasswordCredentials returns the username of the password credential
// @Summary Get password credentials
// @Tags Credentials
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/OS-KSADM/credentials/passwordCredentials [get]
func (h *Handler) GetPasswordCredentials(w http.ResponseWriter, r *http.Request) {
	username, err := h.identity.GetPasswordCredentials(r.Context(), authToken(r), chi.URLParam(r, "userID"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalPasswordCredentials(username, f)
	})
}

// UpdatePasswordCredentials replaces the password, optionally renaming
// @Summary Update password credentials
// @Tags Credentials
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /users/{userID}/OS-KSADM/credentials/passwordCredentials [put]
func (h *Handler) UpdatePasswordCredentials(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	username, password, err := wire.UnmarshalPasswordCredentials(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	userID := chi.URLParam(r, "userID")
	if err := h.identity.UpdatePasswordCredentials(r.Context(), authToken(r), userID, username, password); err != nil {
		respondFault(w, r, err)
		return
	}
	current, err := h.identity.GetPasswordCredentials(r.Context(), authToken(r), userID)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalPasswordCredentials(current, f)
	})
}

// DeletePasswordCredentials removes the password credential
// @Summary Delete password credentials
// @Tags Credentials
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/OS-KSADM/credentials/passwordCredentials [delete]
func (h *Handler) DeletePasswordCredentials(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeletePasswordCredentials(r.Context(), authToken(r), chi.URLParam(r, "userID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEC2Credentials fetches one EC2 credential by access key, secret
// withheld
// @Summary Get EC2 credentials
// @Tags Credentials
// @Produce json,xml
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Param accessKey path string true "Access key"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/OS-KSADM/credentials/ec2Credentials/{accessKey} [get]
func (h *Handler) GetEC2Credentials(w http.ResponseWriter, r *http.Request) {
	c, err := h.identity.GetEC2Credentials(r.Context(), authToken(r),
		chi.URLParam(r, "userID"), chi.URLParam(r, "accessKey"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEC2Credential(c, f)
	})
}

// DeleteEC2Credentials removes one EC2 credential by access key
// @Summary Delete EC2 credentials
// @Tags Credentials
// @Security XAuthToken
// @Param userID path string true "User ID"
// @Param accessKey path string true "Access key"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /users/{userID}/OS-KSADM/credentials/ec2Credentials/{accessKey} [delete]
func (h *Handler) DeleteEC2Credentials(w http.ResponseWriter, r *http.Request) {
	err := h.identity.DeleteEC2Credentials(r.Context(), authToken(r),
		chi.URLParam(r, "userID"), chi.URLParam(r, "accessKey"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
