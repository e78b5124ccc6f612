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

// ListServices pages services, or looks one up when ?name= is present
// @Summary List services
// @Tags Services
// @Produce json,xml
// @Security XAuthToken
// @Param name query string false "Lookup by name instead of paging"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /OS-KSADM/services [get]
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		svc, err := h.identity.GetServiceByName(r.Context(), authToken(r), name)
		if err != nil {
			respondFault(w, r, err)
			return
		}
		respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
			return wire.MarshalService(svc, f)
		})
		return
	}

	marker, limit := pageParams(r)
	services, prev, next, err := h.identity.ListServices(r.Context(), authToken(r), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalServices(services, links, f)
	})
}

// CreateService registers a service in the catalog
// @Summary Create service
// @Tags Services
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /OS-KSADM/services [post]
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	svc, err := wire.UnmarshalService(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	created, err := h.identity.CreateService(r.Context(), authToken(r), svc)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalService(created, f)
	})
}

// GetService fetches a service by id
// @Summary Get service
// @Tags Services
// @Produce json,xml
// @Security XAuthToken
// @Param serviceID path string true "Service ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /OS-KSADM/services/{serviceID} [get]
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.identity.GetService(r.Context(), authToken(r), chi.URLParam(r, "serviceID"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalService(svc, f)
	})
}

// DeleteService deletes a service and cascades to its templates,
// endpoints, and bound roles
// @Summary Delete service
// @Tags Services
// @Security XAuthToken
// @Param serviceID path string true "Service ID"
// @Success 204
// @Failure 401 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /OS-KSADM/services/{serviceID} [delete]
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteService(r.Context(), authToken(r), chi.URLParam(r, "serviceID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
