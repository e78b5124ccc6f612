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
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/wire"
)

// ListEndpointTemplates pages endpoint templates, optionally filtered by
// service
// @Summary List endpoint templates
// @Tags Catalog
// @Produce json,xml
// @Security XAuthToken
// @Param serviceId query string false "Only templates of this service"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /OS-KSCATALOG/endpointTemplates [get]
func (h *Handler) ListEndpointTemplates(w http.ResponseWriter, r *http.Request) {
	marker, limit := pageParams(r)
	templates, prev, next, err := h.identity.ListEndpointTemplates(r.Context(),
		authToken(r), r.URL.Query().Get("serviceId"), marker, limit)
	if err != nil {
		respondFault(w, r, err)
		return
	}

	views, err := h.templateViews(r.Context(), authToken(r), templates)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	links := wire.PageLinks(r.URL.Path, prev, next, h.identity.PageLimit(limit))
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEndpointTemplates(views, links, f)
	})
}

// CreateEndpointTemplate creates a template; the service is named by its
// (name, type) pair
// @Summary Create endpoint template
// @Tags Catalog
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Success 201 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /OS-KSCATALOG/endpointTemplates [post]
func (h *Handler) CreateEndpointTemplate(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalEndpointTemplate(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	created, err := h.identity.CreateEndpointTemplate(r.Context(), authToken(r),
		parsed.ServiceName, parsed.ServiceType, parsed.Template)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusCreated, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEndpointTemplate(wire.TemplateView{
			Template:    created,
			ServiceName: parsed.ServiceName,
			ServiceType: parsed.ServiceType,
		}, f)
	})
}

// GetEndpointTemplate fetches a template by id
// @Summary Get endpoint template
// @Tags Catalog
// @Produce json,xml
// @Security XAuthToken
// @Param templateID path string true "Endpoint template ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /OS-KSCATALOG/endpointTemplates/{templateID} [get]
func (h *Handler) GetEndpointTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.identity.GetEndpointTemplate(r.Context(), authToken(r), chi.URLParam(r, "templateID"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	views, err := h.templateViews(r.Context(), authToken(r), []*catalog.EndpointTemplate{tpl})
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEndpointTemplate(views[0], f)
	})
}

// UpdateEndpointTemplate applies a patch document to a template
// @Summary Update endpoint template
// @Tags Catalog
// @Accept json,xml
// @Produce json,xml
// @Security XAuthToken
// @Param templateID path string true "Endpoint template ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /OS-KSCATALOG/endpointTemplates/{templateID} [put]
func (h *Handler) UpdateEndpointTemplate(w http.ResponseWriter, r *http.Request) {
	body, f, err := readBody(r)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	parsed, err := wire.UnmarshalEndpointTemplate(body, f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	updated, err := h.identity.UpdateEndpointTemplate(r.Context(), authToken(r),
		chi.URLParam(r, "templateID"), parsed.ServiceName, parsed.ServiceType, parsed.Template)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	views, err := h.templateViews(r.Context(), authToken(r), []*catalog.EndpointTemplate{updated})
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respondDoc(w, r, http.StatusOK, func(f wire.Format) ([]byte, error) {
		return wire.MarshalEndpointTemplate(views[0], f)
	})
}

// DeleteEndpointTemplate deletes a template and its tenant bindings
// @Summary Delete endpoint template
// @Tags Catalog
// @Security XAuthToken
// @Param templateID path string true "Endpoint template ID"
// @Success 204
// @Failure 404 {object} map[string]any
// @Router /OS-KSCATALOG/endpointTemplates/{templateID} [delete]
func (h *Handler) DeleteEndpointTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteEndpointTemplate(r.Context(), authToken(r), chi.URLParam(r, "templateID")); err != nil {
		respondFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// templateViews pairs templates with their services' coordinates, resolving
// each distinct service once.
func (h *Handler) templateViews(ctx context.Context, token string, templates []*catalog.EndpointTemplate) ([]wire.TemplateView, error) {
	services := make(map[string]*catalog.Service)
	views := make([]wire.TemplateView, 0, len(templates))
	for _, tpl := range templates {
		svc, ok := services[tpl.ServiceID]
		if !ok {
			var err error
			svc, err = h.identity.GetService(ctx, token, tpl.ServiceID)
			if err != nil {
				return nil, err
			}
			services[tpl.ServiceID] = svc
		}
		views = append(views, wire.TemplateView{
			Template:    tpl,
			ServiceName: svc.Name,
			ServiceType: svc.Type,
		})
	}
	return views, nil
}
