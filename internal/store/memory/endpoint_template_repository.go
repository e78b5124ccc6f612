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

package memory

import (
	"context"

	"github.com/keygate/keygate/internal/catalog"
)

type endpointTemplateRepository struct {
	s *Store
}

func cloneTemplate(t *catalog.EndpointTemplate) *catalog.EndpointTemplate {
	c := *t
	return &c
}

func (r *endpointTemplateRepository) Create(ctx context.Context, t *catalog.EndpointTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (r *endpointTemplateRepository) GetByID(ctx context.Context, id string) (*catalog.EndpointTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.templates[id]
	if !ok {
		return nil, catalog.ErrTemplateNotFound
	}
	return cloneTemplate(t), nil
}

func (r *endpointTemplateRepository) Update(ctx context.Context, t *catalog.EndpointTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.templates[t.ID]; !ok {
		return catalog.ErrTemplateNotFound
	}
	r.s.templates[t.ID] = cloneTemplate(t)
	return nil
}

// Delete removes the template and every binding that references it.
func (r *endpointTemplateRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.templates[id]; !ok {
		return catalog.ErrTemplateNotFound
	}
	for eid, e := range r.s.endpoints {
		if e.TemplateID == id {
			delete(r.s.endpoints, eid)
		}
	}
	delete(r.s.templates, id)
	return nil
}

func (r *endpointTemplateRepository) GetPage(ctx context.Context, marker string, limit int) ([]*catalog.EndpointTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.allLocked(""), templateID, marker, limit), nil
}

func (r *endpointTemplateRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.allLocked(""), templateID, marker, limit)
	return prev, next, nil
}

func (r *endpointTemplateRepository) GetByServicePage(ctx context.Context, serviceID, marker string, limit int) ([]*catalog.EndpointTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.allLocked(serviceID), templateID, marker, limit), nil
}

func (r *endpointTemplateRepository) GetByServicePageMarkers(ctx context.Context, serviceID, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.allLocked(serviceID), templateID, marker, limit)
	return prev, next, nil
}

func (r *endpointTemplateRepository) Bind(ctx context.Context, e *catalog.Endpoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.endpoints {
		if existing.TenantID == e.TenantID && existing.TemplateID == e.TemplateID {
			return catalog.ErrEndpointAlreadyExists
		}
	}
	c := *e
	r.s.endpoints[e.ID] = &c
	return nil
}

func (r *endpointTemplateRepository) Unbind(ctx context.Context, endpointID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.endpoints[endpointID]; !ok {
		return catalog.ErrEndpointNotFound
	}
	delete(r.s.endpoints, endpointID)
	return nil
}

func (r *endpointTemplateRepository) GetEndpointsForTenantPage(ctx context.Context, tenantID, marker string, limit int) ([]*catalog.TenantEndpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.boundLocked(tenantID), tenantEndpointID, marker, limit), nil
}

func (r *endpointTemplateRepository) GetEndpointsForTenantPageMarkers(ctx context.Context, tenantID, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.boundLocked(tenantID), tenantEndpointID, marker, limit)
	return prev, next, nil
}

func (r *endpointTemplateRepository) GetAllEndpointsForTenant(ctx context.Context, tenantID string) ([]*catalog.TenantEndpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.unionLocked(tenantID), nil
}

func (r *endpointTemplateRepository) GetAllEndpointsForTenantPage(ctx context.Context, tenantID, marker string, limit int) ([]*catalog.TenantEndpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.unionLocked(tenantID), tenantEndpointID, marker, limit), nil
}

func (r *endpointTemplateRepository) GetAllEndpointsForTenantPageMarkers(ctx context.Context, tenantID, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.unionLocked(tenantID), tenantEndpointID, marker, limit)
	return prev, next, nil
}

// allLocked returns templates, optionally narrowed to one service.
func (r *endpointTemplateRepository) allLocked(serviceID string) []*catalog.EndpointTemplate {
	var out []*catalog.EndpointTemplate
	for _, t := range r.s.templates {
		if serviceID != "" && t.ServiceID != serviceID {
			continue
		}
		out = append(out, cloneTemplate(t))
	}
	sortDesc(out, templateID)
	return out
}

// boundLocked denormalizes the tenant's bindings with their template and
// owning service. Rows carry the binding id.
func (r *endpointTemplateRepository) boundLocked(tenantID string) []*catalog.TenantEndpoint {
	var out []*catalog.TenantEndpoint
	for _, e := range r.s.endpoints {
		if e.TenantID != tenantID {
			continue
		}
		if row := r.rowLocked(e.ID, tenantID, e.TemplateID); row != nil {
			out = append(out, row)
		}
	}
	sortDesc(out, tenantEndpointID)
	return out
}

// unionLocked merges global templates with the tenant's bound ones, one
// row per template. Bound rows carry the binding id and win over a global
// duplicate; purely global rows carry the template id.
func (r *endpointTemplateRepository) unionLocked(tenantID string) []*catalog.TenantEndpoint {
	covered := make(map[string]bool)
	var out []*catalog.TenantEndpoint
	for _, e := range r.s.endpoints {
		if e.TenantID != tenantID {
			continue
		}
		if row := r.rowLocked(e.ID, tenantID, e.TemplateID); row != nil {
			covered[e.TemplateID] = true
			out = append(out, row)
		}
	}
	for _, t := range r.s.templates {
		if !t.IsGlobal || covered[t.ID] {
			continue
		}
		if row := r.rowLocked(t.ID, tenantID, t.ID); row != nil {
			out = append(out, row)
		}
	}
	sortDesc(out, tenantEndpointID)
	return out
}

// rowLocked joins one binding or global template with its service. Rows
// whose template or service is gone are dropped, as an inner join would.
func (r *endpointTemplateRepository) rowLocked(rowID, tenantID, templateID string) *catalog.TenantEndpoint {
	t, ok := r.s.templates[templateID]
	if !ok {
		return nil
	}
	svc, ok := r.s.services[t.ServiceID]
	if !ok {
		return nil
	}
	return &catalog.TenantEndpoint{
		ID:          rowID,
		TenantID:    tenantID,
		TemplateID:  t.ID,
		Region:      t.Region,
		ServiceName: svc.Name,
		ServiceType: svc.Type,
		PublicURL:   t.PublicURL,
		AdminURL:    t.AdminURL,
		InternalURL: t.InternalURL,
		VersionID:   t.VersionID,
		VersionList: t.VersionList,
		VersionInfo: t.VersionInfo,
	}
}

func templateID(t *catalog.EndpointTemplate) string     { return t.ID }
func tenantEndpointID(e *catalog.TenantEndpoint) string { return e.ID }
