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
	"maps"

	"github.com/keygate/keygate/internal/catalog"
)

type serviceRepository struct {
	s *Store
}

func cloneService(s *catalog.Service) *catalog.Service {
	c := *s
	c.Extra = maps.Clone(s.Extra)
	return &c
}

func (r *serviceRepository) Create(ctx context.Context, svc *catalog.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.services {
		if existing.Name == svc.Name && existing.Type == svc.Type {
			return catalog.ErrServiceAlreadyExists
		}
	}
	r.s.services[svc.ID] = cloneService(svc)
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*catalog.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	svc, ok := r.s.services[id]
	if !ok {
		return nil, catalog.ErrServiceNotFound
	}
	return cloneService(svc), nil
}

func (r *serviceRepository) GetByName(ctx context.Context, name string) (*catalog.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, svc := range r.s.services {
		if svc.Name == name {
			return cloneService(svc), nil
		}
	}
	return nil, catalog.ErrServiceNotFound
}

func (r *serviceRepository) GetByNameAndType(ctx context.Context, name, typ string) (*catalog.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, svc := range r.s.services {
		if svc.Name == name && svc.Type == typ {
			return cloneService(svc), nil
		}
	}
	return nil, catalog.ErrServiceNotFound
}

// Delete removes the service and everything it owns under one lock hold,
// mirroring the transactional delete of the postgres store.
func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.services[id]; !ok {
		return catalog.ErrServiceNotFound
	}
	for tid, tpl := range r.s.templates {
		if tpl.ServiceID != id {
			continue
		}
		for eid, e := range r.s.endpoints {
			if e.TemplateID == tid {
				delete(r.s.endpoints, eid)
			}
		}
		delete(r.s.templates, tid)
	}
	for rid, rl := range r.s.roles {
		if rl.ServiceID != id {
			continue
		}
		for gid, g := range r.s.grants {
			if g.RoleID == rid {
				delete(r.s.grants, gid)
			}
		}
		delete(r.s.roles, rid)
	}
	delete(r.s.services, id)
	return nil
}

func (r *serviceRepository) GetPage(ctx context.Context, marker string, limit int) ([]*catalog.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.allLocked(), serviceID, marker, limit), nil
}

func (r *serviceRepository) GetPageMarkers(ctx context.Context, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.allLocked(), serviceID, marker, limit)
	return prev, next, nil
}

func (r *serviceRepository) allLocked() []*catalog.Service {
	out := make([]*catalog.Service, 0, len(r.s.services))
	for _, svc := range r.s.services {
		out = append(out, cloneService(svc))
	}
	sortDesc(out, serviceID)
	return out
}

func serviceID(s *catalog.Service) string { return s.ID }
