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

// Package memory implements every repository contract over process-local
// maps guarded by a single mutex. It backs the memory store mode and the
// test suites; semantics match the postgres store, including marker
// pagination and conflict sentinels.
package memory

import (
	"sort"
	"sync"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/credential"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/tenant"
	"github.com/keygate/keygate/internal/token"
)

// Store holds all aggregates behind one lock. Individual repositories are
// views over the same state so cross-aggregate reads (tenant emptiness,
// catalog joins) stay consistent.
type Store struct {
	mu sync.RWMutex

	tenants   map[string]*tenant.Tenant
	users     map[string]*identity.User
	roles     map[string]*role.Role
	grants    map[string]*role.Grant
	services  map[string]*catalog.Service
	templates map[string]*catalog.EndpointTemplate
	endpoints map[string]*catalog.Endpoint
	tokens    map[string]*token.Token
	creds     map[string]*credential.Credential
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tenants:   make(map[string]*tenant.Tenant),
		users:     make(map[string]*identity.User),
		roles:     make(map[string]*role.Role),
		grants:    make(map[string]*role.Grant),
		services:  make(map[string]*catalog.Service),
		templates: make(map[string]*catalog.EndpointTemplate),
		endpoints: make(map[string]*catalog.Endpoint),
		tokens:    make(map[string]*token.Token),
		creds:     make(map[string]*credential.Credential),
	}
}

// Tenants returns the tenant repository view.
func (s *Store) Tenants() tenant.Repository { return &tenantRepository{s} }

// Users returns the user repository view.
func (s *Store) Users() identity.UserRepository { return &userRepository{s} }

// Roles returns the role and grant repository view.
func (s *Store) Roles() role.Repository { return &roleRepository{s} }

// Services returns the service repository view.
func (s *Store) Services() catalog.ServiceRepository { return &serviceRepository{s} }

// EndpointTemplates returns the endpoint template repository view.
func (s *Store) EndpointTemplates() catalog.EndpointTemplateRepository {
	return &endpointTemplateRepository{s}
}

// Tokens returns the token repository view.
func (s *Store) Tokens() token.Repository { return &tokenRepository{s} }

// Credentials returns the credential repository view.
func (s *Store) Credentials() credential.Repository { return &credentialRepository{s} }

// sortDesc orders items newest first. UUIDv7 ids sort by creation time, so
// descending id order is descending creation order.
func sortDesc[T any](items []T, idOf func(T) string) {
	sort.Slice(items, func(i, j int) bool { return idOf(items[i]) > idOf(items[j]) })
}

// pageOf cuts the marker window out of a descending-ordered slice. An
// empty marker starts at the top; otherwise the page holds the first limit
// items whose id sorts strictly below the marker.
func pageOf[T any](items []T, idOf func(T) string, marker string, limit int) []T {
	out := make([]T, 0, limit)
	for _, it := range items {
		if marker != "" && idOf(it) >= marker {
			continue
		}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

// markersOf returns the prev and next markers for the window pageOf
// selects. next is the last id of the window when rows follow it. prev is
// the marker that re-fetches the window just above this one; it stays
// empty when that window is the first page, which an empty marker already
// selects.
func markersOf[T any](items []T, idOf func(T) string, marker string, limit int) (prev, next string) {
	if len(items) == 0 {
		return "", ""
	}
	window := pageOf(items, idOf, marker, limit)
	if n := len(window); n > 0 {
		lastID := idOf(window[n-1])
		for _, it := range items {
			if idOf(it) < lastID {
				next = lastID
				break
			}
		}
	}
	if marker == "" {
		return "", next
	}
	var above []string
	for _, it := range items {
		if id := idOf(it); id >= marker {
			above = append(above, id)
		}
	}
	// above is descending with the marker at the tail; the entry limit
	// slots over the tail re-fetches the previous window.
	if i := len(above) - 1 - limit; i >= 0 {
		prev = above[i]
	}
	return prev, next
}
