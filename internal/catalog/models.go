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

// Package catalog holds the service registry: services, their regional
// endpoint templates, and the per-tenant endpoint bindings that make up a
// token's service catalog.
package catalog

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrServiceNotFound       = errors.New("service not found")
	ErrServiceAlreadyExists  = errors.New("service already exists")
	ErrTemplateNotFound      = errors.New("endpoint template not found")
	ErrEndpointNotFound      = errors.New("endpoint not found")
	ErrEndpointAlreadyExists = errors.New("endpoint already bound to tenant")
)

// Service is a named, typed collaborator (compute, object-store, ...)
// whose endpoints are cataloged. OwnerID records the creating user.
type Service struct {
	ID          string
	Name        string
	Type        string
	Description string
	OwnerID     string
	CreatedAt   time.Time

	// Extra carries attributes outside the contract set.
	Extra map[string]any
}

// EndpointTemplate is a regional URL set for a service. Global templates
// appear in every tenant's catalog; others require an Endpoint binding.
type EndpointTemplate struct {
	ID          string
	Region      string
	ServiceID   string
	PublicURL   string
	AdminURL    string
	InternalURL string
	Enabled     bool
	IsGlobal    bool
	VersionID   string
	VersionList string
	VersionInfo string
	CreatedAt   time.Time
}

// Endpoint binds an endpoint template to one tenant.
type Endpoint struct {
	ID         string
	TenantID   string
	TemplateID string
}

// TenantEndpoint is a catalog row denormalized with the owning service,
// as returned to API consumers and the token-endpoints operation.
type TenantEndpoint struct {
	ID          string
	TenantID    string
	TemplateID  string
	Region      string
	ServiceName string
	ServiceType string
	PublicURL   string
	AdminURL    string
	InternalURL string
	VersionID   string
	VersionList string
	VersionInfo string
}

// ServiceRepository defines service persistence
type ServiceRepository interface {
	// Create creates a new service
	Create(ctx context.Context, s *Service) error

	// GetByID retrieves a service by id
	GetByID(ctx context.Context, id string) (*Service, error)

	// GetByName retrieves a service by name
	GetByName(ctx context.Context, name string) (*Service, error)

	// GetByNameAndType retrieves a service by its unique (name, type) pair
	GetByNameAndType(ctx context.Context, name, typ string) (*Service, error)

	// Delete removes the service and, atomically, everything it owns: its
	// endpoint templates with their tenant bindings, and its roles with
	// their grants
	Delete(ctx context.Context, id string) error

	GetPage(ctx context.Context, marker string, limit int) ([]*Service, error)
	GetPageMarkers(ctx context.Context, marker string, limit int) (prev, next string, err error)
}

// EndpointTemplateRepository defines endpoint template and binding
// persistence
type EndpointTemplateRepository interface {
	// Create creates a new endpoint template
	Create(ctx context.Context, t *EndpointTemplate) error

	// GetByID retrieves a template by id
	GetByID(ctx context.Context, id string) (*EndpointTemplate, error)

	// Update replaces a template
	Update(ctx context.Context, t *EndpointTemplate) error

	// Delete removes a template and its tenant bindings
	Delete(ctx context.Context, id string) error

	GetPage(ctx context.Context, marker string, limit int) ([]*EndpointTemplate, error)
	GetPageMarkers(ctx context.Context, marker string, limit int) (prev, next string, err error)

	// GetByServicePage lists templates owned by one service
	GetByServicePage(ctx context.Context, serviceID, marker string, limit int) ([]*EndpointTemplate, error)
	GetByServicePageMarkers(ctx context.Context, serviceID, marker string, limit int) (prev, next string, err error)

	// Bind creates a tenant endpoint from a template
	Bind(ctx context.Context, e *Endpoint) error

	// Unbind removes one tenant endpoint
	Unbind(ctx context.Context, endpointID string) error

	// GetEndpointsForTenantPage lists the tenant's bound endpoints,
	// denormalized with service name and type
	GetEndpointsForTenantPage(ctx context.Context, tenantID, marker string, limit int) ([]*TenantEndpoint, error)
	GetEndpointsForTenantPageMarkers(ctx context.Context, tenantID, marker string, limit int) (prev, next string, err error)

	// GetAllEndpointsForTenant returns the catalog union: global templates
	// plus the tenant's bound templates, denormalized with the service
	GetAllEndpointsForTenant(ctx context.Context, tenantID string) ([]*TenantEndpoint, error)

	// GetAllEndpointsForTenantPage pages the same union. Bound rows page
	// by binding id, global rows by template id.
	GetAllEndpointsForTenantPage(ctx context.Context, tenantID, marker string, limit int) ([]*TenantEndpoint, error)
	GetAllEndpointsForTenantPageMarkers(ctx context.Context, tenantID, marker string, limit int) (prev, next string, err error)
}
