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

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/tenant"
)

// CreateService registers a service. Service-admin only; the (name, type)
// pair must be unique and the caller is recorded as owner.
func (s *Service) CreateService(ctx context.Context, authToken string, svc *catalog.Service) (*catalog.Service, error) {
	caller, err := s.requireServiceAdmin(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if svc.Name == "" {
		return nil, fault.BadRequest("expecting a service name")
	}
	if svc.Type == "" {
		return nil, fault.BadRequest("expecting a service type")
	}
	if _, err := s.services.GetByNameAndType(ctx, svc.Name, svc.Type); err == nil {
		return nil, fault.Conflict("a service with that name and type already exists")
	} else if !errors.Is(err, catalog.ErrServiceNotFound) {
		return nil, fmt.Errorf("check service: %w", err)
	}

	created := &catalog.Service{
		ID:          id.NewUUIDv7(),
		Name:        svc.Name,
		Type:        svc.Type,
		Description: svc.Description,
		OwnerID:     caller.ID,
		CreatedAt:   time.Now().UTC(),
		Extra:       svc.Extra,
	}
	if err := s.services.Create(ctx, created); err != nil {
		if errors.Is(err, catalog.ErrServiceAlreadyExists) {
			return nil, fault.Conflict("a service with that name and type already exists")
		}
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeServiceCreated,
		ActorID:  caller.ID,
		Resource: created.ID,
		Metadata: map[string]any{"name": created.Name, "type": created.Type},
	})
	return created, nil
}

// GetService returns one service by id. Service-admin only.
func (s *Service) GetService(ctx context.Context, authToken, serviceID string) (*catalog.Service, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	return s.loadService(ctx, serviceID)
}

// GetServiceByName returns one service by name. Service-admin only.
func (s *Service) GetServiceByName(ctx context.Context, authToken, name string) (*catalog.Service, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fault.NotFound("the service could not be found")
		}
		return nil, fmt.Errorf("load service: %w", err)
	}
	return svc, nil
}

// ListServices pages all services. Service-admin only.
func (s *Service) ListServices(ctx context.Context, authToken, marker string, limit int) ([]*catalog.Service, string, string, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	limit = s.clampLimit(limit)
	services, err := s.services.GetPage(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list services: %w", err)
	}
	prev, next, err := s.services.GetPageMarkers(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page services: %w", err)
	}
	return services, prev, next, nil
}

// DeleteService removes a service and cascades everything that refers to
// it: endpoint templates with their tenant bindings, and service-bound
// roles with their grants. Service-admin only.
func (s *Service) DeleteService(ctx context.Context, authToken, serviceID string) error {
	caller, err := s.requireServiceAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	svc, err := s.loadService(ctx, serviceID)
	if err != nil {
		return err
	}

	// The repository cascades templates, bindings, roles, and grants
	// atomically with the service row.
	if err := s.services.Delete(ctx, svc.ID); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeServiceDeleted,
		ActorID:  caller.ID,
		Resource: svc.ID,
		Metadata: map[string]any{"name": svc.Name, "type": svc.Type},
	})
	return nil
}

// CreateEndpointTemplate registers a regional URL set for the service
// named by (serviceName, serviceType). Service-admin only.
func (s *Service) CreateEndpointTemplate(ctx context.Context, authToken, serviceName, serviceType string, tpl *catalog.EndpointTemplate) (*catalog.EndpointTemplate, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByNameAndType(ctx, serviceName, serviceType)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fault.BadRequest("a service with that name and type does not exist")
		}
		return nil, fmt.Errorf("resolve service: %w", err)
	}

	created := *tpl
	created.ID = id.NewUUIDv7()
	created.ServiceID = svc.ID
	created.CreatedAt = time.Now().UTC()
	if err := s.templates.Create(ctx, &created); err != nil {
		return nil, fmt.Errorf("create endpoint template: %w", err)
	}
	return &created, nil
}

// GetEndpointTemplate returns one endpoint template. Service-admin only.
func (s *Service) GetEndpointTemplate(ctx context.Context, authToken, templateID string) (*catalog.EndpointTemplate, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	return s.loadTemplate(ctx, templateID)
}

// UpdateEndpointTemplate replaces a template's URLs and flags. When a
// service name and type are supplied, the template is re-pointed at that
// service. Service-admin only.
func (s *Service) UpdateEndpointTemplate(ctx context.Context, authToken, templateID, serviceName, serviceType string, updates *catalog.EndpointTemplate) (*catalog.EndpointTemplate, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	tpl, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	serviceID := tpl.ServiceID
	if serviceName != "" || serviceType != "" {
		svc, err := s.services.GetByNameAndType(ctx, serviceName, serviceType)
		if err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				return nil, fault.BadRequest("a service with that name and type does not exist")
			}
			return nil, fmt.Errorf("resolve service: %w", err)
		}
		serviceID = svc.ID
	}

	next := *updates
	next.ID = tpl.ID
	next.ServiceID = serviceID
	next.CreatedAt = tpl.CreatedAt
	if err := s.templates.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("update endpoint template: %w", err)
	}
	return &next, nil
}

// ListEndpointTemplates pages endpoint templates, optionally narrowed to
// one service. Service-admin only.
func (s *Service) ListEndpointTemplates(ctx context.Context, authToken, serviceID, marker string, limit int) ([]*catalog.EndpointTemplate, string, string, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	limit = s.clampLimit(limit)

	if serviceID != "" {
		templates, err := s.templates.GetByServicePage(ctx, serviceID, marker, limit)
		if err != nil {
			return nil, "", "", fmt.Errorf("list service templates: %w", err)
		}
		prev, next, err := s.templates.GetByServicePageMarkers(ctx, serviceID, marker, limit)
		if err != nil {
			return nil, "", "", fmt.Errorf("page service templates: %w", err)
		}
		return templates, prev, next, nil
	}

	templates, err := s.templates.GetPage(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list endpoint templates: %w", err)
	}
	prev, next, err := s.templates.GetPageMarkers(ctx, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page endpoint templates: %w", err)
	}
	return templates, prev, next, nil
}

// DeleteEndpointTemplate removes a template and its tenant bindings.
// Service-admin only.
func (s *Service) DeleteEndpointTemplate(ctx context.Context, authToken, templateID string) error {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return err
	}
	tpl, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, tpl.ID); err != nil {
		return fmt.Errorf("delete endpoint template: %w", err)
	}
	return nil
}

// ListTenantEndpoints pages the endpoints bound to one tenant.
// Service-admin only.
func (s *Service) ListTenantEndpoints(ctx context.Context, authToken, tenantID, marker string, limit int) ([]*catalog.TenantEndpoint, string, string, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	if err := s.requireTenantExists(ctx, tenantID); err != nil {
		return nil, "", "", err
	}

	limit = s.clampLimit(limit)
	eps, err := s.templates.GetEndpointsForTenantPage(ctx, tenantID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list tenant endpoints: %w", err)
	}
	prev, next, err := s.templates.GetEndpointsForTenantPageMarkers(ctx, tenantID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page tenant endpoints: %w", err)
	}
	return eps, prev, next, nil
}

// AddEndpointToTenant binds an endpoint template to a tenant so that the
// tenant's catalog includes it. Service-admin only.
func (s *Service) AddEndpointToTenant(ctx context.Context, authToken, tenantID, templateID string) (*catalog.TenantEndpoint, error) {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	if err := s.requireTenantExists(ctx, tenantID); err != nil {
		return nil, err
	}
	tpl, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	svc, err := s.loadService(ctx, tpl.ServiceID)
	if err != nil {
		return nil, err
	}

	ep := &catalog.Endpoint{
		ID:         id.NewUUIDv7(),
		TenantID:   tenantID,
		TemplateID: tpl.ID,
	}
	if err := s.templates.Bind(ctx, ep); err != nil {
		if errors.Is(err, catalog.ErrEndpointAlreadyExists) {
			return nil, fault.Conflict("endpoint already bound to tenant")
		}
		return nil, fmt.Errorf("bind endpoint: %w", err)
	}

	return &catalog.TenantEndpoint{
		ID:          ep.ID,
		TenantID:    tenantID,
		TemplateID:  tpl.ID,
		Region:      tpl.Region,
		ServiceName: svc.Name,
		ServiceType: svc.Type,
		PublicURL:   tpl.PublicURL,
		AdminURL:    tpl.AdminURL,
		InternalURL: tpl.InternalURL,
		VersionID:   tpl.VersionID,
		VersionList: tpl.VersionList,
		VersionInfo: tpl.VersionInfo,
	}, nil
}

// RemoveEndpointFromTenant deletes one tenant endpoint binding.
// Service-admin only.
func (s *Service) RemoveEndpointFromTenant(ctx context.Context, authToken, endpointID string) error {
	if _, err := s.requireServiceAdmin(ctx, authToken); err != nil {
		return err
	}
	if err := s.templates.Unbind(ctx, endpointID); err != nil {
		if errors.Is(err, catalog.ErrEndpointNotFound) {
			return fault.NotFound("the endpoint could not be found")
		}
		return fmt.Errorf("unbind endpoint: %w", err)
	}
	return nil
}

func (s *Service) loadService(ctx context.Context, serviceID string) (*catalog.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fault.NotFound("the service could not be found")
		}
		return nil, fmt.Errorf("load service: %w", err)
	}
	return svc, nil
}

func (s *Service) loadTemplate(ctx context.Context, templateID string) (*catalog.EndpointTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, catalog.ErrTemplateNotFound) {
			return nil, fault.NotFound("the endpoint template could not be found")
		}
		return nil, fmt.Errorf("load endpoint template: %w", err)
	}
	return tpl, nil
}

func (s *Service) requireTenantExists(ctx context.Context, tenantID string) error {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return fault.NotFound("the tenant could not be found")
		}
		return fmt.Errorf("load tenant: %w", err)
	}
	return nil
}
