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

package wire

import (
	"encoding/json"
	"encoding/xml"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/fault"
)

// Endpoint template documents use the prefixed catalog-extension roots.
const (
	templateRoot  = "OS-KSCATALOG:endpointTemplate"
	templatesRoot = "OS-KSCATALOG:endpointTemplates"
)

// ParsedEndpointTemplate carries a parsed template document plus the
// service coordinates it names; the core resolves them to a service id.
type ParsedEndpointTemplate struct {
	Template    *catalog.EndpointTemplate
	ServiceName string
	ServiceType string
}

type xmlEndpointTemplate struct {
	XMLName     xml.Name `xml:"endpointTemplate"`
	NS          string   `xml:"xmlns,attr,omitempty"`
	ID          string   `xml:"id,attr,omitempty"`
	Region      string   `xml:"region,attr,omitempty"`
	Name        string   `xml:"name,attr,omitempty"`
	Type        string   `xml:"type,attr,omitempty"`
	PublicURL   string   `xml:"publicURL,attr,omitempty"`
	AdminURL    string   `xml:"adminURL,attr,omitempty"`
	InternalURL string   `xml:"internalURL,attr,omitempty"`
	Enabled     string   `xml:"enabled,attr,omitempty"`
	Global      string   `xml:"global,attr,omitempty"`
	VersionID   string   `xml:"versionId,attr,omitempty"`
	VersionList string   `xml:"versionList,attr,omitempty"`
	VersionInfo string   `xml:"versionInfo,attr,omitempty"`
}

type xmlEndpointTemplates struct {
	XMLName   xml.Name              `xml:"endpointTemplates"`
	NS        string                `xml:"xmlns,attr"`
	Templates []xmlEndpointTemplate `xml:"endpointTemplate"`
	Links     []xmlLink             `xml:"link"`
}

type xmlEndpoint struct {
	XMLName     xml.Name `xml:"endpoint"`
	NS          string   `xml:"xmlns,attr,omitempty"`
	ID          string   `xml:"id,attr,omitempty"`
	TenantID    string   `xml:"tenantId,attr,omitempty"`
	Region      string   `xml:"region,attr,omitempty"`
	Name        string   `xml:"name,attr,omitempty"`
	Type        string   `xml:"type,attr,omitempty"`
	PublicURL   string   `xml:"publicURL,attr,omitempty"`
	AdminURL    string   `xml:"adminURL,attr,omitempty"`
	InternalURL string   `xml:"internalURL,attr,omitempty"`
	VersionID   string   `xml:"versionId,attr,omitempty"`
}

type xmlEndpoints struct {
	XMLName   xml.Name      `xml:"endpoints"`
	NS        string        `xml:"xmlns,attr"`
	Endpoints []xmlEndpoint `xml:"endpoint"`
	Links     []xmlLink     `xml:"link"`
}

func templateToMap(t *catalog.EndpointTemplate, serviceName, serviceType string) map[string]any {
	m := map[string]any{
		"id":      t.ID,
		"enabled": t.Enabled,
		"global":  t.IsGlobal,
	}
	if t.Region != "" {
		m["region"] = t.Region
	}
	if serviceName != "" {
		m["name"] = serviceName
	}
	if serviceType != "" {
		m["type"] = serviceType
	}
	if t.PublicURL != "" {
		m["publicURL"] = t.PublicURL
	}
	if t.AdminURL != "" {
		m["adminURL"] = t.AdminURL
	}
	if t.InternalURL != "" {
		m["internalURL"] = t.InternalURL
	}
	if t.VersionID != "" {
		m["versionId"] = t.VersionID
	}
	if t.VersionList != "" {
		m["versionList"] = t.VersionList
	}
	if t.VersionInfo != "" {
		m["versionInfo"] = t.VersionInfo
	}
	return m
}

func templateToXML(t *catalog.EndpointTemplate, serviceName, serviceType, ns string) xmlEndpointTemplate {
	return xmlEndpointTemplate{
		NS:          ns,
		ID:          t.ID,
		Region:      t.Region,
		Name:        serviceName,
		Type:        serviceType,
		PublicURL:   t.PublicURL,
		AdminURL:    t.AdminURL,
		InternalURL: t.InternalURL,
		Enabled:     xmlBool(t.Enabled),
		Global:      xmlBool(t.IsGlobal),
		VersionID:   t.VersionID,
		VersionList: t.VersionList,
		VersionInfo: t.VersionInfo,
	}
}

// TemplateView pairs a template with its owning service's coordinates for
// rendering; the storage row only carries the service id.
type TemplateView struct {
	Template    *catalog.EndpointTemplate
	ServiceName string
	ServiceType string
}

// MarshalEndpointTemplate renders one template under the catalog root.
func MarshalEndpointTemplate(v TemplateView, f Format) ([]byte, error) {
	if f == XML {
		return xml.Marshal(templateToXML(v.Template, v.ServiceName, v.ServiceType, NSAdmin))
	}
	return json.Marshal(map[string]any{templateRoot: templateToMap(v.Template, v.ServiceName, v.ServiceType)})
}

// MarshalEndpointTemplates renders a template page with its paging links.
func MarshalEndpointTemplates(vs []TemplateView, links []Link, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlEndpointTemplates{NS: NSAdmin, Links: xmlLinks(links)}
		for _, v := range vs {
			doc.Templates = append(doc.Templates, templateToXML(v.Template, v.ServiceName, v.ServiceType, ""))
		}
		return xml.Marshal(doc)
	}
	items := make([]map[string]any, 0, len(vs))
	for _, v := range vs {
		items = append(items, templateToMap(v.Template, v.ServiceName, v.ServiceType))
	}
	return json.Marshal(map[string]any{
		templatesRoot:            items,
		templatesRoot + "_links": links,
	})
}

// UnmarshalEndpointTemplate parses a template document. The service is
// named by its (name, type) pair; unknown attributes pass through silently
// because templates are admin-plane documents with a long attribute tail.
func UnmarshalEndpointTemplate(data []byte, f Format) (*ParsedEndpointTemplate, error) {
	if f == XML {
		var x xmlEndpointTemplate
		if err := xml.Unmarshal(data, &x); err != nil {
			return nil, fault.BadRequest("cannot parse endpoint template document").WithCause(err)
		}
		p := &ParsedEndpointTemplate{
			Template: &catalog.EndpointTemplate{
				ID:          x.ID,
				Region:      x.Region,
				PublicURL:   x.PublicURL,
				AdminURL:    x.AdminURL,
				InternalURL: x.InternalURL,
				VersionID:   x.VersionID,
				VersionList: x.VersionList,
				VersionInfo: x.VersionInfo,
			},
			ServiceName: x.Name,
			ServiceType: x.Type,
		}
		var err error
		if x.Enabled != "" {
			if p.Template.Enabled, err = asBool(x.Enabled); err != nil {
				return nil, err
			}
		}
		if x.Global != "" {
			if p.Template.IsGlobal, err = asBool(x.Global); err != nil {
				return nil, err
			}
		}
		return p, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fault.BadRequest("expecting an endpoint template document")
	}
	raw, ok := doc[templateRoot]
	if !ok {
		raw, ok = doc["endpointTemplate"]
	}
	if !ok {
		return nil, fault.BadRequest("expecting an endpoint template document")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fault.BadRequest("cannot parse endpoint template document").WithCause(err)
	}

	p := &ParsedEndpointTemplate{Template: &catalog.EndpointTemplate{}}
	var err error
	for k, v := range m {
		switch k {
		case "id":
			p.Template.ID = asString(v)
		case "region":
			p.Template.Region = asString(v)
		case "name":
			p.ServiceName = asString(v)
		case "type":
			p.ServiceType = asString(v)
		case "publicURL":
			p.Template.PublicURL = asString(v)
		case "adminURL":
			p.Template.AdminURL = asString(v)
		case "internalURL":
			p.Template.InternalURL = asString(v)
		case "enabled":
			if p.Template.Enabled, err = asBool(v); err != nil {
				return nil, err
			}
		case "global":
			if p.Template.IsGlobal, err = asBool(v); err != nil {
				return nil, err
			}
		case "versionId":
			p.Template.VersionID = asString(v)
		case "versionList":
			p.Template.VersionList = asString(v)
		case "versionInfo":
			p.Template.VersionInfo = asString(v)
		}
	}
	return p, nil
}

func tenantEndpointToMap(e *catalog.TenantEndpoint) map[string]any {
	m := map[string]any{
		"id": e.ID,
	}
	if e.TenantID != "" {
		m["tenantId"] = e.TenantID
	}
	if e.Region != "" {
		m["region"] = e.Region
	}
	if e.ServiceName != "" {
		m["name"] = e.ServiceName
	}
	if e.ServiceType != "" {
		m["type"] = e.ServiceType
	}
	if e.PublicURL != "" {
		m["publicURL"] = e.PublicURL
	}
	if e.AdminURL != "" {
		m["adminURL"] = e.AdminURL
	}
	if e.InternalURL != "" {
		m["internalURL"] = e.InternalURL
	}
	if e.VersionID != "" {
		m["versionId"] = e.VersionID
	}
	return m
}

func tenantEndpointToXML(e *catalog.TenantEndpoint, ns string) xmlEndpoint {
	return xmlEndpoint{
		NS:          ns,
		ID:          e.ID,
		TenantID:    e.TenantID,
		Region:      e.Region,
		Name:        e.ServiceName,
		Type:        e.ServiceType,
		PublicURL:   e.PublicURL,
		AdminURL:    e.AdminURL,
		InternalURL: e.InternalURL,
		VersionID:   e.VersionID,
	}
}

// MarshalEndpoint renders one tenant endpoint binding.
func MarshalEndpoint(e *catalog.TenantEndpoint, f Format) ([]byte, error) {
	if f == XML {
		return xml.Marshal(tenantEndpointToXML(e, NSIdentity))
	}
	return json.Marshal(map[string]any{"endpoint": tenantEndpointToMap(e)})
}

// MarshalEndpoints renders a tenant endpoint page with its paging links.
func MarshalEndpoints(es []*catalog.TenantEndpoint, links []Link, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlEndpoints{NS: NSIdentity, Links: xmlLinks(links)}
		for _, e := range es {
			doc.Endpoints = append(doc.Endpoints, tenantEndpointToXML(e, ""))
		}
		return xml.Marshal(doc)
	}
	items := make([]map[string]any, 0, len(es))
	for _, e := range es {
		items = append(items, tenantEndpointToMap(e))
	}
	return json.Marshal(map[string]any{
		"endpoints":       items,
		"endpoints_links": links,
	})
}

// UnmarshalEndpointRef parses the body of a bind-endpoint call, which names
// the endpoint template to bind by id.
func UnmarshalEndpointRef(data []byte, f Format) (string, error) {
	if f == XML {
		var x xmlEndpointTemplate
		if err := xml.Unmarshal(data, &x); err != nil || x.ID == "" {
			return "", fault.BadRequest("expecting an endpoint template reference")
		}
		return x.ID, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fault.BadRequest("expecting an endpoint template reference")
	}
	raw, ok := doc[templateRoot]
	if !ok {
		raw, ok = doc["endpointTemplate"]
	}
	if !ok {
		return "", fault.BadRequest("expecting an endpoint template reference")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m["id"] == nil {
		return "", fault.BadRequest("expecting an endpoint template id")
	}
	return asString(m["id"]), nil
}
