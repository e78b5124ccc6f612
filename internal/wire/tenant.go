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

	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/tenant"
)

type xmlTenant struct {
	XMLName     xml.Name `xml:"tenant"`
	NS          string   `xml:"xmlns,attr,omitempty"`
	ID          string   `xml:"id,attr,omitempty"`
	Name        string   `xml:"name,attr,omitempty"`
	Enabled     string   `xml:"enabled,attr,omitempty"`
	Description string   `xml:"description,omitempty"`
}

type xmlTenants struct {
	XMLName xml.Name    `xml:"tenants"`
	NS      string      `xml:"xmlns,attr"`
	Tenants []xmlTenant `xml:"tenant"`
	Links   []xmlLink   `xml:"link"`
}

func tenantToMap(t *tenant.Tenant) map[string]any {
	m := make(map[string]any, len(t.Extra)+4)
	for k, v := range t.Extra {
		m[k] = v
	}
	m["id"] = t.ID
	m["name"] = t.Name
	m["enabled"] = t.Enabled
	if t.Description != "" {
		m["description"] = t.Description
	}
	return m
}

func tenantFromMap(m map[string]any) (*tenant.Tenant, error) {
	t := &tenant.Tenant{}
	for k, v := range m {
		switch k {
		case "id":
			t.ID = asString(v)
		case "name":
			t.Name = asString(v)
		case "description":
			t.Description = asString(v)
		case "enabled":
			b, err := asBool(v)
			if err != nil {
				return nil, err
			}
			t.Enabled = b
		default:
			if t.Extra == nil {
				t.Extra = make(map[string]any)
			}
			t.Extra[k] = v
		}
	}
	return t, nil
}

func tenantToXML(t *tenant.Tenant, ns string) xmlTenant {
	return xmlTenant{
		NS:          ns,
		ID:          t.ID,
		Name:        t.Name,
		Enabled:     xmlBool(t.Enabled),
		Description: t.Description,
	}
}

func tenantFromXML(x *xmlTenant) (*tenant.Tenant, error) {
	enabled := false
	if x.Enabled != "" {
		b, err := asBool(x.Enabled)
		if err != nil {
			return nil, err
		}
		enabled = b
	}
	return &tenant.Tenant{
		ID:          x.ID,
		Name:        x.Name,
		Description: x.Description,
		Enabled:     enabled,
	}, nil
}

// MarshalTenant renders one tenant under its singleton root.
func MarshalTenant(t *tenant.Tenant, f Format) ([]byte, error) {
	if f == XML {
		return xml.Marshal(tenantToXML(t, NSIdentity))
	}
	return json.Marshal(map[string]any{"tenant": tenantToMap(t)})
}

// MarshalTenants renders a tenant page with its paging links.
func MarshalTenants(ts []*tenant.Tenant, links []Link, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlTenants{NS: NSIdentity, Links: xmlLinks(links)}
		for _, t := range ts {
			doc.Tenants = append(doc.Tenants, tenantToXML(t, ""))
		}
		return xml.Marshal(doc)
	}
	items := make([]map[string]any, 0, len(ts))
	for _, t := range ts {
		items = append(items, tenantToMap(t))
	}
	return json.Marshal(map[string]any{
		"tenants":       items,
		"tenants_links": links,
	})
}

// UnmarshalTenant parses a tenant document. Unknown attributes are carried
// through into Extra rather than rejected.
func UnmarshalTenant(data []byte, f Format) (*tenant.Tenant, error) {
	if f == XML {
		var x xmlTenant
		if err := xml.Unmarshal(data, &x); err != nil {
			return nil, fault.BadRequest("cannot parse tenant document").WithCause(err)
		}
		return tenantFromXML(&x)
	}
	var doc struct {
		Tenant map[string]any `json:"tenant"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Tenant == nil {
		return nil, fault.BadRequest("expecting a tenant document")
	}
	t, err := tenantFromMap(doc.Tenant)
	if err != nil {
		return nil, err
	}
	return t, nil
}
