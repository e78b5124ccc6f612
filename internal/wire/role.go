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
	"github.com/keygate/keygate/internal/role"
)

// roleAttrs is the whitelist for role documents; anything else on input is
// a bad request rather than a passthrough.
var roleAttrs = map[string]bool{
	"id":          true,
	"name":        true,
	"description": true,
	"serviceId":   true,
}

type xmlRole struct {
	XMLName     xml.Name `xml:"role"`
	NS          string   `xml:"xmlns,attr,omitempty"`
	ID          string   `xml:"id,attr,omitempty"`
	Name        string   `xml:"name,attr,omitempty"`
	ServiceID   string   `xml:"serviceId,attr,omitempty"`
	Description string   `xml:"description,omitempty"`
}

type xmlRoles struct {
	XMLName xml.Name  `xml:"roles"`
	NS      string    `xml:"xmlns,attr"`
	Roles   []xmlRole `xml:"role"`
	Links   []xmlLink `xml:"link"`
}

func roleToMap(r *role.Role) map[string]any {
	m := map[string]any{
		"id":   r.ID,
		"name": r.Name,
	}
	if r.Description != "" {
		m["description"] = r.Description
	}
	if r.ServiceID != "" {
		m["serviceId"] = r.ServiceID
	}
	return m
}

func roleFromMap(m map[string]any) (*role.Role, error) {
	for k := range m {
		if !roleAttrs[k] {
			return nil, fault.BadRequest("unknown attribute %s in role", k)
		}
	}
	return &role.Role{
		ID:          asString(m["id"]),
		Name:        asString(m["name"]),
		Description: asString(m["description"]),
		ServiceID:   asString(m["serviceId"]),
	}, nil
}

func roleToXML(r *role.Role, ns string) xmlRole {
	return xmlRole{
		NS:          ns,
		ID:          r.ID,
		Name:        r.Name,
		ServiceID:   r.ServiceID,
		Description: r.Description,
	}
}

// MarshalRole renders one role under its singleton root.
func MarshalRole(r *role.Role, f Format) ([]byte, error) {
	if f == XML {
		return xml.Marshal(roleToXML(r, NSIdentity))
	}
	return json.Marshal(map[string]any{"role": roleToMap(r)})
}

// MarshalRoles renders a role page with its paging links.
func MarshalRoles(rs []*role.Role, links []Link, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlRoles{NS: NSIdentity, Links: xmlLinks(links)}
		for _, r := range rs {
			doc.Roles = append(doc.Roles, roleToXML(r, ""))
		}
		return xml.Marshal(doc)
	}
	items := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		items = append(items, roleToMap(r))
	}
	return json.Marshal(map[string]any{
		"roles":       items,
		"roles_links": links,
	})
}

// UnmarshalRole parses a role document with whitelist validation.
func UnmarshalRole(data []byte, f Format) (*role.Role, error) {
	if f == XML {
		var x xmlRole
		if err := xml.Unmarshal(data, &x); err != nil {
			return nil, fault.BadRequest("cannot parse role document").WithCause(err)
		}
		return &role.Role{
			ID:          x.ID,
			Name:        x.Name,
			Description: x.Description,
			ServiceID:   x.ServiceID,
		}, nil
	}
	var doc struct {
		Role map[string]any `json:"role"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Role == nil {
		return nil, fault.BadRequest("expecting a role document")
	}
	return roleFromMap(doc.Role)
}
