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

// Service documents use the prefixed admin-extension roots.
const (
	serviceRoot  = "OS-KSADM:service"
	servicesRoot = "OS-KSADM:services"
)

// serviceAttrs is the whitelist for service documents. Name and type are
// required on creation; the core enforces that.
var serviceAttrs = map[string]bool{
	"id":          true,
	"name":        true,
	"type":        true,
	"description": true,
}

type xmlService struct {
	XMLName     xml.Name `xml:"service"`
	NS          string   `xml:"xmlns,attr,omitempty"`
	ID          string   `xml:"id,attr,omitempty"`
	Name        string   `xml:"name,attr,omitempty"`
	Type        string   `xml:"type,attr,omitempty"`
	Description string   `xml:"description,omitempty"`
}

type xmlServices struct {
	XMLName  xml.Name     `xml:"services"`
	NS       string       `xml:"xmlns,attr"`
	Services []xmlService `xml:"service"`
	Links    []xmlLink    `xml:"link"`
}

func serviceToMap(s *catalog.Service) map[string]any {
	m := map[string]any{
		"id":   s.ID,
		"name": s.Name,
		"type": s.Type,
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	return m
}

func serviceFromMap(m map[string]any) (*catalog.Service, error) {
	for k := range m {
		if !serviceAttrs[k] {
			return nil, fault.BadRequest("unknown attribute %s in service", k)
		}
	}
	return &catalog.Service{
		ID:          asString(m["id"]),
		Name:        asString(m["name"]),
		Type:        asString(m["type"]),
		Description: asString(m["description"]),
	}, nil
}

// MarshalService renders one service under the OS-KSADM singleton root.
func MarshalService(s *catalog.Service, f Format) ([]byte, error) {
	if f == XML {
		return xml.Marshal(xmlService{
			NS:          NSAdmin,
			ID:          s.ID,
			Name:        s.Name,
			Type:        s.Type,
			Description: s.Description,
		})
	}
	return json.Marshal(map[string]any{serviceRoot: serviceToMap(s)})
}

// MarshalServices renders a service page with its paging links.
func MarshalServices(ss []*catalog.Service, links []Link, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlServices{NS: NSAdmin, Links: xmlLinks(links)}
		for _, s := range ss {
			doc.Services = append(doc.Services, xmlService{
				ID:          s.ID,
				Name:        s.Name,
				Type:        s.Type,
				Description: s.Description,
			})
		}
		return xml.Marshal(doc)
	}
	items := make([]map[string]any, 0, len(ss))
	for _, s := range ss {
		items = append(items, serviceToMap(s))
	}
	return json.Marshal(map[string]any{
		servicesRoot:           items,
		servicesRoot + "_links": links,
	})
}

// UnmarshalService parses a service document with whitelist validation.
func UnmarshalService(data []byte, f Format) (*catalog.Service, error) {
	if f == XML {
		var x xmlService
		if err := xml.Unmarshal(data, &x); err != nil {
			return nil, fault.BadRequest("cannot parse service document").WithCause(err)
		}
		return &catalog.Service{
			ID:          x.ID,
			Name:        x.Name,
			Type:        x.Type,
			Description: x.Description,
		}, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fault.BadRequest("expecting a service document")
	}
	raw, ok := doc[serviceRoot]
	if !ok {
		// The unprefixed root is accepted for compatibility.
		raw, ok = doc["service"]
	}
	if !ok {
		return nil, fault.BadRequest("expecting a service document")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fault.BadRequest("cannot parse service document").WithCause(err)
	}
	return serviceFromMap(m)
}
