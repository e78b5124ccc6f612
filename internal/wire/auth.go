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
	"time"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/token"
)

// Auth request documents wrap one credential kind plus an optional tenant
// scope:
//
//	{"auth": {"passwordCredentials": {...}, "tenantId"|"tenantName": ...}}
//	{"auth": {"token": {"id": ...}, "tenantId": ...}}
//	{"auth": {"ec2Credentials": {...}}}
//
// The XML form carries passwordCredentials or token as a child of <auth>.
// EC2 credentials are JSON-only; their signed parameter map has no XML
// rendering.

type xmlAuth struct {
	XMLName    xml.Name          `xml:"auth"`
	TenantID   string            `xml:"tenantId,attr,omitempty"`
	TenantName string            `xml:"tenantName,attr,omitempty"`
	Password   *xmlPasswordCreds `xml:"passwordCredentials"`
	Token      *xmlTokenRef      `xml:"token"`
}

type xmlPasswordCreds struct {
	XMLName  xml.Name `xml:"passwordCredentials"`
	NS       string   `xml:"xmlns,attr,omitempty"`
	Username string   `xml:"username,attr,omitempty"`
	Password string   `xml:"password,attr,omitempty"`
	TenantID string   `xml:"tenantId,attr,omitempty"`
}

type xmlTokenRef struct {
	XMLName xml.Name `xml:"token"`
	ID      string   `xml:"id,attr,omitempty"`
}

type jsonAuth struct {
	TenantID   string             `json:"tenantId"`
	TenantName string             `json:"tenantName"`
	Password   *jsonPasswordCreds `json:"passwordCredentials"`
	Token      *jsonTokenRef      `json:"token"`
	EC2        *jsonEC2Creds      `json:"ec2Credentials"`
}

type jsonPasswordCreds struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

type jsonTokenRef struct {
	ID string `json:"id"`
}

type jsonEC2Creds struct {
	Access    string            `json:"access"`
	Signature string            `json:"signature"`
	Verb      string            `json:"verb"`
	Host      string            `json:"host"`
	Path      string            `json:"path"`
	Params    map[string]string `json:"params"`
}

// UnmarshalAuthRequest parses an authentication document into the core's
// request value.
func UnmarshalAuthRequest(data []byte, f Format) (*identity.AuthRequest, error) {
	if f == XML {
		var x xmlAuth
		if err := xml.Unmarshal(data, &x); err != nil {
			// The bare passwordCredentials root without the auth wrapper
			// is the legacy request shape; accept it too.
			var pc xmlPasswordCreds
			if perr := xml.Unmarshal(data, &pc); perr != nil || pc.Username == "" {
				return nil, fault.BadRequest("expecting an auth document").WithCause(err)
			}
			return &identity.AuthRequest{
				TenantID: pc.TenantID,
				Password: &identity.PasswordCredentials{Username: pc.Username, Password: pc.Password},
			}, nil
		}
		req := &identity.AuthRequest{TenantID: x.TenantID, TenantName: x.TenantName}
		switch {
		case x.Password != nil:
			req.Password = &identity.PasswordCredentials{
				Username: x.Password.Username,
				Password: x.Password.Password,
			}
			if req.TenantID == "" {
				req.TenantID = x.Password.TenantID
			}
		case x.Token != nil:
			req.Token = &identity.TokenCredentials{ID: x.Token.ID}
		default:
			return nil, fault.BadRequest("expecting passwordCredentials or token")
		}
		return req, nil
	}

	var doc struct {
		Auth *jsonAuth `json:"auth"`
		// Legacy shape without the auth wrapper.
		Password *jsonPasswordCreds `json:"passwordCredentials"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fault.BadRequest("cannot parse auth document").WithCause(err)
	}
	if doc.Auth == nil {
		if doc.Password == nil {
			return nil, fault.BadRequest("expecting an auth document")
		}
		doc.Auth = &jsonAuth{Password: doc.Password, TenantID: doc.Password.TenantID}
	}

	req := &identity.AuthRequest{TenantID: doc.Auth.TenantID, TenantName: doc.Auth.TenantName}
	switch {
	case doc.Auth.Password != nil:
		req.Password = &identity.PasswordCredentials{
			Username: doc.Auth.Password.Username,
			Password: doc.Auth.Password.Password,
		}
		if req.TenantID == "" {
			req.TenantID = doc.Auth.Password.TenantID
		}
	case doc.Auth.Token != nil:
		req.Token = &identity.TokenCredentials{ID: doc.Auth.Token.ID}
	case doc.Auth.EC2 != nil:
		req.EC2 = &identity.EC2Credentials{
			Access:    doc.Auth.EC2.Access,
			Signature: doc.Auth.EC2.Signature,
			Verb:      doc.Auth.EC2.Verb,
			Host:      doc.Auth.EC2.Host,
			Path:      doc.Auth.EC2.Path,
			Params:    doc.Auth.EC2.Params,
		}
	default:
		return nil, fault.BadRequest("expecting passwordCredentials, token, or ec2Credentials")
	}
	return req, nil
}

// Access is the render view of an authentication or validation result.
type Access struct {
	Token             *token.Token
	TenantName        string // name of the token's scope tenant, when scoped
	User              *identity.User
	DefaultTenantName string
	Roles             []*role.Grant
	Catalog           []*catalog.TenantEndpoint
}

type xmlAccess struct {
	XMLName xml.Name          `xml:"access"`
	NS      string            `xml:"xmlns,attr"`
	Token   xmlAccessToken    `xml:"token"`
	User    xmlAccessUser     `xml:"user"`
	Catalog []xmlAccessCatEnt `xml:"serviceCatalog>service,omitempty"`
}

type xmlAccessToken struct {
	ID      string           `xml:"id,attr"`
	Expires string           `xml:"expires,attr"`
	Tenant  *xmlAccessTenant `xml:"tenant"`
}

type xmlAccessTenant struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`
}

type xmlAccessUser struct {
	ID         string          `xml:"id,attr"`
	Name       string          `xml:"name,attr"`
	TenantName string          `xml:"tenantName,attr,omitempty"`
	Roles      []xmlAccessRole `xml:"role"`
}

type xmlAccessRole struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	TenantID string `xml:"tenantId,attr,omitempty"`
}

type xmlAccessCatEnt struct {
	Name      string           `xml:"name,attr"`
	Type      string           `xml:"type,attr"`
	Endpoints []xmlAccessCatEP `xml:"endpoint"`
}

type xmlAccessCatEP struct {
	Region      string `xml:"region,attr,omitempty"`
	PublicURL   string `xml:"publicURL,attr,omitempty"`
	InternalURL string `xml:"internalURL,attr,omitempty"`
	AdminURL    string `xml:"adminURL,attr,omitempty"`
}

func accessRolesToMaps(grants []*role.Grant) []map[string]any {
	out := make([]map[string]any, 0, len(grants))
	for _, g := range grants {
		m := map[string]any{"id": g.RoleID, "name": g.RoleName}
		if g.TenantID != nil {
			m["tenantId"] = *g.TenantID
		}
		out = append(out, m)
	}
	return out
}

// catalogToMaps groups tenant endpoints by (service name, type), the shape
// clients consume as the serviceCatalog.
func catalogToMaps(eps []*catalog.TenantEndpoint) []map[string]any {
	type key struct{ name, typ string }
	order := make([]key, 0)
	grouped := make(map[key][]map[string]any)
	for _, e := range eps {
		k := key{e.ServiceName, e.ServiceType}
		ep := map[string]any{}
		if e.Region != "" {
			ep["region"] = e.Region
		}
		if e.PublicURL != "" {
			ep["publicURL"] = e.PublicURL
		}
		if e.InternalURL != "" {
			ep["internalURL"] = e.InternalURL
		}
		if e.AdminURL != "" {
			ep["adminURL"] = e.AdminURL
		}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], ep)
	}
	out := make([]map[string]any, 0, len(order))
	for _, k := range order {
		out = append(out, map[string]any{
			"name":      k.name,
			"type":      k.typ,
			"endpoints": grouped[k],
		})
	}
	return out
}

// MarshalAccess renders an access document: the token, the user with the
// roles in effect, and the service catalog when one was assembled.
func MarshalAccess(a *Access, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlAccess{
			NS: NSIdentity,
			Token: xmlAccessToken{
				ID:      a.Token.ID,
				Expires: a.Token.Expires.UTC().Format(time.RFC3339),
			},
			User: xmlAccessUser{
				ID:         a.User.ID,
				Name:       a.User.Name,
				TenantName: a.DefaultTenantName,
			},
		}
		if a.Token.TenantID != nil {
			doc.Token.Tenant = &xmlAccessTenant{ID: *a.Token.TenantID, Name: a.TenantName}
		}
		for _, g := range a.Roles {
			r := xmlAccessRole{ID: g.RoleID, Name: g.RoleName}
			if g.TenantID != nil {
				r.TenantID = *g.TenantID
			}
			doc.User.Roles = append(doc.User.Roles, r)
		}
		for _, svc := range catalogToMaps(a.Catalog) {
			ent := xmlAccessCatEnt{Name: svc["name"].(string), Type: svc["type"].(string)}
			for _, ep := range svc["endpoints"].([]map[string]any) {
				ent.Endpoints = append(ent.Endpoints, xmlAccessCatEP{
					Region:      asString(ep["region"]),
					PublicURL:   asString(ep["publicURL"]),
					InternalURL: asString(ep["internalURL"]),
					AdminURL:    asString(ep["adminURL"]),
				})
			}
			doc.Catalog = append(doc.Catalog, ent)
		}
		return xml.Marshal(doc)
	}

	tok := map[string]any{
		"id":      a.Token.ID,
		"expires": a.Token.Expires.UTC().Format(time.RFC3339),
	}
	if a.Token.TenantID != nil {
		tenant := map[string]any{"id": *a.Token.TenantID}
		if a.TenantName != "" {
			tenant["name"] = a.TenantName
		}
		tok["tenant"] = tenant
	}
	user := map[string]any{
		"id":    a.User.ID,
		"name":  a.User.Name,
		"roles": accessRolesToMaps(a.Roles),
	}
	if a.DefaultTenantName != "" {
		user["tenantName"] = a.DefaultTenantName
	}
	access := map[string]any{"token": tok, "user": user}
	if len(a.Catalog) > 0 {
		access["serviceCatalog"] = catalogToMaps(a.Catalog)
	}
	return json.Marshal(map[string]any{"access": access})
}
