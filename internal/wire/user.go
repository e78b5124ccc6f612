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
	"github.com/keygate/keygate/internal/identity"
)

// ParsedUser carries a parsed user document plus the write-only password
// attribute, which is accepted on input and never rendered on output.
type ParsedUser struct {
	User     *identity.User
	Password string
}

type xmlUser struct {
	XMLName  xml.Name `xml:"user"`
	NS       string   `xml:"xmlns,attr,omitempty"`
	ID       string   `xml:"id,attr,omitempty"`
	Name     string   `xml:"name,attr,omitempty"`
	Email    string   `xml:"email,attr,omitempty"`
	Enabled  string   `xml:"enabled,attr,omitempty"`
	TenantID string   `xml:"tenantId,attr,omitempty"`
	Password string   `xml:"password,attr,omitempty"`
}

type xmlUsers struct {
	XMLName xml.Name  `xml:"users"`
	NS      string    `xml:"xmlns,attr"`
	Users   []xmlUser `xml:"user"`
	Links   []xmlLink `xml:"link"`
}

func userToMap(u *identity.User) map[string]any {
	m := make(map[string]any, len(u.Extra)+5)
	for k, v := range u.Extra {
		m[k] = v
	}
	// The password never leaves the service, not even hashed.
	delete(m, "password")
	m["id"] = u.ID
	m["name"] = u.Name
	m["enabled"] = u.Enabled
	if u.Email != "" {
		m["email"] = u.Email
	}
	if u.TenantID != nil {
		m["tenantId"] = *u.TenantID
	}
	return m
}

func userFromMap(m map[string]any) (*ParsedUser, error) {
	p := &ParsedUser{User: &identity.User{}}
	for k, v := range m {
		switch k {
		case "id":
			p.User.ID = asString(v)
		case "name":
			p.User.Name = asString(v)
		case "email":
			p.User.Email = asString(v)
		case "password":
			p.Password = asString(v)
		case "enabled":
			b, err := asBool(v)
			if err != nil {
				return nil, err
			}
			p.User.Enabled = b
		case "tenantId":
			if v != nil {
				tid := asString(v)
				p.User.TenantID = &tid
			}
		default:
			if p.User.Extra == nil {
				p.User.Extra = make(map[string]any)
			}
			p.User.Extra[k] = v
		}
	}
	return p, nil
}

func userToXML(u *identity.User, ns string) xmlUser {
	x := xmlUser{
		NS:      ns,
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Enabled: xmlBool(u.Enabled),
	}
	if u.TenantID != nil {
		x.TenantID = *u.TenantID
	}
	return x
}

// MarshalUser renders one user under its singleton root. The password is
// never included.
func MarshalUser(u *identity.User, f Format) ([]byte, error) {
	if f == XML {
		return xml.Marshal(userToXML(u, NSIdentity))
	}
	return json.Marshal(map[string]any{"user": userToMap(u)})
}

// MarshalUsers renders a user page with its paging links.
func MarshalUsers(us []*identity.User, links []Link, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlUsers{NS: NSIdentity, Links: xmlLinks(links)}
		for _, u := range us {
			doc.Users = append(doc.Users, userToXML(u, ""))
		}
		return xml.Marshal(doc)
	}
	items := make([]map[string]any, 0, len(us))
	for _, u := range us {
		items = append(items, userToMap(u))
	}
	return json.Marshal(map[string]any{
		"users":       items,
		"users_links": links,
	})
}

// UnmarshalUser parses a user document, separating the write-only password
// attribute. Unknown attributes pass through into Extra.
func UnmarshalUser(data []byte, f Format) (*ParsedUser, error) {
	if f == XML {
		var x xmlUser
		if err := xml.Unmarshal(data, &x); err != nil {
			return nil, fault.BadRequest("cannot parse user document").WithCause(err)
		}
		p := &ParsedUser{User: &identity.User{
			ID:    x.ID,
			Name:  x.Name,
			Email: x.Email,
		}, Password: x.Password}
		if x.Enabled != "" {
			b, err := asBool(x.Enabled)
			if err != nil {
				return nil, err
			}
			p.User.Enabled = b
		}
		if x.TenantID != "" {
			tid := x.TenantID
			p.User.TenantID = &tid
		}
		return p, nil
	}
	var doc struct {
		User map[string]any `json:"user"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.User == nil {
		return nil, fault.BadRequest("expecting a user document")
	}
	return userFromMap(doc.User)
}
