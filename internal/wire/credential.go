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
	"bytes"
	"encoding/json"
	"encoding/xml"

	"github.com/keygate/keygate/internal/credential"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/identity"
)

// Credential documents. The listing mixes credential kinds, each entry
// wrapped in its own kind root:
//
//	{"credentials": [{"passwordCredentials": {...}}, {"ec2Credentials": {...}}],
//	 "credentials_links": []}
//
// Passwords are write-only and EC2 secrets are withheld on listing; only
// the singleton EC2 create response echoes the secret back.

type xmlEC2Creds struct {
	XMLName  xml.Name `xml:"ec2Credentials"`
	NS       string   `xml:"xmlns,attr,omitempty"`
	Access   string   `xml:"access,attr,omitempty"`
	Secret   string   `xml:"secret,attr,omitempty"`
	TenantID string   `xml:"tenantId,attr,omitempty"`
}

type xmlCredentials struct {
	XMLName  xml.Name          `xml:"credentials"`
	NS       string            `xml:"xmlns,attr"`
	Password *xmlPasswordCreds `xml:"passwordCredentials"`
	EC2      []xmlEC2Creds     `xml:"ec2Credentials"`
	Links    []xmlLink         `xml:"link"`
}

func ec2ToMap(c *credential.Credential, withSecret bool) map[string]any {
	m := map[string]any{"access": c.Key}
	if withSecret && c.Secret != "" {
		m["secret"] = c.Secret
	}
	if c.TenantID != nil {
		m["tenantId"] = *c.TenantID
	}
	return m
}

// MarshalCredentials renders a user's credential page. The password entry
// carries the username only.
func MarshalCredentials(creds *identity.Credentials, links []Link, f Format) ([]byte, error) {
	if f == XML {
		doc := xmlCredentials{NS: NSIdentity, Links: xmlLinks(links)}
		if creds.HasPassword {
			doc.Password = &xmlPasswordCreds{Username: creds.Username}
		}
		for _, c := range creds.EC2 {
			x := xmlEC2Creds{Access: c.Key}
			if c.TenantID != nil {
				x.TenantID = *c.TenantID
			}
			doc.EC2 = append(doc.EC2, x)
		}
		return xml.Marshal(doc)
	}
	items := make([]map[string]any, 0, len(creds.EC2)+1)
	if creds.HasPassword {
		items = append(items, map[string]any{
			"passwordCredentials": map[string]any{"username": creds.Username},
		})
	}
	for _, c := range creds.EC2 {
		items = append(items, map[string]any{"ec2Credentials": ec2ToMap(c, false)})
	}
	return json.Marshal(map[string]any{
		"credentials":       items,
		"credentials_links": links,
	})
}

// ParsedCredential is one credential document of either kind; exactly one
// kind is populated.
type ParsedCredential struct {
	Username string
	Password string
	HasPass  bool

	EC2 *credential.Credential
}

// UnmarshalCredential parses a credential document whose kind is chosen by
// its root element.
func UnmarshalCredential(data []byte, f Format) (*ParsedCredential, error) {
	if f == XML {
		root, err := xmlRootName(data)
		if err != nil {
			return nil, fault.BadRequest("cannot parse credential document").WithCause(err)
		}
		switch root {
		case "passwordCredentials":
			u, p, err := UnmarshalPasswordCredentials(data, f)
			if err != nil {
				return nil, err
			}
			return &ParsedCredential{Username: u, Password: p, HasPass: true}, nil
		case "ec2Credentials":
			c, err := UnmarshalEC2Credential(data, f)
			if err != nil {
				return nil, err
			}
			return &ParsedCredential{EC2: c}, nil
		}
		return nil, fault.BadRequest("unknown credential type %s", root)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fault.BadRequest("cannot parse credential document").WithCause(err)
	}
	if _, ok := doc["passwordCredentials"]; ok {
		u, p, err := UnmarshalPasswordCredentials(data, f)
		if err != nil {
			return nil, err
		}
		return &ParsedCredential{Username: u, Password: p, HasPass: true}, nil
	}
	if _, ok := doc["ec2Credentials"]; ok {
		c, err := UnmarshalEC2Credential(data, f)
		if err != nil {
			return nil, err
		}
		return &ParsedCredential{EC2: c}, nil
	}
	return nil, fault.BadRequest("expecting a credential document")
}

func xmlRootName(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// MarshalPasswordCredentials renders the password pseudo-credential. The
// password itself never appears.
func MarshalPasswordCredentials(username string, f Format) ([]byte, error) {
	if f == XML {
		return xml.Marshal(xmlPasswordCreds{NS: NSIdentity, Username: username})
	}
	return json.Marshal(map[string]any{
		"passwordCredentials": map[string]any{"username": username},
	})
}

// UnmarshalPasswordCredentials parses a passwordCredentials document into
// its username and password.
func UnmarshalPasswordCredentials(data []byte, f Format) (username, password string, err error) {
	if f == XML {
		var x xmlPasswordCreds
		if err := xml.Unmarshal(data, &x); err != nil {
			return "", "", fault.BadRequest("cannot parse passwordCredentials document").WithCause(err)
		}
		return x.Username, x.Password, nil
	}
	var doc struct {
		Password *jsonPasswordCreds `json:"passwordCredentials"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Password == nil {
		return "", "", fault.BadRequest("expecting a passwordCredentials document")
	}
	return doc.Password.Username, doc.Password.Password, nil
}

// MarshalEC2Credential renders one EC2 credential. The create response is
// the only place the secret is echoed; pass it with Secret set.
func MarshalEC2Credential(c *credential.Credential, f Format) ([]byte, error) {
	if f == XML {
		x := xmlEC2Creds{NS: NSIdentity, Access: c.Key, Secret: c.Secret}
		if c.TenantID != nil {
			x.TenantID = *c.TenantID
		}
		return xml.Marshal(x)
	}
	return json.Marshal(map[string]any{"ec2Credentials": ec2ToMap(c, true)})
}

// UnmarshalEC2Credential parses an ec2Credentials document.
func UnmarshalEC2Credential(data []byte, f Format) (*credential.Credential, error) {
	if f == XML {
		var x xmlEC2Creds
		if err := xml.Unmarshal(data, &x); err != nil {
			return nil, fault.BadRequest("cannot parse ec2Credentials document").WithCause(err)
		}
		c := &credential.Credential{Key: x.Access, Secret: x.Secret}
		if x.TenantID != "" {
			tid := x.TenantID
			c.TenantID = &tid
		}
		return c, nil
	}
	var doc struct {
		EC2 *struct {
			Access   string `json:"access"`
			Secret   string `json:"secret"`
			TenantID string `json:"tenantId"`
		} `json:"ec2Credentials"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.EC2 == nil {
		return nil, fault.BadRequest("expecting an ec2Credentials document")
	}
	c := &credential.Credential{Key: doc.EC2.Access, Secret: doc.EC2.Secret}
	if doc.EC2.TenantID != "" {
		tid := doc.EC2.TenantID
		c.TenantID = &tid
	}
	return c, nil
}
