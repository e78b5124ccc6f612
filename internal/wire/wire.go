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

// Package wire owns the public serialization contract: every entity renders
// to and parses from both JSON and XML. JSON singletons are wrapped in an
// entity root, collections in a plural root plus a "<root>_links" list.
// XML uses the identity namespace for core entities and the OS-KSADM
// extension namespace for services and endpoint templates.
package wire

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/keygate/keygate/internal/fault"
)

// XML namespaces of the public API.
const (
	NSIdentity = "http://docs.openstack.org/identity/api/v2.0"
	NSAdmin    = "http://docs.openstack.org/identity/api/ext/OS-KSADM/v1.0"
)

// Format selects the wire representation.
type Format int

const (
	JSON Format = iota
	XML
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == XML {
		return "application/xml"
	}
	return "application/json"
}

// NegotiateAccept picks the response format from the Accept header. JSON is
// the default; only an explicit XML preference switches.
func NegotiateAccept(r *http.Request) Format {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/xml") || strings.Contains(accept, "text/xml") {
		// An explicit JSON entry wins over XML regardless of order; clients
		// that send both almost always mean the JSON they listed.
		if strings.Contains(accept, "application/json") {
			return JSON
		}
		return XML
	}
	return JSON
}

// NegotiateContentType picks the request-body format from the Content-Type
// header. An unrecognized type is reported as a bad request.
func NegotiateContentType(r *http.Request) (Format, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return JSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return JSON, fault.BadRequest("invalid Content-Type header")
	}
	switch mt {
	case "application/json":
		return JSON, nil
	case "application/xml", "text/xml":
		return XML, nil
	}
	return JSON, fault.BadRequest("unsupported Content-Type %s", mt)
}

// asString renders an attribute value as a string. Integer-valued ids
// arrive as JSON numbers and are rendered without a fraction.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

// asBool coerces an enabled-style attribute: booleans, the strings "true"
// and "false" in any case, and the integers 1 and 0 are all accepted.
func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "true", "1":
			return true, nil
		case "false", "0", "":
			return false, nil
		}
	case float64:
		if b == 1 {
			return true, nil
		}
		if b == 0 {
			return false, nil
		}
	}
	return false, fault.BadRequest("cannot interpret %v as a boolean", v)
}

// xmlBool renders a boolean attribute.
func xmlBool(b bool) string {
	return strconv.FormatBool(b)
}
