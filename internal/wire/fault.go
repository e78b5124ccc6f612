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
)

// Fault documents use the fault kind as the root element:
//
//	{"itemNotFound": {"code": 404, "message": "...", "details": "..."}}
//
//	<itemNotFound xmlns="..." code="404">
//	  <message>...</message>
//	  <details>...</details>
//	</itemNotFound>

type xmlFault struct {
	XMLName xml.Name
	NS      string `xml:"xmlns,attr"`
	Code    int    `xml:"code,attr"`
	Message string `xml:"message"`
	Details string `xml:"details,omitempty"`
}

// MarshalFault renders any error as a fault document and returns the HTTP
// status to send with it. Non-fault errors render as identityFault.
func MarshalFault(err error, f Format) ([]byte, int, error) {
	flt := fault.As(err)
	if f == XML {
		body, merr := xml.Marshal(xmlFault{
			XMLName: xml.Name{Local: string(flt.Kind)},
			NS:      NSIdentity,
			Code:    flt.Code,
			Message: flt.Message,
			Details: flt.Details,
		})
		return body, flt.Code, merr
	}
	inner := map[string]any{
		"code":    flt.Code,
		"message": flt.Message,
	}
	if flt.Details != "" {
		inner["details"] = flt.Details
	}
	body, merr := json.Marshal(map[string]any{string(flt.Kind): inner})
	return body, flt.Code, merr
}
