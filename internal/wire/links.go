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
	"encoding/xml"
	"fmt"
	"net/url"
)

// Link is one paging link of a collection response.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type xmlLink struct {
	XMLName xml.Name `xml:"link"`
	Rel     string   `xml:"rel,attr"`
	Href    string   `xml:"href,attr"`
}

// PageLinks builds the prev/next links for a collection page. The href is
// base?marker=<m>&limit=<l> with no other query parameters preserved; the
// order is always prev first, then next, and absent markers emit no link.
func PageLinks(base, prev, next string, limit int) []Link {
	links := make([]Link, 0, 2)
	if prev != "" {
		links = append(links, Link{Rel: "prev", Href: pageHref(base, prev, limit)})
	}
	if next != "" {
		links = append(links, Link{Rel: "next", Href: pageHref(base, next, limit)})
	}
	return links
}

func pageHref(base, marker string, limit int) string {
	if u, err := url.Parse(base); err == nil {
		q := url.Values{}
		q.Set("marker", marker)
		q.Set("limit", fmt.Sprintf("%d", limit))
		u.RawQuery = q.Encode()
		return u.String()
	}
	return fmt.Sprintf("%s?marker=%s&limit=%d", base, url.QueryEscape(marker), limit)
}

func xmlLinks(links []Link) []xmlLink {
	out := make([]xmlLink, 0, len(links))
	for _, l := range links {
		out = append(out, xmlLink{Rel: l.Rel, Href: l.Href})
	}
	return out
}
