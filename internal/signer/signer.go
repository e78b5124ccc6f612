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

// Package signer recomputes EC2-style request signatures so that signed
// requests can be verified against a stored secret. Signing is a pure
// function of the request fields; no request parsing happens here.
package signer

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net"
	"sort"
	"strings"
)

// Request carries the canonicalizable fields of a signed request. Params
// holds the query or form parameters excluding the Signature itself.
type Request struct {
	Verb   string
	Host   string
	Path   string
	Params map[string]string
}

// Sign computes the base64 signature of req under secret. The scheme is
// selected by the SignatureVersion parameter: "2" canonicalizes
// verb, host, path and the sorted percent-encoded parameters and signs
// with HMAC-SHA256; "1" concatenates case-insensitively sorted key/value
// pairs under HMAC-SHA1; "0" signs Action plus Timestamp under HMAC-SHA1.
func Sign(secret string, req Request) (string, error) {
	switch req.Params["SignatureVersion"] {
	case "0":
		return signV0(secret, req.Params), nil
	case "1":
		return signV1(secret, req.Params), nil
	case "2":
		return signV2(secret, req), nil
	default:
		return "", fmt.Errorf("unknown signature version: %q", req.Params["SignatureVersion"])
	}
}

// Verify reports whether signature matches the one recomputed from req.
// With stripPort set, the :port suffix is removed from the host before
// canonicalization; callers retry with it set when clients signed against
// the bare hostname.
func Verify(secret, signature string, req Request, stripPort bool) bool {
	if stripPort {
		if host, _, err := net.SplitHostPort(req.Host); err == nil {
			req.Host = host
		}
	}
	expected, err := Sign(secret, req)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

func signV0(secret string, params map[string]string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(params["Action"] + params["Timestamp"]))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signV1(secret string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	mac := hmac.New(sha1.New, []byte(secret))
	for _, k := range keys {
		mac.Write([]byte(k))
		mac.Write([]byte(params[k]))
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signV2(secret string, req Request) string {
	// The SignatureMethod parameter participates in the canonical string,
	// pinned to the method actually used.
	params := make(map[string]string, len(req.Params)+1)
	for k, v := range req.Params {
		params[k] = v
	}
	params["SignatureMethod"] = "HmacSHA256"

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k, false)+"="+percentEncode(params[k], true))
	}

	stringToSign := req.Verb + "\n" + req.Host + "\n" + req.Path + "\n" + strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode escapes everything outside the unreserved set. Keys escape
// the tilde as well; values keep it, matching what EC2 clients sign.
func percentEncode(s string, keepTilde bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || c == '.':
			b.WriteByte(c)
		case c == '~' && keepTilde:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
