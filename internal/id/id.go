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

// Package id generates identifiers for persisted records. All entities use
// UUIDv7 so that lexicographic order over ids follows creation time, which
// keeps marker pagination stable under concurrent inserts.
package id

import "github.com/google/uuid"

// NewUUIDv7 returns a time-ordered UUID string. It falls back to a random
// UUIDv4 only if the system clock or entropy source fails, which uuid.NewV7
// reports as an error.
func NewUUIDv7() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}

// NewUUID returns a fully random UUIDv4 string. Bearer token ids use this
// instead of NewUUIDv7: they are never paged, and embedding a timestamp in
// a credential gives an attacker free bits.
func NewUUID() string {
	return uuid.NewString()
}

// IsValid reports whether s parses as a UUID of any version. Handlers use it
// to reject malformed path identifiers before touching the store.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
