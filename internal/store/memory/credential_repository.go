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

package memory

import (
	"context"

	"github.com/keygate/keygate/internal/credential"
)

type credentialRepository struct {
	s *Store
}

func cloneCredential(c *credential.Credential) *credential.Credential {
	cc := *c
	if c.TenantID != nil {
		tid := *c.TenantID
		cc.TenantID = &tid
	}
	return &cc
}

func (r *credentialRepository) Create(ctx context.Context, c *credential.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.creds {
		if existing.Type == c.Type && existing.Key == c.Key {
			return credential.ErrDuplicateKey
		}
	}
	r.s.creds[c.ID] = cloneCredential(c)
	return nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id string) (*credential.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.creds[id]
	if !ok {
		return nil, credential.ErrCredentialNotFound
	}
	return cloneCredential(c), nil
}

func (r *credentialRepository) GetByAccessKey(ctx context.Context, accessKey string) (*credential.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.creds {
		if c.Type == credential.TypeEC2 && c.Key == accessKey {
			return cloneCredential(c), nil
		}
	}
	return nil, credential.ErrCredentialNotFound
}

func (r *credentialRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.creds[id]; !ok {
		return credential.ErrCredentialNotFound
	}
	delete(r.s.creds, id)
	return nil
}

func (r *credentialRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.creds {
		if c.UserID == userID {
			delete(r.s.creds, id)
		}
	}
	return nil
}

func (r *credentialRepository) GetForUserPage(ctx context.Context, userID, marker string, limit int) ([]*credential.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return pageOf(r.forUserLocked(userID), credentialID, marker, limit), nil
}

func (r *credentialRepository) GetForUserPageMarkers(ctx context.Context, userID, marker string, limit int) (string, string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prev, next := markersOf(r.forUserLocked(userID), credentialID, marker, limit)
	return prev, next, nil
}

func (r *credentialRepository) forUserLocked(userID string) []*credential.Credential {
	var out []*credential.Credential
	for _, c := range r.s.creds {
		if c.UserID == userID {
			out = append(out, cloneCredential(c))
		}
	}
	sortDesc(out, credentialID)
	return out
}

func credentialID(c *credential.Credential) string { return c.ID }
