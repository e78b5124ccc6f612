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
	"time"

	"github.com/keygate/keygate/internal/token"
)

type tokenRepository struct {
	s *Store
}

func cloneToken(t *token.Token) *token.Token {
	c := *t
	if t.TenantID != nil {
		tid := *t.TenantID
		c.TenantID = &tid
	}
	return &c
}

func (r *tokenRepository) Create(ctx context.Context, t *token.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tokens[t.ID] = cloneToken(t)
	return nil
}

func (r *tokenRepository) GetByID(ctx context.Context, id string) (*token.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[id]
	if !ok {
		return nil, token.ErrTokenNotFound
	}
	return cloneToken(t), nil
}

func (r *tokenRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[id]; !ok {
		return token.ErrTokenNotFound
	}
	delete(r.s.tokens, id)
	return nil
}

func (r *tokenRepository) GetForUser(ctx context.Context, userID string) (*token.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.liveLocked(userID, nil)
}

func (r *tokenRepository) GetForUserByTenant(ctx context.Context, userID, tenantID string) (*token.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.liveLocked(userID, &tenantID)
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, id)
		}
	}
	return nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	var n int64
	for id, t := range r.s.tokens {
		if !t.Expires.After(now) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

// liveLocked returns the unexpired token for the scope with the greatest
// expiry. A nil tenantID selects unscoped tokens only.
func (r *tokenRepository) liveLocked(userID string, tenantID *string) (*token.Token, error) {
	now := time.Now()
	var best *token.Token
	for _, t := range r.s.tokens {
		if t.UserID != userID || !t.Expires.After(now) {
			continue
		}
		if !sameScope(t.TenantID, tenantID) {
			continue
		}
		if best == nil || t.Expires.After(best.Expires) {
			best = t
		}
	}
	if best == nil {
		return nil, token.ErrTokenNotFound
	}
	return cloneToken(best), nil
}
