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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/keygate/keygate/internal/token"
)

// TokenRepository implements token.Repository
type TokenRepository struct {
	db *DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = "id, user_id, tenant_id, expires, created_at"

func scanToken(row pgx.Row) (*token.Token, error) {
	var t token.Token
	err := row.Scan(&t.ID, &t.UserID, &t.TenantID, &t.Expires, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create stores a new token
func (r *TokenRepository) Create(ctx context.Context, t *token.Token) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tokens (id, user_id, tenant_id, expires, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.UserID, t.TenantID, t.Expires, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by id
func (r *TokenRepository) GetByID(ctx context.Context, id string) (*token.Token, error) {
	t, err := scanToken(r.db.pool.QueryRow(ctx,
		"SELECT "+tokenColumns+" FROM tokens WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, token.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return t, nil
}

// Delete revokes a token
func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, "DELETE FROM tokens WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return token.ErrTokenNotFound
	}
	return nil
}

// GetForUser returns the user's unexpired unscoped token with the
// greatest expiry
func (r *TokenRepository) GetForUser(ctx context.Context, userID string) (*token.Token, error) {
	t, err := scanToken(r.db.pool.QueryRow(ctx, `
		SELECT `+tokenColumns+` FROM tokens
		WHERE user_id = $1 AND tenant_id IS NULL AND expires > NOW()
		ORDER BY expires DESC LIMIT 1
	`, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, token.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get user token: %w", err)
	}
	return t, nil
}

// GetForUserByTenant returns the user's unexpired token scoped to the
// tenant with the greatest expiry
func (r *TokenRepository) GetForUserByTenant(ctx context.Context, userID, tenantID string) (*token.Token, error) {
	t, err := scanToken(r.db.pool.QueryRow(ctx, `
		SELECT `+tokenColumns+` FROM tokens
		WHERE user_id = $1 AND tenant_id = $2 AND expires > NOW()
		ORDER BY expires DESC LIMIT 1
	`, userID, tenantID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, token.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get user token: %w", err)
	}
	return t, nil
}

// DeleteByUser removes every token belonging to the user
func (r *TokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.pool.Exec(ctx, "DELETE FROM tokens WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

// DeleteExpired reaps tokens whose expiry has passed and reports how many
// rows were removed
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.pool.Exec(ctx, "DELETE FROM tokens WHERE expires <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
