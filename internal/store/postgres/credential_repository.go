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

	"github.com/keygate/keygate/internal/credential"
)

// CredentialRepository implements credential.Repository
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = "id, user_id, tenant_id, type, key, secret"

func scanCredential(row pgx.Row) (*credential.Credential, error) {
	var c credential.Credential
	err := row.Scan(&c.ID, &c.UserID, &c.TenantID, &c.Type, &c.Key, &c.Secret)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create stores a new credential
func (r *CredentialRepository) Create(ctx context.Context, c *credential.Credential) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (id, user_id, tenant_id, type, key, secret)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.UserID, c.TenantID, c.Type, c.Key, c.Secret)
	if err != nil {
		if isUniqueViolation(err, "credentials_type_key_key") {
			return credential.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

// GetByID retrieves a credential by id
func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*credential.Credential, error) {
	c, err := scanCredential(r.db.pool.QueryRow(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE id = $1", id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, credential.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return c, nil
}

// GetByAccessKey retrieves the EC2 credential with the given key
func (r *CredentialRepository) GetByAccessKey(ctx context.Context, accessKey string) (*credential.Credential, error) {
	c, err := scanCredential(r.db.pool.QueryRow(ctx,
		"SELECT "+credentialColumns+" FROM credentials WHERE type = $1 AND key = $2",
		credential.TypeEC2, accessKey))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, credential.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return c, nil
}

// Delete removes a credential
func (r *CredentialRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, "DELETE FROM credentials WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return credential.ErrCredentialNotFound
	}
	return nil
}

// DeleteByUser removes every credential belonging to the user
func (r *CredentialRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.pool.Exec(ctx, "DELETE FROM credentials WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to delete user credentials: %w", err)
	}
	return nil
}

// GetForUserPage lists a user's credentials, newest first
func (r *CredentialRepository) GetForUserPage(ctx context.Context, userID, marker string, limit int) ([]*credential.Credential, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+credentialColumns+` FROM credentials
		WHERE user_id = $1 AND ($2 = '' OR id < $2)
		ORDER BY id DESC LIMIT $3
	`, userID, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user credentials: %w", err)
	}
	defer rows.Close()

	out := make([]*credential.Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	return out, nil
}

// GetForUserPageMarkers returns the prev/next markers for GetForUserPage
func (r *CredentialRepository) GetForUserPageMarkers(ctx context.Context, userID, marker string, limit int) (string, string, error) {
	p := pager{
		pool: r.db.pool,
		ids:  "SELECT id FROM credentials WHERE user_id = $1",
		args: []any{userID},
	}
	return p.markers(ctx, marker, limit)
}
