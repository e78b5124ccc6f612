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

package credential

import (
	"context"
	"errors"
)

// Domain errors
var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrDuplicateKey       = errors.New("credential key already exists")
)

// TypeEC2 marks access-key/secret pairs verified by request signature.
const TypeEC2 = "EC2"

// Credential is a non-password secret attached to a user, scoped to a
// tenant. For the EC2 type, Key is the access key id and Secret the
// signing secret.
type Credential struct {
	ID       string
	UserID   string
	TenantID *string
	Type     string
	Key      string
	Secret   string
}

// Repository defines credential persistence
type Repository interface {
	// Create stores a new credential
	Create(ctx context.Context, c *Credential) error

	// GetByID retrieves a credential by id
	GetByID(ctx context.Context, id string) (*Credential, error)

	// GetByAccessKey retrieves the EC2 credential with the given key
	GetByAccessKey(ctx context.Context, accessKey string) (*Credential, error)

	// Delete removes a credential
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every credential belonging to the user
	DeleteByUser(ctx context.Context, userID string) error

	// GetForUserPage lists a user's credentials
	GetForUserPage(ctx context.Context, userID, marker string, limit int) ([]*Credential, error)
	GetForUserPageMarkers(ctx context.Context, userID, marker string, limit int) (prev, next string, err error)
}
