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

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/credential"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/id"
)

// Credentials is the listing view of a user's credentials: the password
// pseudo-entry when a password is set, plus the stored EC2 credentials
// with secrets withheld.
type Credentials struct {
	HasPassword bool
	Username    string
	EC2         []*credential.Credential
}

// ListUserCredentials pages a user's credentials. Admin only. The
// password pseudo-entry appears on the first page only.
func (s *Service) ListUserCredentials(ctx context.Context, authToken, userID, marker string, limit int) (*Credentials, string, string, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, "", "", err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, "", "", err
	}

	limit = s.clampLimit(limit)
	ec2, err := s.creds.GetForUserPage(ctx, u.ID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("list credentials: %w", err)
	}
	prev, next, err := s.creds.GetForUserPageMarkers(ctx, u.ID, marker, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("page credentials: %w", err)
	}

	creds := &Credentials{EC2: withheldSecrets(ec2)}
	if marker == "" && u.PasswordHash != "" {
		creds.HasPassword = true
		creds.Username = u.Name
	}
	return creds, prev, next, nil
}

// GetPasswordCredentials returns the username of the user's password
// credential. Admin only; the password itself is never returned.
func (s *Service) GetPasswordCredentials(ctx context.Context, authToken, userID string) (string, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return "", err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.PasswordHash == "" {
		return "", fault.NotFound("password credentials could not be found")
	}
	return u.Name, nil
}

// CreatePasswordCredentials attaches a password to a user that has none.
// Admin only; a username, when supplied, must match the user's name.
func (s *Service) CreatePasswordCredentials(ctx context.Context, authToken, userID, username, password string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	if password == "" {
		return fault.BadRequest("expecting a password")
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if username != "" && username != u.Name {
		return fault.BadRequest("user name does not match")
	}
	if u.PasswordHash != "" {
		return fault.BadRequest("password credentials already exist for user")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCredentialCreated,
		ActorID:  caller.ID,
		Resource: u.ID,
		Metadata: map[string]any{"credential_type": "password"},
	})
	return nil
}

// UpdatePasswordCredentials replaces a user's password and, when a
// different username is supplied, renames the user. Admin only; renames
// must preserve name uniqueness.
func (s *Service) UpdatePasswordCredentials(ctx context.Context, authToken, userID, username, password string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	if password == "" {
		return fault.BadRequest("expecting a password")
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if username != "" && username != u.Name {
		if _, err := s.users.GetByName(ctx, username); err == nil {
			return fault.Conflict("a user with that name already exists")
		} else if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("check username: %w", err)
		}
		u.Name = username
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordChanged,
		ActorID:  caller.ID,
		Resource: u.ID,
	})
	return nil
}

// DeletePasswordCredentials removes a user's password. Admin only.
func (s *Service) DeletePasswordCredentials(ctx context.Context, authToken, userID string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return fault.NotFound("password credentials could not be found")
	}

	u.PasswordHash = ""
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCredentialDeleted,
		ActorID:  caller.ID,
		Resource: u.ID,
		Metadata: map[string]any{"credential_type": "password"},
	})
	return nil
}

// CreateEC2Credentials stores an access-key/secret pair for a user. Admin
// only; the access key must be globally unique.
func (s *Service) CreateEC2Credentials(ctx context.Context, authToken, userID string, c *credential.Credential) (*credential.Credential, error) {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if c.Key == "" || c.Secret == "" {
		return nil, fault.BadRequest("expecting an access key and secret")
	}
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.TenantID != nil {
		if err := s.requireTenantExists(ctx, *c.TenantID); err != nil {
			return nil, err
		}
	}
	if _, err := s.creds.GetByAccessKey(ctx, c.Key); err == nil {
		return nil, fault.Conflict("a credential with that access key already exists")
	} else if !errors.Is(err, credential.ErrCredentialNotFound) {
		return nil, fmt.Errorf("check access key: %w", err)
	}

	created := &credential.Credential{
		ID:       id.NewUUIDv7(),
		UserID:   u.ID,
		TenantID: c.TenantID,
		Type:     credential.TypeEC2,
		Key:      c.Key,
		Secret:   c.Secret,
	}
	if err := s.creds.Create(ctx, created); err != nil {
		if errors.Is(err, credential.ErrDuplicateKey) {
			return nil, fault.Conflict("a credential with that access key already exists")
		}
		return nil, fmt.Errorf("create credential: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCredentialCreated,
		ActorID:  caller.ID,
		Resource: u.ID,
		Metadata: map[string]any{"credential_type": credential.TypeEC2},
	})
	return created, nil
}

// GetEC2Credentials returns one of a user's EC2 credentials by access
// key, secret withheld. Admin only.
func (s *Service) GetEC2Credentials(ctx context.Context, authToken, userID, accessKey string) (*credential.Credential, error) {
	if _, err := s.requireAdmin(ctx, authToken); err != nil {
		return nil, err
	}
	c, err := s.loadUserCredential(ctx, userID, accessKey)
	if err != nil {
		return nil, err
	}
	withheld := *c
	withheld.Secret = ""
	return &withheld, nil
}

// DeleteEC2Credentials removes one of a user's EC2 credentials by access
// key. Admin only.
func (s *Service) DeleteEC2Credentials(ctx context.Context, authToken, userID, accessKey string) error {
	caller, err := s.requireAdmin(ctx, authToken)
	if err != nil {
		return err
	}
	c, err := s.loadUserCredential(ctx, userID, accessKey)
	if err != nil {
		return err
	}
	if err := s.creds.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCredentialDeleted,
		ActorID:  caller.ID,
		Resource: userID,
		Metadata: map[string]any{"credential_type": credential.TypeEC2},
	})
	return nil
}

// loadUserCredential fetches a credential by access key and pins it to
// the user named in the route, so one user's key cannot be addressed
// through another's path.
func (s *Service) loadUserCredential(ctx context.Context, userID, accessKey string) (*credential.Credential, error) {
	c, err := s.creds.GetByAccessKey(ctx, accessKey)
	if err != nil {
		if errors.Is(err, credential.ErrCredentialNotFound) {
			return nil, fault.NotFound("the credential could not be found")
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if c.UserID != userID {
		return nil, fault.NotFound("the credential could not be found")
	}
	return c, nil
}

func withheldSecrets(creds []*credential.Credential) []*credential.Credential {
	out := make([]*credential.Credential, 0, len(creds))
	for _, c := range creds {
		cc := *c
		cc.Secret = ""
		out = append(out, &cc)
	}
	return out
}
