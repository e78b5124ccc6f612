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
	"os"
	"time"

	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/id"
	"github.com/keygate/keygate/internal/role"
)

const (
	EnvBootstrapAdminUser     = "KEYGATE_BOOTSTRAP_ADMIN_USER"
	EnvBootstrapAdminPassword = "KEYGATE_BOOTSTRAP_ADMIN_PASSWORD"
)

// BootstrapConfig names the roles that must exist before the core can
// resolve them at construction.
type BootstrapConfig struct {
	AdminRoleName        string
	ServiceAdminRoleName string
}

// Bootstrap ensures the built-in authority roles exist, and, when the
// bootstrap environment names one, provisions an initial administrator
// holding a global admin grant. It runs before NewService so that the
// startup role resolution always finds its roles. Re-running it is a
// no-op for anything that already exists.
func Bootstrap(ctx context.Context, repos Repositories, hasher *PasswordHasher, auditLogger audit.Logger, cfg BootstrapConfig) error {
	adminRole, err := ensureRole(ctx, repos.Roles, cfg.AdminRoleName)
	if err != nil {
		return err
	}
	if _, err := ensureRole(ctx, repos.Roles, cfg.ServiceAdminRoleName); err != nil {
		return err
	}

	username := os.Getenv(EnvBootstrapAdminUser)
	if username == "" {
		return nil
	}
	password := os.Getenv(EnvBootstrapAdminPassword)
	if password == "" {
		return fmt.Errorf("%s is set but %s is empty", EnvBootstrapAdminUser, EnvBootstrapAdminPassword)
	}

	// Look up or create the initial administrator.
	user, err := repos.Users.GetByName(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		hash, herr := hasher.Hash(password)
		if herr != nil {
			return fmt.Errorf("failed to hash bootstrap password: %w", herr)
		}
		now := time.Now().UTC()
		user = &User{
			ID:           id.NewUUIDv7(),
			Name:         username,
			PasswordHash: hash,
			Enabled:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create bootstrap admin: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	// Grant the global admin role unless it is already held.
	if _, err := repos.Roles.GetGrant(ctx, user.ID, adminRole.ID, nil); err == nil {
		return nil
	} else if !errors.Is(err, role.ErrGrantNotFound) {
		return fmt.Errorf("failed to check bootstrap grant: %w", err)
	}

	grant := &role.Grant{
		ID:       id.NewUUIDv7(),
		UserID:   user.ID,
		RoleID:   adminRole.ID,
		RoleName: adminRole.Name,
	}
	if err := repos.Roles.Grant(ctx, grant); err != nil {
		return fmt.Errorf("failed to grant admin role during bootstrap: %w", err)
	}

	auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleGranted,
		ActorID:  user.ID,
		Resource: user.ID,
		Metadata: map[string]any{"role": adminRole.Name, AttrBootstrap: true},
	})

	fmt.Printf("Successfully bootstrapped initial admin: %s\n", username)
	return nil
}

// AttrBootstrap marks audit events emitted by startup provisioning.
const AttrBootstrap = "bootstrap"

func ensureRole(ctx context.Context, roles role.Repository, name string) (*role.Role, error) {
	r, err := roles.GetByName(ctx, name)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, role.ErrRoleNotFound) {
		return nil, fmt.Errorf("failed to look up role %q: %w", name, err)
	}

	r = &role.Role{
		ID:        id.NewUUIDv7(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := roles.Create(ctx, r); err != nil {
		// Another replica may have won the race.
		if errors.Is(err, role.ErrRoleAlreadyExists) {
			return roles.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("failed to create role %q: %w", name, err)
	}
	return r, nil
}
