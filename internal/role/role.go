package role

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleAlreadyExists  = errors.New("role already exists")
	ErrGrantNotFound      = errors.New("role grant not found")
	ErrGrantAlreadyExists = errors.New("role grant already exists")
)

// Role is a named authority a user can be granted, optionally owned by a
// service. Service-owned role names carry the owning service name as a
// "name:" prefix.
type Role struct {
	ID          string
	Name        string
	Description string
	ServiceID   string
	CreatedAt   time.Time

	// Extra carries attributes outside the contract set.
	Extra map[string]any
}

// ServicePrefix returns the service-name prefix of a qualified role name,
// or "" when the name is unqualified.
func ServicePrefix(name string) string {
	if i := strings.Index(name, ":"); i > 0 {
		return name[:i]
	}
	return ""
}

// Grant assigns a role to a user. A nil TenantID is a global grant; only
// global grants confer the admin and service-admin authorities.
type Grant struct {
	ID       string
	UserID   string
	RoleID   string
	TenantID *string
	RoleName string // denormalized for catalog and header rendering
}

// Global reports whether the grant applies outside any tenant scope.
func (g *Grant) Global() bool { return g.TenantID == nil }
