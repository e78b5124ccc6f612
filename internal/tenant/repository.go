package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrDuplicateName  = errors.New("tenant name already exists")
	ErrTenantNotEmpty = errors.New("tenant has users or role grants")
)

// Repository defines tenant storage. Collections page in stable descending
// id order; an empty marker means the first page.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByName(ctx context.Context, name string) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Delete(ctx context.Context, id string) error

	GetPage(ctx context.Context, marker string, limit int) ([]*Tenant, error)
	GetPageMarkers(ctx context.Context, marker string, limit int) (prev, next string, err error)

	// GetForUserPage lists tenants the user holds a role grant on.
	GetForUserPage(ctx context.Context, userID, marker string, limit int) ([]*Tenant, error)
	GetForUserPageMarkers(ctx context.Context, userID, marker string, limit int) (prev, next string, err error)

	// IsEmpty reports whether no user or role grant references the tenant.
	// Delete refuses non-empty tenants.
	IsEmpty(ctx context.Context, id string) (bool, error)
}
