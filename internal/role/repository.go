package role

import "context"

// Repository defines role and grant storage. Collections page in stable
// descending id order; an empty marker means the first page.
type Repository interface {
	Create(ctx context.Context, r *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)

	// Delete removes the role and, atomically, every grant of it.
	Delete(ctx context.Context, id string) error

	GetPage(ctx context.Context, marker string, limit int) ([]*Role, error)
	GetPageMarkers(ctx context.Context, marker string, limit int) (prev, next string, err error)

	// Grant management. tenantID nil means a global grant. At most one
	// (user, role, tenant) grant may exist.
	Grant(ctx context.Context, g *Grant) error
	RevokeGrant(ctx context.Context, grantID string) error
	GetGrant(ctx context.Context, userID, roleID string, tenantID *string) (*Grant, error)

	// GetGrantsForUserPage pages a user's grants. A nil tenantID means all
	// scopes; a non-nil one narrows to grants on that tenant.
	GetGrantsForUserPage(ctx context.Context, userID string, tenantID *string, marker string, limit int) ([]*Grant, error)
	GetGrantsForUserPageMarkers(ctx context.Context, userID string, tenantID *string, marker string, limit int) (prev, next string, err error)

	// GetGlobalGrantsForUser returns grants with no tenant scope.
	GetGlobalGrantsForUser(ctx context.Context, userID string) ([]*Grant, error)

	// GetTenantGrantsForUser returns grants scoped to one tenant.
	GetTenantGrantsForUser(ctx context.Context, userID, tenantID string) ([]*Grant, error)
}
