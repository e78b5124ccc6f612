package tenant

import (
	"time"
)

// Tenant is an isolated project or customer account that tokens can be
// scoped to. ID is the externally visible identifier.
type Tenant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Extra carries attributes outside the contract set, preserved across
	// serialization round trips.
	Extra map[string]any `json:"-"`
}
