package model

import (
	"time"

	"github.com/google/uuid"
)

// Structure represents the structures table: one hotel tenant on the platform.
type Structure struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	Plan               string     `json:"plan"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	InboxEnabled       bool       `json:"inbox_enabled"`
	CMSEnabled         bool       `json:"cms_enabled"`
	AIEnabled          bool       `json:"ai_enabled"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// Structure subscription statuses.
const (
	StructureStatusProvisioning = "provisioning"
	StructureStatusActive       = "active"
	StructureStatusSuspended    = "suspended"
	StructureStatusError        = "error"
)

// PlatformCollaborator represents the platform_collaborators table: a
// cross-tenant operator account, distinct from a hotel's own admin users.
type PlatformCollaborator struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Collaborator roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleSupport    = "support"
)
