package model

import (
	"time"

	"github.com/google/uuid"
)

// EmailChannel represents the email_channels table: a configured inbound
// email endpoint for one property. The address is unique platform-wide,
// not per tenant.
type EmailChannel struct {
	ID           uuid.UUID `json:"id"`
	PropertyID   uuid.UUID `json:"property_id"`
	EmailAddress string    `json:"email_address"`
	DisplayName  string    `json:"display_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	Provider     string    `json:"provider,omitempty"`

	// OAuth tokens are plaintext in memory only; the store encrypts them
	// before persisting (see EncryptedAccessToken and friends).
	OAuthAccessToken  string     `json:"-"`
	OAuthRefreshToken string     `json:"-"`
	OAuthExpiry       *time.Time `json:"oauth_expiry,omitempty"`

	EncryptedAccessToken  []byte `json:"-"`
	AccessTokenIV         []byte `json:"-"`
	EncryptedRefreshToken []byte `json:"-"`
	RefreshTokenIV        []byte `json:"-"`

	// AssignedUsers is the full set of admin users handling this channel.
	// Updates replace the set, they never merge into it.
	AssignedUsers []string `json:"assigned_users"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
