package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hotelaccelerator/backoffice-service/internal/audit"
	"github.com/hotelaccelerator/backoffice-service/internal/errs"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

// ChannelInput is the payload for creating or updating an email channel.
type ChannelInput struct {
	EmailAddress  string   `json:"email_address"`
	DisplayName   string   `json:"display_name"`
	IsActive      bool     `json:"is_active"`
	Provider      string   `json:"provider"`
	AssignedUsers []string `json:"assigned_users"`
}

// EmailChannelService owns email channel CRUD, user assignment, and the
// OAuth-callback upsert path.
type EmailChannelService struct {
	channels *store.ChannelRepository
	logger   *audit.Logger
}

// NewEmailChannelService creates a new EmailChannelService.
func NewEmailChannelService(channels *store.ChannelRepository, logger *audit.Logger) *EmailChannelService {
	return &EmailChannelService{channels: channels, logger: logger}
}

// ListChannels returns a property's channels with their assignment sets
// attached. Assignments are loaded per channel; fine at configuration-screen
// scale.
func (s *EmailChannelService) ListChannels(ctx context.Context, propertyID uuid.UUID) ([]model.EmailChannel, error) {
	channels, err := s.channels.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	for i := range channels {
		assigned, err := s.channels.GetAssignments(ctx, channels[i].ID)
		if err != nil {
			return nil, err
		}
		channels[i].AssignedUsers = assigned
	}
	return channels, nil
}

// GetChannel loads a channel scoped to the property. An absent channel is
// (nil, nil), not an error; a channel owned by another property is an
// authorization failure.
func (s *EmailChannelService) GetChannel(ctx context.Context, propertyID, channelID uuid.UUID) (*model.EmailChannel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		log.Error().Err(err).Str("channel_id", channelID.String()).Msg("Failed to load channel")
		return nil, err
	}
	if ch == nil {
		return nil, nil
	}
	if ch.PropertyID != propertyID {
		return nil, errs.Authorization("channel belongs to another property")
	}

	assigned, err := s.channels.GetAssignments(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	ch.AssignedUsers = assigned
	return ch, nil
}

// CreateChannel validates the address, enforces platform-wide email
// uniqueness, persists, and sets the initial assignment set.
func (s *EmailChannelService) CreateChannel(ctx context.Context, propertyID uuid.UUID, in ChannelInput, actorID string) (*model.EmailChannel, error) {
	email := strings.TrimSpace(in.EmailAddress)
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}

	existing, err := s.channels.GetByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check channel email uniqueness")
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("email address %q is already in use", email)
	}

	ch := &model.EmailChannel{
		PropertyID:   propertyID,
		EmailAddress: email,
		DisplayName:  in.DisplayName,
		IsActive:     in.IsActive,
		Provider:     in.Provider,
	}

	persist := func(ctx context.Context) error {
		if err := s.channels.Create(ctx, ch); err != nil {
			return err
		}
		if len(in.AssignedUsers) > 0 {
			if err := s.channels.ReplaceAssignments(ctx, ch.ID, in.AssignedUsers); err != nil {
				return err
			}
			ch.AssignedUsers = in.AssignedUsers
		}
		return nil
	}
	if actorID != "" {
		err = s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "channel.create",
			TargetType: "email_channel",
			Metadata: map[string]interface{}{
				"email_address":  email,
				"assigned_users": len(in.AssignedUsers),
			},
		}, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// UpdateChannel updates scalar fields and unconditionally replaces the
// assignment set; an empty assigned_users clears every assignment.
func (s *EmailChannelService) UpdateChannel(ctx context.Context, propertyID, channelID uuid.UUID, in ChannelInput, actorID string) (*model.EmailChannel, error) {
	ch, err := s.loadOwned(ctx, propertyID, channelID)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.EmailAddress)
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}
	if email != ch.EmailAddress {
		existing, err := s.channels.GetByEmail(ctx, email)
		if err != nil {
			log.Error().Err(err).Msg("Failed to check channel email uniqueness")
			return nil, err
		}
		if existing != nil && existing.ID != ch.ID {
			return nil, errs.Conflict("email address %q is already in use", email)
		}
	}

	ch.EmailAddress = email
	ch.DisplayName = in.DisplayName
	ch.IsActive = in.IsActive
	ch.Provider = in.Provider

	persist := func(ctx context.Context) error {
		if err := s.channels.Update(ctx, ch); err != nil {
			return err
		}
		if err := s.channels.ReplaceAssignments(ctx, ch.ID, in.AssignedUsers); err != nil {
			return err
		}
		ch.AssignedUsers = in.AssignedUsers
		return nil
	}
	if actorID != "" {
		err = s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "channel.update",
			TargetType: "email_channel",
			TargetID:   ch.ID.String(),
			Metadata: map[string]interface{}{
				"email_address":  email,
				"assigned_users": len(in.AssignedUsers),
			},
		}, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// DeleteChannel removes a channel after the ownership check.
func (s *EmailChannelService) DeleteChannel(ctx context.Context, propertyID, channelID uuid.UUID, actorID string) error {
	ch, err := s.loadOwned(ctx, propertyID, channelID)
	if err != nil {
		return err
	}

	remove := func(ctx context.Context) error {
		return s.channels.Delete(ctx, ch.ID)
	}
	if actorID != "" {
		return s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "channel.delete",
			TargetType: "email_channel",
			TargetID:   ch.ID.String(),
		}, remove)
	}
	return remove(ctx)
}

// ToggleChannelStatus flips the active flag atomically in the database and
// returns the new value.
func (s *EmailChannelService) ToggleChannelStatus(ctx context.Context, propertyID, channelID uuid.UUID, actorID string) (bool, error) {
	ch, err := s.loadOwned(ctx, propertyID, channelID)
	if err != nil {
		return false, err
	}

	var isActive bool
	flip := func(ctx context.Context) error {
		var err error
		isActive, err = s.channels.ToggleActive(ctx, ch.ID)
		return err
	}
	if actorID != "" {
		err = s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "channel.toggle_status",
			TargetType: "email_channel",
			TargetID:   ch.ID.String(),
		}, flip)
	} else {
		err = flip(ctx)
	}
	return isActive, err
}

// UpsertOAuthChannel updates tokens for an existing channel matched by
// email, or creates a new channel. This path is only reachable from a
// verified OAuth callback, so it performs no uniqueness or ownership checks
// of its own. expiresIn (seconds) is resolved to an absolute expiry now.
func (s *EmailChannelService) UpsertOAuthChannel(ctx context.Context, propertyID uuid.UUID, provider, email, accessToken, refreshToken string, expiresIn int) (*model.EmailChannel, error) {
	expiry := time.Now().Add(time.Duration(expiresIn) * time.Second)

	ch, err := s.channels.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if ch != nil {
		ch.Provider = provider
		ch.OAuthAccessToken = accessToken
		ch.OAuthRefreshToken = refreshToken
		ch.OAuthExpiry = &expiry
		ch.IsActive = true
		if err := s.channels.Update(ctx, ch); err != nil {
			return nil, err
		}
		return ch, nil
	}

	ch = &model.EmailChannel{
		PropertyID:        propertyID,
		EmailAddress:      email,
		IsActive:          true,
		Provider:          provider,
		OAuthAccessToken:  accessToken,
		OAuthRefreshToken: refreshToken,
		OAuthExpiry:       &expiry,
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// loadOwned loads a channel and enforces ownership for mutation paths, where
// an absent channel is an error rather than nil.
func (s *EmailChannelService) loadOwned(ctx context.Context, propertyID, channelID uuid.UUID) (*model.EmailChannel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		log.Error().Err(err).Str("channel_id", channelID.String()).Msg("Failed to load channel")
		return nil, err
	}
	if ch == nil {
		return nil, errs.NotFound("channel not found")
	}
	if ch.PropertyID != propertyID {
		return nil, errs.Authorization("channel belongs to another property")
	}
	return ch, nil
}

// validateEmailAddress is the minimal shape gate used by the channel
// screens; full deliverability checks live with the email-sync pipeline.
func validateEmailAddress(email string) error {
	if email == "" {
		return errs.Validation("email_address is required")
	}
	if !strings.Contains(email, "@") {
		return errs.Validation("email_address must contain @")
	}
	return nil
}
