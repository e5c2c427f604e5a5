package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/audit"
	"github.com/hotelaccelerator/backoffice-service/internal/errs"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

// InboxWriteService mutates conversations. Every command follows the same
// template: load the conversation scoped by property, validate the
// command-specific input, mutate, audit. Unlike the rule and channel
// surfaces, a conversation under another tenant is reported as not found;
// the inbox never confirms cross-tenant existence.
type InboxWriteService struct {
	conversations *store.ConversationRepository
	logger        *audit.Logger
}

// NewInboxWriteService creates a new InboxWriteService.
func NewInboxWriteService(conversations *store.ConversationRepository, logger *audit.Logger) *InboxWriteService {
	return &InboxWriteService{conversations: conversations, logger: logger}
}

// MarkAsRead marks a conversation as read.
func (s *InboxWriteService) MarkAsRead(ctx context.Context, propertyID, conversationID uuid.UUID, actorID string) error {
	conv, err := s.load(ctx, propertyID, conversationID)
	if err != nil {
		return err
	}
	return s.audited(ctx, actorID, propertyID, "inbox.mark_as_read", conv.ID, nil, func(ctx context.Context) error {
		return s.conversations.MarkRead(ctx, conv.ID)
	})
}

// ToggleStar sets the starred flag.
func (s *InboxWriteService) ToggleStar(ctx context.Context, propertyID, conversationID uuid.UUID, starred bool, actorID string) error {
	conv, err := s.load(ctx, propertyID, conversationID)
	if err != nil {
		return err
	}
	return s.audited(ctx, actorID, propertyID, "inbox.toggle_star", conv.ID,
		map[string]interface{}{"is_starred": starred},
		func(ctx context.Context) error {
			return s.conversations.SetStarred(ctx, conv.ID, starred)
		})
}

// UpdateOutcome sets the conversation outcome; only the fixed enum is
// accepted.
func (s *InboxWriteService) UpdateOutcome(ctx context.Context, propertyID, conversationID uuid.UUID, outcome, actorID string) error {
	switch outcome {
	case model.OutcomeConverted, model.OutcomeLost, model.OutcomePending, model.OutcomeFollowup:
	default:
		return errs.Validation("invalid outcome %q", outcome)
	}

	conv, err := s.load(ctx, propertyID, conversationID)
	if err != nil {
		return err
	}
	return s.audited(ctx, actorID, propertyID, "inbox.update_outcome", conv.ID,
		map[string]interface{}{"outcome": outcome},
		func(ctx context.Context) error {
			return s.conversations.SetOutcome(ctx, conv.ID, outcome)
		})
}

// UpdateStatus sets the conversation status; only open, closed and archived
// are accepted.
func (s *InboxWriteService) UpdateStatus(ctx context.Context, propertyID, conversationID uuid.UUID, status, actorID string) error {
	switch status {
	case model.ConversationOpen, model.ConversationClosed, model.ConversationArchived:
	default:
		return errs.Validation("invalid status %q", status)
	}

	conv, err := s.load(ctx, propertyID, conversationID)
	if err != nil {
		return err
	}
	return s.audited(ctx, actorID, propertyID, "inbox.update_status", conv.ID,
		map[string]interface{}{"status": status},
		func(ctx context.Context) error {
			return s.conversations.SetStatus(ctx, conv.ID, status)
		})
}

// UpdateBookingData replaces the booking payload attached to a conversation.
func (s *InboxWriteService) UpdateBookingData(ctx context.Context, propertyID, conversationID uuid.UUID, data json.RawMessage, actorID string) error {
	if len(data) > 0 && !json.Valid(data) {
		return errs.Validation("booking_data must be valid JSON")
	}

	conv, err := s.load(ctx, propertyID, conversationID)
	if err != nil {
		return err
	}
	return s.audited(ctx, actorID, propertyID, "inbox.update_booking_data", conv.ID, nil,
		func(ctx context.Context) error {
			return s.conversations.SetBookingData(ctx, conv.ID, data)
		})
}

// SendMessage inserts a message into the conversation and bumps
// last_message_at in the same transaction. The audit record carries the
// content length, never the content itself.
func (s *InboxWriteService) SendMessage(ctx context.Context, propertyID, conversationID uuid.UUID, content, senderType, actorID string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.Validation("message content must not be blank")
	}

	conv, err := s.load(ctx, propertyID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		Content:        content,
		SenderType:     senderType,
	}
	err = s.audited(ctx, actorID, propertyID, "inbox.send_message", conv.ID,
		map[string]interface{}{"content_length": len(content), "sender_type": senderType},
		func(ctx context.Context) error {
			return s.conversations.InsertMessage(ctx, msg)
		})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// load resolves a conversation scoped to the property; absence and wrong
// tenant both surface as NotFound.
func (s *InboxWriteService) load(ctx context.Context, propertyID, conversationID uuid.UUID) (*model.Conversation, error) {
	conv, err := s.conversations.GetForProperty(ctx, conversationID, propertyID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errs.NotFound("conversation not found")
	}
	return conv, nil
}

func (s *InboxWriteService) audited(ctx context.Context, actorID string, propertyID uuid.UUID, command string, targetID uuid.UUID, metadata map[string]interface{}, fn func(ctx context.Context) error) error {
	if actorID == "" {
		return fn(ctx)
	}
	return s.logger.Log(ctx, audit.Entry{
		ActorID:    actorID,
		PropertyID: propertyID.String(),
		Command:    command,
		TargetType: "conversation",
		TargetID:   targetID.String(),
		Metadata:   metadata,
	}, fn)
}
