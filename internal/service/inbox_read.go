package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/errs"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

// List modes and filters understood by ListConversations.
const (
	ModeGmail          = "gmail"
	FilterActionNeeded = "action_needed"
	FilterHighPriority = "high_priority"
)

// ListOptions controls conversation listing.
type ListOptions struct {
	Mode   string `json:"mode"`
	Filter string `json:"filter"`
}

// InboxReadService lists and resolves conversations, applying the derived
// intelligence-summary filters on top of the stored ordering.
type InboxReadService struct {
	conversations *store.ConversationRepository
}

// NewInboxReadService creates a new InboxReadService.
func NewInboxReadService(conversations *store.ConversationRepository) *InboxReadService {
	return &InboxReadService{conversations: conversations}
}

// ListConversations returns a property's conversations. Outside gmail mode
// the derived filter and priority sort apply; gmail mode returns the raw
// recency ordering.
func (s *InboxReadService) ListConversations(ctx context.Context, propertyID uuid.UUID, opts ListOptions) ([]model.Conversation, error) {
	conversations, err := s.conversations.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if opts.Mode == ModeGmail {
		return conversations, nil
	}

	switch opts.Filter {
	case FilterActionNeeded:
		conversations = filterConversations(conversations, actionNeeded)
	case FilterHighPriority:
		conversations = filterConversations(conversations, highPriority)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return priorityRank(&conversations[i]) < priorityRank(&conversations[j])
	})
	return conversations, nil
}

// GetConversation resolves a single conversation. The id is gated on UUID
// shape before any query runs.
func (s *InboxReadService) GetConversation(ctx context.Context, propertyID uuid.UUID, conversationID string) (*model.Conversation, error) {
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, errs.Validation("invalid conversation id")
	}

	conv, err := s.conversations.GetForProperty(ctx, id, propertyID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errs.NotFound("conversation not found")
	}
	return conv, nil
}

// ListMessages returns the messages of a conversation the property owns.
func (s *InboxReadService) ListMessages(ctx context.Context, propertyID uuid.UUID, conversationID string) ([]model.Message, error) {
	conv, err := s.GetConversation(ctx, propertyID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, conv.ID)
}

func filterConversations(conversations []model.Conversation, keep func(*model.Conversation) bool) []model.Conversation {
	filtered := conversations[:0]
	for i := range conversations {
		if keep(&conversations[i]) {
			filtered = append(filtered, conversations[i])
		}
	}
	return filtered
}

// actionNeeded keeps conversations whose derived next action demands
// attention. A missing summary counts as nothing to do.
func actionNeeded(c *model.Conversation) bool {
	if c.IntelligenceSummary == nil || c.IntelligenceSummary.NextAction == nil {
		return false
	}
	t := c.IntelligenceSummary.NextAction.Type
	return t != "await_response" && t != "none"
}

// highPriority keeps only conversations explicitly marked high; an
// undefined priority is excluded.
func highPriority(c *model.Conversation) bool {
	return c.IntelligenceSummary != nil &&
		c.IntelligenceSummary.NextAction != nil &&
		c.IntelligenceSummary.NextAction.Priority == "high"
}

// priorityRank orders high before medium before low; a missing priority
// sorts as low.
func priorityRank(c *model.Conversation) int {
	if c.IntelligenceSummary == nil || c.IntelligenceSummary.NextAction == nil {
		return 2
	}
	switch c.IntelligenceSummary.NextAction.Priority {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}
