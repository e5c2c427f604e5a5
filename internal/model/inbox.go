package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation statuses.
const (
	ConversationOpen     = "open"
	ConversationClosed   = "closed"
	ConversationArchived = "archived"
)

// Conversation outcomes.
const (
	OutcomeConverted = "converted"
	OutcomeLost      = "lost"
	OutcomePending   = "pending"
	OutcomeFollowup  = "followup"
)

// NextAction is the derived recommendation attached to a conversation by the
// intelligence aggregator (external system; we only read its output).
type NextAction struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

// IntelligenceSummary is the pre-computed per-conversation summary produced
// by the intelligence aggregator.
type IntelligenceSummary struct {
	NextAction *NextAction `json:"next_action,omitempty"`
}

// Conversation represents the conversations table.
type Conversation struct {
	ID                  uuid.UUID            `json:"id"`
	PropertyID          uuid.UUID            `json:"property_id"`
	Status              string               `json:"status"`
	Outcome             string               `json:"outcome,omitempty"`
	IsStarred           bool                 `json:"is_starred"`
	IsRead              bool                 `json:"is_read"`
	BookingData         json.RawMessage      `json:"booking_data,omitempty"`
	IntelligenceSummary *IntelligenceSummary `json:"intelligence_summary,omitempty"`
	LastMessageAt       *time.Time           `json:"last_message_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// Message represents the messages table.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Content        string    `json:"content"`
	SenderType     string    `json:"sender_type"`
	CreatedAt      time.Time `json:"created_at"`
}
