package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RuleType identifies which visitor behavior a message rule triggers on.
type RuleType string

const (
	RuleTypePageVisits    RuleType = "page_visits"
	RuleTypeRoomInterest  RuleType = "room_interest"
	RuleTypeReturnVisitor RuleType = "return_visitor"
)

// Valid reports whether t is a known rule type.
func (t RuleType) Valid() bool {
	switch t {
	case RuleTypePageVisits, RuleTypeRoomInterest, RuleTypeReturnVisitor:
		return true
	}
	return false
}

// RuleConditions is the per-type condition payload of a message rule. Each
// rule type carries exactly its own condition fields; Validate reports the
// first business-rule violation, if any.
type RuleConditions interface {
	RuleType() RuleType
	Validate() error
}

// PageVisitsConditions triggers after a minimum number of page visits.
type PageVisitsConditions struct {
	Min int `json:"min"`
}

func (PageVisitsConditions) RuleType() RuleType { return RuleTypePageVisits }

func (c PageVisitsConditions) Validate() error {
	if c.Min < 1 {
		return fmt.Errorf("page_visits conditions require min >= 1, got %d", c.Min)
	}
	return nil
}

// RoomInterestConditions triggers after a minimum number of room clicks.
type RoomInterestConditions struct {
	MinClicks int `json:"min_clicks"`
}

func (RoomInterestConditions) RuleType() RuleType { return RuleTypeRoomInterest }

func (c RoomInterestConditions) Validate() error {
	if c.MinClicks < 1 {
		return fmt.Errorf("room_interest conditions require min_clicks >= 1, got %d", c.MinClicks)
	}
	return nil
}

// ReturnVisitorConditions triggers when a visitor returns within a day window.
type ReturnVisitorConditions struct {
	MinDays int `json:"min_days"`
	MaxDays int `json:"max_days"`
}

func (ReturnVisitorConditions) RuleType() RuleType { return RuleTypeReturnVisitor }

func (c ReturnVisitorConditions) Validate() error {
	if c.MinDays < 1 {
		return fmt.Errorf("return_visitor conditions require min_days >= 1, got %d", c.MinDays)
	}
	if c.MaxDays < c.MinDays {
		return fmt.Errorf("return_visitor conditions require max_days >= min_days, got min_days=%d max_days=%d", c.MinDays, c.MaxDays)
	}
	return nil
}

// DecodeConditions parses a raw condition payload into the variant matching
// the rule type.
func DecodeConditions(ruleType RuleType, raw json.RawMessage) (RuleConditions, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch ruleType {
	case RuleTypePageVisits:
		var c PageVisitsConditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case RuleTypeRoomInterest:
		var c RoomInterestConditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case RuleTypeReturnVisitor:
		var c ReturnVisitorConditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown rule type %q", ruleType)
}

// MessageContent is the on-site message shown when a rule fires.
type MessageContent struct {
	Body    string `json:"body"`
	Title   string `json:"title,omitempty"`
	CTAText string `json:"cta_text,omitempty"`
	CTAURL  string `json:"cta_url,omitempty"`
}

// MessageRule represents the message_rules table: a visitor-behavior
// condition mapped to an on-site message, owned by exactly one property.
type MessageRule struct {
	ID             uuid.UUID       `json:"id"`
	PropertyID     uuid.UUID       `json:"property_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	RuleType       RuleType        `json:"rule_type"`
	Conditions     RuleConditions  `json:"conditions"`
	MessageType    string          `json:"message_type"`
	MessageContent MessageContent  `json:"message_content"`
	IsActive       bool            `json:"is_active"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
