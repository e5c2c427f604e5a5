package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hotelaccelerator/backoffice-service/internal/audit"
	"github.com/hotelaccelerator/backoffice-service/internal/errs"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

// RuleInput is the payload for creating a message rule.
type RuleInput struct {
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	RuleType       model.RuleType       `json:"rule_type"`
	Conditions     json.RawMessage      `json:"conditions"`
	MessageType    string               `json:"message_type"`
	MessageContent model.MessageContent `json:"message_content"`
	IsActive       bool                 `json:"is_active"`
	StartDate      *time.Time           `json:"start_date"`
	EndDate        *time.Time           `json:"end_date"`
}

// RuleUpdate is a partial update: only non-nil fields are validated and
// applied.
type RuleUpdate struct {
	Name           *string               `json:"name"`
	Description    *string               `json:"description"`
	RuleType       *model.RuleType       `json:"rule_type"`
	Conditions     json.RawMessage       `json:"conditions"`
	MessageType    *string               `json:"message_type"`
	MessageContent *model.MessageContent `json:"message_content"`
	IsActive       *bool                 `json:"is_active"`
	StartDate      *time.Time            `json:"start_date"`
	EndDate        *time.Time            `json:"end_date"`
}

// MessageRuleService owns validation and lifecycle of message rules. Every
// check runs before any persistence call; a failed check aborts the
// operation with no partial writes.
type MessageRuleService struct {
	rules  *store.RuleRepository
	logger *audit.Logger
}

// NewMessageRuleService creates a new MessageRuleService.
func NewMessageRuleService(rules *store.RuleRepository, logger *audit.Logger) *MessageRuleService {
	return &MessageRuleService{rules: rules, logger: logger}
}

// ListRules returns all rules of the acting property.
func (s *MessageRuleService) ListRules(ctx context.Context, propertyID uuid.UUID) ([]model.MessageRule, error) {
	return s.rules.ListByProperty(ctx, propertyID)
}

// GetRule loads a rule and enforces tenant ownership. An absent rule is
// NotFound; a rule owned by another property is an authorization failure.
// The two are deliberately distinct on this surface.
func (s *MessageRuleService) GetRule(ctx context.Context, propertyID, ruleID uuid.UUID) (*model.MessageRule, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		log.Error().Err(err).Str("rule_id", ruleID.String()).Msg("Failed to load rule")
		return nil, err
	}
	if rule == nil {
		return nil, errs.NotFound("rule not found")
	}
	if rule.PropertyID != propertyID {
		return nil, errs.Authorization("rule belongs to another property")
	}
	return rule, nil
}

// CreateRule validates and persists a new rule. Check order is fixed: input
// shape, name uniqueness, condition invariants, date ordering, then persist.
func (s *MessageRuleService) CreateRule(ctx context.Context, propertyID uuid.UUID, in RuleInput, actorID string) (*model.MessageRule, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	if strings.TrimSpace(in.MessageContent.Body) == "" {
		return nil, errs.Validation("message_content.body is required")
	}
	if !in.RuleType.Valid() {
		return nil, errs.Validation("unknown rule_type %q", in.RuleType)
	}

	existing, err := s.rules.GetByName(ctx, propertyID, name)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check rule name uniqueness")
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("a rule named %q already exists", name)
	}

	conditions, err := decodeRuleConditions(in.RuleType, in.Conditions)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	rule := &model.MessageRule{
		PropertyID:     propertyID,
		Name:           name,
		Description:    in.Description,
		RuleType:       in.RuleType,
		Conditions:     conditions,
		MessageType:    in.MessageType,
		MessageContent: in.MessageContent,
		IsActive:       in.IsActive,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	}

	persist := func(ctx context.Context) error {
		return s.rules.Create(ctx, rule)
	}
	if actorID != "" {
		err = s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "rule.create",
			TargetType: "message_rule",
			Metadata: map[string]interface{}{
				"rule_type":      string(in.RuleType),
				"is_active":      in.IsActive,
				"has_date_range": in.StartDate != nil && in.EndDate != nil,
			},
		}, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule applies a partial update after the same ownership check as
// GetRule. Only provided fields are re-validated and mutated.
func (s *MessageRuleService) UpdateRule(ctx context.Context, propertyID, ruleID uuid.UUID, upd RuleUpdate, actorID string) (*model.MessageRule, error) {
	rule, err := s.GetRule(ctx, propertyID, ruleID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, errs.Validation("name must not be blank")
		}
		if name != rule.Name {
			existing, err := s.rules.GetByName(ctx, propertyID, name)
			if err != nil {
				log.Error().Err(err).Msg("Failed to check rule name uniqueness")
				return nil, err
			}
			if existing != nil && existing.ID != rule.ID {
				return nil, errs.Conflict("a rule named %q already exists", name)
			}
		}
		rule.Name = name
	}
	if upd.MessageContent != nil {
		if strings.TrimSpace(upd.MessageContent.Body) == "" {
			return nil, errs.Validation("message_content.body must not be blank")
		}
		rule.MessageContent = *upd.MessageContent
	}

	ruleType := rule.RuleType
	if upd.RuleType != nil {
		if !upd.RuleType.Valid() {
			return nil, errs.Validation("unknown rule_type %q", *upd.RuleType)
		}
		ruleType = *upd.RuleType
	}
	switch {
	case upd.Conditions != nil:
		conditions, err := decodeRuleConditions(ruleType, upd.Conditions)
		if err != nil {
			return nil, err
		}
		rule.RuleType = ruleType
		rule.Conditions = conditions
	case upd.RuleType != nil && ruleType != rule.RuleType:
		// Changing the type without new conditions would leave a payload
		// shaped for the old type.
		return nil, errs.Invariant("changing rule_type requires new conditions")
	}

	if upd.StartDate != nil {
		rule.StartDate = upd.StartDate
	}
	if upd.EndDate != nil {
		rule.EndDate = upd.EndDate
	}
	if upd.StartDate != nil || upd.EndDate != nil {
		if err := validateDateRange(rule.StartDate, rule.EndDate); err != nil {
			return nil, err
		}
	}

	if upd.Description != nil {
		rule.Description = *upd.Description
	}
	if upd.MessageType != nil {
		rule.MessageType = *upd.MessageType
	}
	if upd.IsActive != nil {
		rule.IsActive = *upd.IsActive
	}

	persist := func(ctx context.Context) error {
		return s.rules.Update(ctx, rule)
	}
	if actorID != "" {
		err = s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "rule.update",
			TargetType: "message_rule",
			TargetID:   rule.ID.String(),
			Metadata: map[string]interface{}{
				"rule_type": string(rule.RuleType),
				"is_active": rule.IsActive,
			},
		}, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a rule after the ownership check.
func (s *MessageRuleService) DeleteRule(ctx context.Context, propertyID, ruleID uuid.UUID, actorID string) error {
	rule, err := s.GetRule(ctx, propertyID, ruleID)
	if err != nil {
		return err
	}

	remove := func(ctx context.Context) error {
		return s.rules.Delete(ctx, rule.ID)
	}
	if actorID != "" {
		return s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "rule.delete",
			TargetType: "message_rule",
			TargetID:   rule.ID.String(),
		}, remove)
	}
	return remove(ctx)
}

// ToggleRuleActive sets the active flag after the ownership check.
func (s *MessageRuleService) ToggleRuleActive(ctx context.Context, propertyID, ruleID uuid.UUID, isActive bool, actorID string) error {
	rule, err := s.GetRule(ctx, propertyID, ruleID)
	if err != nil {
		return err
	}

	toggle := func(ctx context.Context) error {
		return s.rules.SetActive(ctx, rule.ID, isActive)
	}
	if actorID != "" {
		return s.logger.Log(ctx, audit.Entry{
			ActorID:    actorID,
			PropertyID: propertyID.String(),
			Command:    "rule.toggle_active",
			TargetType: "message_rule",
			TargetID:   rule.ID.String(),
			Metadata:   map[string]interface{}{"is_active": isActive},
		}, toggle)
	}
	return toggle(ctx)
}

// decodeRuleConditions parses and validates a condition payload for the rule
// type. Malformed payloads are validation failures; payloads that parse but
// break a business constraint are invariant violations.
func decodeRuleConditions(ruleType model.RuleType, raw json.RawMessage) (model.RuleConditions, error) {
	conditions, err := model.DecodeConditions(ruleType, raw)
	if err != nil {
		return nil, errs.Validation("malformed conditions for rule_type %q: %v", ruleType, err)
	}
	if err := conditions.Validate(); err != nil {
		return nil, errs.Invariant("%s", err.Error())
	}
	return conditions, nil
}

// validateDateRange enforces end_date > start_date when both are present.
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return errs.Invariant("end_date must be after start_date")
	}
	return nil
}
