package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/model"
)

// RuleRepository handles database operations for message rules.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `id, property_id, name, description, rule_type, conditions,
	message_type, message_content, is_active, start_date, end_date, created_at, updated_at`

func scanRule(row interface{ Scan(dest ...any) error }) (*model.MessageRule, error) {
	rule := &model.MessageRule{}
	var (
		ruleType      string
		conditionsRaw []byte
		contentRaw    []byte
	)
	err := row.Scan(
		&rule.ID, &rule.PropertyID, &rule.Name, &rule.Description, &ruleType,
		&conditionsRaw, &rule.MessageType, &contentRaw, &rule.IsActive,
		&rule.StartDate, &rule.EndDate, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.RuleType = model.RuleType(ruleType)
	conditions, err := model.DecodeConditions(rule.RuleType, conditionsRaw)
	if err != nil {
		return nil, err
	}
	rule.Conditions = conditions

	if len(contentRaw) > 0 {
		if err := json.Unmarshal(contentRaw, &rule.MessageContent); err != nil {
			return nil, err
		}
	}
	return rule, nil
}

// Create inserts a new message rule.
func (r *RuleRepository) Create(ctx context.Context, rule *model.MessageRule) error {
	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return err
	}
	contentJSON, err := json.Marshal(rule.MessageContent)
	if err != nil {
		return err
	}

	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	query := `
		INSERT INTO message_rules (id, property_id, name, description, rule_type, conditions,
			message_type, message_content, is_active, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.PropertyID, rule.Name, rule.Description, string(rule.RuleType),
		conditionsJSON, rule.MessageType, contentJSON, rule.IsActive,
		rule.StartDate, rule.EndDate, rule.CreatedAt, rule.UpdatedAt,
	)
	return mapConflict(err, "a rule with this name already exists for the property")
}

// GetByID retrieves a rule by ID, unscoped by tenant.
func (r *RuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MessageRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM message_rules WHERE id = $1`
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetByName retrieves a rule by exact name within a property.
func (r *RuleRepository) GetByName(ctx context.Context, propertyID uuid.UUID, name string) (*model.MessageRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM message_rules WHERE property_id = $1 AND name = $2`
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, propertyID, name))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ListByProperty returns all rules owned by a property.
func (r *RuleRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]model.MessageRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM message_rules WHERE property_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.MessageRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// Update persists the full rule row.
func (r *RuleRepository) Update(ctx context.Context, rule *model.MessageRule) error {
	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return err
	}
	contentJSON, err := json.Marshal(rule.MessageContent)
	if err != nil {
		return err
	}

	query := `
		UPDATE message_rules
		SET name = $2, description = $3, rule_type = $4, conditions = $5,
			message_type = $6, message_content = $7, is_active = $8,
			start_date = $9, end_date = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		rule.ID, rule.Name, rule.Description, string(rule.RuleType), conditionsJSON,
		rule.MessageType, contentJSON, rule.IsActive, rule.StartDate, rule.EndDate,
	).Scan(&rule.UpdatedAt)
	return mapConflict(err, "a rule with this name already exists for the property")
}

// SetActive flips the active flag of a rule.
func (r *RuleRepository) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE message_rules SET is_active = $2, updated_at = now() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, isActive)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a rule permanently.
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM message_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
