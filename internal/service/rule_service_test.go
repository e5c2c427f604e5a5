package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelaccelerator/backoffice-service/internal/audit"
	"github.com/hotelaccelerator/backoffice-service/internal/errs"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

var ruleCols = []string{
	"id", "property_id", "name", "description", "rule_type", "conditions",
	"message_type", "message_content", "is_active", "start_date", "end_date",
	"created_at", "updated_at",
}

func setupRuleService(t *testing.T) (*MessageRuleService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	svc := NewMessageRuleService(store.NewRuleRepository(db), audit.NewLogger(db))
	return svc, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func ruleRow(id, propertyID uuid.UUID, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(ruleCols).AddRow(
		id.String(), propertyID.String(), name, "", "page_visits", []byte(`{"min":3}`),
		"popup", []byte(`{"body":"Hi"}`), true, nil, nil, now, now,
	)
}

func TestCreateRule_TrimsNameAndPersists(t *testing.T) {
	svc, mock, teardown := setupRuleService(t)
	defer teardown()

	propertyID := uuid.New()

	mock.ExpectQuery("FROM message_rules WHERE property_id").
		WithArgs(propertyID, "VIP Promo").
		WillReturnRows(sqlmock.NewRows(ruleCols))
	mock.ExpectExec("INSERT INTO message_rules").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rule, err := svc.CreateRule(context.Background(), propertyID, RuleInput{
		Name:           "  VIP Promo  ",
		RuleType:       model.RuleTypePageVisits,
		Conditions:     json.RawMessage(`{"min": 3}`),
		MessageContent: model.MessageContent{Body: "Hi"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "VIP Promo", rule.Name)
	assert.Equal(t, propertyID, rule.PropertyID)
}

func TestCreateRule_DuplicateNameAfterTrim(t *testing.T) {
	svc, mock, teardown := setupRuleService(t)
	defer teardown()

	propertyID := uuid.New()

	mock.ExpectQuery("FROM message_rules WHERE property_id").
		WithArgs(propertyID, "VIP Promo").
		WillReturnRows(ruleRow(uuid.New(), propertyID, "VIP Promo"))

	_, err := svc.CreateRule(context.Background(), propertyID, RuleInput{
		Name:           "VIP Promo ",
		RuleType:       model.RuleTypePageVisits,
		Conditions:     json.RawMessage(`{"min": 1}`),
		MessageContent: model.MessageContent{Body: "Hi"},
	}, "")
	assert.True(t, errs.Is(err, errs.KindConflict), "expected conflict, got %v", err)
}

func TestCreateRule_BlankInputs(t *testing.T) {
	svc, _, teardown := setupRuleService(t)
	defer teardown()

	_, err := svc.CreateRule(context.Background(), uuid.New(), RuleInput{
		Name:           "   ",
		MessageContent: model.MessageContent{Body: "Hi"},
	}, "")
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, err = svc.CreateRule(context.Background(), uuid.New(), RuleInput{
		Name:           "Promo",
		RuleType:       model.RuleTypePageVisits,
		MessageContent: model.MessageContent{Body: "  "},
	}, "")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestCreateRule_ConditionInvariants(t *testing.T) {
	cases := []struct {
		name       string
		ruleType   model.RuleType
		conditions string
		wantKind   errs.Kind
		wantOK     bool
	}{
		{"page visits below min", model.RuleTypePageVisits, `{"min": 0}`, errs.KindInvariant, false},
		{"page visits ok", model.RuleTypePageVisits, `{"min": 1}`, 0, true},
		{"room interest missing", model.RuleTypeRoomInterest, `{}`, errs.KindInvariant, false},
		{"room interest ok", model.RuleTypeRoomInterest, `{"min_clicks": 2}`, 0, true},
		{"return visitor inverted", model.RuleTypeReturnVisitor, `{"min_days": 9, "max_days": 3}`, errs.KindInvariant, false},
		{"return visitor ok", model.RuleTypeReturnVisitor, `{"min_days": 3, "max_days": 9}`, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock, teardown := setupRuleService(t)
			defer teardown()

			propertyID := uuid.New()
			mock.ExpectQuery("FROM message_rules WHERE property_id").
				WillReturnRows(sqlmock.NewRows(ruleCols))
			if tc.wantOK {
				mock.ExpectExec("INSERT INTO message_rules").
					WillReturnResult(sqlmock.NewResult(0, 1))
			}

			_, err := svc.CreateRule(context.Background(), propertyID, RuleInput{
				Name:           "Promo",
				RuleType:       tc.ruleType,
				Conditions:     json.RawMessage(tc.conditions),
				MessageContent: model.MessageContent{Body: "Hi"},
			}, "")
			if tc.wantOK {
				assert.NoError(t, err)
			} else {
				assert.True(t, errs.Is(err, tc.wantKind), "got %v", err)
			}
		})
	}
}

func TestCreateRule_DateOrdering(t *testing.T) {
	svc, mock, teardown := setupRuleService(t)
	defer teardown()

	propertyID := uuid.New()
	mock.ExpectQuery("FROM message_rules WHERE property_id").
		WillReturnRows(sqlmock.NewRows(ruleCols))

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := svc.CreateRule(context.Background(), propertyID, RuleInput{
		Name:           "Promo",
		RuleType:       model.RuleTypePageVisits,
		Conditions:     json.RawMessage(`{"min": 1}`),
		MessageContent: model.MessageContent{Body: "Hi"},
		StartDate:      &start,
		EndDate:        &end,
	}, "")
	assert.True(t, errs.Is(err, errs.KindInvariant))
}

func TestGetRule_DistinguishesAbsenceFromOwnership(t *testing.T) {
	svc, mock, teardown := setupRuleService(t)
	defer teardown()

	propertyID := uuid.New()
	ruleID := uuid.New()

	mock.ExpectQuery("FROM message_rules WHERE id").
		WithArgs(ruleID).
		WillReturnRows(sqlmock.NewRows(ruleCols))
	_, err := svc.GetRule(context.Background(), propertyID, ruleID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	otherProperty := uuid.New()
	mock.ExpectQuery("FROM message_rules WHERE id").
		WithArgs(ruleID).
		WillReturnRows(ruleRow(ruleID, otherProperty, "Promo"))
	_, err = svc.GetRule(context.Background(), propertyID, ruleID)
	assert.True(t, errs.Is(err, errs.KindAuthorization))
}

func TestUpdateRule_RenameToExistingNameConflicts(t *testing.T) {
	svc, mock, teardown := setupRuleService(t)
	defer teardown()

	propertyID := uuid.New()
	ruleID := uuid.New()

	mock.ExpectQuery("FROM message_rules WHERE id").
		WithArgs(ruleID).
		WillReturnRows(ruleRow(ruleID, propertyID, "Promo"))
	mock.ExpectQuery("FROM message_rules WHERE property_id").
		WithArgs(propertyID, "Other").
		WillReturnRows(ruleRow(uuid.New(), propertyID, "Other"))

	name := "Other"
	_, err := svc.UpdateRule(context.Background(), propertyID, ruleID, RuleUpdate{Name: &name}, "")
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestUpdateRule_TypeChangeWithoutConditions(t *testing.T) {
	svc, mock, teardown := setupRuleService(t)
	defer teardown()

	propertyID := uuid.New()
	ruleID := uuid.New()

	mock.ExpectQuery("FROM message_rules WHERE id").
		WithArgs(ruleID).
		WillReturnRows(ruleRow(ruleID, propertyID, "Promo"))

	newType := model.RuleTypeReturnVisitor
	_, err := svc.UpdateRule(context.Background(), propertyID, ruleID, RuleUpdate{RuleType: &newType}, "")
	assert.True(t, errs.Is(err, errs.KindInvariant))
}

func TestCreateRule_AuditedWhenActorKnown(t *testing.T) {
	svc, mock, teardown := setupRuleService(t)
	defer teardown()

	propertyID := uuid.New()

	mock.ExpectQuery("FROM message_rules WHERE property_id").
		WillReturnRows(sqlmock.NewRows(ruleCols))
	mock.ExpectExec("INSERT INTO message_rules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.CreateRule(context.Background(), propertyID, RuleInput{
		Name:           "Promo",
		RuleType:       model.RuleTypePageVisits,
		Conditions:     json.RawMessage(`{"min": 2}`),
		MessageContent: model.MessageContent{Body: "Hi"},
	}, "admin-1")
	assert.NoError(t, err)
}
