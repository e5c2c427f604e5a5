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
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

var conversationCols = []string{
	"id", "property_id", "status", "outcome", "is_starred", "is_read",
	"booking_data", "intelligence_summary", "last_message_at", "created_at", "updated_at",
}

func setupInboxServices(t *testing.T) (*InboxWriteService, *InboxReadService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := store.NewConversationRepository(db)
	write := NewInboxWriteService(repo, audit.NewLogger(db))
	read := NewInboxReadService(repo)
	return write, read, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func conversationRow(id, propertyID uuid.UUID, summary string) *sqlmock.Rows {
	return appendConversation(sqlmock.NewRows(conversationCols), id, propertyID, summary)
}

func appendConversation(rows *sqlmock.Rows, id, propertyID uuid.UUID, summary string) *sqlmock.Rows {
	now := time.Now()
	var summaryVal interface{}
	if summary != "" {
		summaryVal = []byte(summary)
	}
	return rows.AddRow(
		id.String(), propertyID.String(), "open", "", false, false,
		nil, summaryVal, now, now, now,
	)
}

func TestSendMessage_BlankContentRejectedBeforeLoad(t *testing.T) {
	write, _, _, teardown := setupInboxServices(t)
	defer teardown()

	_, err := write.SendMessage(context.Background(), uuid.New(), uuid.New(), "   ", "staff", "")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestSendMessage_CrossTenantIsNotFound(t *testing.T) {
	write, _, mock, teardown := setupInboxServices(t)
	defer teardown()

	propertyID := uuid.New()
	conversationID := uuid.New()

	// Scoped lookup: a conversation under another property scans as absent.
	mock.ExpectQuery("FROM conversations WHERE id").
		WithArgs(conversationID, propertyID).
		WillReturnRows(sqlmock.NewRows(conversationCols))

	_, err := write.SendMessage(context.Background(), propertyID, conversationID, "Hello", "staff", "")
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestSendMessage_InsertsAndBumpsRecencyTransactionally(t *testing.T) {
	write, _, mock, teardown := setupInboxServices(t)
	defer teardown()

	propertyID := uuid.New()
	conversationID := uuid.New()

	mock.ExpectQuery("FROM conversations WHERE id").
		WithArgs(conversationID, propertyID).
		WillReturnRows(conversationRow(conversationID, propertyID, ""))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE conversations SET last_message_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg, err := write.SendMessage(context.Background(), propertyID, conversationID, "Hello", "staff", "staff-7")
	require.NoError(t, err)
	assert.Equal(t, conversationID, msg.ConversationID)
	assert.Equal(t, "Hello", msg.Content)
}

func TestUpdateOutcome_EnumGate(t *testing.T) {
	write, _, _, teardown := setupInboxServices(t)
	defer teardown()

	err := write.UpdateOutcome(context.Background(), uuid.New(), uuid.New(), "maybe", "")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestUpdateStatus_EnumGateAndPersist(t *testing.T) {
	write, _, mock, teardown := setupInboxServices(t)
	defer teardown()

	err := write.UpdateStatus(context.Background(), uuid.New(), uuid.New(), "paused", "")
	assert.True(t, errs.Is(err, errs.KindValidation))

	propertyID := uuid.New()
	conversationID := uuid.New()
	mock.ExpectQuery("FROM conversations WHERE id").
		WithArgs(conversationID, propertyID).
		WillReturnRows(conversationRow(conversationID, propertyID, ""))
	mock.ExpectExec("UPDATE conversations SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = write.UpdateStatus(context.Background(), propertyID, conversationID, "closed", "")
	assert.NoError(t, err)
}

func TestUpdateBookingData_RejectsInvalidJSON(t *testing.T) {
	write, _, _, teardown := setupInboxServices(t)
	defer teardown()

	err := write.UpdateBookingData(context.Background(), uuid.New(), uuid.New(),
		json.RawMessage(`{"guests": `), "")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestListConversations_DefaultModeSortsByPriority(t *testing.T) {
	_, read, mock, teardown := setupInboxServices(t)
	defer teardown()

	propertyID := uuid.New()
	lowID := uuid.New()
	highID := uuid.New()
	mediumID := uuid.New()

	rows := sqlmock.NewRows(conversationCols)
	rows = appendConversation(rows, lowID, propertyID, "")
	rows = appendConversation(rows, mediumID, propertyID, `{"next_action":{"type":"reply","priority":"medium"}}`)
	rows = appendConversation(rows, highID, propertyID, `{"next_action":{"type":"reply","priority":"high"}}`)
	mock.ExpectQuery("FROM conversations WHERE property_id").
		WithArgs(propertyID).
		WillReturnRows(rows)

	conversations, err := read.ListConversations(context.Background(), propertyID, ListOptions{})
	require.NoError(t, err)
	require.Len(t, conversations, 3)
	assert.Equal(t, highID, conversations[0].ID)
	assert.Equal(t, mediumID, conversations[1].ID)
	assert.Equal(t, lowID, conversations[2].ID)
}

func TestListConversations_GmailModeKeepsStoredOrder(t *testing.T) {
	_, read, mock, teardown := setupInboxServices(t)
	defer teardown()

	propertyID := uuid.New()
	firstID := uuid.New()
	secondID := uuid.New()

	rows := sqlmock.NewRows(conversationCols)
	rows = appendConversation(rows, firstID, propertyID, "")
	rows = appendConversation(rows, secondID, propertyID, `{"next_action":{"type":"reply","priority":"high"}}`)
	mock.ExpectQuery("FROM conversations WHERE property_id").
		WillReturnRows(rows)

	conversations, err := read.ListConversations(context.Background(), propertyID, ListOptions{Mode: ModeGmail})
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, firstID, conversations[0].ID)
}

func TestListConversations_Filters(t *testing.T) {
	propertyID := uuid.New()
	replyID := uuid.New()
	awaitID := uuid.New()
	noSummaryID := uuid.New()

	buildRows := func() *sqlmock.Rows {
		rows := sqlmock.NewRows(conversationCols)
		rows = appendConversation(rows, noSummaryID, propertyID, "")
		rows = appendConversation(rows, awaitID, propertyID, `{"next_action":{"type":"await_response","priority":"high"}}`)
		rows = appendConversation(rows, replyID, propertyID, `{"next_action":{"type":"send_offer","priority":"medium"}}`)
		return rows
	}

	t.Run("action needed", func(t *testing.T) {
		_, read, mock, teardown := setupInboxServices(t)
		defer teardown()

		mock.ExpectQuery("FROM conversations WHERE property_id").WillReturnRows(buildRows())
		conversations, err := read.ListConversations(context.Background(), propertyID, ListOptions{Filter: FilterActionNeeded})
		require.NoError(t, err)
		require.Len(t, conversations, 1)
		assert.Equal(t, replyID, conversations[0].ID)
	})

	t.Run("high priority", func(t *testing.T) {
		_, read, mock, teardown := setupInboxServices(t)
		defer teardown()

		mock.ExpectQuery("FROM conversations WHERE property_id").WillReturnRows(buildRows())
		conversations, err := read.ListConversations(context.Background(), propertyID, ListOptions{Filter: FilterHighPriority})
		require.NoError(t, err)
		require.Len(t, conversations, 1)
		assert.Equal(t, awaitID, conversations[0].ID)
	})
}

func TestGetConversation_ShapeGateBeforeQuery(t *testing.T) {
	_, read, _, teardown := setupInboxServices(t)
	defer teardown()

	_, err := read.GetConversation(context.Background(), uuid.New(), "not-a-uuid")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestListMessages_OwnedConversation(t *testing.T) {
	_, read, mock, teardown := setupInboxServices(t)
	defer teardown()

	propertyID := uuid.New()
	conversationID := uuid.New()

	mock.ExpectQuery("FROM conversations WHERE id").
		WithArgs(conversationID, propertyID).
		WillReturnRows(conversationRow(conversationID, propertyID, ""))
	mock.ExpectQuery("FROM messages WHERE conversation_id").
		WithArgs(conversationID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "content", "sender_type", "created_at"}).
			AddRow(uuid.New().String(), conversationID.String(), "Hi there", "guest", time.Now()))

	messages, err := read.ListMessages(context.Background(), propertyID, conversationID.String())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "guest", messages[0].SenderType)
}
