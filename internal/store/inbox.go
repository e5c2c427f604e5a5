package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/model"
)

// ConversationRepository handles database operations for conversations and
// their messages. All lookups are scoped by property: a conversation under
// another tenant scans as absent, which is what the inbox services rely on
// to hide cross-tenant existence.
type ConversationRepository struct {
	db *sql.DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

const conversationColumns = `id, property_id, status, outcome, is_starred, is_read,
	booking_data, intelligence_summary, last_message_at, created_at, updated_at`

func scanConversation(row interface{ Scan(dest ...any) error }) (*model.Conversation, error) {
	c := &model.Conversation{}
	var summaryRaw []byte
	err := row.Scan(
		&c.ID, &c.PropertyID, &c.Status, &c.Outcome, &c.IsStarred, &c.IsRead,
		&c.BookingData, &summaryRaw, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(summaryRaw) > 0 {
		summary := &model.IntelligenceSummary{}
		if err := json.Unmarshal(summaryRaw, summary); err == nil {
			c.IntelligenceSummary = summary
		}
	}
	return c, nil
}

// GetForProperty retrieves a conversation scoped by property. A conversation
// owned by another property comes back as (nil, nil).
func (r *ConversationRepository) GetForProperty(ctx context.Context, id, propertyID uuid.UUID) (*model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1 AND property_id = $2`
	c, err := scanConversation(r.db.QueryRowContext(ctx, query, id, propertyID))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByProperty returns all conversations of a property, most recent
// activity first.
func (r *ConversationRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE property_id = $1 ORDER BY last_message_at DESC NULLS LAST`
	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *c)
	}
	return conversations, rows.Err()
}

// MarkRead sets the read flag.
func (r *ConversationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE conversations SET is_read = true, updated_at = now() WHERE id = $1`, id)
}

// SetStarred sets the starred flag.
func (r *ConversationRepository) SetStarred(ctx context.Context, id uuid.UUID, starred bool) error {
	return r.exec(ctx, `UPDATE conversations SET is_starred = $2, updated_at = now() WHERE id = $1`, id, starred)
}

// SetOutcome sets the outcome.
func (r *ConversationRepository) SetOutcome(ctx context.Context, id uuid.UUID, outcome string) error {
	return r.exec(ctx, `UPDATE conversations SET outcome = $2, updated_at = now() WHERE id = $1`, id, outcome)
}

// SetStatus sets the conversation status.
func (r *ConversationRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.exec(ctx, `UPDATE conversations SET status = $2, updated_at = now() WHERE id = $1`, id, status)
}

// SetBookingData replaces the booking data payload.
func (r *ConversationRepository) SetBookingData(ctx context.Context, id uuid.UUID, data json.RawMessage) error {
	return r.exec(ctx, `UPDATE conversations SET booking_data = $2, updated_at = now() WHERE id = $1`, id, []byte(data))
}

func (r *ConversationRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
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

// InsertMessage inserts a message and bumps the conversation's
// last_message_at in the same transaction, so the thread ordering never
// observes one write without the other.
func (r *ConversationRepository) InsertMessage(ctx context.Context, msg *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, content, sender_type, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.ConversationID, msg.Content, msg.SenderType, msg.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET last_message_at = $2, updated_at = now() WHERE id = $1`,
		msg.ConversationID, msg.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// ListMessages returns a conversation's messages in chronological order.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	query := `SELECT id, conversation_id, content, sender_type, created_at FROM messages WHERE conversation_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Content, &m.SenderType, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
