package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/crypto"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
)

// ChannelRepository handles database operations for email channels and their
// user assignments.
type ChannelRepository struct {
	db *sql.DB
}

// NewChannelRepository creates a new ChannelRepository.
func NewChannelRepository(db *sql.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

const channelColumns = `id, property_id, email_address, display_name, is_active, provider,
	encrypted_access_token, access_token_iv, encrypted_refresh_token, refresh_token_iv,
	oauth_expiry, created_at, updated_at`

func scanChannel(row interface{ Scan(dest ...any) error }) (*model.EmailChannel, error) {
	ch := &model.EmailChannel{}
	err := row.Scan(
		&ch.ID, &ch.PropertyID, &ch.EmailAddress, &ch.DisplayName, &ch.IsActive, &ch.Provider,
		&ch.EncryptedAccessToken, &ch.AccessTokenIV, &ch.EncryptedRefreshToken, &ch.RefreshTokenIV,
		&ch.OAuthExpiry, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(ch.EncryptedAccessToken) > 0 && len(ch.AccessTokenIV) > 0 {
		token, err := crypto.Decrypt(ch.EncryptedAccessToken, ch.AccessTokenIV)
		if err != nil {
			return nil, err
		}
		ch.OAuthAccessToken = token
	}
	if len(ch.EncryptedRefreshToken) > 0 && len(ch.RefreshTokenIV) > 0 {
		token, err := crypto.Decrypt(ch.EncryptedRefreshToken, ch.RefreshTokenIV)
		if err != nil {
			return nil, err
		}
		ch.OAuthRefreshToken = token
	}
	return ch, nil
}

// encryptTokens moves plaintext OAuth tokens into the encrypted columns.
func encryptTokens(ch *model.EmailChannel) error {
	if ch.OAuthAccessToken != "" {
		ciphertext, iv, err := crypto.Encrypt(ch.OAuthAccessToken)
		if err != nil {
			return err
		}
		ch.EncryptedAccessToken = ciphertext
		ch.AccessTokenIV = iv
	}
	if ch.OAuthRefreshToken != "" {
		ciphertext, iv, err := crypto.Encrypt(ch.OAuthRefreshToken)
		if err != nil {
			return err
		}
		ch.EncryptedRefreshToken = ciphertext
		ch.RefreshTokenIV = iv
	}
	return nil
}

// Create inserts a new email channel.
func (r *ChannelRepository) Create(ctx context.Context, ch *model.EmailChannel) error {
	if err := encryptTokens(ch); err != nil {
		return err
	}

	ch.ID = uuid.New()
	ch.CreatedAt = time.Now()
	ch.UpdatedAt = ch.CreatedAt

	query := `
		INSERT INTO email_channels (id, property_id, email_address, display_name, is_active, provider,
			encrypted_access_token, access_token_iv, encrypted_refresh_token, refresh_token_iv,
			oauth_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		ch.ID, ch.PropertyID, ch.EmailAddress, ch.DisplayName, ch.IsActive, ch.Provider,
		ch.EncryptedAccessToken, ch.AccessTokenIV, ch.EncryptedRefreshToken, ch.RefreshTokenIV,
		ch.OAuthExpiry, ch.CreatedAt, ch.UpdatedAt,
	)
	return mapConflict(err, "email address is already in use by another channel")
}

// GetByID retrieves a channel by ID, unscoped by tenant.
func (r *ChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.EmailChannel, error) {
	query := `SELECT ` + channelColumns + ` FROM email_channels WHERE id = $1`
	ch, err := scanChannel(r.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// GetByEmail retrieves a channel by email address, platform-wide.
func (r *ChannelRepository) GetByEmail(ctx context.Context, email string) (*model.EmailChannel, error) {
	query := `SELECT ` + channelColumns + ` FROM email_channels WHERE email_address = $1`
	ch, err := scanChannel(r.db.QueryRowContext(ctx, query, email))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// ListByProperty returns all channels owned by a property.
func (r *ChannelRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]model.EmailChannel, error) {
	query := `SELECT ` + channelColumns + ` FROM email_channels WHERE property_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.EmailChannel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}

// Update persists the scalar fields of a channel.
func (r *ChannelRepository) Update(ctx context.Context, ch *model.EmailChannel) error {
	if err := encryptTokens(ch); err != nil {
		return err
	}

	query := `
		UPDATE email_channels
		SET email_address = $2, display_name = $3, is_active = $4, provider = $5,
			encrypted_access_token = $6, access_token_iv = $7,
			encrypted_refresh_token = $8, refresh_token_iv = $9,
			oauth_expiry = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		ch.ID, ch.EmailAddress, ch.DisplayName, ch.IsActive, ch.Provider,
		ch.EncryptedAccessToken, ch.AccessTokenIV, ch.EncryptedRefreshToken, ch.RefreshTokenIV,
		ch.OAuthExpiry,
	).Scan(&ch.UpdatedAt)
	return mapConflict(err, "email address is already in use by another channel")
}

// ToggleActive atomically flips the active flag and returns the new value.
func (r *ChannelRepository) ToggleActive(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE email_channels SET is_active = NOT is_active, updated_at = now() WHERE id = $1 RETURNING is_active`
	var isActive bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&isActive)
	if isNoRows(err) {
		return false, sql.ErrNoRows
	}
	return isActive, err
}

// Delete removes a channel and, through the FK cascade, its assignments.
func (r *ChannelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM email_channels WHERE id = $1`, id)
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

// GetAssignments returns the user IDs assigned to a channel.
func (r *ChannelRepository) GetAssignments(ctx context.Context, channelID uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM channel_assignments WHERE channel_id = $1 ORDER BY user_id`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

// ReplaceAssignments swaps the full assignment set of a channel in one
// transaction. An empty set clears all assignments.
func (r *ChannelRepository) ReplaceAssignments(ctx context.Context, channelID uuid.UUID, userIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM channel_assignments WHERE channel_id = $1`, channelID); err != nil {
		return err
	}
	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO channel_assignments (channel_id, user_id) VALUES ($1, $2)`,
			channelID, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
