package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/model"
)

// collaboratorCacheTTL bounds how long a suspended or re-roled collaborator
// can keep passing the super-admin gate from cache.
const collaboratorCacheTTL = 5 * time.Minute

// CollaboratorRepository handles database operations for platform
// collaborators. Email lookups are cached in redis because the super-admin
// gate re-runs on every console call.
type CollaboratorRepository struct {
	db    *sql.DB
	redis RedisClient
}

// NewCollaboratorRepository creates a new CollaboratorRepository. The redis
// client may be nil, which disables caching.
func NewCollaboratorRepository(db *sql.DB, redis RedisClient) *CollaboratorRepository {
	return &CollaboratorRepository{db: db, redis: redis}
}

const collaboratorColumns = `id, email, name, role, is_active, created_by, created_at, updated_at`

func collaboratorCacheKey(email string) string {
	return fmt.Sprintf("collaborator:email:%s", email)
}

func scanCollaborator(row interface{ Scan(dest ...any) error }) (*model.PlatformCollaborator, error) {
	c := &model.PlatformCollaborator{}
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Role, &c.IsActive, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new collaborator.
func (r *CollaboratorRepository) Create(ctx context.Context, c *model.PlatformCollaborator) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	query := `
		INSERT INTO platform_collaborators (id, email, name, role, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Email, c.Name, c.Role, c.IsActive, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return mapConflict(err, "a collaborator with this email already exists")
	}

	if r.redis != nil {
		r.redis.Del(ctx, collaboratorCacheKey(c.Email))
	}
	return nil
}

// GetByEmail retrieves a collaborator by exact (lower-cased) email.
func (r *CollaboratorRepository) GetByEmail(ctx context.Context, email string) (*model.PlatformCollaborator, error) {
	key := collaboratorCacheKey(email)
	if r.redis != nil {
		cached, err := r.redis.Get(ctx, key).Result()
		if err == nil {
			c := &model.PlatformCollaborator{}
			if err := json.Unmarshal([]byte(cached), c); err == nil {
				return c, nil
			}
		}
	}

	query := `SELECT ` + collaboratorColumns + ` FROM platform_collaborators WHERE email = $1`
	c, err := scanCollaborator(r.db.QueryRowContext(ctx, query, email))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(c); err == nil {
			r.redis.SetEx(ctx, key, data, collaboratorCacheTTL)
		}
	}
	return c, nil
}

// GetByID retrieves a collaborator by ID.
func (r *CollaboratorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PlatformCollaborator, error) {
	query := `SELECT ` + collaboratorColumns + ` FROM platform_collaborators WHERE id = $1`
	c, err := scanCollaborator(r.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all collaborators.
func (r *CollaboratorRepository) List(ctx context.Context) ([]model.PlatformCollaborator, error) {
	query := `SELECT ` + collaboratorColumns + ` FROM platform_collaborators ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collaborators []model.PlatformCollaborator
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		collaborators = append(collaborators, *c)
	}
	return collaborators, rows.Err()
}

// SetActive flips the active flag of a collaborator and invalidates the
// email cache entry.
func (r *CollaboratorRepository) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE platform_collaborators SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING email`
	var email string
	err := r.db.QueryRowContext(ctx, query, id, isActive).Scan(&email)
	if isNoRows(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Del(ctx, collaboratorCacheKey(email))
	}
	return nil
}

// StructureRepository handles database operations for structures (hotel
// tenants) and their provisioning logs.
type StructureRepository struct {
	db *sql.DB
}

// NewStructureRepository creates a new StructureRepository.
func NewStructureRepository(db *sql.DB) *StructureRepository {
	return &StructureRepository{db: db}
}

const structureColumns = `id, name, slug, plan, subscription_status, trial_ends_at,
	inbox_enabled, cms_enabled, ai_enabled, created_at, updated_at, deleted_at`

func scanStructure(row interface{ Scan(dest ...any) error }) (*model.Structure, error) {
	s := &model.Structure{}
	err := row.Scan(
		&s.ID, &s.Name, &s.Slug, &s.Plan, &s.SubscriptionStatus, &s.TrialEndsAt,
		&s.InboxEnabled, &s.CMSEnabled, &s.AIEnabled, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new structure.
func (r *StructureRepository) Create(ctx context.Context, s *model.Structure) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt

	query := `
		INSERT INTO structures (id, name, slug, plan, subscription_status, trial_ends_at,
			inbox_enabled, cms_enabled, ai_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Slug, s.Plan, s.SubscriptionStatus, s.TrialEndsAt,
		s.InboxEnabled, s.CMSEnabled, s.AIEnabled, s.CreatedAt, s.UpdatedAt)
	return mapConflict(err, "a structure with this slug already exists")
}

// GetByID retrieves a structure by ID.
func (r *StructureRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Structure, error) {
	query := `SELECT ` + structureColumns + ` FROM structures WHERE id = $1 AND deleted_at IS NULL`
	s, err := scanStructure(r.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetBySlug retrieves a structure by slug.
func (r *StructureRepository) GetBySlug(ctx context.Context, slug string) (*model.Structure, error) {
	query := `SELECT ` + structureColumns + ` FROM structures WHERE slug = $1 AND deleted_at IS NULL`
	s, err := scanStructure(r.db.QueryRowContext(ctx, query, slug))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all structures that are not soft-deleted.
func (r *StructureRepository) List(ctx context.Context) ([]model.Structure, error) {
	query := `SELECT ` + structureColumns + ` FROM structures WHERE deleted_at IS NULL ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var structures []model.Structure
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, err
		}
		structures = append(structures, *s)
	}
	return structures, rows.Err()
}

// Update persists the full structure row.
func (r *StructureRepository) Update(ctx context.Context, s *model.Structure) error {
	query := `
		UPDATE structures
		SET name = $2, slug = $3, plan = $4, subscription_status = $5, trial_ends_at = $6,
			inbox_enabled = $7, cms_enabled = $8, ai_enabled = $9, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.Name, s.Slug, s.Plan, s.SubscriptionStatus, s.TrialEndsAt,
		s.InboxEnabled, s.CMSEnabled, s.AIEnabled,
	).Scan(&s.UpdatedAt)
	return mapConflict(err, "a structure with this slug already exists")
}

// SetSubscriptionStatus updates only the subscription status.
func (r *StructureRepository) SetSubscriptionStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE structures SET subscription_status = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, status)
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

// Delete performs a soft delete on a structure.
func (r *StructureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE structures SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
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

// CreateProvisioningLog records one step of a structure's provisioning run.
func (r *StructureRepository) CreateProvisioningLog(ctx context.Context, structureID uuid.UUID, step, status string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	query := `INSERT INTO structure_provisioning_logs (structure_id, step, status, details, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, query, structureID, step, status, detailsJSON, time.Now())
	return err
}
