package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelaccelerator/backoffice-service/internal/errs"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
)

var collaboratorTestCols = []string{
	"id", "email", "name", "role", "is_active", "created_by", "created_at", "updated_at",
}

func setupCollaboratorRepo(t *testing.T) (*CollaboratorRepository, sqlmock.Sqlmock, *miniredis.Miniredis, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := NewCollaboratorRepository(db, client)
	return repo, mock, mr, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		client.Close()
		db.Close()
	}
}

func TestCollaboratorGetByEmail_CachesLookup(t *testing.T) {
	repo, mock, mr, teardown := setupCollaboratorRepo(t)
	defer teardown()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery("FROM platform_collaborators WHERE email").
		WithArgs("ops@platform.example").
		WillReturnRows(sqlmock.NewRows(collaboratorTestCols).
			AddRow(id.String(), "ops@platform.example", "Ops", model.RoleSuperAdmin, true, nil, now, now))

	first, err := repo.GetByEmail(context.Background(), "ops@platform.example")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, mr.Exists("collaborator:email:ops@platform.example"))

	// Second lookup is served from the cache; no query expectation is set.
	second, err := repo.GetByEmail(context.Background(), "ops@platform.example")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Role, second.Role)
}

func TestCollaboratorSetActive_InvalidatesCache(t *testing.T) {
	repo, mock, mr, teardown := setupCollaboratorRepo(t)
	defer teardown()

	id := uuid.New()
	require.NoError(t, mr.Set("collaborator:email:ops@platform.example", `{"email":"ops@platform.example"}`))

	mock.ExpectQuery("UPDATE platform_collaborators SET is_active").
		WithArgs(id, false).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("ops@platform.example"))

	require.NoError(t, repo.SetActive(context.Background(), id, false))
	assert.False(t, mr.Exists("collaborator:email:ops@platform.example"))
}

func TestCollaboratorCreate_MapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCollaboratorRepository(db, nil)
	mock.ExpectExec("INSERT INTO platform_collaborators").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err = repo.Create(context.Background(), &model.PlatformCollaborator{
		Email: "ops@platform.example",
		Name:  "Ops",
		Role:  model.RoleSupport,
	})
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}
