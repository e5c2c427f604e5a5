package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

func TestProvisionStructure_LogsEachStepAndActivates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ps := &ProvisioningService{structures: store.NewStructureRepository(db)}
	structure := &model.Structure{
		ID:                 uuid.New(),
		Slug:               "hotel-riva",
		SubscriptionStatus: model.StructureStatusProvisioning,
		InboxEnabled:       true,
	}

	for i := 0; i < 4; i++ {
		mock.ExpectExec("INSERT INTO structure_provisioning_logs").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectQuery("UPDATE structures").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectExec("INSERT INTO structure_provisioning_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, ps.provisionStructure(structure))
	assert.Equal(t, model.StructureStatusActive, structure.SubscriptionStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionStructure_MarksErrorWhenActivationFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ps := &ProvisioningService{structures: store.NewStructureRepository(db)}
	structure := &model.Structure{ID: uuid.New(), Slug: "hotel-riva"}

	for i := 0; i < 4; i++ {
		mock.ExpectExec("INSERT INTO structure_provisioning_logs").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectQuery("UPDATE structures").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectExec("UPDATE structures SET subscription_status").
		WithArgs(structure.ID, model.StructureStatusError).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.Error(t, ps.provisionStructure(structure))
	assert.NoError(t, mock.ExpectationsWereMet())
}
