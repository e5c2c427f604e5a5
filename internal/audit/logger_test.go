package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_RecordsSuccessOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	logger := NewLogger(db)
	err = logger.Log(context.Background(), Entry{
		ActorID:    "admin-1",
		Command:    "rule.create",
		TargetType: "message_rule",
	}, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLog_RecordsFailureAndReturnsCommandError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	logger := NewLogger(db)
	cmdErr := errors.New("persist failed")
	err = logger.Log(context.Background(), Entry{
		ActorID: "admin-1",
		Command: "rule.create",
	}, func(ctx context.Context) error { return cmdErr })
	assert.Equal(t, cmdErr, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLog_AuditWriteFailureDoesNotOverrideResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(errors.New("audit table unavailable"))

	logger := NewLogger(db)
	err = logger.Log(context.Background(), Entry{
		ActorID: "admin-1",
		Command: "rule.create",
	}, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
