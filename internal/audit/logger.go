// Package audit records attributable command executions. One calling
// convention is used everywhere: build an Entry, hand Log the operation, and
// the outcome is persisted together with actor, tenant, and target.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hotelaccelerator/backoffice-service/internal/monitoring"
)

// Entry identifies one command execution.
type Entry struct {
	ActorID    string
	PropertyID string
	Command    string
	TargetType string
	TargetID   string
	Metadata   map[string]interface{}
}

// Logger persists command executions to the audit_log table. It is an
// explicit dependency of each service; there is no process-wide singleton.
type Logger struct {
	db *sql.DB
}

// NewLogger creates a new Logger.
func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log executes fn and records the outcome. The record is written before Log
// returns; a failed write is logged but does not override the command's own
// result.
func (l *Logger) Log(ctx context.Context, entry Entry, fn func(ctx context.Context) error) error {
	execErr := fn(ctx)

	outcome := "success"
	errMessage := ""
	if execErr != nil {
		outcome = "error"
		errMessage = execErr.Error()
	}
	monitoring.CommandsExecuted.WithLabelValues(entry.Command, outcome).Inc()

	if err := l.record(ctx, entry, outcome, errMessage); err != nil {
		log.Error().Err(err).
			Str("command", entry.Command).
			Str("actor_id", entry.ActorID).
			Msg("Failed to write audit record")
	}
	return execErr
}

func (l *Logger) record(ctx context.Context, entry Entry, outcome, errMessage string) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_log (id, actor_id, property_id, command, target_type, target_id, metadata, outcome, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = l.db.ExecContext(ctx, query,
		uuid.New(), entry.ActorID, nullable(entry.PropertyID), entry.Command,
		entry.TargetType, nullable(entry.TargetID), metadataJSON, outcome,
		nullable(errMessage), time.Now())
	return err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
