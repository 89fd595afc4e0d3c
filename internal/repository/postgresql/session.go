package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/session"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/database"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id         UUID PRIMARY KEY,
	file_name  TEXT NOT NULL DEFAULT '',
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type sessionRepositoryImpl struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) session.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

// EnsureSessionSchema creates the sessions table when it does not exist yet.
func EnsureSessionSchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Save implements session.SessionRepository. An existing snapshot with the
// same ID is replaced unless it is newer than the one being written.
func (r *sessionRepositoryImpl) Save(ctx context.Context, snapshot session.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", snapshot.ID, err)
	}

	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var stored time.Time
		err := q.QueryRow(ctx, `SELECT updated_at FROM sessions WHERE id = $1 FOR UPDATE`, snapshot.ID).Scan(&stored)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to lock session %s: %w", snapshot.ID, err)
		case stored.After(snapshot.UpdatedAt):
			slog.Warn("Skipping stale session snapshot", "session_id", snapshot.ID, "stored_at", stored, "snapshot_at", snapshot.UpdatedAt)
			return nil
		}

		query := `
			INSERT INTO sessions (id, file_name, payload, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET file_name = EXCLUDED.file_name,
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at
		`
		if _, err := q.Exec(ctx, query, snapshot.ID, snapshot.FileName, payload, snapshot.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save session %s: %w", snapshot.ID, err)
		}
		return nil
	})
}

// GetByID implements session.SessionRepository.
func (r *sessionRepositoryImpl) GetByID(ctx context.Context, id string) (session.Snapshot, error) {
	q := GetQuerier(ctx, r.db)

	var payload []byte
	err := q.QueryRow(ctx, `SELECT payload FROM sessions WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Snapshot{}, fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
		}
		return session.Snapshot{}, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var snapshot session.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return snapshot, nil
}

// Delete implements session.SessionRepository.
func (r *sessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
	}
	return nil
}
