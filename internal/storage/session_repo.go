package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks chatbox-ai/internal/storage SessionStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// SessionStore defines the interface for session and message storage operations.
type SessionStore interface {
	// Create inserts a new session. A missing ID is filled with a fresh UUID.
	Create(ctx context.Context, session *SessionRecord) error
	// Get fetches a session by id. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, sessionID string) (*SessionRecord, error)
	// UpdateModel changes the selected model of an existing session.
	UpdateModel(ctx context.Context, sessionID, model string) error
	// AppendMessage appends a message to a session's conversation, assigning
	// the next sequence number.
	AppendMessage(ctx context.Context, msg *MessageRecord) error
	// ListMessages returns a session's messages in insertion order.
	ListMessages(ctx context.Context, sessionID string) ([]MessageRecord, error)
	// ClearMessages deletes every message of a session, keeping the session.
	ClearMessages(ctx context.Context, sessionID string) error
	// Delete removes a session and, via cascade, its messages.
	Delete(ctx context.Context, sessionID string) error
}

// SessionRepo provides methods for session operations.
// It implements the SessionStore interface.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a new session.
func (r *SessionRepo) Create(ctx context.Context, session *SessionRecord) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, model, temperature, max_tokens) VALUES (?, ?, ?, ?)`,
		session.ID, session.Model, session.Temperature, session.MaxTokens,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get fetches a session by id.
// Returns nil and ErrNotFound if not found.
func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*SessionRecord, error) {
	var session SessionRecord
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, model, temperature, max_tokens, created_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.Model, &session.Temperature, &session.MaxTokens, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// UpdateModel changes the selected model of an existing session.
func (r *SessionRepo) UpdateModel(ctx context.Context, sessionID, model string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET model = ? WHERE id = ?",
		model, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session model: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendMessage appends a message to a session's conversation. The sequence
// number is assigned from the current maximum inside a transaction so insertion
// order and chronological order stay identical.
func (r *SessionRepo) AppendMessage(ctx context.Context, msg *MessageRecord) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sessions WHERE id = ?", msg.SessionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE session_id = ?",
		msg.SessionID,
	).Scan(&msg.Seq)
	if err != nil {
		return fmt.Errorf("failed to assign sequence number: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, seq, role, content) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Seq, msg.Role, msg.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}

	return nil
}

// ListMessages returns a session's messages in insertion order.
func (r *SessionRepo) ListMessages(ctx context.Context, sessionID string) ([]MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, seq, role, content, created_at FROM messages WHERE session_id = ? ORDER BY seq",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []MessageRecord
	for rows.Next() {
		var msg MessageRecord
		var createdAtStr string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Seq, &msg.Role, &msg.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// ClearMessages deletes every message of a session. Clearing an unknown session
// returns ErrNotFound; clearing an already empty conversation is a no-op.
func (r *SessionRepo) ClearMessages(ctx context.Context, sessionID string) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sessions WHERE id = ?", sessionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	return nil
}

// Delete removes a session and its messages.
func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// parseTimestamp parses a SQLite DATETIME string.
func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		// SQLite might use a different format depending on how the value was written
		ts, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
		}
	}
	return ts, nil
}
