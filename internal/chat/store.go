package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Lead status lifecycle of a chat session.
const (
	LeadStatusOpen       = "open"
	LeadStatusCollecting = "collecting"
	LeadStatusBooked     = "booked"
	LeadStatusClosed     = "closed"
	LeadStatusSpam       = "spam"
)

const messageContentMaxRunes = 4000

// ErrSessionNotFound is returned when no durable session matches.
var ErrSessionNotFound = errors.New("chat: session not found")

// ValidLeadStatus reports whether s is one of the known lead statuses.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusOpen, LeadStatusCollecting, LeadStatusBooked, LeadStatusClosed, LeadStatusSpam:
		return true
	}
	return false
}

// Session is the durable per-token conversation record. It survives
// restarts and is the source of truth the in-memory cache hydrates from.
type Session struct {
	ID         uuid.UUID  `json:"id"`
	SessionID  string     `json:"session_id"`
	Locale     string     `json:"locale"`
	Draft      LeadDraft  `json:"lead_draft"`
	LeadStatus string     `json:"lead_status"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// StoredMessage is one row of the append-only chat transcript.
type StoredMessage struct {
	ID            uuid.UUID `json:"id"`
	ChatSessionID uuid.UUID `json:"chat_session_id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

// PgxPool is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists chat sessions and their transcripts in Postgres.
type Store struct {
	pool PgxPool
}

// NewStore creates a store backed by a pgx pool.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("chat: pgx pool required")
	}
	return &Store{pool: pool}
}

const sessionColumns = `id, session_id, locale, lead_name, lead_email, lead_phone, lead_service, lead_message, lead_status, booking_id, created_at, updated_at`

// GetOrCreate loads the durable session for a token, creating an empty
// open record on first touch.
func (s *Store) GetOrCreate(ctx context.Context, sessionID string) (*Session, error) {
	query := `
		INSERT INTO chat_sessions (id, session_id, lead_status)
		VALUES ($1, $2, 'open')
		ON CONFLICT (session_id) DO UPDATE SET updated_at = now()
		RETURNING ` + sessionColumns
	row := s.pool.QueryRow(ctx, query, uuid.New(), sessionID)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("chat: get or create session: %w", err)
	}
	return sess, nil
}

// BySessionID loads a durable session without creating one.
func (s *Store) BySessionID(ctx context.Context, sessionID string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE session_id = $1`
	sess, err := scanSession(s.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("chat: load session: %w", err)
	}
	return sess, nil
}

// SaveDraft persists the working lead draft and moves the session to
// "collecting" so an in-flight capture survives a restart.
func (s *Store) SaveDraft(ctx context.Context, id uuid.UUID, draft LeadDraft, locale string) error {
	query := `
		UPDATE chat_sessions
		SET lead_name = $2, lead_email = $3, lead_phone = $4, lead_service = $5,
		    lead_message = $6, lead_status = 'collecting', locale = $7, updated_at = now()
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, draft.Name, draft.Email, draft.Phone, draft.Service, draft.Message, locale)
	if err != nil {
		return fmt.Errorf("chat: save draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// MarkBooked links the finalized booking and closes the draft lifecycle.
func (s *Store) MarkBooked(ctx context.Context, id uuid.UUID, bookingID uuid.UUID) error {
	query := `
		UPDATE chat_sessions
		SET lead_status = 'booked', booking_id = $2, updated_at = now()
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, bookingID)
	if err != nil {
		return fmt.Errorf("chat: mark booked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SetLeadStatus updates the lead status from the admin review surface.
func (s *Store) SetLeadStatus(ctx context.Context, sessionID string, status string) error {
	if !ValidLeadStatus(status) {
		return fmt.Errorf("chat: invalid lead status %q", status)
	}
	query := `UPDATE chat_sessions SET lead_status = $2, updated_at = now() WHERE session_id = $1`
	tag, err := s.pool.Exec(ctx, query, sessionID, status)
	if err != nil {
		return fmt.Errorf("chat: set lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AppendMessage appends one transcript row, capping oversized content.
func (s *Store) AppendMessage(ctx context.Context, chatSessionID uuid.UUID, role, content string) error {
	if runes := []rune(content); len(runes) > messageContentMaxRunes {
		content = string(runes[:messageContentMaxRunes])
	}
	query := `INSERT INTO chat_messages (id, chat_session_id, role, content) VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, query, uuid.New(), chatSessionID, role, content); err != nil {
		return fmt.Errorf("chat: append message: %w", err)
	}
	return nil
}

// RecentMessages returns the most recent limit transcript rows in
// chronological order, for cache hydration after a restart.
func (s *Store) RecentMessages(ctx context.Context, chatSessionID uuid.UUID, limit int) ([]StoredMessage, error) {
	query := `
		SELECT id, chat_session_id, role, content, created_at
		FROM chat_messages
		WHERE chat_session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := s.pool.Query(ctx, query, chatSessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat: recent messages: %w", err)
	}
	defer rows.Close()

	var msgs []StoredMessage
	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.ID, &m.ChatSessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("chat: scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat: iterate messages: %w", err)
	}

	// Restore chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ListSessions returns recent sessions for admin review, optionally
// filtered by lead status.
func (s *Store) ListSessions(ctx context.Context, status string, limit int) ([]Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		if !ValidLeadStatus(status) {
			return nil, fmt.Errorf("chat: invalid lead status %q", status)
		}
		query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE lead_status = $1 ORDER BY updated_at DESC LIMIT $2`
		rows, err = s.pool.Query(ctx, query, status, limit)
	} else {
		query := `SELECT ` + sessionColumns + ` FROM chat_sessions ORDER BY updated_at DESC LIMIT $1`
		rows, err = s.pool.Query(ctx, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("chat: list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("chat: scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat: iterate sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*Session, error) {
	var sess Session
	if err := row.Scan(
		&sess.ID,
		&sess.SessionID,
		&sess.Locale,
		&sess.Draft.Name,
		&sess.Draft.Email,
		&sess.Draft.Phone,
		&sess.Draft.Service,
		&sess.Draft.Message,
		&sess.LeadStatus,
		&sess.BookingID,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sess, nil
}
