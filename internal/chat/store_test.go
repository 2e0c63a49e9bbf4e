package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var storeSessionColumns = []string{
	"id", "session_id", "locale", "lead_name", "lead_email", "lead_phone",
	"lead_service", "lead_message", "lead_status", "booking_id", "created_at", "updated_at",
}

func TestStoreGetOrCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery("INSERT INTO chat_sessions").
		WithArgs(pgxmock.AnyArg(), "session-0001").
		WillReturnRows(pgxmock.NewRows(storeSessionColumns).
			AddRow(id, "session-0001", "", "", "", "", "", "", "open", (*uuid.UUID)(nil), now, now))

	store := NewStore(mock)
	sess, err := store.GetOrCreate(context.Background(), "session-0001")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if sess.SessionID != "session-0001" {
		t.Errorf("unexpected session id %q", sess.SessionID)
	}
	if sess.LeadStatus != LeadStatusOpen {
		t.Errorf("expected open status, got %q", sess.LeadStatus)
	}
	if !sess.Draft.IsEmpty() {
		t.Errorf("expected empty draft, got %+v", sess.Draft)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStoreSaveDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	draft := LeadDraft{Name: "Sveta", Email: "sveta@example.com", Phone: "+996700112233", Service: "reboot", Message: "hi"}
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, "Sveta", "sveta@example.com", "+996700112233", "reboot", "hi", "ru").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	if err := store.SaveDraft(context.Background(), id, draft, "ru"); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStoreSaveDraftMissingSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(pgxmock.AnyArg(), "", "", "", "", "", "en").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStore(mock)
	err = store.SaveDraft(context.Background(), uuid.New(), LeadDraft{}, "en")
	if err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreMarkBooked(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	bookingID := uuid.New()
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, bookingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	if err := store.MarkBooked(context.Background(), id, bookingID); err != nil {
		t.Fatalf("MarkBooked: %v", err)
	}
}

func TestStoreSetLeadStatusRejectsUnknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	if err := store.SetLeadStatus(context.Background(), "session-0001", "archived"); err == nil {
		t.Fatal("expected error for unknown lead status")
	}
}

func TestStoreAppendMessageCapsContent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	long := make([]rune, 5000)
	for i := range long {
		long[i] = 'x'
	}
	capped := string(long[:messageContentMaxRunes])

	sessionID := uuid.New()
	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(pgxmock.AnyArg(), sessionID, "user", capped).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStore(mock)
	if err := store.AppendMessage(context.Background(), sessionID, "user", string(long)); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStoreRecentMessagesChronological(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	sessionID := uuid.New()
	base := time.Now()
	// Query returns newest first; store must restore chronological order.
	mock.ExpectQuery("SELECT id, chat_session_id, role, content, created_at").
		WithArgs(sessionID, 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_session_id", "role", "content", "created_at"}).
			AddRow(uuid.New(), sessionID, "assistant", "third", base).
			AddRow(uuid.New(), sessionID, "user", "second", base.Add(-time.Minute)).
			AddRow(uuid.New(), sessionID, "user", "first", base.Add(-2*time.Minute)))

	store := NewStore(mock)
	msgs, err := store.RecentMessages(context.Background(), sessionID, 3)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[2].Content != "third" {
		t.Errorf("messages not chronological: %v, %v, %v", msgs[0].Content, msgs[1].Content, msgs[2].Content)
	}
}

func TestStoreListSessionsFiltered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM chat_sessions WHERE lead_status").
		WithArgs("collecting", 25).
		WillReturnRows(pgxmock.NewRows(storeSessionColumns).
			AddRow(uuid.New(), "session-0001", "ru", "Света", "", "", "", "", "collecting", (*uuid.UUID)(nil), now, now))

	store := NewStore(mock)
	sessions, err := store.ListSessions(context.Background(), "collecting", 25)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Draft.Name != "Света" {
		t.Errorf("unexpected sessions %+v", sessions)
	}
}
