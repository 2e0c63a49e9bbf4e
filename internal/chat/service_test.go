package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

type fakeBooker struct {
	id    uuid.UUID
	err   error
	got   BookingRequest
	calls int
}

func (f *fakeBooker) BookFromChat(_ context.Context, req BookingRequest) (BookingRef, error) {
	f.got = req
	f.calls++
	if f.err != nil {
		return BookingRef{}, f.err
	}
	return BookingRef{ID: f.id, Status: "pending"}, nil
}

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface, *fakeBooker, *SessionCache) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)

	cache := NewSessionCache(time.Hour, 100, 20)
	booker := &fakeBooker{id: uuid.New()}
	knowledge := NewKnowledgeStore(nil, time.Minute)
	svc := NewService(cache, NewStore(mock), nil, NewRuleResponder(knowledge), booker, logging.Default())
	return svc, mock, booker, cache
}

func expectSession(mock pgxmock.PgxPoolIface, id uuid.UUID, token string, draft LeadDraft, status string) {
	now := time.Now()
	mock.ExpectQuery("INSERT INTO chat_sessions").
		WithArgs(pgxmock.AnyArg(), token).
		WillReturnRows(pgxmock.NewRows(storeSessionColumns).
			AddRow(id, token, "en", draft.Name, draft.Email, draft.Phone, draft.Service, draft.Message, status, (*uuid.UUID)(nil), now, now))
}

func expectNoStoredMessages(mock pgxmock.PgxPoolIface, id uuid.UUID) {
	mock.ExpectQuery("FROM chat_messages").
		WithArgs(id, 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_session_id", "role", "content", "created_at"}))
}

func expectAppend(mock pgxmock.PgxPoolIface, id uuid.UUID, role string) {
	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(pgxmock.AnyArg(), id, role, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestServiceRejectsBlankMessage(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Handle(context.Background(), "session-0001", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank message: got %v, want ErrEmptyMessage", err)
	}
}

func TestServiceAnonymousTurn(t *testing.T) {
	svc, mock, booker, cache := newTestService(t)

	// Conversational reply without touching the store or cache.
	res, err := svc.Handle(context.Background(), "x", "hello")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(res.Reply, "Welcome to KVANTUM") {
		t.Errorf("reply = %q", res.Reply)
	}
	if _, ok := cache.Get("x"); ok {
		t.Error("anonymous turn must not create a cache entry")
	}

	// Incomplete lead: asks for the missing fields, persists nothing.
	res, err = svc.Handle(context.Background(), "", "I want to book a consultation")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(res.MissingFields) != 3 {
		t.Errorf("missingFields = %v", res.MissingFields)
	}

	// A complete one-shot lead still books.
	res, err = svc.Handle(context.Background(), "", "name: Jana, email: jana@example.com, phone: +996700123456")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Booking == nil {
		t.Fatalf("expected a booking, got %+v", res)
	}
	if booker.calls != 1 {
		t.Errorf("booker calls = %d", booker.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestServiceConversationalTurn(t *testing.T) {
	svc, mock, _, _ := newTestService(t)
	id := uuid.New()

	expectSession(mock, id, "session-0001", LeadDraft{}, LeadStatusOpen)
	expectNoStoredMessages(mock, id)
	expectAppend(mock, id, RoleUser)
	expectAppend(mock, id, RoleAssistant)

	res, err := svc.Handle(context.Background(), "session-0001", "hello")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(res.Reply, "Welcome to KVANTUM") {
		t.Errorf("reply = %q", res.Reply)
	}
	if res.Booking != nil || len(res.MissingFields) != 0 {
		t.Errorf("unexpected lead fields in conversational turn: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestServiceCollectsMissingFields(t *testing.T) {
	svc, mock, _, cache := newTestService(t)
	id := uuid.New()

	expectSession(mock, id, "session-0002", LeadDraft{}, LeadStatusOpen)
	expectNoStoredMessages(mock, id)
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, "Айгерим", "", "", "", "меня зовут Айгерим", "ru").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectAppend(mock, id, RoleUser)
	expectAppend(mock, id, RoleAssistant)

	res, err := svc.Handle(context.Background(), "session-0002", "меня зовут Айгерим")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if want := []string{"email", "phone"}; len(res.MissingFields) != 2 || res.MissingFields[0] != want[0] || res.MissingFields[1] != want[1] {
		t.Errorf("MissingFields = %v, want %v", res.MissingFields, want)
	}
	if !strings.Contains(res.Reply, "вашу почту") || !strings.Contains(res.Reply, "телефона") {
		t.Errorf("prompt not localized: %q", res.Reply)
	}

	cached, ok := cache.Get("session-0002")
	if !ok || cached.Draft.Name != "Айгерим" {
		t.Errorf("draft not cached: %+v", cached.Draft)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestServiceBooksCompleteLead(t *testing.T) {
	svc, mock, booker, cache := newTestService(t)
	id := uuid.New()
	const msg = "name: John Doe, email: john@example.com, phone: +996700123456"

	expectSession(mock, id, "session-0003", LeadDraft{}, LeadStatusOpen)
	expectNoStoredMessages(mock, id)
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, "John Doe", "john@example.com", "+996700123456", "", msg, "en").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, booker.id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectAppend(mock, id, RoleUser)
	expectAppend(mock, id, RoleAssistant)

	res, err := svc.Handle(context.Background(), "session-0003", msg)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Booking == nil || res.Booking.ID != booker.id {
		t.Fatalf("booking = %v, want id %v", res.Booking, booker.id)
	}
	if res.Booking.Status != "pending" {
		t.Errorf("booking status = %q, want pending", res.Booking.Status)
	}
	if !strings.Contains(res.Reply, booker.id.String()) {
		t.Errorf("confirmation missing booking id: %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "+996700123456") {
		t.Errorf("confirmation missing phone: %q", res.Reply)
	}
	if booker.got.Service != "chat-consultation" {
		t.Errorf("service = %q, want chat-consultation", booker.got.Service)
	}
	if !strings.HasPrefix(booker.got.Message, "[chatbot] ") {
		t.Errorf("message prefix missing: %q", booker.got.Message)
	}

	cached, _ := cache.Get("session-0003")
	if !cached.Draft.IsEmpty() {
		t.Errorf("draft should be cleared after booking: %+v", cached.Draft)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestServiceHydratesDurableDraft(t *testing.T) {
	svc, mock, booker, cache := newTestService(t)
	id := uuid.New()

	cache.Put("session-0004",
		[]Message{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "welcome"}},
		LeadDraft{Email: "amir@example.com"})

	expectSession(mock, id, "session-0004", LeadDraft{Name: "Amir"}, LeadStatusCollecting)
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, "Amir", "amir@example.com", "+996700123456", "", "+996700123456", "en").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, booker.id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectAppend(mock, id, RoleUser)
	expectAppend(mock, id, RoleAssistant)

	res, err := svc.Handle(context.Background(), "session-0004", "+996700123456")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Booking == nil {
		t.Fatal("expected a booking")
	}
	if booker.got.Name != "Amir" || booker.got.Email != "amir@example.com" {
		t.Errorf("merged lead wrong: %+v", booker.got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestServiceDropsStaleCachedDraft(t *testing.T) {
	svc, mock, _, cache := newTestService(t)
	id := uuid.New()

	cache.Put("session-0005", nil, LeadDraft{Name: "Old Lead", Email: "old@example.com", Phone: "+996700000000"})

	expectSession(mock, id, "session-0005", LeadDraft{}, LeadStatusBooked)
	expectNoStoredMessages(mock, id)
	expectAppend(mock, id, RoleUser)
	expectAppend(mock, id, RoleAssistant)

	res, err := svc.Handle(context.Background(), "session-0005", "hello")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Booking != nil || len(res.MissingFields) != 0 {
		t.Errorf("stale draft should not re-enter lead mode: %+v", res)
	}
	cached, _ := cache.Get("session-0005")
	if !cached.Draft.IsEmpty() {
		t.Errorf("stale draft not cleared: %+v", cached.Draft)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestServiceBookerFailure(t *testing.T) {
	svc, mock, booker, _ := newTestService(t)
	booker.err = errors.New("db down")
	id := uuid.New()
	const msg = "name: John Doe, email: john@example.com, phone: +996700123456"

	expectSession(mock, id, "session-0006", LeadDraft{}, LeadStatusOpen)
	expectNoStoredMessages(mock, id)
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs(id, "John Doe", "john@example.com", "+996700123456", "", msg, "en").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if _, err := svc.Handle(context.Background(), "session-0006", msg); err == nil {
		t.Fatal("expected an error when booking finalization fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
