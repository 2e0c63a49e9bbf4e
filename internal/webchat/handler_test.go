package webchat

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"golang.org/x/net/websocket"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

func TestGenerateSessionID(t *testing.T) {
	a, b := generateSessionID(), generateSessionID()
	if a == b {
		t.Error("expected unique session ids")
	}
	if !chat.ValidSessionToken(a) {
		t.Errorf("generated id %q is not a valid session token", a)
	}
}

func newTestHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)

	store := chat.NewStore(mock)
	cache := chat.NewSessionCache(time.Hour, 100, 20)
	rules := chat.NewRuleResponder(chat.NewKnowledgeStore(nil, time.Minute))
	svc := chat.NewService(cache, store, nil, rules, nil, logging.Default())
	return NewHandler(svc, store, logging.Default()), mock
}

func TestWebSocketRoundTrip(t *testing.T) {
	h, mock := newTestHandler(t)
	id := uuid.New()
	now := time.Now()
	cols := []string{"id", "session_id", "locale", "lead_name", "lead_email", "lead_phone",
		"lead_service", "lead_message", "lead_status", "booking_id", "created_at", "updated_at"}

	// History replay finds no session yet.
	mock.ExpectQuery("SELECT .* FROM chat_sessions WHERE session_id").
		WithArgs("fixed-session-01").
		WillReturnRows(pgxmock.NewRows(cols))
	// One conversational turn.
	mock.ExpectQuery("INSERT INTO chat_sessions").
		WithArgs(pgxmock.AnyArg(), "fixed-session-01").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(id, "fixed-session-01", "en", "", "", "", "", "", "open", (*uuid.UUID)(nil), now, now))
	mock.ExpectQuery("FROM chat_messages").
		WithArgs(id, 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_session_id", "role", "content", "created_at"}))
	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(pgxmock.AnyArg(), id, chat.RoleUser, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(pgxmock.AnyArg(), id, chat.RoleAssistant, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, conn.Request())
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=fixed-session-01"
	conn, err := websocket.Dial(url, "", srv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var frame OutboundMessage
	if err := websocket.JSON.Receive(conn, &frame); err != nil {
		t.Fatalf("receive session frame: %v", err)
	}
	if frame.Type != "session" || frame.SessionID != "fixed-session-01" {
		t.Fatalf("session frame = %+v", frame)
	}

	if err := websocket.JSON.Send(conn, InboundMessage{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	if err := websocket.JSON.Receive(conn, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Type != "pong" {
		t.Fatalf("expected pong, got %+v", frame)
	}

	if err := websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := websocket.JSON.Receive(conn, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Type != "typing" {
		t.Fatalf("expected typing, got %+v", frame)
	}
	if err := websocket.JSON.Receive(conn, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Type != "message" || !strings.Contains(frame.Text, "Welcome to KVANTUM") {
		t.Fatalf("message frame = %+v", frame)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
