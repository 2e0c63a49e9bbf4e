package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/google/uuid"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

func newTestHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	svc, mock, _, _ := newTestService(t)
	return NewHandler(svc, logging.Default()), mock
}

func TestHandlerChat(t *testing.T) {
	h, mock := newTestHandler(t)
	id := uuid.New()

	expectSession(mock, id, "widget-session-1", LeadDraft{}, LeadStatusOpen)
	expectNoStoredMessages(mock, id)
	expectAppend(mock, id, RoleUser)
	expectAppend(mock, id, RoleAssistant)

	body := `{"sessionId":"widget-session-1","message":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(res.Reply, "Welcome to KVANTUM") {
		t.Errorf("reply = %q", res.Reply)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestHandlerChatBadRequests(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"sessionId":`},
		{"missing message", `{"sessionId":"widget-session-1","message":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Chat(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "error") {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

func TestHandlerChatWithoutSessionStillReplies(t *testing.T) {
	h, mock := newTestHandler(t)

	body := `{"message":"what does Brain Charge cost"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(res.Reply, "Brain Charge") {
		t.Errorf("reply = %q", res.Reply)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestHandlerChatBookingResponseShape(t *testing.T) {
	svc, mock, booker, _ := newTestService(t)
	h := NewHandler(svc, logging.Default())

	body := `{"message":"Имя: Света, email: sveta@example.com, телефон: +996700112233, хочу на консультацию"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	raw := rec.Body.String()
	var res struct {
		Reply   string `json:"reply"`
		Booking *struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"booking"`
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Booking == nil {
		t.Fatalf("no booking in body: %s", raw)
	}
	if res.Booking.ID != booker.id || res.Booking.Status != "pending" {
		t.Errorf("booking = %+v, want id %v status pending", res.Booking, booker.id)
	}
	if !strings.Contains(res.Reply, booker.id.String()) || !strings.Contains(res.Reply, "Готово, Света") {
		t.Errorf("reply = %q", res.Reply)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
