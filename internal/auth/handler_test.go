package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

func TestHandlerLogin(t *testing.T) {
	svc, mock := newTestService(t)
	h := NewHandler(svc, logging.Default())
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM users WHERE email").
		WithArgs("aida@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(id, "Aida", "aida@example.com", "", mustHash(t, "secret123"), now, now))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"aida@example.com","password":"secret123"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Token == "" || res.User == nil || res.User.Email != "aida@example.com" {
		t.Errorf("response = %+v", res)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("password hash leaked in response")
	}
}

func TestHandlerLoginInvalidCredentials(t *testing.T) {
	svc, mock := newTestService(t)
	h := NewHandler(svc, logging.Default())

	mock.ExpectQuery("SELECT .* FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(userCols))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ghost@example.com","password":"whatever"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandlerProfileRequiresClaims(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(svc, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	rec := httptest.NewRecorder()
	h.Profile(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
