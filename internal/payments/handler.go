package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/auth"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

// Handler exposes the demo payment endpoint. Only mount it when demo
// payments are enabled in config.
type Handler struct {
	svc *Service
	log *logging.Logger
}

func NewHandler(svc *Service, log *logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// POST /api/payment (behind auth.UserJWT)
func (h *Handler) CreateDemo(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	payment, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("demo payment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record payment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Payment processed successfully!",
		"payment":      payment,
		"notification": "Confirmation sent via WhatsApp/Telegram",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
