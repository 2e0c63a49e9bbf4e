package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

// Handler exposes the consultation booking endpoint.
type Handler struct {
	svc *Service
	log *logging.Logger
}

func NewHandler(svc *Service, log *logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// POST /api/book-consultation
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	booking, err := h.svc.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("booking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Consultation booked successfully! We will contact you via WhatsApp/Telegram.",
		"booking": booking,
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
