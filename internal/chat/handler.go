package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

// Handler exposes the chat widget endpoint.
type Handler struct {
	svc *Service
	log *logging.Logger
}

func NewHandler(svc *Service, log *logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := h.svc.Handle(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message is required")
		} else {
			h.log.Error("chat turn failed", "error", err, "session_id", req.SessionID)
			writeError(w, http.StatusInternalServerError, "failed to process message")
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
