package notify

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Handler exposes the notification hand-off endpoint used by the website's
// contact buttons.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type notifyRequest struct {
	Type    string `json:"type"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

const defaultNotifyText = "Thank you for your purchase at KVANTUM!"

// POST /api/notify
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Type)) {
	case "whatsapp":
		text := strings.TrimSpace(req.Message)
		if text == "" {
			text = defaultNotifyText
		}
		link := WhatsAppLink(req.Phone, text)
		if link == "" {
			writeError(w, http.StatusBadRequest, "valid phone is required")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "WhatsApp notification ready",
			"url":     link,
		})
	case "telegram":
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Telegram notification sent",
			"note":    "In production, integrate with Telegram Bot API",
		})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Notification sent"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
