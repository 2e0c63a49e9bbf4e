package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/auth"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/bookings"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/payments"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

const (
	defaultLimit = 25
	maxLimit     = 200
)

// Handler serves the admin dashboard API: site overview, chat lead review
// and knowledge-base management.
type Handler struct {
	users     *auth.Repository
	bookings  *bookings.Repository
	payments  *payments.Repository
	chats     *chat.Store
	knowledge *chat.KnowledgeStore
	log       *logging.Logger
}

func NewHandler(users *auth.Repository, b *bookings.Repository, p *payments.Repository, chats *chat.Store, knowledge *chat.KnowledgeStore, log *logging.Logger) *Handler {
	return &Handler{users: users, bookings: b, payments: p, chats: chats, knowledge: knowledge, log: log}
}

// GET /api/admin/overview?limit=
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx := r.Context()

	userCount, err := h.users.Count(ctx)
	if err != nil {
		h.fail(w, "count users", err)
		return
	}
	bookingCount, err := h.bookings.Count(ctx)
	if err != nil {
		h.fail(w, "count bookings", err)
		return
	}
	paymentCount, err := h.payments.Count(ctx)
	if err != nil {
		h.fail(w, "count payments", err)
		return
	}

	recentUsers, err := h.users.Recent(ctx, limit)
	if err != nil {
		h.fail(w, "recent users", err)
		return
	}
	recentBookings, err := h.bookings.Recent(ctx, limit)
	if err != nil {
		h.fail(w, "recent bookings", err)
		return
	}
	recentPayments, err := h.payments.Recent(ctx, limit)
	if err != nil {
		h.fail(w, "recent payments", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"generatedAt": time.Now().UTC(),
		"totals": map[string]int64{
			"users":    userCount,
			"bookings": bookingCount,
			"payments": paymentCount,
		},
		"recentUsers":    recentUsers,
		"recentBookings": recentBookings,
		"recentPayments": recentPayments,
	})
}

// GET /api/admin/chats?status=&limit=
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !chat.ValidLeadStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown lead status")
		return
	}
	sessions, err := h.chats.ListSessions(r.Context(), status, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.fail(w, "list chats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GET /api/admin/chats/{sessionID}/messages
func (h *Handler) ChatMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.chats.BySessionID(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.fail(w, "load chat", err)
		return
	}
	msgs, err := h.chats.RecentMessages(r.Context(), sess.ID, maxLimit)
	if err != nil {
		h.fail(w, "load transcript", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":  sess,
		"messages": msgs,
	})
}

// PATCH /api/admin/chats/{sessionID}
func (h *Handler) UpdateChatStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeadStatus string `json:"leadStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !chat.ValidLeadStatus(req.LeadStatus) {
		writeError(w, http.StatusBadRequest, "unknown lead status")
		return
	}
	if err := h.chats.SetLeadStatus(r.Context(), chi.URLParam(r, "sessionID"), req.LeadStatus); err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.fail(w, "update lead status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PATCH /api/admin/bookings/{bookingID}
func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	switch req.Status {
	case bookings.StatusPending, bookings.StatusConfirmed, bookings.StatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "unknown booking status")
		return
	}
	if err := h.bookings.SetStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		h.fail(w, "update booking status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PUT /api/admin/knowledge
func (h *Handler) ReplaceKnowledge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Document string `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Document) == "" {
		writeError(w, http.StatusBadRequest, "document is required")
		return
	}
	if err := h.knowledge.Replace(r.Context(), req.Document); err != nil {
		h.fail(w, "replace knowledge document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.log.Error("admin request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parseLimit(raw string) int {
	limit := defaultLimit
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
