package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"net/http"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

const historyLimit = 50

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// OutboundMessage is what we push to the widget.
type OutboundMessage struct {
	Type          string           `json:"type"` // "message", "typing", "history", "session", "pong", "error"
	Text          string           `json:"text,omitempty"`
	Role          string           `json:"role,omitempty"`
	SessionID     string           `json:"sessionId,omitempty"`
	Timestamp     string           `json:"timestamp,omitempty"`
	Booking       *chat.BookingRef `json:"booking,omitempty"`
	MissingFields []string         `json:"missingFields,omitempty"`
	Messages      []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified transcript row for history frames.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Handler bridges WebSocket connections to the chat service so the widget
// gets the same lead-capture flow as the HTTP endpoint, plus typing
// indicators and history replay.
type Handler struct {
	svc   *chat.Service
	store *chat.Store
	log   *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn
}

type wsConn struct {
	conn *websocket.Conn
}

func NewHandler(svc *chat.Service, store *chat.Store, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Default()
	}
	return &Handler{svc: svc, store: store, log: log, sessions: make(map[string]*wsConn)}
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and serves the connection.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" || !chat.ValidSessionToken(sessionID) {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})
	h.sendHistory(r.Context(), conn, sessionID)

	wsc := &wsConn{conn: conn}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
	}()

	h.log.Info("webchat connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.log.Debug("webchat connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), sessionID, msg.Text)
	}
}

// sendHistory replays the durable transcript to a reconnecting widget.
func (h *Handler) sendHistory(ctx context.Context, conn *websocket.Conn, sessionID string) {
	if h.store == nil {
		return
	}
	sess, err := h.store.BySessionID(ctx, sessionID)
	if err != nil {
		return
	}
	msgs, err := h.store.RecentMessages(ctx, sess.ID, historyLimit)
	if err != nil || len(msgs) == 0 {
		return
	}
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.CreatedAt.Format(time.RFC3339),
		})
	}
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
}

func (h *Handler) processMessage(ctx context.Context, sessionID, text string) {
	h.sendToSession(sessionID, OutboundMessage{Type: "typing"})

	res, err := h.svc.Handle(ctx, sessionID, text)
	if err != nil {
		h.log.Error("webchat turn failed", "error", err, "session_id", sessionID)
		h.sendToSession(sessionID, OutboundMessage{
			Type: "error",
			Text: "Sorry, something went wrong. Please try again.",
		})
		return
	}

	h.sendToSession(sessionID, OutboundMessage{
		Type:          "message",
		Role:          chat.RoleAssistant,
		Text:          res.Reply,
		Booking:       res.Booking,
		MissingFields: res.MissingFields,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) sendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}
