package webchat

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/llc-formation-platform/internal/assistant"
	"github.com/wolfman30/llc-formation-platform/internal/intake"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
	"golang.org/x/net/websocket"
)

var messageSchema = intake.NewBodySchema(intake.StringFields("session_id", "language", "text"))

// Handler manages web chat connections and messages.
type Handler struct {
	chat   *assistant.Service
	logger *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string              `json:"type"` // "session", "history", "typing", "message", "pong", "error"
	Text      string              `json:"text,omitempty"`
	Sender    string              `json:"sender,omitempty"`
	Category  string              `json:"category,omitempty"`
	SessionID string              `json:"session_id,omitempty"`
	Timestamp string              `json:"timestamp,omitempty"`
	Messages  []assistant.Message `json:"messages,omitempty"`
}

// MessageRequest is the HTTP fallback body.
type MessageRequest struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
	Text      string `json:"text"`
}

// MessageResponse carries the bot reply and the full transcript.
type MessageResponse struct {
	SessionID string              `json:"session_id"`
	Reply     string              `json:"reply"`
	Category  string              `json:"category"`
	Messages  []assistant.Message `json:"messages"`
}

// NewHandler creates a web chat handler.
func NewHandler(chat *assistant.Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		chat:     chat,
		logger:   logger,
		sessions: make(map[string]*wsConn),
	}
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	// The server's read/write timeouts still apply to the hijacked conn.
	_ = conn.SetDeadline(time.Time{})
	ctx := r.Context()
	lang := assistant.ParseLanguage(r.URL.Query().Get("lang"))
	sess, err := h.chat.Open(ctx, r.URL.Query().Get("session"), lang)
	if err != nil {
		h.logger.Error("webchat: failed to open session", "error", err)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "chat is unavailable, please try again later"})
		return
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sess.ID})
	if msgs, err := sess.Messages(ctx); err == nil {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: msgs})
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sess.ID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sess.ID] == wsc {
			delete(h.sessions, sess.ID)
		}
		h.mu.Unlock()
		close(wsc.done)

		archiveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Close(archiveCtx); err != nil {
			h.logger.Warn("webchat: failed to archive conversation", "error", err, "session_id", sess.ID)
		}
	}()

	h.logger.Info("webchat: connection opened", "session_id", sess.ID, "language", sess.Language)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sess.ID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.SendToSession(sess.ID, OutboundMessage{Type: "typing"})
		turn, err := sess.Send(ctx, msg.Text)
		if err != nil {
			h.logger.Error("webchat: failed to answer", "error", err, "session_id", sess.ID)
			h.SendToSession(sess.ID, OutboundMessage{
				Type: "error",
				Text: "Sorry, something went wrong. Please try again.",
			})
			continue
		}
		h.SendToSession(sess.ID, OutboundMessage{
			Type:      "message",
			Sender:    string(turn.Bot.Sender),
			Text:      turn.Bot.Text,
			Category:  string(turn.Category),
			Timestamp: turn.Bot.Timestamp.Format(time.RFC3339),
		})
	}
}

// SendToSession sends a message to an active WebSocket session.
func (h *Handler) SendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// ActiveSessions reports how many sockets are connected.
func (h *Handler) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// HandleMessage is the HTTP fallback for sending messages. It blocks for
// the reply delay and returns the bot answer.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := messageSchema.Decode(r, &req); err != nil {
		intake.WriteJSON(w, http.StatusBadRequest, intake.ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		intake.WriteJSON(w, http.StatusBadRequest, intake.ErrorResponse{Error: "invalid text: required", Field: "text"})
		return
	}

	sess, err := h.chat.Open(r.Context(), req.SessionID, assistant.ParseLanguage(req.Language))
	if err != nil {
		intake.WriteError(w, h.logger, intake.Persistence("open chat session", err))
		return
	}
	turn, err := sess.Send(r.Context(), req.Text)
	if err != nil {
		intake.WriteError(w, h.logger, intake.Persistence("answer chat message", err))
		return
	}
	msgs, err := sess.Messages(r.Context())
	if err != nil {
		intake.WriteError(w, h.logger, intake.Persistence("load chat transcript", err))
		return
	}

	intake.WriteJSON(w, http.StatusOK, MessageResponse{
		SessionID: sess.ID,
		Reply:     turn.Bot.Text,
		Category:  string(turn.Category),
		Messages:  msgs,
	})
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		intake.WriteJSON(w, http.StatusBadRequest, intake.ErrorResponse{Error: "session parameter required", Field: "session"})
		return
	}

	msgs, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err)
		intake.WriteError(w, h.logger, intake.Persistence("load chat history", err))
		return
	}
	if msgs == nil {
		msgs = []assistant.Message{}
	}
	intake.WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
