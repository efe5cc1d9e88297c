package assistant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/llc-formation-platform/internal/observability/metrics"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// DefaultReplyDelay is how long the bot "types" before answering.
const DefaultReplyDelay = time.Second

// ConversationArchiver persists finished sessions.
type ConversationArchiver interface {
	Save(ctx context.Context, c Conversation) error
}

// Service hands out chat sessions backed by a transcript store.
type Service struct {
	store   TranscriptStore
	archive ConversationArchiver
	metrics *metrics.IntakeMetrics
	logger  *logging.Logger
	delay   time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithReplyDelay sets the pause between a user turn and the bot turn.
// Zero disables the pause.
func WithReplyDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.delay = d
		}
	}
}

func WithArchive(a ConversationArchiver) Option {
	return func(s *Service) { s.archive = a }
}

func WithMetrics(m *metrics.IntakeMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store TranscriptStore, opts ...Option) *Service {
	if store == nil {
		store = NewMemoryTranscriptStore(0)
	}
	s := &Service{
		store:  store,
		logger: logging.Default(),
		delay:  DefaultReplyDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is one visitor's conversation with the assistant.
type Session struct {
	ID       string
	Language Language
	svc      *Service
}

// Turn is the result of one Send: the stored user and bot messages.
type Turn struct {
	User     Message
	Bot      Message
	Category Category
}

// Open returns the session with the given id, creating a new id when blank.
// A session with an empty transcript is seeded with the welcome message.
func (s *Service) Open(ctx context.Context, sessionID string, lang Language) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	sess := &Session{ID: sessionID, Language: normalize(lang), svc: s}

	msgs, err := s.store.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("assistant: open session: %w", err)
	}
	if len(msgs) == 0 {
		if err := s.store.Append(ctx, sessionID, Message{Text: Welcome(sess.Language), Sender: SenderBot}); err != nil {
			return nil, fmt.Errorf("assistant: seed welcome: %w", err)
		}
	}
	return sess, nil
}

// History returns the transcript of sessionID in order.
func (s *Service) History(ctx context.Context, sessionID string) ([]Message, error) {
	return s.store.List(ctx, sessionID)
}

// Send stores the user's text, waits the reply delay and stores the bot
// reply. If ctx ends during the delay only the user turn is kept.
func (sess *Session) Send(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, fmt.Errorf("assistant: empty message")
	}
	svc := sess.svc

	user := Message{ID: uuid.NewString(), Text: text, Sender: SenderUser, Timestamp: time.Now().UTC()}
	if err := svc.store.Append(ctx, sess.ID, user); err != nil {
		return Turn{}, fmt.Errorf("assistant: store user message: %w", err)
	}

	if svc.delay > 0 {
		timer := time.NewTimer(svc.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Turn{User: user}, ctx.Err()
		case <-timer.C:
		}
	}

	category, reply := Match(text, sess.Language)
	bot := Message{ID: uuid.NewString(), Text: reply, Sender: SenderBot, Timestamp: time.Now().UTC()}
	if err := svc.store.Append(ctx, sess.ID, bot); err != nil {
		return Turn{User: user}, fmt.Errorf("assistant: store bot message: %w", err)
	}
	svc.metrics.ObserveChatMessage(string(category), string(sess.Language))
	return Turn{User: user, Bot: bot, Category: category}, nil
}

// Messages returns the session transcript.
func (sess *Session) Messages(ctx context.Context) ([]Message, error) {
	return sess.svc.store.List(ctx, sess.ID)
}

// Close archives the transcript when an archive is configured. Sessions
// where the visitor never wrote anything are not archived.
func (sess *Session) Close(ctx context.Context) error {
	svc := sess.svc
	if svc.archive == nil {
		return nil
	}
	msgs, err := svc.store.List(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("assistant: load transcript for archive: %w", err)
	}
	categories := MatchedCategories(msgs, sess.Language)
	if len(categories) == 0 {
		return nil
	}
	return svc.archive.Save(ctx, Conversation{
		SessionID:  sess.ID,
		Language:   sess.Language,
		Messages:   msgs,
		Categories: categories,
	})
}

// MatchedCategories lists the distinct categories of the user turns in
// first-seen order.
func MatchedCategories(msgs []Message, lang Language) []string {
	seen := make(map[Category]bool)
	var out []string
	for _, m := range msgs {
		if m.Sender != SenderUser {
			continue
		}
		c, _ := Match(m.Text, lang)
		if !seen[c] {
			seen[c] = true
			out = append(out, string(c))
		}
	}
	return out
}

// NewSessionID creates a random session identifier.
func NewSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
