package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one turn of a chat transcript.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

var errSessionRequired = errors.New("assistant: session id required")

// TranscriptStore keeps the ordered messages of each chat session.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, msg Message) error
	List(ctx context.Context, sessionID string) ([]Message, error)
}

// MemoryTranscriptStore is the TranscriptStore used when Redis is not configured.
type MemoryTranscriptStore struct {
	mu          sync.Mutex
	sessions    map[string][]Message
	maxMessages int
}

func NewMemoryTranscriptStore(maxMessages int) *MemoryTranscriptStore {
	return &MemoryTranscriptStore{sessions: make(map[string][]Message), maxMessages: maxMessages}
}

func (s *MemoryTranscriptStore) Append(ctx context.Context, sessionID string, msg Message) error {
	if sessionID == "" {
		return errSessionRequired
	}
	fillMessage(&msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := append(s.sessions[sessionID], msg)
	if s.maxMessages > 0 && len(msgs) > s.maxMessages {
		msgs = append([]Message(nil), msgs[len(msgs)-s.maxMessages:]...)
	}
	s.sessions[sessionID] = msgs
	return nil
}

func (s *MemoryTranscriptStore) List(ctx context.Context, sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, errSessionRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message{}, s.sessions[sessionID]...), nil
}

func fillMessage(msg *Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
}
