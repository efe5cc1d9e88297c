package assistant

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Conversation is an archived chat session.
type Conversation struct {
	SessionID  string    `json:"sessionId"`
	Language   Language  `json:"language"`
	Messages   []Message `json:"messages"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Archive stores finished chat sessions in chat_conversations.
type Archive struct {
	db *sql.DB
}

func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// Save upserts the conversation keyed by session id.
func (a *Archive) Save(ctx context.Context, c Conversation) error {
	if c.SessionID == "" {
		return errSessionRequired
	}
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("assistant: marshal conversation: %w", err)
	}
	categories := c.Categories
	if categories == nil {
		categories = []string{}
	}
	now := time.Now().UTC()
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO chat_conversations (session_id, language, messages, categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (session_id) DO UPDATE SET
		    language = EXCLUDED.language, messages = EXCLUDED.messages,
		    categories = EXCLUDED.categories, updated_at = $5`,
		c.SessionID, string(c.Language), messages, pq.Array(categories), now)
	if err != nil {
		return fmt.Errorf("assistant: save conversation: %w", err)
	}
	return nil
}

// List returns the most recently updated conversations first.
func (a *Archive) List(ctx context.Context, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT session_id, language, messages, categories, created_at, updated_at
		FROM chat_conversations ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("assistant: list conversations: %w", err)
	}
	defer rows.Close()

	out := []Conversation{}
	for rows.Next() {
		var c Conversation
		var lang string
		var messages []byte
		if err := rows.Scan(&c.SessionID, &lang, &messages, pq.Array(&c.Categories), &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("assistant: scan conversation: %w", err)
		}
		c.Language = ParseLanguage(lang)
		if err := json.Unmarshal(messages, &c.Messages); err != nil {
			return nil, fmt.Errorf("assistant: decode conversation %s: %w", c.SessionID, err)
		}
		if c.Categories == nil {
			c.Categories = []string{}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
