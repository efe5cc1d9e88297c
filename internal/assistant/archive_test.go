package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	archive := NewArchive(db)
	mock.ExpectExec("INSERT INTO chat_conversations").
		WithArgs("sess-1", "fr", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = archive.Save(context.Background(), Conversation{
		SessionID:  "sess-1",
		Language:   French,
		Messages:   []Message{{ID: "m1", Text: "prix", Sender: SenderUser}},
		Categories: []string{"price"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveSaveRequiresSession(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, NewArchive(db).Save(context.Background(), Conversation{}))
}

func TestArchiveSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO chat_conversations").WillReturnError(errors.New("conn reset"))
	err = NewArchive(db).Save(context.Background(), Conversation{SessionID: "s"})
	assert.Error(t, err)
}

func TestArchiveList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"session_id", "language", "messages", "categories", "created_at", "updated_at"}).
		AddRow("sess-2", "en", []byte(`[{"id":"m1","text":"hello","sender":"user","timestamp":"2024-01-01T00:00:00Z"}]`), "{greeting,price}", now, now).
		AddRow("sess-1", "fr", []byte(`[]`), "{}", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT session_id, language, messages, categories").WithArgs(50).WillReturnRows(rows)

	convs, err := NewArchive(db).List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "sess-2", convs[0].SessionID)
	assert.Equal(t, []string{"greeting", "price"}, convs[0].Categories)
	require.Len(t, convs[0].Messages, 1)
	assert.Equal(t, SenderUser, convs[0].Messages[0].Sender)
	assert.Equal(t, French, convs[1].Language)
	assert.Equal(t, []string{}, convs[1].Categories)
	require.NoError(t, mock.ExpectationsWereMet())
}
