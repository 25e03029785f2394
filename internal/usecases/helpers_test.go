package usecases

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"rolebot/internal/infrastructure"
	"rolebot/internal/repository"
)

func newTestDB(t *testing.T) *infrastructure.SQLiteClient {
	t.Helper()
	client, err := infrastructure.NewSQLiteClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestAccess(t *testing.T) *AccessControl {
	t.Helper()
	return NewAccessControl(repository.NewRoleRepository(newTestDB(t)), zerolog.Nop())
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	sent    []sentMessage
	failFor map[int64]bool
}

func (f *fakeMessenger) SendMessage(chatID int64, text string) error {
	if f.failFor[chatID] {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{chatID, text})
	return nil
}

func (f *fakeMessenger) SendMarkdown(chatID int64, text string) error {
	return f.SendMessage(chatID, text)
}

func (f *fakeMessenger) SendPoll(chatID int64, question string, options []string) error {
	return f.SendMessage(chatID, "poll: "+question)
}

func (f *fakeMessenger) texts() []string {
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.text
	}
	return out
}
