package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochat/internal/model"
)

func msgAt(id, body string, ts time.Time) model.Message {
	return model.Message{ID: id, ChatID: "a_b", Body: body, Timestamp: ts}
}

func TestSession_ApplyAdvancesCursorAndLedger(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession()
	s.SetContacts([]model.ContactRow{
		{ChatID: "a_b", LastMessage: "old", LastMessageAt: t0.Add(-time.Hour)},
		{ChatID: "a_c", LastMessage: "other"},
	})
	s.OpenChat("a_b")
	assert.Nil(t, s.Since("a_b"))

	fresh := s.Apply("a_b", []model.Message{msgAt("1", "one", t0), msgAt("2", "two", t0.Add(time.Second))})
	require.Len(t, fresh, 2)

	since := s.Since("a_b")
	require.NotNil(t, since)
	assert.True(t, since.Equal(t0.Add(time.Second)))

	text, at := s.LastMessage()
	assert.Equal(t, "two", text)
	assert.True(t, at.Equal(t0.Add(time.Second)))

	rows := s.Contacts()
	assert.Equal(t, "two", rows[0].LastMessage)
	assert.Equal(t, "other", rows[1].LastMessage)
}

func TestSession_ApplyIgnoresSeenAndStale(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession()
	s.OpenChat("a_b")
	s.Apply("a_b", []model.Message{msgAt("1", "one", t0)})

	assert.Empty(t, s.Apply("a_b", []model.Message{msgAt("1", "one", t0)}))
	assert.Empty(t, s.Apply("x_y", []model.Message{msgAt("9", "elsewhere", t0.Add(time.Hour))}))
	assert.Nil(t, s.Since("x_y"))

	text, _ := s.LastMessage()
	assert.Equal(t, "one", text)
}

func TestSession_ApplyKeepsSameInstantMessages(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession()
	s.OpenChat("a_b")

	require.Len(t, s.Apply("a_b", []model.Message{msgAt("1", "first", at)}), 1)

	fresh := s.Apply("a_b", []model.Message{msgAt("1", "first", at), msgAt("2", "second", at)})
	require.Len(t, fresh, 1)
	assert.Equal(t, "second", fresh[0].Body)

	assert.Empty(t, s.Apply("a_b", []model.Message{msgAt("1", "first", at), msgAt("2", "second", at)}))

	fresh = s.Apply("a_b", []model.Message{msgAt("2", "second", at), msgAt("3", "third", at.Add(time.Millisecond))})
	require.Len(t, fresh, 1)
	assert.Equal(t, "third", fresh[0].Body)

	text, _ := s.LastMessage()
	assert.Equal(t, "third", text)
}

func TestSession_OpenChatResetsCursor(t *testing.T) {
	s := NewSession()
	s.Authenticate("tok", "u1", "Alice")
	s.OpenChat("a_b")
	s.Apply("a_b", []model.Message{msgAt("1", "one", time.Now())})

	s.OpenChat("a_c")
	assert.Equal(t, "a_c", s.ActiveChat())
	assert.Nil(t, s.Since("a_c"))
	assert.Equal(t, "u1", s.UserID())
	assert.Equal(t, "Alice", s.UserName())

	s.CloseChat()
	assert.Empty(t, s.ActiveChat())
}

func TestSession_ContactsAreCopies(t *testing.T) {
	s := NewSession()
	rows := []model.ContactRow{{ChatID: "a_b"}}
	s.SetContacts(rows)
	rows[0].ChatID = "mutated"

	got := s.Contacts()
	got[0].LastMessage = "mutated"
	assert.Equal(t, "a_b", s.Contacts()[0].ChatID)
	assert.Empty(t, s.Contacts()[0].LastMessage)
}
