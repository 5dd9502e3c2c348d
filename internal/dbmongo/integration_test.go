package dbmongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gochat/internal/config"
	"gochat/internal/errs"
	"gochat/internal/model"
)

// Runs against a live server; set MONGO_TEST_URI, e.g. mongodb://localhost:27017.
func newIntegrationClient(t *testing.T) *MongoClient {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	cfg := &config.Config{MongoDB: config.MongoDBConfig{
		URI:      uri,
		Database: fmt.Sprintf("gochat_test_%d", time.Now().UnixNano()),
	}}
	client, err := NewMongoConnection(cfg, zap.NewNop())
	require.NoError(t, err, "ensure MongoDB is reachable at MONGO_TEST_URI")

	t.Cleanup(func() {
		ctx := context.Background()
		_ = client.Database.Drop(ctx)
		_ = client.Close(ctx)
	})
	return client
}

func TestStore_Integration(t *testing.T) {
	client := newIntegrationClient(t)
	store := NewStore(client.Client, client.Database, false)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	t.Run("unique email", func(t *testing.T) {
		require.NoError(t, store.CreateUser(ctx, &model.User{Name: "A", Email: "a@x.io", PasswordHash: "h"}))
		err := store.CreateUser(ctx, &model.User{Name: "A2", Email: "a@x.io", PasswordHash: "h"})
		assert.ErrorIs(t, err, errs.ErrAlreadyExists)
	})

	t.Run("message log delta", func(t *testing.T) {
		t0 := time.Now().UTC().Truncate(time.Millisecond)
		for i, body := range []string{"hello", "hi"} {
			msg := &model.Message{ChatID: "1_2", SenderID: "1", RecipientID: "2", Body: body, Timestamp: t0.Add(time.Duration(i) * time.Second)}
			require.NoError(t, store.Append(ctx, msg))
		}
		require.NoError(t, store.Append(ctx, &model.Message{ChatID: "other", Body: "x", Timestamp: t0}))

		all, err := store.ListByChat(ctx, "1_2", nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "hello", all[0].Body)

		newer, err := store.ListByChat(ctx, "1_2", &t0)
		require.NoError(t, err)
		require.Len(t, newer, 2, "cursor is inclusive")

		later := t0.Add(time.Millisecond)
		newer, err = store.ListByChat(ctx, "1_2", &later)
		require.NoError(t, err)
		require.Len(t, newer, 1)
		assert.Equal(t, "hi", newer[0].Body)
	})

	t.Run("ledger upsert keeps one row", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Millisecond)
		row := &model.ContactRow{OwnerID: "1", ChatID: "1_2", CounterpartID: "2", CounterpartName: "B", LastMessage: "hello", LastMessageAt: at}
		require.NoError(t, store.Upsert(ctx, row))
		firstID := row.ID

		row2 := &model.ContactRow{OwnerID: "1", ChatID: "1_2", CounterpartID: "2", CounterpartName: "B", LastMessage: "hi", LastMessageAt: at.Add(time.Second)}
		require.NoError(t, store.Upsert(ctx, row2))
		assert.Equal(t, firstID, row2.ID)

		created, err := store.InsertIfAbsent(ctx, &model.ContactRow{OwnerID: "1", ChatID: "1_2", LastMessage: "stale"})
		require.NoError(t, err)
		assert.False(t, created)

		rows, err := store.ListByOwner(ctx, "1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "hi", rows[0].LastMessage)
	})
}
