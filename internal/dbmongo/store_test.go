package dbmongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"gochat/internal/errs"
	"gochat/internal/model"
)

func newMockStore(mt *mtest.T) *Store {
	return NewStore(mt.Client, mt.DB, false)
}

func TestStore_CreateUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		user := &model.User{Name: "Alice", Email: "a@x.io", PasswordHash: "hash"}

		err := newMockStore(mt).CreateUser(context.Background(), user)
		require.NoError(t, err)
		assert.Len(t, user.ID, 24)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		err := newMockStore(mt).CreateUser(context.Background(), &model.User{Email: "a@x.io"})
		assert.ErrorIs(t, err, errs.ErrAlreadyExists)
	})
}

func TestStore_GetUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	oid := primitive.NewObjectID()

	mt.Run("by email", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Alice"},
			{Key: "email", Value: "a@x.io"},
			{Key: "password", Value: "hash"},
		}))

		user, err := newMockStore(mt).GetUserByEmail(context.Background(), "a@x.io")
		require.NoError(t, err)
		assert.Equal(t, oid.Hex(), user.ID)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	mt.Run("miss", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := newMockStore(mt).GetUserByID(context.Background(), oid.Hex())
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		_, err := newMockStore(mt).GetUserByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestStore_ListByChat(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("decodes in server order", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + messagesCollection
		doc := func(body string, at time.Time) bson.D {
			return bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "chatId", Value: "1_2"},
				{Key: "sender", Value: "1"},
				{Key: "recipient", Value: "2"},
				{Key: "message", Value: body},
				{Key: "timestamp", Value: at},
			}
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			doc("hello", t0), doc("hi", t0.Add(time.Second))))

		since := t0.Add(-time.Minute)
		msgs, err := newMockStore(mt).ListByChat(context.Background(), "1_2", &since)
		require.NoError(t, err)
		require.Len(t, msgs, 2)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		_, err = started.Command.LookupErr("filter", "timestamp", "$gte")
		assert.NoError(t, err, "since is an inclusive bound")
		assert.Equal(t, "hello", msgs[0].Body)
		assert.Equal(t, "hi", msgs[1].Body)
		assert.True(t, msgs[1].Timestamp.Equal(t0.Add(time.Second)))
		assert.Equal(t, "2", msgs[0].RecipientID)
	})
}

func TestStore_Upsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()
	reply := bson.D{
		{Key: "_id", Value: oid},
		{Key: "userId", Value: "1"},
		{Key: "chatId", Value: "1_2"},
		{Key: "senderId", Value: "2"},
		{Key: "senderName", Value: "Bob"},
		{Key: "lastMessage", Value: "hello"},
		{Key: "time", Value: at},
	}
	row := func() *model.ContactRow {
		return &model.ContactRow{
			OwnerID: "1", ChatID: "1_2", CounterpartID: "2", CounterpartName: "Bob",
			LastMessage: "hello", LastMessageAt: at,
		}
	}

	mt.Run("returns row id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: reply}))

		r := row()
		require.NoError(t, newMockStore(mt).Upsert(context.Background(), r))
		assert.Equal(t, oid.Hex(), r.ID)
	})

	mt.Run("retries once on duplicate key", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Message: "E11000 duplicate key error", Name: "DuplicateKey"}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: reply}),
		)

		r := row()
		require.NoError(t, newMockStore(mt).Upsert(context.Background(), r))
		assert.Equal(t, oid.Hex(), r.ID)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value", Name: "BadValue"}))

		err := newMockStore(mt).Upsert(context.Background(), row())
		assert.Error(t, err)
	})
}

func TestStore_InsertIfAbsent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	row := func() *model.ContactRow {
		return &model.ContactRow{OwnerID: "1", ChatID: "1_2", CounterpartID: "2", CounterpartName: "Bob"}
	}

	mt.Run("created", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: oid}}}},
		))

		r := row()
		created, err := newMockStore(mt).InsertIfAbsent(context.Background(), r)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, oid.Hex(), r.ID)
	})

	mt.Run("already present", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		created, err := newMockStore(mt).InsertIfAbsent(context.Background(), row())
		require.NoError(t, err)
		assert.False(t, created)
	})
}

func TestStore_WithTransactionDisabled(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("runs fn directly", func(mt *mtest.T) {
		calls := 0
		err := newMockStore(mt).WithTransaction(context.Background(), func(ctx context.Context) error {
			calls++
			return errs.ErrLedgerSync
		})
		assert.ErrorIs(t, err, errs.ErrLedgerSync)
		assert.Equal(t, 1, calls)
	})
}
