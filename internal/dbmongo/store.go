package dbmongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"gochat/internal/config"
)

const (
	usersCollection    = "users"
	messagesCollection = "messages"
	contactsCollection = "contacts"
)

// Store implements the repository contracts on one database.
type Store struct {
	client       *mongo.Client
	users        *mongo.Collection
	messages     *mongo.Collection
	contacts     *mongo.Collection
	transactions bool
}

func NewStore(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{
		client:       client,
		users:        db.Collection(usersCollection),
		messages:     db.Collection(messagesCollection),
		contacts:     db.Collection(contactsCollection),
		transactions: transactions,
	}
}

func ProvideStore(mc *MongoClient, cfg *config.Config) *Store {
	return NewStore(mc.Client, mc.Database, cfg.MongoDB.Transactions)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// WithTransaction runs fn inside a session transaction when enabled.
// Transactions need a replica set; without them fn runs as plain writes.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func bsonKeys(fields ...string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return keys
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
