// Package dbmongo is the MongoDB backend: credential store, message log and
// contact ledger, one collection each.
package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"gochat/internal/config"
)

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoConnection(c *config.Config, logger *zap.Logger) (*MongoClient, error) {
	uri := c.GetMongoURI()
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(c.MongoDB.Database)
	if err := EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to MongoDB",
		zap.String("database", c.MongoDB.Database),
		zap.Bool("transactions", c.MongoDB.Transactions),
	)

	return &MongoClient{
		Client:   client,
		Database: database,
	}, nil
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on: unique emails,
// one ledger row per (owner, chat), and chat-ordered message scans.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {{
			Keys:    bsonKeys("email"),
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		}},
		messagesCollection: {{
			Keys:    bsonKeys("chatId", "timestamp"),
			Options: options.Index().SetName("chat_timestamp"),
		}},
		contactsCollection: {{
			Keys:    bsonKeys("userId", "chatId"),
			Options: options.Index().SetUnique(true).SetName("owner_chat_unique"),
		}},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
