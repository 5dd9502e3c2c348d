package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gochat/internal/model"
)

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ChatID    string             `bson:"chatId"`
	Sender    string             `bson:"sender"`
	Recipient string             `bson:"recipient"`
	Message   string             `bson:"message"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (s *Store) Append(ctx context.Context, msg *model.Message) error {
	doc := messageDoc{
		ID:        primitive.NewObjectID(),
		ChatID:    msg.ChatID,
		Sender:    msg.SenderID,
		Recipient: msg.RecipientID,
		Message:   msg.Body,
		Timestamp: msg.Timestamp,
	}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ListByChat(ctx context.Context, chatID string, since *time.Time) ([]*model.Message, error) {
	filter := bson.M{"chatId": chatID}
	if since != nil {
		filter["timestamp"] = bson.M{"$gte": *since}
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	out := make([]*model.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, &model.Message{
			ID:          d.ID.Hex(),
			ChatID:      d.ChatID,
			SenderID:    d.Sender,
			RecipientID: d.Recipient,
			Body:        d.Message,
			Timestamp:   d.Timestamp.UTC(),
		})
	}
	return out, nil
}
