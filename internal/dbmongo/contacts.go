package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gochat/internal/model"
)

type contactDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	UserName    string             `bson:"userName,omitempty"`
	ChatID      string             `bson:"chatId"`
	SenderID    string             `bson:"senderId"`
	SenderName  string             `bson:"senderName"`
	LastMessage string             `bson:"lastMessage"`
	Time        time.Time          `bson:"time"`
}

func (d *contactDoc) toModel() *model.ContactRow {
	return &model.ContactRow{
		ID:              d.ID.Hex(),
		OwnerID:         d.UserID,
		OwnerName:       d.UserName,
		ChatID:          d.ChatID,
		CounterpartID:   d.SenderID,
		CounterpartName: d.SenderName,
		LastMessage:     d.LastMessage,
		LastMessageAt:   d.Time.UTC(),
	}
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*model.ContactRow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}})
	cur, err := s.contacts.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []contactDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	out := make([]*model.ContactRow, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

// Upsert is a single findOneAndUpdate, atomic for the one document. Two
// racing upserts of a new row can collide on the unique index; the loser
// retries once and then updates the winner's row.
func (s *Store) Upsert(ctx context.Context, row *model.ContactRow) error {
	filter := bson.M{"userId": row.OwnerID, "chatId": row.ChatID}
	set := bson.M{
		"senderId":    row.CounterpartID,
		"senderName":  row.CounterpartName,
		"lastMessage": row.LastMessage,
		"time":        row.LastMessageAt,
	}
	if row.OwnerName != "" {
		set["userName"] = row.OwnerName
	}
	update := bson.M{"$set": set}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc contactDoc
	err := s.contacts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = s.contacts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	row.ID = doc.ID.Hex()
	return nil
}

func (s *Store) InsertIfAbsent(ctx context.Context, row *model.ContactRow) (bool, error) {
	filter := bson.M{"userId": row.OwnerID, "chatId": row.ChatID}
	update := bson.M{"$setOnInsert": bson.M{
		"userName":    row.OwnerName,
		"senderId":    row.CounterpartID,
		"senderName":  row.CounterpartName,
		"lastMessage": row.LastMessage,
		"time":        row.LastMessageAt,
	}}

	res, err := s.contacts.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert contact: %w", err)
	}
	if res.UpsertedCount == 0 {
		return false, nil
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		row.ID = oid.Hex()
	}
	return true, nil
}
