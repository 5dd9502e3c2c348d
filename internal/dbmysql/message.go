package dbmysql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gochat/internal/model"
)

type Message struct {
	ID          uint64    `gorm:"primaryKey;column:id;autoIncrement"`
	ChatID      string    `gorm:"column:chat_id;size:128;not null;index:idx_chat_sent,priority:1"`
	SenderID    string    `gorm:"column:sender_id;size:36;not null"`
	RecipientID string    `gorm:"column:recipient_id;size:36;not null"`
	Body        string    `gorm:"column:body;type:text;not null"`
	SentAt      time.Time `gorm:"column:sent_at;type:datetime(3);not null;index:idx_chat_sent,priority:2"`
}

func (m *Message) toModel() *model.Message {
	return &model.Message{
		ID:          strconv.FormatUint(m.ID, 10),
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		Timestamp:   m.SentAt.UTC(),
	}
}

func (s *Store) Append(ctx context.Context, msg *model.Message) error {
	rec := Message{
		ChatID:      msg.ChatID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Body:        msg.Body,
		SentAt:      msg.Timestamp,
	}
	if err := s.conn(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	msg.ID = strconv.FormatUint(rec.ID, 10)
	return nil
}

func (s *Store) ListByChat(ctx context.Context, chatID string, since *time.Time) ([]*model.Message, error) {
	query := s.conn(ctx).Where("chat_id = ?", chatID)
	if since != nil {
		query = query.Where("sent_at >= ?", *since)
	}

	var recs []*Message
	if err := query.Order("sent_at ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]*model.Message, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}
