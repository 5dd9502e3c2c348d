package dbmysql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"gochat/internal/model"
)

type Contact struct {
	ID              string    `gorm:"primaryKey;column:id;size:36"`
	OwnerID         string    `gorm:"column:owner_id;size:36;not null;uniqueIndex:idx_owner_chat,priority:1"`
	OwnerName       string    `gorm:"column:owner_name;size:100"`
	ChatID          string    `gorm:"column:chat_id;size:128;not null;uniqueIndex:idx_owner_chat,priority:2"`
	CounterpartID   string    `gorm:"column:counterpart_id;size:36"`
	CounterpartName string    `gorm:"column:counterpart_name;size:100"`
	LastMessage     string    `gorm:"column:last_message;type:text"`
	LastMessageAt   time.Time `gorm:"column:last_message_at;type:datetime(3);index"`
}

func contactFromModel(row *model.ContactRow) Contact {
	return Contact{
		ID:              uuid.NewString(),
		OwnerID:         row.OwnerID,
		OwnerName:       row.OwnerName,
		ChatID:          row.ChatID,
		CounterpartID:   row.CounterpartID,
		CounterpartName: row.CounterpartName,
		LastMessage:     row.LastMessage,
		LastMessageAt:   row.LastMessageAt,
	}
}

func (c *Contact) toModel() *model.ContactRow {
	return &model.ContactRow{
		ID:              c.ID,
		OwnerID:         c.OwnerID,
		OwnerName:       c.OwnerName,
		ChatID:          c.ChatID,
		CounterpartID:   c.CounterpartID,
		CounterpartName: c.CounterpartName,
		LastMessage:     c.LastMessage,
		LastMessageAt:   c.LastMessageAt.UTC(),
	}
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*model.ContactRow, error) {
	var recs []*Contact
	err := s.conn(ctx).
		Where("owner_id = ?", ownerID).
		Order("last_message_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	out := make([]*model.ContactRow, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Upsert is a single INSERT ... ON DUPLICATE KEY UPDATE on (owner_id, chat_id).
// row.ID is only set when the row was created.
func (s *Store) Upsert(ctx context.Context, row *model.ContactRow) error {
	rec := contactFromModel(row)
	cols := []string{"counterpart_id", "counterpart_name", "last_message", "last_message_at"}
	if row.OwnerName != "" {
		cols = append(cols, "owner_name")
	}

	res := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("upsert contact: %w", res.Error)
	}
	// MySQL reports 1 affected row for an insert and 2 for an update.
	if res.RowsAffected == 1 {
		row.ID = rec.ID
	}
	return nil
}

func (s *Store) InsertIfAbsent(ctx context.Context, row *model.ContactRow) (bool, error) {
	rec := contactFromModel(row)
	res := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("insert contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	row.ID = rec.ID
	return true, nil
}
