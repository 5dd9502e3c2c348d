// Package contact serves the per-user conversation ledger.
package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gochat/internal/common"
	"gochat/internal/errs"
	"gochat/internal/model"
	"gochat/internal/repository"
)

var (
	ErrMissingFields  = errs.New(errs.ErrInvalidInput, "chatId and senderId are required")
	ErrForeignOwner   = errs.New(errs.ErrForbidden, "Cannot add a contact for another user")
	ErrNotParticipant = errs.New(errs.ErrForbidden, "Not a participant of this chat")
	ErrEmptyChat      = errs.New(errs.ErrNotFound, "No messages in this chat")
)

// AddRequest mirrors the POST /api/contacts body. OwnerID may be empty; the
// authenticated caller always owns the row.
type AddRequest struct {
	OwnerID         string
	OwnerName       string
	ChatID          string
	CounterpartID   string
	CounterpartName string
	LastMessage     string
	LastMessageAt   time.Time
}

type Service interface {
	List(ctx context.Context, ownerID string) ([]*model.ContactRow, error)
	Add(ctx context.Context, callerID string, req AddRequest) (bool, error)
	Resync(ctx context.Context, callerID, chatID string) ([]*model.ContactRow, error)
}

type service struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	contacts repository.ContactRepository
	tx       repository.Transactor
	log      *zap.Logger
}

func NewService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	contacts repository.ContactRepository,
	tx repository.Transactor,
	log *zap.Logger,
) Service {
	return &service{users: users, messages: messages, contacts: contacts, tx: tx, log: log}
}

func (s *service) List(ctx context.Context, ownerID string) ([]*model.ContactRow, error) {
	rows, err := s.contacts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return rows, nil
}

// Add creates the caller's row for a chat unless one already exists. An
// existing row is left as is so a stale client cannot rewind the ledger.
func (s *service) Add(ctx context.Context, callerID string, req AddRequest) (bool, error) {
	if req.OwnerID != "" && req.OwnerID != callerID {
		return false, ErrForeignOwner
	}
	if common.Blank(req.ChatID, req.CounterpartID) {
		return false, ErrMissingFields
	}

	row := &model.ContactRow{
		OwnerID:         callerID,
		OwnerName:       req.OwnerName,
		ChatID:          req.ChatID,
		CounterpartID:   req.CounterpartID,
		CounterpartName: req.CounterpartName,
		LastMessage:     req.LastMessage,
		LastMessageAt:   req.LastMessageAt.UTC(),
	}
	created, err := s.contacts.InsertIfAbsent(ctx, row)
	if err != nil {
		return false, fmt.Errorf("add contact: %w", err)
	}
	return created, nil
}

// Resync rebuilds both participants' rows from the newest message of the
// chat, repairing a ledger left behind by a failed send.
func (s *service) Resync(ctx context.Context, callerID, chatID string) ([]*model.ContactRow, error) {
	if common.Blank(chatID) {
		return nil, errs.New(errs.ErrInvalidInput, "chatId is required")
	}

	msgs, err := s.messages.ListByChat(ctx, chatID, nil)
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}
	if len(msgs) == 0 {
		return nil, ErrEmptyChat
	}
	last := msgs[len(msgs)-1]
	if callerID != last.SenderID && callerID != last.RecipientID {
		return nil, ErrNotParticipant
	}

	sender, err := s.lookup(ctx, last.SenderID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.lookup(ctx, last.RecipientID)
	if err != nil {
		return nil, err
	}

	rows := []*model.ContactRow{
		rowFor(sender, recipient, last),
		rowFor(recipient, sender, last),
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, row := range rows {
			if err := s.contacts.Upsert(ctx, row); err != nil {
				return fmt.Errorf("%w: resync %s: %w", errs.ErrLedgerSync, row.OwnerID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("contact ledger resynced", zap.String("chat_id", chatID), zap.String("message_id", last.ID))
	return rows, nil
}

// lookup tolerates deleted accounts: the row keeps the id with an empty name.
func (s *service) lookup(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err == nil {
		return u, nil
	}
	if errors.Is(err, errs.ErrNotFound) {
		return &model.User{ID: id}, nil
	}
	return nil, fmt.Errorf("load user %s: %w", id, err)
}

func rowFor(owner, counterpart *model.User, msg *model.Message) *model.ContactRow {
	return &model.ContactRow{
		OwnerID:         owner.ID,
		OwnerName:       owner.Name,
		ChatID:          msg.ChatID,
		CounterpartID:   counterpart.ID,
		CounterpartName: counterpart.Name,
		LastMessage:     msg.Body,
		LastMessageAt:   msg.Timestamp,
	}
}
