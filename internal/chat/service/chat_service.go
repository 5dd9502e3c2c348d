// Package service holds the message write path: one append to the message
// log followed by both participants' contact ledger upserts.
package service

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
	ErrMissingFields     = errs.New(errs.ErrInvalidInput, "All fields are required")
	ErrMissingChatID     = errs.New(errs.ErrInvalidInput, "chatId is required")
	ErrRecipientNotFound = errs.New(errs.ErrInvalidInput, "Recipient not found")
	ErrSenderNotFound    = errs.New(errs.ErrNotFound, "User not found")
)

// SendRequest is what a client submits. SenderName is the name the client
// believes it has; ledger names always come from the credential store.
type SendRequest struct {
	ChatID      string
	RecipientID string
	Body        string
	SenderName  string
}

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	SendMessage(ctx context.Context, senderID string, req SendRequest) (*model.Message, error)
	GetMessages(ctx context.Context, chatID string, since *time.Time) ([]*model.Message, error)
}

type chatService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	contacts repository.ContactRepository
	tx       repository.Transactor
	log      *zap.Logger
	now      func() time.Time
}

// Constructor used in DI/wire
func NewChatService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	contacts repository.ContactRepository,
	tx repository.Transactor,
	log *zap.Logger,
) ChatService {
	return &chatService{
		users:    users,
		messages: messages,
		contacts: contacts,
		tx:       tx,
		log:      log,
		now:      time.Now,
	}
}

func (s *chatService) SendMessage(ctx context.Context, senderID string, req SendRequest) (*model.Message, error) {
	if common.Blank(req.ChatID, req.RecipientID, req.Body) {
		return nil, ErrMissingFields
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, fmt.Errorf("load sender: %w", err)
	}
	recipient, err := s.users.GetUserByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("load recipient: %w", err)
	}
	if req.SenderName != "" && req.SenderName != sender.Name {
		s.log.Debug("client-supplied sender name ignored",
			zap.String("sender_id", sender.ID),
			zap.String("claimed", req.SenderName),
		)
	}

	// Mongo and MySQL keep millisecond precision; truncating here keeps the
	// returned timestamp equal to the stored one for since-based polling.
	msg := &model.Message{
		ChatID:      req.ChatID,
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        req.Body,
		Timestamp:   s.now().UTC().Truncate(time.Millisecond),
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.messages.Append(ctx, msg); err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		if err := s.contacts.Upsert(ctx, ledgerRow(sender, recipient, msg)); err != nil {
			return fmt.Errorf("%w: sender row: %w", errs.ErrLedgerSync, err)
		}
		if err := s.contacts.Upsert(ctx, ledgerRow(recipient, sender, msg)); err != nil {
			return fmt.Errorf("%w: recipient row: %w", errs.ErrLedgerSync, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errs.ErrLedgerSync) {
			s.log.Error("contact ledger update failed after append",
				zap.String("chat_id", msg.ChatID),
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return msg, nil
}

// ledgerRow is owner's view of the chat: the counterpart is the other party.
func ledgerRow(owner, counterpart *model.User, msg *model.Message) *model.ContactRow {
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

// GetMessages returns the chat's log in ascending time order; with since set,
// only messages stamped at or after it.
func (s *chatService) GetMessages(ctx context.Context, chatID string, since *time.Time) ([]*model.Message, error) {
	if common.Blank(chatID) {
		return nil, ErrMissingChatID
	}
	msgs, err := s.messages.ListByChat(ctx, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
