// Package repository declares the storage contracts the services depend on.
// dbmongo, dbmysql and memstore each implement all of them.
package repository

//go:generate mockgen -source=repository.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"gochat/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// CreateUser assigns user.ID; a taken email yields errs.ErrAlreadyExists.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByID and GetUserByEmail yield errs.ErrNotFound on a miss.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// MessageRepository is the append-only message log.
type MessageRepository interface {
	// Append assigns msg.ID and stores the message.
	Append(ctx context.Context, msg *model.Message) error
	// ListByChat returns the chat's messages in ascending timestamp order.
	// A non-nil since restricts the result to messages at or after it; callers
	// drop the ones they already hold by ID.
	ListByChat(ctx context.Context, chatID string, since *time.Time) ([]*model.Message, error)
}

// ContactRepository is the per-owner conversation ledger.
type ContactRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*model.ContactRow, error)
	// Upsert matches on (OwnerID, ChatID) and overwrites counterpart and last message.
	Upsert(ctx context.Context, row *model.ContactRow) error
	// InsertIfAbsent never touches an existing (OwnerID, ChatID) row.
	InsertIfAbsent(ctx context.Context, row *model.ContactRow) (bool, error)
}

// Transactor runs fn atomically when the backend supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports backend reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PassthroughTx runs fn without any atomicity guarantee.
type PassthroughTx struct{}

func (PassthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
