// Package memstore is an in-process backend for development and tests.
// It implements every repository contract but offers no transactions.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gochat/internal/errs"
	"gochat/internal/model"
	"gochat/internal/repository"
)

type contactKey struct {
	owner string
	chat  string
}

type Store struct {
	repository.PassthroughTx

	mu       sync.RWMutex
	users    map[string]model.User
	byEmail  map[string]string
	messages map[string][]model.Message
	contacts map[contactKey]model.ContactRow
}

func New() *Store {
	return &Store{
		users:    make(map[string]model.User),
		byEmail:  make(map[string]string),
		messages: make(map[string][]model.Message),
		contacts: make(map[contactKey]model.ContactRow),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return errs.ErrAlreadyExists
	}
	user.ID = uuid.NewString()
	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) Append(_ context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = uuid.NewString()
	s.messages[msg.ChatID] = append(s.messages[msg.ChatID], *msg)
	return nil
}

func (s *Store) ListByChat(_ context.Context, chatID string, since *time.Time) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Message, 0, len(s.messages[chatID]))
	for _, m := range s.messages[chatID] {
		if since != nil && m.Timestamp.Before(*since) {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]*model.ContactRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.ContactRow, 0)
	for key, row := range s.contacts {
		if key.owner != ownerID {
			continue
		}
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func (s *Store) Upsert(_ context.Context, row *model.ContactRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := contactKey{owner: row.OwnerID, chat: row.ChatID}
	existing, ok := s.contacts[key]
	if !ok {
		existing = model.ContactRow{ID: uuid.NewString(), OwnerID: row.OwnerID, ChatID: row.ChatID}
	}
	existing.CounterpartID = row.CounterpartID
	existing.CounterpartName = row.CounterpartName
	existing.LastMessage = row.LastMessage
	existing.LastMessageAt = row.LastMessageAt
	if row.OwnerName != "" {
		existing.OwnerName = row.OwnerName
	}
	s.contacts[key] = existing
	row.ID = existing.ID
	return nil
}

func (s *Store) InsertIfAbsent(_ context.Context, row *model.ContactRow) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := contactKey{owner: row.OwnerID, chat: row.ChatID}
	if existing, ok := s.contacts[key]; ok {
		row.ID = existing.ID
		return false, nil
	}
	row.ID = uuid.NewString()
	s.contacts[key] = *row
	return true, nil
}
