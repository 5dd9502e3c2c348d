package client

import (
	"sync"
	"time"

	"gochat/internal/model"
)

// Session is the client's view state. Every mutation goes through a method
// so the poller and the UI never race on shared fields.
type Session struct {
	mu sync.Mutex

	token    string
	userID   string
	userName string

	contacts []model.ContactRow

	activeChat  string
	lastSeen    time.Time
	lastMessage string
	// ids of the messages stamped exactly lastSeen; the server's since
	// bound is inclusive and timestamps have millisecond resolution.
	seenAtCursor map[string]struct{}
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Authenticate(token, userID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.userID, s.userName = token, userID, name
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userName
}

func (s *Session) SetContacts(rows []model.ContactRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append([]model.ContactRow(nil), rows...)
}

func (s *Session) Contacts() []model.ContactRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ContactRow(nil), s.contacts...)
}

// OpenChat makes chatID the active chat with nothing seen yet.
func (s *Session) OpenChat(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeChat = chatID
	s.lastSeen = time.Time{}
	s.lastMessage = ""
	s.seenAtCursor = nil
}

func (s *Session) CloseChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeChat = ""
}

func (s *Session) ActiveChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChat
}

// Since is the delta-fetch cursor of the active chat; nil before the first
// message has been seen.
func (s *Session) Since(chatID string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chatID != s.activeChat || s.lastSeen.IsZero() {
		return nil
	}
	ts := s.lastSeen
	return &ts
}

// LastMessage is the newest message text seen in the active chat.
func (s *Session) LastMessage() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessage, s.lastSeen
}

// Apply merges a fetch result for chatID and returns the messages not seen
// before: anything newer than the cursor, plus unseen ids stamped exactly at
// it. Results for a chat that is no longer active are dropped.
func (s *Session) Apply(chatID string, msgs []model.Message) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chatID != s.activeChat {
		return nil
	}

	var fresh []model.Message
	for _, m := range msgs {
		if m.Timestamp.Before(s.lastSeen) {
			continue
		}
		if m.Timestamp.Equal(s.lastSeen) {
			if _, seen := s.seenAtCursor[m.ID]; seen {
				continue
			}
		}
		fresh = append(fresh, m)
	}
	if len(fresh) == 0 {
		return nil
	}

	newest := fresh[0]
	for _, m := range fresh[1:] {
		if !m.Timestamp.Before(newest.Timestamp) {
			newest = m
		}
	}
	if newest.Timestamp.After(s.lastSeen) || s.seenAtCursor == nil {
		s.seenAtCursor = make(map[string]struct{})
	}
	for _, m := range fresh {
		if m.Timestamp.Equal(newest.Timestamp) {
			s.seenAtCursor[m.ID] = struct{}{}
		}
	}
	s.lastSeen = newest.Timestamp
	s.lastMessage = newest.Body

	for i := range s.contacts {
		if s.contacts[i].ChatID == chatID {
			s.contacts[i].LastMessage = newest.Body
			s.contacts[i].LastMessageAt = newest.Timestamp
		}
	}
	return fresh
}
