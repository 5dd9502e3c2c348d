// Package model holds the domain types shared by stores, services and handlers.
package model

import (
	"sort"
	"strings"
	"time"
)

type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Message is one entry of a chat's append-only log.
type Message struct {
	ID          string    `json:"_id"`
	ChatID      string    `json:"chatId"`
	SenderID    string    `json:"sender"`
	RecipientID string    `json:"recipient"`
	Body        string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// ContactRow is one user's summary of a conversation. There is at most one
// row per (OwnerID, ChatID); it is a cache of the message log, not the truth.
type ContactRow struct {
	ID              string    `json:"_id"`
	OwnerID         string    `json:"userId"`
	OwnerName       string    `json:"userName"`
	ChatID          string    `json:"chatId"`
	CounterpartID   string    `json:"senderId"`
	CounterpartName string    `json:"senderName"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageAt   time.Time `json:"time"`
}

// DirectChatID derives the chat id of a two-party conversation from the
// sorted pair of participant ids, so both sides agree without coordination.
func DirectChatID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}
