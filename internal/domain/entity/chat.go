package entity

import (
	"sort"
	"strings"
	"time"
)

// Chat is a two-party conversation, optionally bound to a transaction
// or a product. ParticipantsKey is the sorted pair joined with "|",
// used to keep chat creation idempotent for an unordered pair.
type Chat struct {
	ID              string     `firestore:"-" json:"id"`
	Participants    []string   `firestore:"participants" json:"participants"`
	ParticipantsKey string     `firestore:"participantsKey" json:"-"`
	TransactionID   string     `firestore:"transactionId" json:"transactionId,omitempty"`
	ProductID       string     `firestore:"productId" json:"productId,omitempty"`
	LastMessageAt   *time.Time `firestore:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	CreatedAt       time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

// ParticipantsKeyFor builds the canonical key for an unordered pair.
func ParticipantsKeyFor(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the counterparty of userID, or "" when the
// user is not in the chat.
func (c *Chat) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
