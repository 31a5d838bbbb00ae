package entity

import "time"

type Message struct {
	ID          string     `firestore:"-" json:"id"`
	ChatID      string     `firestore:"-" json:"chatId"`
	SenderID    string     `firestore:"senderId" json:"senderId"`
	Content     string     `firestore:"content" json:"content"`
	Attachments []string   `firestore:"attachments,omitempty" json:"attachments,omitempty"`
	Read        bool       `firestore:"read" json:"read"`
	ReadAt      *time.Time `firestore:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
}
