package domain

import "time"

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       int64     `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	SenderName     string    `json:"senderName"`
	SenderHandle   string    `json:"senderUserId"`
	SenderAvatar   string    `json:"senderAvatar,omitempty"`
}
