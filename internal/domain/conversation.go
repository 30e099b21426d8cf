package domain

import "time"

// Conversation es un canal de dos participantes.
type Conversation struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	Participants []Participant   `json:"participants"`
	LastMessage  *MessagePreview `json:"lastMessage"`
}

type Participant struct {
	UserID    int64  `json:"id"`
	Name      string `json:"name"`
	Handle    string `json:"userId"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type MessagePreview struct {
	Content   string    `json:"content"`
	SenderID  int64     `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PairKey devuelve el par canonico (menor, mayor) de dos identidades.
func PairKey(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}
