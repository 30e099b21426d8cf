package domain

import "time"

// VaultEntry es un contenido guardado. Unico por (UserID, PostID).
type VaultEntry struct {
	ID      string    `json:"id"`
	UserID  int64     `json:"userId"`
	PostID  int64     `json:"postId"`
	Note    *string   `json:"note"`
	SavedAt time.Time `json:"savedAt"`
}
