package domain

import "time"

type FriendshipStatus string

const (
	FriendshipNone     FriendshipStatus = "none"
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship es la relacion dirigida entre requester y addressee.
// Como maximo existe una fila por par no ordenado, en cualquier estado.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID int64            `json:"requesterId"`
	AddresseeID int64            `json:"addresseeId"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// PendingRequest es una solicitud recibida junto al perfil de quien la envio.
type PendingRequest struct {
	RequestID string `json:"requestId"`
	UserSummary
	CreatedAt time.Time `json:"createdAt"`
}

// FriendshipView es el estado de la relacion visto desde una identidad.
type FriendshipView struct {
	Status    FriendshipStatus `json:"status"`
	IsSender  bool             `json:"isSender"`
	RequestID string           `json:"requestId,omitempty"`
}
