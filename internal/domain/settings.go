package domain

import "time"

const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"

	NotificationsMinimal  = "minimal"
	NotificationsBalanced = "balanced"
	NotificationsAll      = "all"
)

type Settings struct {
	UserID                int64     `json:"userId"`
	ProfileVisibility     string    `json:"profileVisibility"`
	NotificationIntensity string    `json:"notificationIntensity"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// DefaultSettings devuelve la configuracion que se provisiona en el signup.
func DefaultSettings(userID int64) Settings {
	return Settings{
		UserID:                userID,
		ProfileVisibility:     VisibilityPublic,
		NotificationIntensity: NotificationsBalanced,
		UpdatedAt:             time.Now().UTC(),
	}
}

func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}

func ValidNotificationIntensity(v string) bool {
	switch v {
	case NotificationsMinimal, NotificationsBalanced, NotificationsAll:
		return true
	}
	return false
}
