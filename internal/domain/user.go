package domain

import "time"

// User es una identidad registrada. Handle corresponde a la columna user_id (ej. "UT48213").
type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Handle          string     `json:"userId"`
	PasswordHash    string     `json:"-"`
	Bio             string     `json:"bio,omitempty"`
	AvatarURL       string     `json:"avatarUrl,omitempty"`
	Skills          []string   `json:"skills,omitempty"`
	GithubURL       string     `json:"githubUrl,omitempty"`
	LinkedinURL     string     `json:"linkedinUrl,omitempty"`
	TwitterURL      string     `json:"twitterUrl,omitempty"`
	XP              int        `json:"xp"`
	ReferralCode    string     `json:"referralCode"`
	ReferredBy      *int64     `json:"-"`
	LastLoginXPDate *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// UserSummary es la proyeccion publica minima usada en listados.
type UserSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Handle    string `json:"userId"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
	XP        int    `json:"xp"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Handle:    u.Handle,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		XP:        u.XP,
	}
}

// ReferredUser es un usuario traido por un referidor.
type ReferredUser struct {
	UserSummary
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry agrega cuantos usuarios refirio cada identidad.
type LeaderboardEntry struct {
	UserSummary
	ReferralCount int `json:"referralCount"`
}

// ProfilePatch lista los campos de perfil a modificar; nil deja el valor actual.
type ProfilePatch struct {
	Name        *string
	Bio         *string
	AvatarURL   *string
	Skills      *[]string
	GithubURL   *string
	LinkedinURL *string
	TwitterURL  *string
}
