package domain

import "time"

// OTPChallenge es el codigo vivo para un email. Solo se persiste el hash.
type OTPChallenge struct {
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Live indica si el desafio sigue vigente en now (expiracion estrictamente futura).
func (c OTPChallenge) Live(now time.Time) bool {
	return c.ExpiresAt.After(now)
}
