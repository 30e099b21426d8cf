package domain

import "time"

// XPReason identifica el motivo de una acreditacion de XP.
type XPReason string

const (
	ReasonSignupWelcome    XPReason = "signup_welcome"
	ReasonReferralReferee  XPReason = "referral_referee"
	ReasonReferralReferrer XPReason = "referral_referrer"
	ReasonDailyLogin       XPReason = "daily_login"
	ReasonPostCreated      XPReason = "post_created"
	ReasonEventRSVP        XPReason = "event_rsvp"
	ReasonEventReflection  XPReason = "event_reflection"
)

// Montos fijos por motivo.
const (
	XPSignupWelcome    = 100
	XPReferralReferee  = 50
	XPReferralReferrer = 100
	XPDailyLogin       = 100
	XPPostCreated      = 10
	XPEventRSVP        = 10
	XPEventReflection  = 20
)

// XPGrant es una fila de la traza de auditoria del ledger.
type XPGrant struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Amount    int       `json:"amount"`
	Reason    XPReason  `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
