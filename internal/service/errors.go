package service

import "errors"

// Kind clasifica los errores que ve el caller.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindUnexpected   Kind = "unexpected"
)

var (
	ErrServiceNotConfigured = errors.New("service not configured")

	ErrInvalidEmail          = errors.New("invalid email")
	ErrEmailDomainNotAllowed = errors.New("please use gmail or an educational email")
	ErrPasswordRequired      = errors.New("password is required")
	ErrNameRequired          = errors.New("name is required")
	ErrOTPInvalidOrExpired   = errors.New("invalid or expired otp")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrHandleInvalid         = errors.New("user id must be at least 3 characters")
	ErrInvalidSettings       = errors.New("invalid settings value")
	ErrInvalidXPAmount       = errors.New("xp amount must be positive")
	ErrInvalidReferralCode   = errors.New("invalid referral code")
	ErrSelfReferral          = errors.New("cannot use your own referral code")
	ErrSelfRequest           = errors.New("cannot send request to yourself")
	ErrSelfConversation      = errors.New("cannot start a conversation with yourself")
	ErrEmptyMessage          = errors.New("message content is required")
	ErrInvalidPostID         = errors.New("invalid post id")

	ErrUserNotFound          = errors.New("user not found")
	ErrFriendRequestNotFound = errors.New("request not found")
	ErrVaultEntryNotFound    = errors.New("item not found")

	ErrEmailTaken       = errors.New("email already registered")
	ErrHandleTaken      = errors.New("user id already taken")
	ErrFriendshipExists = errors.New("request already exists")
	ErrAlreadyReferred  = errors.New("you already used a referral code")
	ErrAlreadySaved     = errors.New("already saved")

	ErrNotParticipant = errors.New("not a participant of this conversation")

	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

var errorKinds = map[error]Kind{
	ErrInvalidEmail:          KindValidation,
	ErrEmailDomainNotAllowed: KindValidation,
	ErrPasswordRequired:      KindValidation,
	ErrNameRequired:          KindValidation,
	ErrOTPInvalidOrExpired:   KindValidation,
	ErrInvalidCredentials:    KindValidation,
	ErrHandleInvalid:         KindValidation,
	ErrInvalidSettings:       KindValidation,
	ErrInvalidXPAmount:       KindValidation,
	ErrInvalidReferralCode:   KindValidation,
	ErrSelfReferral:          KindValidation,
	ErrSelfRequest:           KindValidation,
	ErrSelfConversation:      KindValidation,
	ErrEmptyMessage:          KindValidation,
	ErrInvalidPostID:         KindValidation,
	ErrUserNotFound:          KindNotFound,
	ErrFriendRequestNotFound: KindNotFound,
	ErrVaultEntryNotFound:    KindNotFound,
	ErrEmailTaken:            KindConflict,
	ErrHandleTaken:           KindConflict,
	ErrFriendshipExists:      KindConflict,
	ErrAlreadyReferred:       KindConflict,
	ErrAlreadySaved:          KindConflict,
	ErrNotParticipant:        KindForbidden,
	ErrJWTInvalid:            KindUnauthorized,
	ErrJWTExpired:            KindUnauthorized,
}

// KindOf devuelve la clase de err; cualquier error desconocido es KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for sentinel, kind := range errorKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnexpected
}
