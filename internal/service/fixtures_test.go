package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"unitex/internal/domain"
)

type recordingObserver struct {
	mu     sync.Mutex
	totals map[string]int
}

func (o *recordingObserver) ObserveXPGrant(reason string, amount int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.totals == nil {
		o.totals = map[string]int{}
	}
	o.totals[reason] += amount
}

func (o *recordingObserver) total(reason domain.XPReason) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.totals[string(reason)]
}

type testEnv struct {
	store       *memStore
	observer    *recordingObserver
	cache       *memLeaderboardCache
	mailer      *mockEmailSender
	jwt         *JWTService
	ledger      *XPLedger
	otp         *OTPService
	users       *UserService
	referrals   *ReferralService
	friendships *FriendshipService
	convos      *ConversationService
	vault       *VaultService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := newMemStore()
	observer := &recordingObserver{}
	cache := &memLeaderboardCache{}
	mailer := &mockEmailSender{}
	jwtSvc := NewJWTService("test-secret", time.Hour)
	ledger := NewXPLedger(logger, store, observer)

	return &testEnv{
		store:       store,
		observer:    observer,
		cache:       cache,
		mailer:      mailer,
		jwt:         jwtSvc,
		ledger:      ledger,
		otp:         NewOTPService(logger, store, mailer),
		users:       NewUserService(logger, store, ledger, jwtSvc, cache),
		referrals:   NewReferralService(logger, store, ledger, cache),
		friendships: NewFriendshipService(logger, store),
		convos:      NewConversationService(logger, store),
		vault:       NewVaultService(store),
	}
}

// signup registra un usuario por el flujo completo y devuelve la identidad creada.
func (e *testEnv) signup(t *testing.T, email, name, referralCode string) domain.User {
	t.Helper()
	res, err := e.users.Signup(context.Background(), SignupInput{
		Email:        email,
		Password:     "secret123",
		Name:         name,
		ReferralCode: referralCode,
	})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return res.User
}
