package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

type memConversation struct {
	id           string
	low, high    int64
	createdAt    time.Time
	participants []int64
}

type memState struct {
	nextUserID    int64
	seq           int64
	users         map[int64]domain.User
	otps          map[string]domain.OTPChallenge
	settings      map[int64]domain.Settings
	grants        []domain.XPGrant
	friendships   map[string]domain.Friendship
	conversations map[string]memConversation
	messages      []domain.Message
	vault         map[string]domain.VaultEntry
}

// memStore es un repository.Store en memoria. Cada operacion es atomica bajo mu,
// pero WithTx no serializa transacciones: igual que en postgres, la unicidad la
// garantizan solo las escrituras condicionales. Si fn falla se aplican en orden
// inverso las acciones registradas con onRollback.
type memStore struct {
	mu   *sync.Mutex
	st   **memState
	rows *sync.Map
	tx   *memTx

	failSettingsCreate error
	failMessageCreate  error
}

// memTx acumula lo necesario para deshacer una transaccion y los locks de fila tomados.
type memTx struct {
	undo  []func(st *memState)
	locks []*sync.Mutex
}

func newMemStore() *memStore {
	st := &memState{
		nextUserID:    1,
		users:         map[int64]domain.User{},
		otps:          map[string]domain.OTPChallenge{},
		settings:      map[int64]domain.Settings{},
		friendships:   map[string]domain.Friendship{},
		conversations: map[string]memConversation{},
		vault:         map[string]domain.VaultEntry{},
	}
	return &memStore{mu: &sync.Mutex{}, st: &st, rows: &sync.Map{}}
}

func (m *memStore) state() *memState { return *m.st }

func (m *memStore) Users() repository.UserRepository                 { return memUserRepo{m} }
func (m *memStore) OTPs() repository.OTPRepository                   { return memOTPRepo{m} }
func (m *memStore) Settings() repository.SettingsRepository          { return memSettingsRepo{m} }
func (m *memStore) XP() repository.XPRepository                      { return memXPRepo{m} }
func (m *memStore) Friendships() repository.FriendshipRepository     { return memFriendshipRepo{m} }
func (m *memStore) Conversations() repository.ConversationRepository { return memConversationRepo{m} }
func (m *memStore) Vault() repository.VaultRepository                { return memVaultRepo{m} }

func (m *memStore) WithTx(_ context.Context, fn func(tx repository.Store) error) error {
	if m.tx != nil {
		return fn(m)
	}
	t := &memTx{}
	tx := *m
	tx.tx = t

	err := fn(&tx)
	if err != nil {
		m.mu.Lock()
		st := m.state()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i](st)
		}
		m.mu.Unlock()
	}
	for _, l := range t.locks {
		l.Unlock()
	}
	return err
}

// onRollback registra como deshacer una escritura. Se llama con mu tomado.
func (m *memStore) onRollback(undo func(st *memState)) {
	if m.tx != nil {
		m.tx.undo = append(m.tx.undo, undo)
	}
}

// lockRow emula SELECT ... FOR UPDATE: el lock se libera al terminar la transaccion.
func (m *memStore) lockRow(key string) {
	if m.tx == nil {
		return
	}
	v, _ := m.rows.LoadOrStore(key, &sync.Mutex{})
	l := v.(*sync.Mutex)
	l.Lock()
	m.tx.locks = append(m.tx.locks, l)
}

// seedUser inserta un usuario directamente, sin pasar por el signup.
func (m *memStore) seedUser(email, name, handle, code string, xp int) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state()
	u := domain.User{
		ID:           st.nextUserID,
		Email:        email,
		Name:         name,
		Handle:       handle,
		ReferralCode: code,
		XP:           xp,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	st.nextUserID++
	st.users[u.ID] = u
	return u
}

func (m *memStore) user(id int64) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state().users[id]
}

func (m *memStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state().users)
}

func summaryOf(u domain.User) domain.UserSummary { return u.Summary() }

type memUserRepo struct{ m *memStore }

func (r memUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	for _, u := range st.users {
		if u.Email == user.Email {
			return domain.User{}, fmt.Errorf("%w: %w", repository.ErrConflict,
				&pgconn.PgError{Code: "23505", ConstraintName: repository.ConstraintUsersEmail})
		}
		if u.Handle == user.Handle || u.ReferralCode == user.ReferralCode {
			return domain.User{}, fmt.Errorf("%w: %w", repository.ErrConflict,
				&pgconn.PgError{Code: "23505", ConstraintName: "users_user_id_key"})
		}
	}
	user.ID = st.nextUserID
	st.nextUserID++
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	st.users[user.ID] = user
	id := user.ID
	r.m.onRollback(func(st *memState) { delete(st.users, id) })
	return user, nil
}

func (r memUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state().users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r memUserRepo) find(match func(domain.User) bool) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.state().users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r memUserRepo) GetByHandle(_ context.Context, handle string) (domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Handle == handle })
}

func (r memUserRepo) GetByReferralCode(_ context.Context, code string) (domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ReferralCode == code })
}

func (r memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r memUserRepo) UpdateHandle(_ context.Context, id int64, handle string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	for _, u := range st.users {
		if u.Handle == handle && u.ID != id {
			return fmt.Errorf("%w: %w", repository.ErrConflict,
				&pgconn.PgError{Code: "23505", ConstraintName: repository.ConstraintUsersHandle})
		}
	}
	u, ok := st.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	prev := u.Handle
	u.Handle = handle
	st.users[id] = u
	r.m.onRollback(func(st *memState) {
		if u, ok := st.users[id]; ok {
			u.Handle = prev
			st.users[id] = u
		}
	})
	return nil
}

func (r memUserRepo) UpdateProfile(_ context.Context, id int64, patch domain.ProfilePatch) (domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	prev, ok := st.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	u := prev
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Name, patch.Name)
	set(&u.Bio, patch.Bio)
	set(&u.AvatarURL, patch.AvatarURL)
	set(&u.GithubURL, patch.GithubURL)
	set(&u.LinkedinURL, patch.LinkedinURL)
	set(&u.TwitterURL, patch.TwitterURL)
	if patch.Skills != nil {
		u.Skills = append([]string{}, (*patch.Skills)...)
	}
	u.UpdatedAt = time.Now().UTC()
	st.users[id] = u
	r.m.onRollback(func(st *memState) { st.users[id] = prev })
	return u, nil
}

func (r memUserRepo) SetReferrer(_ context.Context, id, referrerID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	u, ok := st.users[id]
	if !ok || u.ReferredBy != nil {
		return false, nil
	}
	ref := referrerID
	u.ReferredBy = &ref
	st.users[id] = u
	r.m.onRollback(func(st *memState) {
		if u, ok := st.users[id]; ok {
			u.ReferredBy = nil
			st.users[id] = u
		}
	})
	return true, nil
}

func (r memUserRepo) ListReferred(_ context.Context, referrerID int64) ([]domain.ReferredUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.ReferredUser{}
	for _, u := range r.m.state().users {
		if u.ReferredBy != nil && *u.ReferredBy == referrerID {
			out = append(out, domain.ReferredUser{UserSummary: summaryOf(u), CreatedAt: u.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memUserRepo) ReferralLeaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	counts := map[int64]int{}
	for _, u := range st.users {
		if u.ReferredBy != nil {
			counts[*u.ReferredBy]++
		}
	}
	out := []domain.LeaderboardEntry{}
	for id, n := range counts {
		out = append(out, domain.LeaderboardEntry{UserSummary: summaryOf(st.users[id]), ReferralCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReferralCount != out[j].ReferralCount {
			return out[i].ReferralCount > out[j].ReferralCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memOTPRepo struct{ m *memStore }

func (r memOTPRepo) Upsert(_ context.Context, c domain.OTPChallenge) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	prev, had := st.otps[c.Email]
	st.otps[c.Email] = c
	r.m.onRollback(func(st *memState) {
		if had {
			st.otps[c.Email] = prev
			return
		}
		delete(st.otps, c.Email)
	})
	return nil
}

func (r memOTPRepo) GetForUpdate(_ context.Context, email string) (domain.OTPChallenge, error) {
	r.m.lockRow("otp:" + email)
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.state().otps[email]
	if !ok {
		return domain.OTPChallenge{}, pgx.ErrNoRows
	}
	return c, nil
}

func (r memOTPRepo) Delete(_ context.Context, email string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	prev, had := st.otps[email]
	delete(st.otps, email)
	if had {
		r.m.onRollback(func(st *memState) { st.otps[email] = prev })
	}
	return nil
}

type memSettingsRepo struct{ m *memStore }

func (r memSettingsRepo) Create(_ context.Context, s domain.Settings) error {
	if r.m.failSettingsCreate != nil {
		return r.m.failSettingsCreate
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	if _, ok := st.settings[s.UserID]; !ok {
		st.settings[s.UserID] = s
		r.m.onRollback(func(st *memState) { delete(st.settings, s.UserID) })
	}
	return nil
}

func (r memSettingsRepo) Get(_ context.Context, userID int64) (domain.Settings, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.state().settings[userID]
	if !ok {
		return domain.Settings{}, pgx.ErrNoRows
	}
	return s, nil
}

func (r memSettingsRepo) Update(_ context.Context, userID int64, visibility, intensity *string) (domain.Settings, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	s, ok := st.settings[userID]
	if !ok {
		return domain.Settings{}, pgx.ErrNoRows
	}
	prev := s
	r.m.onRollback(func(st *memState) { st.settings[userID] = prev })
	if visibility != nil {
		s.ProfileVisibility = *visibility
	}
	if intensity != nil {
		s.NotificationIntensity = *intensity
	}
	s.UpdatedAt = time.Now().UTC()
	st.settings[userID] = s
	return s, nil
}

type memXPRepo struct{ m *memStore }

func (r memXPRepo) Increment(_ context.Context, userID int64, amount int) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	u, ok := st.users[userID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	u.XP += amount
	st.users[userID] = u
	r.m.onRollback(func(st *memState) {
		if u, ok := st.users[userID]; ok {
			u.XP -= amount
			st.users[userID] = u
		}
	})
	return u.XP, nil
}

func (r memXPRepo) IncrementOncePerDay(_ context.Context, userID int64, amount int, day time.Time) (int, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	u, ok := st.users[userID]
	if !ok {
		return 0, false, pgx.ErrNoRows
	}
	dayStr := day.Format(time.DateOnly)
	if u.LastLoginXPDate != nil && u.LastLoginXPDate.Format(time.DateOnly) == dayStr {
		return u.XP, false, nil
	}
	d, _ := time.Parse(time.DateOnly, dayStr)
	prevDate := u.LastLoginXPDate
	u.XP += amount
	u.LastLoginXPDate = &d
	st.users[userID] = u
	r.m.onRollback(func(st *memState) {
		if u, ok := st.users[userID]; ok {
			u.XP -= amount
			u.LastLoginXPDate = prevDate
			st.users[userID] = u
		}
	})
	return u.XP, true, nil
}

func (r memXPRepo) Record(_ context.Context, g domain.XPGrant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	st.grants = append(st.grants, g)
	r.m.onRollback(func(st *memState) {
		for i, existing := range st.grants {
			if existing.ID == g.ID {
				st.grants = append(st.grants[:i], st.grants[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r memXPRepo) Balance(_ context.Context, userID int64) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state().users[userID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return u.XP, nil
}

type memFriendshipRepo struct{ m *memStore }

func (r memFriendshipRepo) Create(_ context.Context, f domain.Friendship) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	low, high := domain.PairKey(f.RequesterID, f.AddresseeID)
	for _, existing := range st.friendships {
		l, h := domain.PairKey(existing.RequesterID, existing.AddresseeID)
		if l == low && h == high {
			return false, nil
		}
	}
	f.UpdatedAt = f.CreatedAt
	st.friendships[f.ID] = f
	r.m.onRollback(func(st *memState) { delete(st.friendships, f.ID) })
	return true, nil
}

func (r memFriendshipRepo) Transition(_ context.Context, id string, addresseeID int64, to domain.FriendshipStatus) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	f, ok := st.friendships[id]
	if !ok || f.AddresseeID != addresseeID || f.Status != domain.FriendshipPending {
		return false, nil
	}
	prev := f
	f.Status = to
	f.UpdatedAt = time.Now().UTC()
	st.friendships[id] = f
	r.m.onRollback(func(st *memState) { st.friendships[id] = prev })
	return true, nil
}

func (r memFriendshipRepo) GetBetween(_ context.Context, a, b int64) (domain.Friendship, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	low, high := domain.PairKey(a, b)
	for _, f := range r.m.state().friendships {
		l, h := domain.PairKey(f.RequesterID, f.AddresseeID)
		if l == low && h == high {
			return f, nil
		}
	}
	return domain.Friendship{}, pgx.ErrNoRows
}

func (r memFriendshipRepo) ListFriends(_ context.Context, userID int64) ([]domain.UserSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	out := []domain.UserSummary{}
	for _, f := range st.friendships {
		if f.Status != domain.FriendshipAccepted {
			continue
		}
		switch userID {
		case f.RequesterID:
			out = append(out, summaryOf(st.users[f.AddresseeID]))
		case f.AddresseeID:
			out = append(out, summaryOf(st.users[f.RequesterID]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memFriendshipRepo) ListPending(_ context.Context, userID int64) ([]domain.PendingRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	out := []domain.PendingRequest{}
	for _, f := range st.friendships {
		if f.AddresseeID == userID && f.Status == domain.FriendshipPending {
			out = append(out, domain.PendingRequest{
				RequestID:   f.ID,
				UserSummary: summaryOf(st.users[f.RequesterID]),
				CreatedAt:   f.CreatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memFriendshipRepo) Suggestions(_ context.Context, userID int64, limit int) ([]domain.UserSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	related := map[int64]bool{userID: true}
	for _, f := range st.friendships {
		if f.RequesterID == userID {
			related[f.AddresseeID] = true
		}
		if f.AddresseeID == userID {
			related[f.RequesterID] = true
		}
	}
	out := []domain.UserSummary{}
	for id, u := range st.users {
		if !related[id] {
			out = append(out, summaryOf(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memFriendshipRepo) CountAccepted(ctx context.Context, userID int64) (int, error) {
	friends, err := r.ListFriends(ctx, userID)
	return len(friends), err
}

type memConversationRepo struct{ m *memStore }

func (r memConversationRepo) CreatePair(_ context.Context, id string, low, high int64, createdAt time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	for _, c := range st.conversations {
		if c.low == low && c.high == high {
			return false, nil
		}
	}
	st.conversations[id] = memConversation{id: id, low: low, high: high, createdAt: createdAt}
	r.m.onRollback(func(st *memState) { delete(st.conversations, id) })
	return true, nil
}

func (r memConversationRepo) FindPair(_ context.Context, low, high int64) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.state().conversations {
		if c.low == low && c.high == high {
			return c.id, nil
		}
	}
	return "", pgx.ErrNoRows
}

func (r memConversationRepo) AddParticipants(_ context.Context, conversationID string, userIDs ...int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	c, ok := st.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s missing", conversationID)
	}
	n := len(c.participants)
	c.participants = append(c.participants, userIDs...)
	st.conversations[conversationID] = c
	r.m.onRollback(func(st *memState) {
		if c, ok := st.conversations[conversationID]; ok {
			c.participants = c.participants[:n]
			st.conversations[conversationID] = c
		}
	})
	return nil
}

func (r memConversationRepo) IsParticipant(_ context.Context, conversationID string, userID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.state().conversations[conversationID]
	if !ok {
		return false, nil
	}
	for _, p := range c.participants {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r memConversationRepo) ListForUser(_ context.Context, userID int64) ([]domain.Conversation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	out := []domain.Conversation{}
	for _, c := range st.conversations {
		member := false
		var participants []domain.Participant
		for _, p := range c.participants {
			if p == userID {
				member = true
			}
			u := st.users[p]
			participants = append(participants, domain.Participant{UserID: u.ID, Name: u.Name, Handle: u.Handle})
		}
		if !member {
			continue
		}
		conv := domain.Conversation{ID: c.id, CreatedAt: c.createdAt, Participants: participants}
		for _, msg := range st.messages {
			if msg.ConversationID == c.id {
				conv.LastMessage = &domain.MessagePreview{Content: msg.Content, SenderID: msg.SenderID, CreatedAt: msg.CreatedAt}
			}
		}
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memConversationRepo) CreateMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	if r.m.failMessageCreate != nil {
		return domain.Message{}, r.m.failMessageCreate
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	sender := st.users[msg.SenderID]
	msg.SenderName = sender.Name
	msg.SenderHandle = sender.Handle
	msg.SenderAvatar = sender.AvatarURL
	st.messages = append(st.messages, msg)
	r.m.onRollback(func(st *memState) {
		for i, existing := range st.messages {
			if existing.ID == msg.ID {
				st.messages = append(st.messages[:i], st.messages[i+1:]...)
				return
			}
		}
	})
	return msg, nil
}

func (r memConversationRepo) ListMessages(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Message{}
	for _, msg := range r.m.state().messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memVaultRepo struct{ m *memStore }

func (r memVaultRepo) Insert(_ context.Context, e domain.VaultEntry) (domain.VaultEntry, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	for _, existing := range st.vault {
		if existing.UserID == e.UserID && existing.PostID == e.PostID {
			return domain.VaultEntry{}, false, nil
		}
	}
	st.vault[e.ID] = e
	r.m.onRollback(func(st *memState) { delete(st.vault, e.ID) })
	return e, true, nil
}

func (r memVaultRepo) Delete(_ context.Context, userID, postID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	for id, e := range st.vault {
		if e.UserID == userID && e.PostID == postID {
			delete(st.vault, id)
			removed := e
			r.m.onRollback(func(st *memState) { st.vault[removed.ID] = removed })
		}
	}
	return nil
}

func (r memVaultRepo) Exists(_ context.Context, userID, postID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.state().vault {
		if e.UserID == userID && e.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func (r memVaultRepo) UpdateNote(_ context.Context, id string, userID int64, note *string) (domain.VaultEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.state()
	e, ok := st.vault[id]
	if !ok || e.UserID != userID {
		return domain.VaultEntry{}, pgx.ErrNoRows
	}
	prev := e
	e.Note = note
	st.vault[id] = e
	r.m.onRollback(func(st *memState) { st.vault[id] = prev })
	return e, nil
}

func (r memVaultRepo) List(_ context.Context, userID int64) ([]domain.VaultEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.VaultEntry{}
	for _, e := range r.m.state().vault {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

type mockEmailSender struct {
	mu          sync.Mutex
	lastTo      string
	lastCode    string
	lastExpires time.Time
	sent        int
	err         error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = strings.TrimSpace(toEmail)
	m.lastCode = code
	m.lastExpires = expiresAt
	m.sent++
	return m.err
}

type memLeaderboardCache struct {
	entries     []domain.LeaderboardEntry
	hit         bool
	sets        int
	invalidated int
}

func (c *memLeaderboardCache) Get(context.Context) ([]domain.LeaderboardEntry, bool) {
	return c.entries, c.hit
}

func (c *memLeaderboardCache) Set(_ context.Context, entries []domain.LeaderboardEntry) {
	c.entries = entries
	c.hit = true
	c.sets++
}

func (c *memLeaderboardCache) Invalidate(context.Context) {
	c.entries = nil
	c.hit = false
	c.invalidated++
}
