package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStartOrGetIsSymmetric(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@gmail.com", "Alice", "")
	bob := env.signup(t, "bob@gmail.com", "Bob", "")
	ctx := context.Background()

	id, existing, err := env.convos.StartOrGet(ctx, alice.ID, bob.Handle)
	require.NoError(t, err)
	assert.False(t, existing)
	assert.NotEmpty(t, id)

	again, existing, err := env.convos.StartOrGet(ctx, bob.ID, strconv.FormatInt(alice.ID, 10))
	require.NoError(t, err)
	assert.True(t, existing)
	assert.Equal(t, id, again)

	_, _, err = env.convos.StartOrGet(ctx, alice.ID, alice.Handle)
	assert.ErrorIs(t, err, ErrSelfConversation)
	_, _, err = env.convos.StartOrGet(ctx, alice.ID, "UT00000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConversationConcurrentStartCreatesOne(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@gmail.com", "Alice", "")
	bob := env.signup(t, "bob@gmail.com", "Bob", "")

	ids := make([]string, 10)
	var wg sync.WaitGroup
	for i := range ids {
		caller, other := alice, bob
		if i%2 == 1 {
			caller, other = bob, alice
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, _, err := env.convos.StartOrGet(context.Background(), caller.ID, other.Handle)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	require.Len(t, env.store.state().conversations, 1)
	for _, c := range env.store.state().conversations {
		assert.Len(t, c.participants, 2)
	}
}

func TestConversationSendAndMessages(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@gmail.com", "Alice", "")
	bob := env.signup(t, "bob@gmail.com", "Bob", "")
	carol := env.signup(t, "carol@gmail.com", "Carol", "")
	ctx := context.Background()

	id, _, err := env.convos.StartOrGet(ctx, alice.ID, bob.Handle)
	require.NoError(t, err)

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	env.convos.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	msg, err := env.convos.Send(ctx, alice.ID, id, "  hola  ")
	require.NoError(t, err)
	assert.Equal(t, "hola", msg.Content)
	assert.Equal(t, "Alice", msg.SenderName)
	assert.Equal(t, alice.Handle, msg.SenderHandle)

	_, err = env.convos.Send(ctx, bob.ID, id, "que tal")
	require.NoError(t, err)

	_, err = env.convos.Send(ctx, carol.ID, id, "intruso")
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = env.convos.Send(ctx, alice.ID, id, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = env.convos.Send(ctx, alice.ID, "bogus", "hola")
	assert.ErrorIs(t, err, ErrNotParticipant)

	msgs, err := env.convos.Messages(ctx, bob.ID, id)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hola", msgs[0].Content)
	assert.Equal(t, "que tal", msgs[1].Content)

	_, err = env.convos.Messages(ctx, carol.ID, id)
	assert.ErrorIs(t, err, ErrNotParticipant)

	list, err := env.convos.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Participants, 2)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "que tal", list[0].LastMessage.Content)

	list, err = env.convos.List(ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
