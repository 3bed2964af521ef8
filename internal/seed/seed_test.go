package seed

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeder(st *store.MemoryStore, seed int64) *Seeder {
	return New(st, services.NewUserService(st), services.NewChatService(st, nil, nil), seed)
}

func TestRunPopulatesStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	res, err := newSeeder(st, 42).Run(ctx, Options{Clients: 6, Lawyers: 4, Chats: 5, Replies: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Clients)
	assert.Equal(t, 4, res.Lawyers)
	assert.GreaterOrEqual(t, res.Chats, 1)
	assert.LessOrEqual(t, res.Chats, 5)
	assert.GreaterOrEqual(t, res.Messages, 5)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 10)

	lawyers, err := st.SearchLawyers(ctx, store.LawyerCriteria{})
	require.NoError(t, err)
	require.Len(t, lawyers, 4)
	for _, u := range lawyers {
		assert.Equal(t, models.RoleLawyer, u.Role)
		require.NotNil(t, u.Lawyer)
		assert.NotEmpty(t, u.Lawyer.Specialization)
		for _, area := range u.Lawyer.Specialization {
			assert.Contains(t, Specializations, area)
		}
		if u.Lawyer.Rating != nil {
			assert.GreaterOrEqual(t, *u.Lawyer.Rating, 2.5)
			assert.LessOrEqual(t, *u.Lawyer.Rating, 5.0)
		}
		assert.Equal(t, u.City, u.Location)
	}

	messages := 0
	for _, u := range lawyers {
		chats, err := st.ListChatsForParticipant(ctx, u.UserID)
		require.NoError(t, err)
		for _, c := range chats {
			assert.Equal(t, u.UserID, c.LawyerID)
			msgs, err := st.ListMessages(ctx, c.ChatID)
			require.NoError(t, err)
			messages += len(msgs)
		}
	}
	assert.Equal(t, res.Messages, messages)
}

func TestRunIsReproducible(t *testing.T) {
	ctx := context.Background()
	a, b := store.NewMemoryStore(), store.NewMemoryStore()

	_, err := newSeeder(a, 7).Run(ctx, Options{Clients: 3, Lawyers: 2})
	require.NoError(t, err)
	_, err = newSeeder(b, 7).Run(ctx, Options{Clients: 3, Lawyers: 2})
	require.NoError(t, err)

	ua, err := a.ListUsers(ctx)
	require.NoError(t, err)
	ub, err := b.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, ub, len(ua))
	for i := range ua {
		assert.Equal(t, ua[i].Email, ub[i].Email)
		assert.Equal(t, ua[i].FirebaseID, ub[i].FirebaseID)
	}
}

func TestRunWithoutLawyersSkipsChats(t *testing.T) {
	res, err := newSeeder(store.NewMemoryStore(), 1).Run(context.Background(), Options{Clients: 2, Chats: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Clients)
	assert.Zero(t, res.Chats)
	assert.Zero(t, res.Messages)
}
