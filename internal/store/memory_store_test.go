package store

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickClock struct{ t time.Time }

func (c *tickClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore() *MemoryStore {
	clock := &tickClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewMemoryStore().WithClock(clock.now)
}

func ptr[T any](v T) *T { return &v }

func addLawyer(t *testing.T, s *MemoryStore, fid, location string, verified bool, rating *float64, specs ...string) *models.User {
	t.Helper()
	u := &models.User{FirebaseID: fid, Email: fid + "@example.com", Role: models.RoleLawyer, Location: location}
	l := &models.Lawyer{Specialization: specs, CredentialsVerified: verified}
	require.NoError(t, s.CreateLawyerAccount(context.Background(), u, l))
	if rating != nil {
		require.NoError(t, s.SetRating(u.UserID, *rating, 1))
	}
	return u
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{FirebaseID: "a", Email: "a@x.io", Role: models.RoleIndividual}))

	err := s.CreateUser(ctx, &models.User{FirebaseID: "b", Email: "a@x.io", Role: models.RoleIndividual})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = s.CreateLawyerAccount(ctx, &models.User{FirebaseID: "a", Email: "c@x.io", Role: models.RoleLawyer}, &models.Lawyer{})
	assert.ErrorIs(t, err, ErrDuplicate)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	_, err = s.GetLawyer(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateLawyerAccountSharesID(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{FirebaseID: "client", Email: "client@x.io", Role: models.RoleIndividual}))

	u := &models.User{FirebaseID: "law", Email: "law@x.io", Role: models.RoleLawyer}
	l := &models.Lawyer{}
	require.NoError(t, s.CreateLawyerAccount(ctx, u, l))

	assert.Equal(t, uint(2), u.UserID)
	assert.Equal(t, u.UserID, l.LawyerID)

	got, err := s.GetUserByID(ctx, u.UserID, true)
	require.NoError(t, err)
	require.NotNil(t, got.Lawyer)
	assert.Equal(t, u.UserID, got.Lawyer.LawyerID)
}

func TestSearchLawyersPushDown(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	a := addLawyer(t, s, "a", "Austin", true, ptr(4.5), "Family Law")
	b := addLawyer(t, s, "b", "Dallas", false, ptr(4.0), "Tax Law")
	c := addLawyer(t, s, "c", "Austin", true, nil, "Criminal Law", "Family Law")
	require.NoError(t, s.CreateUser(ctx, &models.User{FirebaseID: "bare", Email: "bare@x.io", Role: models.RoleLawyer, Location: "Austin"}))
	require.NoError(t, s.CreateUser(ctx, &models.User{FirebaseID: "client", Email: "client@x.io", Role: models.RoleIndividual, Location: "Austin"}))

	ids := func(users []models.User) []uint {
		out := []uint{}
		for _, u := range users {
			out = append(out, u.UserID)
		}
		return out
	}

	all, err := s.SearchLawyers(ctx, LawyerCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.UserID, b.UserID, c.UserID, 4}, ids(all))
	assert.Nil(t, all[3].Lawyer)

	got, err := s.SearchLawyers(ctx, LawyerCriteria{MinRating: ptr(4.0)})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.UserID, b.UserID}, ids(got))

	got, err = s.SearchLawyers(ctx, LawyerCriteria{VerifiedOnly: true, Locations: []string{"Austin"}})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.UserID, c.UserID}, ids(got))

	got, err = s.SearchLawyers(ctx, LawyerCriteria{Specializations: []string{"Tax Law", "Criminal Law"}})
	require.NoError(t, err)
	assert.Equal(t, []uint{b.UserID, c.UserID}, ids(got))

	got, err = s.SearchLawyers(ctx, LawyerCriteria{Locations: []string{"Austin"}})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.UserID, c.UserID, 4}, ids(got))
}

func TestUpdateLawyerProfileCreatesMissingProfile(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	u := &models.User{FirebaseID: "law", Email: "law@x.io", Role: models.RoleLawyer}
	require.NoError(t, s.CreateUser(ctx, u))

	specs := []string{"Tax Law"}
	user, lawyer, err := s.UpdateLawyerProfile(ctx, u.UserID,
		UserPatch{City: ptr("Austin")},
		LawyerPatch{ProfileBio: ptr("Ten years in tax."), Specialization: &specs})
	require.NoError(t, err)

	assert.Equal(t, "Austin", user.City)
	assert.Equal(t, u.UserID, lawyer.LawyerID)
	assert.Equal(t, []string{"Tax Law"}, []string(lawyer.Specialization))

	_, _, err = s.UpdateLawyerProfile(ctx, 99, UserPatch{}, LawyerPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateLawyerProfileLeavesAbsentFields(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	u := addLawyer(t, s, "law", "Austin", false, nil, "Family Law")

	_, lawyer, err := s.UpdateLawyerProfile(ctx, u.UserID, UserPatch{}, LawyerPatch{ProfileBio: ptr("new bio")})
	require.NoError(t, err)
	assert.Equal(t, "new bio", lawyer.ProfileBio)
	assert.Equal(t, []string{"Family Law"}, []string(lawyer.Specialization))
}

func TestChatLifecycle(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	first := &models.Chat{UserID: 1, LawyerID: 2, Status: models.ChatStatusPending}
	require.NoError(t, s.CreateChatWithMessage(ctx, first, &models.ChatMessage{SenderID: 1, Message: "hello"}))
	second := &models.Chat{UserID: 3, LawyerID: 2, Status: models.ChatStatusPending}
	require.NoError(t, s.CreateChatWithMessage(ctx, second, &models.ChatMessage{SenderID: 3, Message: "hi"}))

	err := s.CreateChatWithMessage(ctx, &models.Chat{UserID: 1, LawyerID: 2}, &models.ChatMessage{SenderID: 1, Message: "again"})
	assert.ErrorIs(t, err, ErrDuplicate)

	found, err := s.FindChat(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ChatID, found.ChatID)

	require.NoError(t, s.AppendMessage(ctx, &models.ChatMessage{ChatID: first.ChatID, SenderID: 2, Message: "reply"}))
	assert.ErrorIs(t, s.AppendMessage(ctx, &models.ChatMessage{ChatID: 42, SenderID: 2, Message: "x"}), ErrNotFound)

	chats, err := s.ListChatsForParticipant(ctx, 2)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, first.ChatID, chats[0].ChatID, "most recently active first")

	msgs, err := s.ListMessages(ctx, first.ChatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Message)
	assert.Equal(t, "reply", msgs[1].Message)

	n, err := s.MarkRead(ctx, first.ChatID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.MarkRead(ctx, first.ChatID, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
