package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"github.com/stretchr/testify/require"
)

// tickingClock advances one second per call so ordering by timestamp is
// deterministic.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore() *store.MemoryStore {
	clock := &tickingClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return store.NewMemoryStore().WithClock(clock.now)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func addClient(t *testing.T, st store.Store, firebaseID, first, last string) *models.User {
	t.Helper()
	u := &models.User{
		FirebaseID:   firebaseID,
		Email:        firebaseID + "@example.com",
		Role:         models.RoleIndividual,
		FirstName:    strPtr(first),
		LastName:     strPtr(last),
		City:         "Austin",
		Location:     "Austin",
		PasswordHash: models.PasswordMarkerFirebase,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

type lawyerSeed struct {
	first, last string
	location    string
	specs       []string
	rating      *float64
	verified    bool
}

func addLawyer(t *testing.T, st *store.MemoryStore, firebaseID string, seed lawyerSeed) *models.User {
	t.Helper()
	ctx := context.Background()
	u := &models.User{
		FirebaseID:   firebaseID,
		Email:        firebaseID + "@example.com",
		Role:         models.RoleLawyer,
		FirstName:    strPtr(seed.first),
		LastName:     strPtr(seed.last),
		City:         seed.location,
		Location:     seed.location,
		PasswordHash: models.PasswordMarkerFirebase,
	}
	l := &models.Lawyer{Specialization: seed.specs}
	require.NoError(t, st.CreateLawyerAccount(ctx, u, l))
	if seed.rating != nil {
		require.NoError(t, st.SetRating(u.UserID, *seed.rating, 1))
	}
	if seed.verified {
		_, err := st.SetLawyerVerification(ctx, u.UserID, true)
		require.NoError(t, err)
	}
	return u
}
