package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
)

// MemoryStore keeps everything in process memory. It enforces the same
// uniqueness rules as the relational schema and is used for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[uint]*models.User
	lawyers  map[uint]*models.Lawyer
	chats    map[uint]*models.Chat
	messages map[uint][]models.ChatMessage

	nextUserID    uint
	nextChatID    uint
	nextMessageID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      func() time.Time { return time.Now().UTC() },
		users:    map[uint]*models.User{},
		lawyers:  map[uint]*models.Lawyer{},
		chats:    map[uint]*models.Chat{},
		messages: map[uint][]models.ChatMessage{},
	}
}

// WithClock replaces the timestamp source.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func copyUser(u *models.User) *models.User {
	out := *u
	out.Lawyer = nil
	return &out
}

func copyLawyer(l *models.Lawyer) *models.Lawyer {
	out := *l
	out.Specialization = append([]string{}, l.Specialization...)
	return &out
}

func (m *MemoryStore) sortedUserIDs() []uint {
	ids := make([]uint, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MemoryStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, id := range m.sortedUserIDs() {
		out = append(out, *copyUser(m.users[id]))
	}
	return out, nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, userID uint, withLawyer bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyUser(u)
	if l, ok := m.lawyers[userID]; ok && withLawyer {
		out.Lawyer = copyLawyer(l)
	}
	return out, nil
}

func (m *MemoryStore) GetUserByFirebaseID(_ context.Context, firebaseID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.FirebaseID == firebaseID {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) checkUnique(u *models.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email %q", ErrDuplicate, u.Email)
		}
		if existing.FirebaseID == u.FirebaseID {
			return fmt.Errorf("%w: firebase_id %q", ErrDuplicate, u.FirebaseID)
		}
	}
	return nil
}

func (m *MemoryStore) insertUser(u *models.User) {
	m.nextUserID++
	ts := m.now()
	u.UserID = m.nextUserID
	u.CreatedAt, u.UpdatedAt = ts, ts
	m.users[u.UserID] = copyUser(u)
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(user); err != nil {
		return err
	}
	m.insertUser(user)
	return nil
}

func (m *MemoryStore) CreateLawyerAccount(_ context.Context, user *models.User, lawyer *models.Lawyer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(user); err != nil {
		return err
	}
	m.insertUser(user)
	lawyer.LawyerID = user.UserID
	lawyer.CreatedAt, lawyer.UpdatedAt = user.CreatedAt, user.CreatedAt
	m.lawyers[lawyer.LawyerID] = copyLawyer(lawyer)
	return nil
}

func (m *MemoryStore) GetLawyer(_ context.Context, lawyerID uint) (*models.Lawyer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lawyers[lawyerID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyLawyer(l), nil
}

func (m *MemoryStore) UpdateLawyerProfile(_ context.Context, userID uint, up UserPatch, lp LawyerPatch) (*models.User, *models.Lawyer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	ts := m.now()

	// Work on copies so a failure leaves both records untouched.
	user := copyUser(u)
	up.apply(user)
	user.UpdatedAt = ts

	var lawyer *models.Lawyer
	if l, ok := m.lawyers[userID]; ok {
		lawyer = copyLawyer(l)
	} else {
		lawyer = &models.Lawyer{LawyerID: userID, Specialization: []string{}, CreatedAt: ts}
	}
	lp.apply(lawyer)
	lawyer.UpdatedAt = ts

	m.users[userID] = copyUser(user)
	m.lawyers[userID] = copyLawyer(lawyer)
	return user, lawyer, nil
}

func (m *MemoryStore) SetLawyerVerification(_ context.Context, lawyerID uint, verified bool) (*models.Lawyer, error) {
	return m.updateLawyer(lawyerID, func(l *models.Lawyer) { l.CredentialsVerified = verified })
}

func (m *MemoryStore) SetVerificationDocument(_ context.Context, lawyerID uint, url string) (*models.Lawyer, error) {
	return m.updateLawyer(lawyerID, func(l *models.Lawyer) { l.VerificationDocumentURL = &url })
}

func (m *MemoryStore) updateLawyer(lawyerID uint, fn func(*models.Lawyer)) (*models.Lawyer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lawyers[lawyerID]
	if !ok {
		return nil, ErrNotFound
	}
	fn(l)
	l.UpdatedAt = m.now()
	return copyLawyer(l), nil
}

// SetRating is used by tests. Ratings have no public write path, and the
// seeder sets them on the profile it inserts.
func (m *MemoryStore) SetRating(lawyerID uint, rating float64, count int) error {
	_, err := m.updateLawyer(lawyerID, func(l *models.Lawyer) {
		l.Rating = &rating
		l.RatingCount = count
	})
	return err
}

func (m *MemoryStore) SearchLawyers(_ context.Context, c LawyerCriteria) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.User{}
	for _, id := range m.sortedUserIDs() {
		u := m.users[id]
		if u.Role != models.RoleLawyer {
			continue
		}
		if len(c.Locations) > 0 && !containsString(c.Locations, u.Location) {
			continue
		}
		l, hasProfile := m.lawyers[id]
		if c.NeedsProfile() {
			if !hasProfile {
				continue
			}
			if c.VerifiedOnly && !l.CredentialsVerified {
				continue
			}
			if c.MinRating != nil && (l.Rating == nil || *l.Rating < *c.MinRating) {
				continue
			}
			if !l.HasAnySpecialization(c.Specializations) {
				continue
			}
		}
		row := copyUser(u)
		if hasProfile {
			row.Lawyer = copyLawyer(l)
		}
		out = append(out, *row)
	}
	return out, nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func (m *MemoryStore) FindChat(_ context.Context, userID, lawyerID uint) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.chats {
		if c.UserID == userID && c.LawyerID == lawyerID {
			out := *c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// FindChatPrimary is FindChat; there is only one copy of the data.
func (m *MemoryStore) FindChatPrimary(ctx context.Context, userID, lawyerID uint) (*models.Chat, error) {
	return m.FindChat(ctx, userID, lawyerID)
}

func (m *MemoryStore) GetChat(_ context.Context, chatID uint) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chats[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *MemoryStore) CreateChatWithMessage(_ context.Context, chat *models.Chat, first *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.chats {
		if c.UserID == chat.UserID && c.LawyerID == chat.LawyerID {
			return fmt.Errorf("%w: chat between %d and %d", ErrDuplicate, chat.UserID, chat.LawyerID)
		}
	}
	ts := m.now()
	m.nextChatID++
	chat.ChatID = m.nextChatID
	chat.CreatedAt, chat.UpdatedAt = ts, ts
	stored := *chat
	m.chats[chat.ChatID] = &stored

	first.ChatID = chat.ChatID
	m.appendLocked(first, ts)
	return nil
}

func (m *MemoryStore) appendLocked(msg *models.ChatMessage, ts time.Time) {
	m.nextMessageID++
	msg.MessageID = m.nextMessageID
	msg.CreatedAt = ts
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], *msg)
}

func (m *MemoryStore) AppendMessage(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[msg.ChatID]
	if !ok {
		return ErrNotFound
	}
	ts := m.now()
	m.appendLocked(msg, ts)
	c.UpdatedAt = ts
	return nil
}

func (m *MemoryStore) ListChatsForParticipant(_ context.Context, userID uint) ([]models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Chat{}
	for _, c := range m.chats {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ChatID > out[j].ChatID
	})
	return out, nil
}

func (m *MemoryStore) ListMessages(_ context.Context, chatID uint) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]models.ChatMessage{}, m.messages[chatID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].MessageID < out[j].MessageID
	})
	return out, nil
}

func (m *MemoryStore) MarkRead(_ context.Context, chatID, readerID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	msgs := m.messages[chatID]
	for i := range msgs {
		if msgs[i].SenderID != readerID && !msgs[i].IsRead {
			msgs[i].IsRead = true
			n++
		}
	}
	return n, nil
}
