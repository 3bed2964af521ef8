// Package store persists users, lawyer profiles and chat threads.
package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// LawyerCriteria is the push-down part of a lawyer search. All fields are
// combined with AND; zero values do not constrain.
type LawyerCriteria struct {
	Locations       []string
	Specializations []string
	MinRating       *float64
	VerifiedOnly    bool
}

// NeedsProfile reports whether any predicate reads the lawyer profile, which
// excludes LAWYER users that have none.
func (c LawyerCriteria) NeedsProfile() bool {
	return c.VerifiedOnly || c.MinRating != nil || len(c.Specializations) > 0
}

// UserPatch carries the user-side fields of a profile update. Nil means unchanged.
type UserPatch struct {
	FirstName        *string
	LastName         *string
	PhoneNumber      *string
	BusinessName     *string
	BusinessIndustry *string
	City             *string
	State            *string
	Country          *string
	Location         *string
}

func (p UserPatch) columns() map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("first_name", p.FirstName)
	set("last_name", p.LastName)
	set("phone_number", p.PhoneNumber)
	set("business_name", p.BusinessName)
	set("business_industry", p.BusinessIndustry)
	set("city", p.City)
	set("state", p.State)
	set("country", p.Country)
	set("location", p.Location)
	return cols
}

func (p UserPatch) apply(u *models.User) {
	assign := func(dst **string, v *string) {
		if v != nil {
			s := *v
			*dst = &s
		}
	}
	assign(&u.FirstName, p.FirstName)
	assign(&u.LastName, p.LastName)
	assign(&u.PhoneNumber, p.PhoneNumber)
	assign(&u.BusinessName, p.BusinessName)
	assign(&u.BusinessIndustry, p.BusinessIndustry)
	if p.City != nil {
		u.City = *p.City
	}
	if p.State != nil {
		u.State = *p.State
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
}

// LawyerPatch carries the profile-side fields of a profile update.
type LawyerPatch struct {
	ProfileBio     *string
	Specialization *[]string
}

func (p LawyerPatch) apply(l *models.Lawyer) {
	if p.ProfileBio != nil {
		l.ProfileBio = *p.ProfileBio
	}
	if p.Specialization != nil {
		l.Specialization = append([]string{}, (*p.Specialization)...)
	}
}

type Store interface {
	Ping(ctx context.Context) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, userID uint, withLawyer bool) (*models.User, error)
	GetUserByFirebaseID(ctx context.Context, firebaseID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// CreateLawyerAccount inserts the user and its lawyer profile atomically.
	// The profile takes the generated user id.
	CreateLawyerAccount(ctx context.Context, user *models.User, lawyer *models.Lawyer) error
	GetLawyer(ctx context.Context, lawyerID uint) (*models.Lawyer, error)
	// UpdateLawyerProfile applies both patches in one transaction, creating
	// the profile when the user has none yet.
	UpdateLawyerProfile(ctx context.Context, userID uint, up UserPatch, lp LawyerPatch) (*models.User, *models.Lawyer, error)
	SetLawyerVerification(ctx context.Context, lawyerID uint, verified bool) (*models.Lawyer, error)
	SetVerificationDocument(ctx context.Context, lawyerID uint, url string) (*models.Lawyer, error)
	// SearchLawyers returns LAWYER users matching c ordered by user id, with
	// the profile attached when it exists.
	SearchLawyers(ctx context.Context, c LawyerCriteria) ([]models.User, error)

	FindChat(ctx context.Context, userID, lawyerID uint) (*models.Chat, error)
	// FindChatPrimary is FindChat against the primary, for reads that must
	// see a write that just committed elsewhere.
	FindChatPrimary(ctx context.Context, userID, lawyerID uint) (*models.Chat, error)
	GetChat(ctx context.Context, chatID uint) (*models.Chat, error)
	// CreateChatWithMessage inserts the thread and its first message atomically.
	CreateChatWithMessage(ctx context.Context, chat *models.Chat, first *models.ChatMessage) error
	// AppendMessage inserts msg and bumps the thread's updated_at.
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatsForParticipant(ctx context.Context, userID uint) ([]models.Chat, error)
	ListMessages(ctx context.Context, chatID uint) ([]models.ChatMessage, error)
	MarkRead(ctx context.Context, chatID, readerID uint) (int64, error)
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
