package models

import (
	"time"

	"github.com/lib/pq"
)

// Lawyer is the professional profile of a LAWYER user. LawyerID is the owning
// user's UserID.
type Lawyer struct {
	LawyerID                uint           `gorm:"primaryKey;autoIncrement:false;column:lawyer_id" json:"lawyer_id"`
	ProfileBio              string         `gorm:"column:profile_bio;type:text" json:"profile_bio"`
	Specialization          pq.StringArray `gorm:"type:text[]" json:"specialization"`
	CredentialsVerified     bool           `gorm:"column:credentials_verified;not null;default:false;index" json:"credentials_verified"`
	VerificationDocumentURL *string        `gorm:"column:verification_document_url" json:"verification_document_url"`
	Rating                  *float64       `gorm:"type:numeric(3,2)" json:"rating"`
	RatingCount             int            `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// HasAnySpecialization reports whether the profile shares at least one
// specialization with want. An empty want always matches.
func (l *Lawyer) HasAnySpecialization(want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, have := range l.Specialization {
		for _, w := range want {
			if have == w {
				return true
			}
		}
	}
	return false
}
