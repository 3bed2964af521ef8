package models

import (
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleIndividual Role = "INDIVIDUAL"
	RoleBusiness   Role = "BUSINESS"
	RoleLawyer     Role = "LAWYER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleIndividual, RoleBusiness, RoleLawyer:
		return true
	}
	return false
}

// PasswordMarkerFirebase is stored instead of a hash when credentials live
// with the identity provider.
const PasswordMarkerFirebase = "FIREBASE_AUTH"

// User is a marketplace account. FirebaseID and Role never change after creation.
type User struct {
	UserID           uint                                `gorm:"primaryKey;autoIncrement;column:user_id" json:"user_id"`
	FirebaseID       string                              `gorm:"column:firebase_id;size:128;not null;uniqueIndex" json:"firebaseId"`
	Email            string                              `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Role             Role                                `gorm:"size:20;not null;index" json:"role"`
	FirstName        *string                             `gorm:"size:100" json:"first_name"`
	LastName         *string                             `gorm:"size:100" json:"last_name"`
	PhoneNumber      *string                             `gorm:"size:40" json:"phone_number"`
	BusinessName     *string                             `gorm:"size:255" json:"business_name"`
	BusinessIndustry *string                             `gorm:"size:255" json:"business_industry"`
	City             string                              `gorm:"size:100" json:"city"`
	State            string                              `gorm:"size:100" json:"state"`
	Country          string                              `gorm:"size:100" json:"country"`
	Location         string                              `gorm:"size:255;index" json:"location"`
	Preferences      datatypes.JSONType[map[string]bool] `gorm:"type:jsonb" json:"preferences"`
	PasswordHash     string                              `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt        time.Time                           `json:"created_at"`
	UpdatedAt        time.Time                           `json:"updated_at"`

	Lawyer *Lawyer `gorm:"foreignKey:LawyerID;references:UserID;constraint:OnDelete:CASCADE" json:"Lawyer,omitempty"`
}

// DisplayName is "first last" for people and the business name otherwise.
func (u *User) DisplayName() string {
	name := deref(u.FirstName)
	if last := deref(u.LastName); last != "" {
		if name != "" {
			name += " "
		}
		name += last
	}
	if name == "" {
		return deref(u.BusinessName)
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
