package dto

import "github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"

// LawyerWithUser is the composite directory record. LawyerID is null when the
// LAWYER user has no profile yet.
type LawyerWithUser struct {
	LawyerID                *uint         `json:"lawyer_id"`
	UserID                  uint          `json:"user_id"`
	ProfileBio              *string       `json:"profile_bio"`
	Specialization          []string      `json:"specialization"`
	CredentialsVerified     *bool         `json:"credentials_verified"`
	VerificationDocumentURL *string       `json:"verification_document_url"`
	Rating                  *float64      `json:"rating"`
	RatingCount             *int          `json:"rating_count"`
	User                    LawyerContact `json:"user"`
}

type LawyerContact struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        string  `json:"email"`
	PhoneNumber  *string `json:"phone_number"`
	BusinessName *string `json:"business_name"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	Location     string  `json:"location"`
	FirebaseID   string  `json:"firebaseId"`
}

func NewLawyerWithUser(u *models.User) LawyerWithUser {
	out := LawyerWithUser{
		UserID:         u.UserID,
		Specialization: []string{},
		User: LawyerContact{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Email:        u.Email,
			PhoneNumber:  u.PhoneNumber,
			BusinessName: u.BusinessName,
			City:         u.City,
			State:        u.State,
			Country:      u.Country,
			Location:     u.Location,
			FirebaseID:   u.FirebaseID,
		},
	}
	if l := u.Lawyer; l != nil {
		id, bio, verified, count := l.LawyerID, l.ProfileBio, l.CredentialsVerified, l.RatingCount
		out.LawyerID = &id
		out.ProfileBio = &bio
		out.CredentialsVerified = &verified
		out.RatingCount = &count
		out.VerificationDocumentURL = l.VerificationDocumentURL
		out.Rating = l.Rating
		if l.Specialization != nil {
			out.Specialization = append(out.Specialization, l.Specialization...)
		}
	}
	return out
}

func NewLawyerList(users []models.User) []LawyerWithUser {
	out := make([]LawyerWithUser, 0, len(users))
	for i := range users {
		out = append(out, NewLawyerWithUser(&users[i]))
	}
	return out
}

type RegisterLawyerRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
	FirebaseID string `json:"firebaseId"`
}

type RegisterLawyerResponse struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	LawyerID uint   `json:"lawyer_id"`
}

// UpdateLawyerRequest uses pointers so absent fields stay unchanged.
type UpdateLawyerRequest struct {
	FirstName        *string   `json:"first_name"`
	LastName         *string   `json:"last_name"`
	PhoneNumber      *string   `json:"phone_number"`
	BusinessName     *string   `json:"business_name"`
	BusinessIndustry *string   `json:"business_industry"`
	City             *string   `json:"city"`
	State            *string   `json:"state"`
	Country          *string   `json:"country"`
	Location         *string   `json:"location"`
	ProfileBio       *string   `json:"profileBio"`
	Specialization   *[]string `json:"specialization"`
}

type UpdateLawyerResponse struct {
	User   *models.User   `json:"user"`
	Lawyer *models.Lawyer `json:"lawyer"`
}

type SetVerificationRequest struct {
	Verified *bool `json:"verified"`
}
