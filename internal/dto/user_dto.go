package dto

// SessionRequest carries the provider's account metadata. FirebaseID is
// only read when the request has no verified token.
type SessionRequest struct {
	FirebaseID     string `json:"firebaseId"`
	CreationTime   string `json:"creationTime"`
	LastSignInTime string `json:"lastSignInTime"`
}

type SessionResponse struct {
	FirebaseID string `json:"firebaseId"`
	Registered bool   `json:"registered"`
	FirstLogin bool   `json:"first_login"`
	Role       string `json:"role,omitempty"`
	UserID     uint   `json:"user_id,omitempty"`
}
