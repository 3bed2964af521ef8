package services

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrLawyerNotFound  = errors.New("lawyer not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrFirebaseIDTaken = errors.New("user with this firebase id already exists")
	ErrAccountExists   = errors.New("account already exists")

	ErrChatNotFound        = errors.New("chat not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNotParticipant      = errors.New("sender is not a participant of this chat")
	ErrInvalidParticipants = errors.New("a chat needs exactly one lawyer and one client")
	ErrSameParticipant     = errors.New("sender and receiver must be different users")
	ErrEmptyMessage        = errors.New("message must not be empty")

	ErrInvalidDocument = errors.New("verification document must be a PDF, JPEG or PNG up to 10 MB")
)
