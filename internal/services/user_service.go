package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/registration"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"gorm.io/datatypes"
)

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, userID uint, withLawyer bool) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, userID, withLawyer)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) GetByFirebaseID(ctx context.Context, firebaseID string) (*models.User, error) {
	u, err := s.store.GetUserByFirebaseID(ctx, firebaseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// StepResult is what the multi-step form gets back after validating a step.
type StepResult struct {
	Step     registration.Step  `json:"step"`
	NextStep registration.Step  `json:"next_step"`
	Complete bool               `json:"complete"`
	Draft    registration.Draft `json:"draft"`
}

// ValidateStep checks the draft through the given step without persisting it.
func (s *UserService) ValidateStep(step registration.Step, d registration.Draft) (*StepResult, error) {
	if !step.Valid() {
		return nil, &registration.ValidationError{Step: step, Fields: []registration.FieldError{{
			Field: "step", Message: fmt.Sprintf("Unknown registration step %d.", step),
		}}}
	}
	out, err := registration.ValidateThrough(d, step)
	if err != nil {
		return nil, err
	}
	next := step
	if step < registration.StepPreferences {
		next++
	}
	out.Password = ""
	return &StepResult{Step: step, NextStep: next, Complete: step == registration.StepPreferences, Draft: out}, nil
}

// Register completes the client sign-up: every step is validated before the
// uniqueness checks and the insert.
func (s *UserService) Register(ctx context.Context, d registration.Draft) (*models.User, error) {
	d, err := registration.Start(d).Complete()
	if err != nil {
		return nil, err
	}
	if err := checkAvailable(ctx, s.store, d.Email, d.FirebaseID); err != nil {
		return nil, err
	}
	hash, err := registration.HashPassword(d.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirebaseID:   d.FirebaseID,
		Email:        d.Email,
		Role:         models.Role(d.Role),
		FirstName:    nilIfEmpty(d.FirstName),
		LastName:     nilIfEmpty(d.LastName),
		BusinessName: nilIfEmpty(d.BusinessName),
		City:         d.City,
		State:        d.State,
		Country:      d.Country,
		Location:     d.Location,
		Preferences:  datatypes.NewJSONType(registration.PreferenceMap(d.Preferences)),
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "user registered", "user_id", user.UserID, "role", user.Role)
	return user, nil
}

// Session reports whether the identity is known to the marketplace.
func (s *UserService) Session(ctx context.Context, firebaseID string) (*models.User, bool, error) {
	u, err := s.store.GetUserByFirebaseID(ctx, firebaseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
