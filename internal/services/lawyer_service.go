package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/registration"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
)

const maxDocumentSize = 10 << 20

var documentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type LawyerService struct {
	store   store.Store
	cache   cache.DirectoryCache
	docs    storage.DocumentStore
	events  events.Publisher
	metrics *metrics.Metrics
	valid   *validator.Validate
}

func NewLawyerService(st store.Store, dc cache.DirectoryCache, docs storage.DocumentStore, pub events.Publisher, m *metrics.Metrics) *LawyerService {
	if dc == nil {
		dc = cache.Noop{}
	}
	if pub == nil {
		pub = events.Noop{}
	}
	if docs == nil {
		docs = storage.NewMemoryStore()
	}
	return &LawyerService{store: st, cache: dc, docs: docs, events: pub, metrics: m, valid: validator.New()}
}

// Search runs the store query for the filter's push-down criteria, then the
// in-memory name search. Results are cached per normalized filter.
func (s *LawyerService) Search(ctx context.Context, f LawyerFilter) ([]models.User, error) {
	key := f.CacheKey()
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "directory cache read failed", "error", err)
	} else if ok {
		var cached []models.User
		if err := json.Unmarshal(b, &cached); err == nil {
			s.metrics.LawyerSearch(true)
			return cached, nil
		}
	}
	s.metrics.LawyerSearch(false)

	users, err := s.store.SearchLawyers(ctx, f.Criteria())
	if err != nil {
		return nil, fmt.Errorf("search lawyers: %w", err)
	}
	users = f.Apply(users)

	if b, err := json.Marshal(users); err == nil {
		if err := s.cache.Set(ctx, key, b); err != nil {
			slog.WarnContext(ctx, "directory cache write failed", "error", err)
		}
	}
	return users, nil
}

// GetByFirebaseID returns the user with its lawyer profile attached.
func (s *LawyerService) GetByFirebaseID(ctx context.Context, firebaseID string) (*models.User, error) {
	user, err := s.store.GetUserByFirebaseID(ctx, firebaseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	lawyer, err := s.store.GetLawyer(ctx, user.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLawyerNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Lawyer = lawyer
	return user, nil
}

type LawyerRegistration struct {
	FirebaseID string `json:"firebaseId" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password" validate:"omitempty,min=6,max=72"`
}

// Register creates the LAWYER user and an empty profile in one transaction.
func (s *LawyerService) Register(ctx context.Context, req LawyerRegistration) (*models.User, error) {
	req.FirebaseID = strings.TrimSpace(req.FirebaseID)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.valid.Struct(req); err != nil {
		return nil, lawyerValidationError(err)
	}
	if err := checkAvailable(ctx, s.store, req.Email, req.FirebaseID); err != nil {
		return nil, err
	}

	hash, err := registration.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirebaseID:   req.FirebaseID,
		Email:        req.Email,
		Role:         models.RoleLawyer,
		FirstName:    nilIfEmpty(req.FirstName),
		LastName:     nilIfEmpty(req.LastName),
		PhoneNumber:  optional(""),
		BusinessName: optional(""),
		PasswordHash: hash,
	}
	lawyer := &models.Lawyer{Specialization: pq.StringArray{}}
	if err := s.store.CreateLawyerAccount(ctx, user, lawyer); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create lawyer account: %w", err)
	}
	user.Lawyer = lawyer

	s.invalidate(ctx)
	if err := s.events.LawyerRegistered(ctx, events.LawyerRegistered{
		LawyerID:   lawyer.LawyerID,
		FirebaseID: user.FirebaseID,
		Email:      user.Email,
		CreatedAt:  user.CreatedAt,
	}); err != nil {
		s.metrics.EventFailed("lawyer.registered")
		slog.WarnContext(ctx, "lawyer registered event not published", "lawyer_id", lawyer.LawyerID, "error", err)
	}
	return user, nil
}

func lawyerValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field, msg := fe.Field(), "Missing required fields (firebaseId, email)"
	switch fe.Tag() {
	case "email":
		field, msg = "email", "Invalid email address."
	case "min":
		field, msg = "password", fmt.Sprintf("Password must be at least %d characters.", registration.MinPasswordLength)
	case "max":
		field, msg = "password", fmt.Sprintf("Password must be at most %d characters.", registration.MaxPasswordLength)
	}
	return &registration.ValidationError{Step: registration.StepAccount, Fields: []registration.FieldError{{Field: field, Message: msg}}}
}

type ProfileUpdate struct {
	User   store.UserPatch
	Lawyer store.LawyerPatch
}

// UpdateProfile changes user and profile fields together. A LAWYER user
// without a profile gets one, which is how onboarding completes.
func (s *LawyerService) UpdateProfile(ctx context.Context, firebaseID string, upd ProfileUpdate) (*models.User, *models.Lawyer, error) {
	user, err := s.store.GetUserByFirebaseID(ctx, firebaseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if user.Role != models.RoleLawyer {
		return nil, nil, ErrLawyerNotFound
	}

	if upd.Lawyer.Specialization != nil {
		specs := normalizeSpecializations(*upd.Lawyer.Specialization)
		upd.Lawyer.Specialization = &specs
	}

	u, l, err := s.store.UpdateLawyerProfile(ctx, user.UserID, upd.User, upd.Lawyer)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("update lawyer profile: %w", err)
	}
	s.invalidate(ctx)
	return u, l, nil
}

// normalizeSpecializations gives the list set semantics: trimmed, no blanks,
// no repeats, first occurrence wins.
func normalizeSpecializations(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (s *LawyerService) SetVerification(ctx context.Context, lawyerID uint, verified bool) (*models.Lawyer, error) {
	l, err := s.store.SetLawyerVerification(ctx, lawyerID, verified)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLawyerNotFound
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return l, nil
}

// AttachVerificationDocument uploads the file and records its URL on the profile.
func (s *LawyerService) AttachVerificationDocument(ctx context.Context, firebaseID string, doc storage.Document) (*models.Lawyer, error) {
	if !documentTypes[doc.ContentType] || doc.Size <= 0 || doc.Size > maxDocumentSize {
		return nil, ErrInvalidDocument
	}
	user, err := s.GetByFirebaseID(ctx, firebaseID)
	if err != nil {
		return nil, err
	}
	doc.LawyerID = user.UserID

	url, err := s.docs.PutVerificationDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("store verification document: %w", err)
	}
	l, err := s.store.SetVerificationDocument(ctx, user.UserID, url)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLawyerNotFound
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return l, nil
}

func (s *LawyerService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "directory cache invalidation failed", "error", err)
	}
}

// checkAvailable reports which unique key is already taken, email first.
func checkAvailable(ctx context.Context, st store.Store, email, firebaseID string) error {
	if _, err := st.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := st.GetUserByFirebaseID(ctx, firebaseID); err == nil {
		return ErrFirebaseIDTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func optional(s string) *string {
	return &s
}
