// Package registration validates the three-step client sign-up flow.
//
// A State is a value: every transition returns a new State and never mutates
// the receiver, so a half-finished form can be resumed, replayed or rolled back.
package registration

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type Step int

const (
	StepAccount     Step = 1
	StepLocation    Step = 2
	StepPreferences Step = 3
)

func (s Step) Valid() bool {
	return s >= StepAccount && s <= StepPreferences
}

const MinPasswordLength = 6

// MaxPasswordLength is the most bcrypt will hash.
const MaxPasswordLength = 72

const (
	DefaultCity    = "Unknown city"
	DefaultState   = "Unknown state"
	DefaultCountry = "Unknown country"
)

// PreferenceOptions is the closed set of preferences a client may opt into.
var PreferenceOptions = []string{
	"Receive email notifications",
	"Receive SMS notifications",
	"Receive in-app notifications",
	"Interested in Contract Law",
	"Interested in Business Law",
	"Interested in Real Estate Law",
	"Interested in Intellectual Property Law",
	"Interested in Family Law",
	"Interested in Criminal Law",
}

// Draft is everything the form has collected so far.
type Draft struct {
	FirebaseID   string   `json:"firebaseId" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Role         string   `json:"role" validate:"required"`
	FirstName    string   `json:"first_name,omitempty"`
	LastName     string   `json:"last_name,omitempty"`
	BusinessName string   `json:"business_name,omitempty"`
	Password     string   `json:"password,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Country      string   `json:"country,omitempty"`
	Location     string   `json:"location,omitempty"`
	Preferences  []string `json:"preferences,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Step   Step
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("step %d is invalid", e.Step)
	}
	return e.Fields[0].Message
}

var validate = validator.New()

type State struct {
	step  Step
	draft Draft
}

func Start(d Draft) State {
	return State{step: StepAccount, draft: d}
}

func (s State) Step() Step { return s.step }
func (s State) Draft() Draft { return s.draft }

// WithDraft replaces the collected data without moving.
func (s State) WithDraft(d Draft) State {
	return State{step: s.step, draft: d}
}

// Advance validates the current step and moves to the next one. On the last
// step it only validates.
func (s State) Advance() (State, error) {
	d, err := checkStep(s.step, s.draft)
	if err != nil {
		return s, err
	}
	next := s.step
	if next < StepPreferences {
		next++
	}
	return State{step: next, draft: d}, nil
}

func (s State) Back() State {
	if s.step == StepAccount {
		return s
	}
	return State{step: s.step - 1, draft: s.draft}
}

// Complete validates every step in order and returns the normalized draft.
func (s State) Complete() (Draft, error) {
	return ValidateThrough(s.draft, StepPreferences)
}

// ValidateThrough runs steps 1..last in order and stops at the first failure.
func ValidateThrough(d Draft, last Step) (Draft, error) {
	var err error
	for step := StepAccount; step <= last; step++ {
		if d, err = checkStep(step, d); err != nil {
			return d, err
		}
	}
	return d, nil
}

func checkStep(step Step, d Draft) (Draft, error) {
	switch step {
	case StepAccount:
		return checkAccount(d)
	case StepLocation:
		return fillLocation(d), nil
	case StepPreferences:
		return checkPreferences(d)
	}
	return d, &ValidationError{Step: step, Fields: []FieldError{{Field: "step", Message: fmt.Sprintf("unknown step %d", step)}}}
}

func checkAccount(d Draft) (Draft, error) {
	d.FirebaseID = strings.TrimSpace(d.FirebaseID)
	d.Email = strings.TrimSpace(d.Email)
	d.Role = strings.ToUpper(strings.TrimSpace(d.Role))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.BusinessName = strings.TrimSpace(d.BusinessName)

	fail := func(field, msg string) (Draft, error) {
		return d, &ValidationError{Step: StepAccount, Fields: []FieldError{{Field: field, Message: msg}}}
	}

	if err := validate.Struct(d); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return d, err
		}
		for _, fe := range verrs {
			if fe.Tag() == "email" {
				return fail("email", "Invalid email address.")
			}
		}
		return fail(verrs[0].Field(), "Missing required fields (firebaseId, email, role)")
	}

	switch models.Role(d.Role) {
	case models.RoleIndividual:
		if d.FirstName == "" || d.LastName == "" {
			return fail("first_name", "First name and last name are required for individuals.")
		}
		d.BusinessName = ""
	case models.RoleBusiness:
		if d.BusinessName == "" {
			return fail("business_name", "Business name is required for businesses.")
		}
		d.FirstName, d.LastName = "", ""
	default:
		return fail("role", `Invalid role. Must be "INDIVIDUAL" or "BUSINESS".`)
	}

	if d.Password != "" && len(d.Password) < MinPasswordLength {
		return fail("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	if len(d.Password) > MaxPasswordLength {
		return fail("password", fmt.Sprintf("Password must be at most %d characters.", MaxPasswordLength))
	}
	return d, nil
}

func fillLocation(d Draft) Draft {
	d.City = orDefault(d.City, DefaultCity)
	d.State = orDefault(d.State, DefaultState)
	d.Country = orDefault(d.Country, DefaultCountry)
	d.Location = orDefault(d.Location, d.City)
	return d
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func checkPreferences(d Draft) (Draft, error) {
	seen := make(map[string]bool, len(d.Preferences))
	out := make([]string, 0, len(d.Preferences))
	for _, p := range d.Preferences {
		if !IsPreferenceOption(p) {
			return d, &ValidationError{Step: StepPreferences, Fields: []FieldError{{
				Field: "preferences", Message: "Invalid preference: " + p,
			}}}
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	d.Preferences = out
	return d, nil
}

func IsPreferenceOption(p string) bool {
	for _, opt := range PreferenceOptions {
		if opt == p {
			return true
		}
	}
	return false
}

// PreferenceMap is the stored form: every selected preference maps to true.
func PreferenceMap(prefs []string) map[string]bool {
	out := make(map[string]bool, len(prefs))
	for _, p := range prefs {
		out[p] = true
	}
	return out
}

// HashPassword returns a bcrypt hash, or the identity-provider marker when
// no password was given.
func HashPassword(password string) (string, error) {
	if password == "" {
		return models.PasswordMarkerFirebase, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
