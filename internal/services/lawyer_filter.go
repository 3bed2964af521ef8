package services

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
)

// LawyerFilter is the parsed form of a directory query. Everything after
// ParseLawyerFilter works on these typed fields only.
type LawyerFilter struct {
	Search          string
	Specializations []string
	MinRating       *float64
	VerifiedOnly    bool
	Locations       []string
}

// ParseLawyerFilter reads search, specializations, minRating, verifiedOnly and
// location. List parameters may be repeated. Specializations may also be
// comma-joined; locations are taken whole since they can contain commas.
// A minRating that is not a number is ignored and verifiedOnly is on only for
// the literal "true".
func ParseLawyerFilter(q url.Values) LawyerFilter {
	f := LawyerFilter{
		Search:          q.Get("search"),
		Specializations: listParam(q["specializations"], true),
		VerifiedOnly:    q.Get("verifiedOnly") == "true",
		Locations:       listParam(q["location"], false),
	}
	if raw := strings.TrimSpace(q.Get("minRating")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			f.MinRating = &v
		}
	}
	return f
}

func listParam(values []string, splitComma bool) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range values {
		parts := []string{v}
		if splitComma {
			parts = strings.Split(v, ",")
		}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// Criteria is the part of the filter the store evaluates.
func (f LawyerFilter) Criteria() store.LawyerCriteria {
	return store.LawyerCriteria{
		Locations:       f.Locations,
		Specializations: f.Specializations,
		MinRating:       f.MinRating,
		VerifiedOnly:    f.VerifiedOnly,
	}
}

// MatchesSearch is the in-memory pass: a case-insensitive substring of
// "first last" or of the business name.
func (f LawyerFilter) MatchesSearch(u *models.User) bool {
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	fullName := strings.ToLower(deref(u.FirstName) + " " + deref(u.LastName))
	if strings.Contains(fullName, needle) {
		return true
	}
	return strings.Contains(strings.ToLower(deref(u.BusinessName)), needle)
}

// Apply runs the in-memory pass over store results, keeping their order.
func (f LawyerFilter) Apply(users []models.User) []models.User {
	if f.Search == "" {
		return users
	}
	out := make([]models.User, 0, len(users))
	for i := range users {
		if f.MatchesSearch(&users[i]) {
			out = append(out, users[i])
		}
	}
	return out
}

// CacheKey is stable under reordering of list values.
func (f LawyerFilter) CacheKey() string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.MinRating != nil {
		v.Set("minRating", strconv.FormatFloat(*f.MinRating, 'f', -1, 64))
	}
	if f.VerifiedOnly {
		v.Set("verifiedOnly", "true")
	}
	for _, s := range sortedCopy(f.Specializations) {
		v.Add("specializations", s)
	}
	for _, l := range sortedCopy(f.Locations) {
		v.Add("location", l)
	}
	return v.Encode()
}

func sortedCopy(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
