// Package seed fills a store with fake clients, lawyers and conversations for
// local development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/registration"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/lib/pq"
)

var Specializations = []string{
	"Contract Law",
	"Business Law",
	"Real Estate Law",
	"Intellectual Property Law",
	"Family Law",
	"Criminal Law",
	"Tax Law",
	"Immigration Law",
}

type Options struct {
	Clients int
	Lawyers int
	// Chats is the number of client/lawyer pairs that get a conversation.
	Chats int
	// Replies is the maximum number of follow-up messages per conversation.
	Replies int
}

type Result struct {
	Clients  int
	Lawyers  int
	Chats    int
	Messages int
}

type Seeder struct {
	store store.Store
	users *services.UserService
	chats *services.ChatService
	fake  *gofakeit.Faker
}

// New seeds the faker with seed so runs are reproducible. Zero picks a
// random seed.
func New(st store.Store, users *services.UserService, chats *services.ChatService, seed int64) *Seeder {
	return &Seeder{store: st, users: users, chats: chats, fake: gofakeit.New(seed)}
}

func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	clients := make([]uint, 0, opts.Clients)
	for i := 0; i < opts.Clients; i++ {
		u, err := s.client(ctx, i)
		if err != nil {
			return res, fmt.Errorf("seed client %d: %w", i, err)
		}
		clients = append(clients, u.UserID)
		res.Clients++
	}

	lawyers := make([]uint, 0, opts.Lawyers)
	for i := 0; i < opts.Lawyers; i++ {
		u, err := s.lawyer(ctx, i)
		if err != nil {
			return res, fmt.Errorf("seed lawyer %d: %w", i, err)
		}
		lawyers = append(lawyers, u.UserID)
		res.Lawyers++
	}

	if len(clients) == 0 || len(lawyers) == 0 {
		return res, nil
	}
	for i := 0; i < opts.Chats; i++ {
		client := clients[s.fake.Number(0, len(clients)-1)]
		lawyer := lawyers[s.fake.Number(0, len(lawyers)-1)]

		first, err := s.chats.SendFirstMessage(ctx, client, lawyer, s.fake.Question())
		if err != nil {
			return res, fmt.Errorf("seed chat %d: %w", i, err)
		}
		if first.Created {
			res.Chats++
		}
		res.Messages++

		senders := [2]uint{lawyer, client}
		replies := s.fake.Number(0, opts.Replies)
		for r := 0; r < replies; r++ {
			if _, err := s.chats.SendMessage(ctx, first.Chat.ChatID, senders[r%2], s.fake.Sentence(8)); err != nil {
				return res, fmt.Errorf("seed reply in chat %d: %w", first.Chat.ChatID, err)
			}
			res.Messages++
		}
	}

	slog.Info("seed complete",
		"clients", res.Clients,
		"lawyers", res.Lawyers,
		"chats", res.Chats,
		"messages", res.Messages,
	)
	return res, nil
}

// client registers through the same validation as the public sign-up flow.
func (s *Seeder) client(ctx context.Context, i int) (*models.User, error) {
	f := s.fake
	d := registration.Draft{
		FirebaseID: f.UUID(),
		Email:      fmt.Sprintf("client%d.%s", i, f.Email()),
		Role:       string(models.RoleIndividual),
		FirstName:  f.FirstName(),
		LastName:   f.LastName(),
		City:       f.City(),
		State:      f.State(),
		Country:    f.Country(),
	}
	if f.Number(1, 4) == 1 {
		d.Role = string(models.RoleBusiness)
		d.BusinessName = f.Company()
	}
	for _, p := range registration.PreferenceOptions {
		if f.Bool() {
			d.Preferences = append(d.Preferences, p)
		}
	}
	return s.users.Register(ctx, d)
}

// lawyer writes straight to the store since ratings have no public write path.
func (s *Seeder) lawyer(ctx context.Context, i int) (*models.User, error) {
	f := s.fake
	first, last := f.FirstName(), f.LastName()
	city := f.City()
	user := &models.User{
		FirebaseID:   f.UUID(),
		Email:        fmt.Sprintf("lawyer%d.%s", i, f.Email()),
		Role:         models.RoleLawyer,
		FirstName:    &first,
		LastName:     &last,
		City:         city,
		State:        f.State(),
		Country:      f.Country(),
		Location:     city,
		PasswordHash: models.PasswordMarkerFirebase,
	}
	lawyer := &models.Lawyer{
		ProfileBio:          f.Paragraph(1, 3, 12, " "),
		Specialization:      pq.StringArray(s.specializations()),
		CredentialsVerified: f.Number(1, 3) != 1,
	}
	if f.Number(1, 5) != 1 {
		rating := math.Round(f.Float64Range(2.5, 5)*100) / 100
		lawyer.Rating = &rating
		lawyer.RatingCount = f.Number(1, 250)
	}

	if err := s.store.CreateLawyerAccount(ctx, user, lawyer); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, services.ErrAccountExists
		}
		return nil, err
	}
	user.Lawyer = lawyer
	return user, nil
}

func (s *Seeder) specializations() []string {
	n := s.fake.Number(1, 3)
	picked := make([]string, 0, n)
	for len(picked) < n {
		area := s.fake.RandomString(Specializations)
		if !contains(picked, area) {
			picked = append(picked, area)
		}
	}
	return picked
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
