package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user User
		want string
	}{
		{"person", User{FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")}, "Ada Lovelace"},
		{"first only", User{FirstName: strPtr("Ada")}, "Ada"},
		{"business", User{BusinessName: strPtr("Acme LLC")}, "Acme LLC"},
		{"empty", User{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.user.DisplayName())
		})
	}
}

func TestHasAnySpecialization(t *testing.T) {
	l := Lawyer{Specialization: []string{"Tax Law", "Family Law"}}
	assert.True(t, l.HasAnySpecialization(nil))
	assert.True(t, l.HasAnySpecialization([]string{"Criminal Law", "Family Law"}))
	assert.False(t, l.HasAnySpecialization([]string{"Criminal Law"}))
}

func TestChatParticipantsAndRoles(t *testing.T) {
	c := Chat{UserID: 1, LawyerID: 2}
	assert.True(t, c.HasParticipant(1))
	assert.True(t, c.HasParticipant(2))
	assert.False(t, c.HasParticipant(3))

	assert.True(t, RoleLawyer.Valid())
	assert.False(t, Role("ADMIN").Valid())
}
