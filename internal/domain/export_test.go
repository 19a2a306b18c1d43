package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petclinic/records/internal/domain"
)

func TestRosterRows_OneRowPerPet(t *testing.T) {
	h := holderWithPets()
	h.Pets[0].BirthDate = time.Date(2012, 9, 4, 0, 0, 0, 0, time.UTC)
	h.Pets[0].Type = domain.PetType{ID: 1, Name: "cat"}

	rows := domain.RosterRows(h)

	require.Len(t, rows, 2)
	assert.Equal(t, domain.RosterRow{
		HolderID:     6,
		FirstName:    "Jean",
		LastName:     "Coleman",
		PetID:        7,
		PetName:      "Samantha",
		PetBirthDate: time.Date(2012, 9, 4, 0, 0, 0, 0, time.UTC),
		PetType:      "cat",
	}, rows[0])
	assert.Equal(t, "Max", rows[1].PetName)
	assert.Equal(t, "Coleman", rows[1].LastName)
}

func TestRosterRows_HolderWithoutPets(t *testing.T) {
	h := &domain.Holder{ID: 10, FirstName: "Carlos", LastName: "Estaban", City: "Waunakee"}

	rows := domain.RosterRows(h)

	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].HolderID)
	assert.Equal(t, "Waunakee", rows[0].City)
	assert.Zero(t, rows[0].PetID)
	assert.Empty(t, rows[0].PetName)
}
