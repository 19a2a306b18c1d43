// Package domain contains the core data types for the clinic records service.
// This package has no external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"fmt"
	"strings"
)

// Holder is a pet owner and the root of the Holder/Pet/Visit aggregate.
// A Holder owns its Pets exclusively, and each Pet owns its Visits; the whole
// graph is fetched and saved as one unit.
//
// ID is zero until the holder is first saved.
type Holder struct {
	ID        int
	FirstName string
	LastName  string
	Address   string
	City      string
	Telephone string
	Pets      []*Pet
}

// IsNew reports whether the holder has not been persisted yet.
func (h *Holder) IsNew() bool {
	return h.ID == 0
}

// AddPet attaches pet to the holder and points its OwnerID at the holder.
// A transient pet is appended. A persisted pet replaces the entry with the
// same ID, so an edited copy can be put back before saving.
func (h *Holder) AddPet(pet *Pet) {
	pet.OwnerID = h.ID
	if !pet.IsNew() {
		for i, existing := range h.Pets {
			if existing.ID == pet.ID {
				h.Pets[i] = pet
				return
			}
		}
	}
	h.Pets = append(h.Pets, pet)
}

// Pet returns the pet with the given ID, or nil if the holder has none.
func (h *Holder) Pet(id int) *Pet {
	for _, p := range h.Pets {
		if !p.IsNew() && p.ID == id {
			return p
		}
	}
	return nil
}

// PetNamed returns the first pet whose name matches name case-insensitively,
// or nil if there is no match. With mustBeNew set, persisted pets are skipped
// and only pets added since the holder was loaded are considered.
func (h *Holder) PetNamed(name string, mustBeNew bool) *Pet {
	for _, p := range h.Pets {
		if mustBeNew && !p.IsNew() {
			continue
		}
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// AddVisit records visit against the holder's pet with the given ID.
// Returns ErrNotFound if the pet does not belong to this holder.
func (h *Holder) AddVisit(petID int, visit *Visit) error {
	pet := h.Pet(petID)
	if pet == nil {
		return fmt.Errorf("pet %d of holder %d: %w", petID, h.ID, ErrNotFound)
	}
	pet.AddVisit(visit)
	return nil
}
