package domain

import "time"

// PetType is an entry in the shared catalog of animal kinds ("cat", "dog", ...).
// Types are reference data: loaded from storage and never modified.
type PetType struct {
	ID   int
	Name string
}

// Pet is an animal registered to exactly one Holder.
// OwnerID is a back-reference only; the Holder owns the Pet, not the reverse.
type Pet struct {
	ID        int
	Name      string
	BirthDate time.Time
	Type      PetType
	OwnerID   int
	Visits    []*Visit
}

// IsNew reports whether the pet has not been persisted yet.
func (p *Pet) IsNew() bool {
	return p.ID == 0
}

// AddVisit appends visit to the pet's history. A zero Date is left for the
// caller to fill; use NewVisit to get one dated today.
func (p *Pet) AddVisit(visit *Visit) {
	visit.PetID = p.ID
	p.Visits = append(p.Visits, visit)
}
