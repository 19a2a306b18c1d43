// Package repo contains all database access logic for the clinic records service.
// HolderRepo is the single gateway between the Holder aggregate and storage;
// it has a Postgres implementation (pgx) and a SQLite implementation (database/sql).
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/petclinic/records/internal/domain"
)

// dateLayout is the text form of DATE columns.
const dateLayout = "2006-01-02"

// HolderRepo defines the persistence operations for the Holder aggregate.
// The service layer depends on this interface, not a concrete implementation,
// which allows the service to be unit-tested with a mock.
type HolderRepo interface {
	// FindPetTypes returns the pet type catalog ordered by name.
	FindPetTypes(ctx context.Context) ([]domain.PetType, error)

	// FindByLastName returns one page of holders whose last name starts with
	// prefix (case-sensitive) and the total number of matches. An empty prefix
	// matches every holder. Pets and their types are loaded; visits are not.
	FindByLastName(ctx context.Context, prefix string, p domain.PaginationParams) ([]*domain.Holder, int64, error)

	// FindByID returns the full aggregate: holder, pets, pet types, and visits.
	// Returns domain.ErrNotFound if no holder with that ID exists.
	FindByID(ctx context.Context, id int) (*domain.Holder, error)

	// Save inserts or updates the holder and every pet and visit it owns in a
	// single transaction. IDs generated for transient entities are written back
	// to the aggregate only once the transaction has committed.
	Save(ctx context.Context, h *domain.Holder) error

	// FindAll returns one page of all holders, loaded like FindByLastName.
	FindAll(ctx context.Context, p domain.PaginationParams) ([]*domain.Holder, int64, error)
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows, allowing
// scan helpers to be reused for both single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// aggregateWriter is one open transaction's view of the four write statements
// Save needs. Insert methods return the generated ID; update methods return
// domain.ErrNotFound when no row has the given ID.
type aggregateWriter interface {
	insertHolder(ctx context.Context, h *domain.Holder) (int, error)
	updateHolder(ctx context.Context, h *domain.Holder) error
	insertPet(ctx context.Context, ownerID int, p *domain.Pet) (int, error)
	updatePet(ctx context.Context, ownerID int, p *domain.Pet) error
	insertVisit(ctx context.Context, petID int, v *domain.Visit) (int, error)
	updateVisit(ctx context.Context, petID int, v *domain.Visit) error
}

// idAssignment is a generated ID waiting for its transaction to commit.
type idAssignment struct {
	target *int
	id     int
}

// idAssignments defers writing generated IDs into the aggregate so a rolled
// back save leaves the caller's entities transient.
type idAssignments []idAssignment

func (a *idAssignments) add(target *int, id int) {
	*a = append(*a, idAssignment{target: target, id: id})
}

func (a idAssignments) apply() {
	for _, as := range a {
		*as.target = as.id
	}
}

// writeAggregate walks the holder graph in collection order, inserting
// transient entities and updating persisted ones through w. It returns the
// IDs to apply after commit.
func writeAggregate(ctx context.Context, w aggregateWriter, h *domain.Holder) (idAssignments, error) {
	var pending idAssignments

	holderID := h.ID
	if h.IsNew() {
		id, err := w.insertHolder(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("insert holder: %w", err)
		}
		holderID = id
		pending.add(&h.ID, id)
	} else if err := w.updateHolder(ctx, h); err != nil {
		return nil, fmt.Errorf("update holder %d: %w", h.ID, err)
	}

	for _, pet := range h.Pets {
		petID := pet.ID
		if pet.IsNew() {
			id, err := w.insertPet(ctx, holderID, pet)
			if err != nil {
				return nil, fmt.Errorf("insert pet %q: %w", pet.Name, err)
			}
			petID = id
			pending.add(&pet.ID, id)
		} else if err := w.updatePet(ctx, holderID, pet); err != nil {
			return nil, fmt.Errorf("update pet %d: %w", pet.ID, err)
		}
		pending.add(&pet.OwnerID, holderID)

		for _, visit := range pet.Visits {
			if visit.IsNew() {
				id, err := w.insertVisit(ctx, petID, visit)
				if err != nil {
					return nil, fmt.Errorf("insert visit for pet %d: %w", petID, err)
				}
				pending.add(&visit.ID, id)
			} else if err := w.updateVisit(ctx, petID, visit); err != nil {
				return nil, fmt.Errorf("update visit %d: %w", visit.ID, err)
			}
			pending.add(&visit.PetID, petID)
		}
	}
	return pending, nil
}

// saveError classifies a failed save: a missing row stays ErrNotFound,
// anything else becomes an opaque ErrPersistence.
func saveError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

// escapeLike escapes the LIKE wildcards in s so it matches literally.
// The query must declare ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// holderIndex maps holder IDs to the holders of a result set so child rows
// can be attached in one pass.
func holderIndex(holders []*domain.Holder) (map[int]*domain.Holder, []int) {
	byID := make(map[int]*domain.Holder, len(holders))
	ids := make([]int, 0, len(holders))
	for _, h := range holders {
		byID[h.ID] = h
		ids = append(ids, h.ID)
	}
	return byID, ids
}

// petIndex is holderIndex for the pets of an aggregate.
func petIndex(h *domain.Holder) (map[int]*domain.Pet, []int) {
	byID := make(map[int]*domain.Pet, len(h.Pets))
	ids := make([]int, 0, len(h.Pets))
	for _, p := range h.Pets {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	return byID, ids
}

// scanHolder maps a single holders row into a domain.Holder.
// Both drivers' no-rows errors become domain.ErrNotFound.
func scanHolder(s scanner) (*domain.Holder, error) {
	var h domain.Holder
	err := s.Scan(&h.ID, &h.FirstName, &h.LastName, &h.Address, &h.City, &h.Telephone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}
