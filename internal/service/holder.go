// Package service contains the business logic for the clinic records API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/petclinic/records/internal/domain"
	"github.com/petclinic/records/internal/repo"
)

// HolderInput carries the editable fields of a holder.
type HolderInput struct {
	FirstName string
	LastName  string
	Address   string
	City      string
	Telephone string
}

// PetInput carries the editable fields of a pet. Type is a pet type name.
type PetInput struct {
	Name      string
	BirthDate time.Time
	Type      string
}

// VisitInput carries a new visit. A nil Date means today.
type VisitInput struct {
	Date        *time.Time
	Description string
}

// HolderService implements the holder, pet, and visit use cases on top of a
// HolderRepo. Every write follows the same shape: fetch the aggregate, mutate
// it in memory, validate, then save the whole graph.
type HolderService struct {
	repo repo.HolderRepo
	now  func() time.Time
}

// NewHolderService constructs a HolderService backed by the provided HolderRepo.
// now supplies the date for visits created without one; nil means time.Now.
func NewHolderService(r repo.HolderRepo, now func() time.Time) *HolderService {
	if now == nil {
		now = time.Now
	}
	return &HolderService{repo: r, now: now}
}

// PetTypes returns the pet type catalog ordered by name.
func (s *HolderService) PetTypes(ctx context.Context) ([]domain.PetType, error) {
	types, err := s.repo.FindPetTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.PetTypes: %w", err)
	}
	return types, nil
}

// Search returns one page of holders whose last name starts with lastName.
// An empty lastName lists every holder. Pages below 1 are treated as 1.
func (s *HolderService) Search(ctx context.Context, lastName string, page int) (domain.Page[*domain.Holder], error) {
	p := domain.NewPaginationParams(&page, domain.HolderPageSize)
	holders, total, err := s.repo.FindByLastName(ctx, lastName, p)
	if err != nil {
		return domain.Page[*domain.Holder]{}, fmt.Errorf("service.HolderService.Search: %w", err)
	}
	return domain.NewPage(holders, p, total), nil
}

// Get returns the full aggregate of one holder.
// Returns domain.ErrNotFound if no holder with that ID exists.
func (s *HolderService) Get(ctx context.Context, id int) (*domain.Holder, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.Get: %w", err)
	}
	return h, nil
}

// Create validates and persists a new holder.
func (s *HolderService) Create(ctx context.Context, in HolderInput) (*domain.Holder, error) {
	in = in.normalize()
	if err := validateHolder(in); err != nil {
		return nil, err
	}
	h := &domain.Holder{}
	in.applyTo(h)
	if err := s.repo.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("service.HolderService.Create: %w", err)
	}
	return h, nil
}

// Update overwrites the holder's own fields. Pets and visits are untouched.
func (s *HolderService) Update(ctx context.Context, id int, in HolderInput) (*domain.Holder, error) {
	in = in.normalize()
	if err := validateHolder(in); err != nil {
		return nil, err
	}
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.Update: %w", err)
	}
	in.applyTo(h)
	if err := s.repo.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("service.HolderService.Update: %w", err)
	}
	return h, nil
}

// AddPet validates a new pet and saves it under the holder.
// A name clash is only reported against pets that are still unsaved in the
// loaded aggregate.
func (s *HolderService) AddPet(ctx context.Context, holderID int, in PetInput) (*domain.Pet, error) {
	in = in.normalize()
	h, err := s.repo.FindByID(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.AddPet: %w", err)
	}
	types, err := s.repo.FindPetTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.AddPet: %w", err)
	}

	v := &domain.ValidationError{}
	// Only unsaved pets are compared. A freshly loaded holder has none, so with
	// one pet per request this never rejects; it is not a uniqueness guard.
	if in.Name != "" && h.PetNamed(in.Name, true) != nil {
		v.Reject("name", domain.CodeDuplicate, "already exists")
	}
	petType := validatePet(v, in, types)
	if err := v.Err(); err != nil {
		return nil, err
	}

	pet := &domain.Pet{Name: in.Name, BirthDate: domain.Day(in.BirthDate), Type: petType}
	h.AddPet(pet)
	if err := s.repo.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("service.HolderService.AddPet: %w", err)
	}
	return pet, nil
}

// UpdatePet overwrites a pet's name, birth date, and type. Its visits are kept.
// Returns domain.ErrNotFound if the holder or the pet does not exist.
func (s *HolderService) UpdatePet(ctx context.Context, holderID, petID int, in PetInput) (*domain.Pet, error) {
	in = in.normalize()
	h, err := s.repo.FindByID(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.UpdatePet: %w", err)
	}
	pet := h.Pet(petID)
	if pet == nil {
		return nil, fmt.Errorf("service.HolderService.UpdatePet: pet %d of holder %d: %w", petID, holderID, domain.ErrNotFound)
	}
	types, err := s.repo.FindPetTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.UpdatePet: %w", err)
	}

	v := &domain.ValidationError{}
	petType := validatePet(v, in, types)
	if err := v.Err(); err != nil {
		return nil, err
	}

	pet.Name = in.Name
	pet.BirthDate = domain.Day(in.BirthDate)
	pet.Type = petType
	h.AddPet(pet)
	if err := s.repo.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("service.HolderService.UpdatePet: %w", err)
	}
	return pet, nil
}

// AddVisit records a visit for one of the holder's pets.
// Returns domain.ErrNotFound if the holder or the pet does not exist.
func (s *HolderService) AddVisit(ctx context.Context, holderID, petID int, in VisitInput) (*domain.Visit, error) {
	in.Description = strings.TrimSpace(in.Description)
	v := &domain.ValidationError{}
	if in.Description == "" {
		v.Reject("description", domain.CodeRequired, "must not be empty")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	h, err := s.repo.FindByID(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("service.HolderService.AddVisit: %w", err)
	}

	visit := domain.NewVisit(s.now())
	if in.Date != nil {
		visit.Date = domain.Day(*in.Date)
	}
	visit.Description = in.Description
	if err := h.AddVisit(petID, visit); err != nil {
		return nil, fmt.Errorf("service.HolderService.AddVisit: %w", err)
	}
	if err := s.repo.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("service.HolderService.AddVisit: %w", err)
	}
	return visit, nil
}

func (in HolderInput) normalize() HolderInput {
	return HolderInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		Telephone: strings.TrimSpace(in.Telephone),
	}
}

func (in HolderInput) applyTo(h *domain.Holder) {
	h.FirstName = in.FirstName
	h.LastName = in.LastName
	h.Address = in.Address
	h.City = in.City
	h.Telephone = in.Telephone
}

func (in PetInput) normalize() PetInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	return in
}
