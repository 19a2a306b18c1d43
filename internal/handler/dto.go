package handler

import (
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/petclinic/records/internal/domain"
	"github.com/petclinic/records/internal/service"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// PetType is the wire form of domain.PetType.
type PetType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Visit is the wire form of domain.Visit.
type Visit struct {
	ID          int                `json:"id"`
	PetID       int                `json:"petId"`
	Date        openapi_types.Date `json:"date"`
	Description string             `json:"description"`
}

// Pet is the wire form of domain.Pet. Type is the pet type name.
type Pet struct {
	ID        int                `json:"id"`
	Name      string             `json:"name"`
	BirthDate openapi_types.Date `json:"birthDate"`
	Type      string             `json:"type"`
	OwnerID   int                `json:"ownerId"`
	Visits    []Visit            `json:"visits"`
}

// Holder is the wire form of domain.Holder.
type Holder struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Telephone string `json:"telephone"`
	Pets      []Pet  `json:"pets"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HolderPage is the body of GET /holders.
type HolderPage struct {
	Data       []Holder   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// HolderRequest is the body of POST /holders and PUT /holders/{holderId}.
type HolderRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Telephone string `json:"telephone"`
}

// PetRequest is the body of the pet create and update endpoints.
type PetRequest struct {
	Name      string              `json:"name"`
	BirthDate *openapi_types.Date `json:"birthDate,omitempty"`
	Type      string              `json:"type"`
}

// VisitRequest is the body of POST /holders/{holderId}/pets/{petId}/visits.
// An omitted date means today.
type VisitRequest struct {
	Date        *openapi_types.Date `json:"date,omitempty"`
	Description string              `json:"description"`
}

// --- mapping helpers --------------------------------------------------------

func (b HolderRequest) toInput() service.HolderInput {
	return service.HolderInput(b)
}

func (b PetRequest) toInput() service.PetInput {
	in := service.PetInput{Name: b.Name, Type: b.Type}
	if b.BirthDate != nil {
		in.BirthDate = b.BirthDate.Time
	}
	return in
}

func (b VisitRequest) toInput() service.VisitInput {
	in := service.VisitInput{Description: b.Description}
	if b.Date != nil {
		d := b.Date.Time
		in.Date = &d
	}
	return in
}

func petTypeToResponse(pt domain.PetType) PetType {
	return PetType{ID: pt.ID, Name: pt.Name}
}

func visitToResponse(v *domain.Visit) Visit {
	return Visit{
		ID:          v.ID,
		PetID:       v.PetID,
		Date:        openapi_types.Date{Time: v.Date},
		Description: v.Description,
	}
}

func petToResponse(p *domain.Pet) Pet {
	visits := make([]Visit, len(p.Visits))
	for i, v := range p.Visits {
		visits[i] = visitToResponse(v)
	}
	return Pet{
		ID:        p.ID,
		Name:      p.Name,
		BirthDate: openapi_types.Date{Time: p.BirthDate},
		Type:      p.Type.Name,
		OwnerID:   p.OwnerID,
		Visits:    visits,
	}
}

func holderToResponse(h *domain.Holder) Holder {
	pets := make([]Pet, len(h.Pets))
	for i, p := range h.Pets {
		pets[i] = petToResponse(p)
	}
	return Holder{
		ID:        h.ID,
		FirstName: h.FirstName,
		LastName:  h.LastName,
		Address:   h.Address,
		City:      h.City,
		Telephone: h.Telephone,
		Pets:      pets,
	}
}

func pageToResponse(p domain.Page[*domain.Holder]) HolderPage {
	data := make([]Holder, len(p.Items))
	for i, h := range p.Items {
		data[i] = holderToResponse(h)
	}
	return HolderPage{
		Data: data,
		Pagination: Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      int(p.Total),
			TotalPages: p.TotalPages(),
		},
	}
}
