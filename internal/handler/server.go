// Package handler implements the HTTP handlers for the clinic records API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, holders.go, pets.go, visits.go, export.go) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/petclinic/records/internal/domain"
	"github.com/petclinic/records/internal/service"
)

// HolderServicer defines the business operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type HolderServicer interface {
	PetTypes(ctx context.Context) ([]domain.PetType, error)
	Search(ctx context.Context, lastName string, page int) (domain.Page[*domain.Holder], error)
	Get(ctx context.Context, id int) (*domain.Holder, error)
	Create(ctx context.Context, in service.HolderInput) (*domain.Holder, error)
	Update(ctx context.Context, id int, in service.HolderInput) (*domain.Holder, error)
	AddPet(ctx context.Context, holderID int, in service.PetInput) (*domain.Pet, error)
	UpdatePet(ctx context.Context, holderID, petID int, in service.PetInput) (*domain.Pet, error)
	AddVisit(ctx context.Context, holderID, petID int, in service.VisitInput) (*domain.Visit, error)
}

// ExportServicer produces the flat holder roster served by GET /export.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.RosterRow, error)
}

// Server serves every API endpoint. Wire it in main via Register.
type Server struct {
	holders HolderServicer
	export  ExportServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(holders HolderServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{holders: holders, export: export, log: log}
}
