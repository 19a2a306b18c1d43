package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petclinic/records/openapi"
)

// Register mounts every API route on r. Middleware is the caller's concern.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)
	r.Get("/pettypes", s.ListPetTypes)
	r.Get("/export", s.GetExport)

	r.Route("/holders", func(r chi.Router) {
		r.Get("/", s.ListHolders)
		r.Post("/", s.CreateHolder)

		r.Route("/{holderId}", func(r chi.Router) {
			r.Get("/", s.GetHolder)
			r.Put("/", s.UpdateHolder)
			r.Post("/pets", s.CreatePet)
			r.Put("/pets/{petId}", s.UpdatePet)
			r.Post("/pets/{petId}/visits", s.CreateVisit)
		})
	})
}

// NewRouter returns a bare chi router with every API route registered.
func NewRouter(s *Server) chi.Router {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// serveOpenAPI handles GET /openapi.yaml with the embedded API document.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.Document)
}
