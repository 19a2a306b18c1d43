package handler

import "net/http"

// ListPetTypes handles GET /pettypes.
func (s *Server) ListPetTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.holders.PetTypes(r.Context())
	if err != nil {
		s.fail(w, r, err, "pet types not found")
		return
	}

	data := make([]PetType, len(types))
	for i, pt := range types {
		data[i] = petTypeToResponse(pt)
	}
	writeJSON(w, http.StatusOK, data)
}
