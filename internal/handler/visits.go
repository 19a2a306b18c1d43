package handler

import "net/http"

// CreateVisit handles POST /holders/{holderId}/pets/{petId}/visits.
func (s *Server) CreateVisit(w http.ResponseWriter, r *http.Request) {
	holderID, err := pathID(r, "holderId")
	if err != nil {
		badRequest(w, err)
		return
	}
	petID, err := pathID(r, "petId")
	if err != nil {
		badRequest(w, err)
		return
	}
	var body VisitRequest
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	visit, err := s.holders.AddVisit(r.Context(), holderID, petID, body.toInput())
	if err != nil {
		s.fail(w, r, err, "holder or pet not found")
		return
	}
	writeJSON(w, http.StatusCreated, visitToResponse(visit))
}
