package handler

import (
	"fmt"
	"net/http"
)

// CreatePet handles POST /holders/{holderId}/pets.
func (s *Server) CreatePet(w http.ResponseWriter, r *http.Request) {
	holderID, err := pathID(r, "holderId")
	if err != nil {
		badRequest(w, err)
		return
	}
	var body PetRequest
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	pet, err := s.holders.AddPet(r.Context(), holderID, body.toInput())
	if err != nil {
		s.fail(w, r, err, "holder not found")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/pets/%d", holderPath(holderID), pet.ID))
	writeJSON(w, http.StatusCreated, petToResponse(pet))
}

// UpdatePet handles PUT /holders/{holderId}/pets/{petId}.
func (s *Server) UpdatePet(w http.ResponseWriter, r *http.Request) {
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
	var body PetRequest
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	pet, err := s.holders.UpdatePet(r.Context(), holderID, petID, body.toInput())
	if err != nil {
		s.fail(w, r, err, "holder or pet not found")
		return
	}
	writeJSON(w, http.StatusOK, petToResponse(pet))
}
