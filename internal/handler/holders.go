package handler

import (
	"fmt"
	"net/http"

	"github.com/petclinic/records/internal/domain"
)

// ListHolders handles GET /holders.
// Supports ?lastName= (prefix, case-sensitive) and ?page= (1-indexed, default 1).
// An empty page answers 404 with a lastName field error. A search that
// matches exactly one holder redirects to that holder.
func (s *Server) ListHolders(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var lastName string
	if params.LastName != nil {
		lastName = *params.LastName
	}
	page := 1
	if params.Page != nil {
		page = *params.Page
	}

	result, err := s.holders.Search(r.Context(), lastName, page)
	if err != nil {
		s.fail(w, r, err, "holders not found")
		return
	}

	switch {
	case result.IsEmpty():
		body := notFoundBody("holders not found")
		body.Error.Fields = []FieldError{{Field: "lastName", Code: domain.CodeNotFound, Message: "not found"}}
		writeJSON(w, http.StatusNotFound, body)
	case result.Total == 1:
		http.Redirect(w, r, holderPath(result.Items[0].ID), http.StatusFound)
	default:
		writeJSON(w, http.StatusOK, pageToResponse(result))
	}
}

// CreateHolder handles POST /holders.
func (s *Server) CreateHolder(w http.ResponseWriter, r *http.Request) {
	var body HolderRequest
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.holders.Create(r.Context(), body.toInput())
	if err != nil {
		s.fail(w, r, err, "holder not found")
		return
	}

	w.Header().Set("Location", holderPath(created.ID))
	writeJSON(w, http.StatusCreated, holderToResponse(created))
}

// GetHolder handles GET /holders/{holderId}.
func (s *Server) GetHolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "holderId")
	if err != nil {
		badRequest(w, err)
		return
	}

	h, err := s.holders.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "holder not found")
		return
	}
	writeJSON(w, http.StatusOK, holderToResponse(h))
}

// UpdateHolder handles PUT /holders/{holderId}.
func (s *Server) UpdateHolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "holderId")
	if err != nil {
		badRequest(w, err)
		return
	}
	var body HolderRequest
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := s.holders.Update(r.Context(), id, body.toInput())
	if err != nil {
		s.fail(w, r, err, "holder not found")
		return
	}
	writeJSON(w, http.StatusOK, holderToResponse(updated))
}

func holderPath(id int) string {
	return fmt.Sprintf("/holders/%d", id)
}
