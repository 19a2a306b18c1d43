package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// pathID binds the integer path parameter name.
func pathID(r *http.Request, name string) (int, error) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return 0, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return id, nil
}

// searchParams are the query parameters of GET /holders.
type searchParams struct {
	LastName *string
	Page     *int
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "lastName", q, &p.LastName); err != nil {
		return p, fmt.Errorf("invalid format for parameter lastName: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &p.Page); err != nil {
		return p, fmt.Errorf("invalid format for parameter page: %w", err)
	}
	return p, nil
}

// errBodyTooLarge is returned by decodeBody when the body exceeds the limit
// set by the max body size middleware.
var errBodyTooLarge = errors.New("request body too large")

// decodeBody decodes the JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// badRequest writes the response for a request rejected while binding.
func badRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, requestBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
}
