package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/petclinic/records/internal/domain"
)

// Export formats accepted by GET /export?format=.
const (
	exportJSON = "json"
	exportCSV  = "csv"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"holder_id", "first_name", "last_name", "address", "city", "telephone",
	"pet_id", "pet_name", "pet_birth_date", "pet_type",
}

// RosterRow is one line of the JSON roster export. Pet fields are omitted for
// holders without pets.
type RosterRow struct {
	HolderID     int                 `json:"holderId"`
	FirstName    string              `json:"firstName"`
	LastName     string              `json:"lastName"`
	Address      string              `json:"address"`
	City         string              `json:"city"`
	Telephone    string              `json:"telephone"`
	PetID        *int                `json:"petId,omitempty"`
	PetName      *string             `json:"petName,omitempty"`
	PetBirthDate *openapi_types.Date `json:"petBirthDate,omitempty"`
	PetType      *string             `json:"petType,omitempty"`
}

// GetExport handles GET /export.
// It returns every holder and pet as a flat table. Use ?format=csv to receive
// CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		badRequest(w, fmt.Errorf("invalid format for parameter format: %w", err))
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case exportCSV:
			wantCSV = true
		case exportJSON:
		default:
			writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("format must be %s or %s", exportJSON, exportCSV)))
			return
		}
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	out := make([]RosterRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterRowToResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as CSV with a header line.
func writeCSV(w http.ResponseWriter, rows []domain.RosterRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(rosterRowToCSVRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="roster.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func rosterRowToResponse(r domain.RosterRow) RosterRow {
	out := RosterRow{
		HolderID:  r.HolderID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Address:   r.Address,
		City:      r.City,
		Telephone: r.Telephone,
	}
	if r.PetID != 0 {
		out.PetID = &r.PetID
		out.PetName = &r.PetName
		out.PetBirthDate = &openapi_types.Date{Time: r.PetBirthDate}
		out.PetType = &r.PetType
	}
	return out
}

// rosterRowToCSVRecord encodes a row as a flat string slice. Pet columns are
// empty for holders without pets.
func rosterRowToCSVRecord(r domain.RosterRow) []string {
	rec := []string{
		strconv.Itoa(r.HolderID), r.FirstName, r.LastName, r.Address, r.City, r.Telephone,
		"", "", "", "",
	}
	if r.PetID != 0 {
		rec[6] = strconv.Itoa(r.PetID)
		rec[7] = r.PetName
		rec[8] = r.PetBirthDate.Format(openapi_types.DateFormat)
		rec[9] = r.PetType
	}
	return rec
}
