package domain

import "time"

// RosterRow is a single row in the holder roster export.
// It is a flat, denormalized view: one row per pet, with holder fields repeated
// for every pet that holder owns. Holders with no pets yield one row with zero
// values for all pet fields.
type RosterRow struct {
	HolderID  int
	FirstName string
	LastName  string
	Address   string
	City      string
	Telephone string

	// Zero values when the holder has no pets.
	PetID        int
	PetName      string
	PetBirthDate time.Time
	PetType      string
}

// RosterRows flattens h into export rows, pets in the holder's order.
func RosterRows(h *Holder) []RosterRow {
	base := RosterRow{
		HolderID:  h.ID,
		FirstName: h.FirstName,
		LastName:  h.LastName,
		Address:   h.Address,
		City:      h.City,
		Telephone: h.Telephone,
	}
	if len(h.Pets) == 0 {
		return []RosterRow{base}
	}
	rows := make([]RosterRow, 0, len(h.Pets))
	for _, p := range h.Pets {
		row := base
		row.PetID = p.ID
		row.PetName = p.Name
		row.PetBirthDate = p.BirthDate
		row.PetType = p.Type.Name
		rows = append(rows, row)
	}
	return rows
}
