package service

import (
	"strings"

	"github.com/petclinic/records/internal/domain"
)

// maxTelephoneDigits is the longest telephone number a holder may have.
const maxTelephoneDigits = 10

// validateHolder enforces the required holder fields and the telephone format.
// in must already be normalized.
func validateHolder(in HolderInput) error {
	v := &domain.ValidationError{}
	required(v, "firstName", in.FirstName)
	required(v, "lastName", in.LastName)
	required(v, "address", in.Address)
	required(v, "city", in.City)
	if required(v, "telephone", in.Telephone) && !isDigits(in.Telephone, maxTelephoneDigits) {
		v.Reject("telephone", domain.CodeDigits, "numeric value out of bounds (<10 digits>.<0 digits> expected)")
	}
	return v.Err()
}

// validatePet checks the pet fields and resolves the type name against types.
// It returns the matching type, or the zero PetType after rejecting the field.
func validatePet(v *domain.ValidationError, in PetInput, types []domain.PetType) domain.PetType {
	required(v, "name", in.Name)
	if in.BirthDate.IsZero() {
		v.Reject("birthDate", domain.CodeRequired, "is required")
	}
	if !required(v, "type", in.Type) {
		return domain.PetType{}
	}
	for _, pt := range types {
		if strings.EqualFold(pt.Name, in.Type) {
			return pt
		}
	}
	v.Reject("type", domain.CodeUnknown, "unknown pet type "+in.Type)
	return domain.PetType{}
}

// required rejects an empty value and reports whether it was present.
func required(v *domain.ValidationError, field, value string) bool {
	if value == "" {
		v.Reject(field, domain.CodeRequired, "must not be empty")
		return false
	}
	return true
}

func isDigits(s string, max int) bool {
	if len(s) > max {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
