package usecase

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// newID mints a sortable unique id for stored entities.
func newID() string { return ulid.Make().String() }

// newPublicID derives a short partner-visible job id from a fresh ulid's
// random tail. Uniqueness is checked by the caller against the store.
func newPublicID() string {
	id := ulid.Make().String()
	return "J" + strings.ToUpper(id[len(id)-7:])
}
