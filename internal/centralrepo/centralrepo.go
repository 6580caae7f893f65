// Package centralrepo is the cross-case correlation repository: the type
// registry plus persisted sightings of correlation values, so the same
// real-world entity (phone, device, hash) can be found across unrelated
// cases. Implementation is SQLite or in-memory.
package centralrepo

import "crosshatch/internal/correlate"

// Occurrence is one recorded sighting of a correlation value in some case.
type Occurrence struct {
	ID           int64
	Type         correlate.TypeID
	Value        string
	CaseUUID     string
	CaseName     string
	DataSourceID int64
	FilePath     string
	FileObjID    int64
	CreatedAt    string
}

// Repo is the central repository facade. It implements correlate.Registry,
// so an extractor can resolve type descriptors straight from it.
type Repo interface {
	correlate.Registry

	// ListTypes returns all registered correlation types ordered by id.
	ListTypes() ([]correlate.Type, error)
	// EnsureCase registers a case by UUID, generating one when empty.
	// Returns the effective UUID. Idempotent for a known UUID.
	EnsureCase(uuid, name string) (string, error)
	// AddEntry records a sighting. The entry's case must be registered.
	AddEntry(e correlate.Entry) (int64, error)
	// FindByTypeValue returns all sightings of a value across cases. The
	// raw value is normalized through the type descriptor before lookup.
	FindByTypeValue(t correlate.TypeID, value string) ([]*Occurrence, error)
	// CountsByType reports how many sightings each type has.
	CountsByType() (map[correlate.TypeID]int64, error)
}
