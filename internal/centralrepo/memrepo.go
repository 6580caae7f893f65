package centralrepo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crosshatch/internal/correlate"
)

// MemRepo is an in-memory Repo for tests. Implements Repo.
type MemRepo struct {
	mu     sync.Mutex
	types  map[correlate.TypeID]correlate.Type
	cases  map[string]string // uuid -> name
	rows   []*Occurrence
	nextID int64
}

// NewMemRepo returns an in-memory repository seeded with the default types.
func NewMemRepo() *MemRepo {
	types := make(map[correlate.TypeID]correlate.Type)
	for _, t := range correlate.DefaultTypes() {
		types[t.ID] = t
	}
	return &MemRepo{
		types: types,
		cases: make(map[string]string),
	}
}

// TypeByID implements correlate.Registry.
func (m *MemRepo) TypeByID(id correlate.TypeID) (correlate.Type, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.types[id]
	if !ok {
		return correlate.Type{}, fmt.Errorf("unknown correlation type %d", int(id))
	}
	return t, nil
}

// ListTypes implements Repo.
func (m *MemRepo) ListTypes() ([]correlate.Type, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]correlate.Type, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// EnsureCase implements Repo.
func (m *MemRepo) EnsureCase(caseUUID, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caseUUID == "" {
		caseUUID = uuid.NewString()
	}
	m.cases[caseUUID] = name
	return caseUUID, nil
}

// AddEntry implements Repo.
func (m *MemRepo) AddEntry(e correlate.Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Value == "" {
		return 0, errors.New("entry value is empty")
	}
	if e.CaseUUID == "" {
		return 0, errors.New("entry has no case uuid")
	}
	if _, ok := m.types[e.Type]; !ok {
		return 0, fmt.Errorf("unknown correlation type %d", int(e.Type))
	}
	m.nextID++
	m.rows = append(m.rows, &Occurrence{
		ID:           m.nextID,
		Type:         e.Type,
		Value:        e.Value,
		CaseUUID:     e.CaseUUID,
		CaseName:     m.cases[e.CaseUUID],
		DataSourceID: e.DataSourceID,
		FilePath:     e.FilePath,
		FileObjID:    e.FileObjID,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return m.nextID, nil
}

// FindByTypeValue implements Repo.
func (m *MemRepo) FindByTypeValue(t correlate.TypeID, value string) ([]*Occurrence, error) {
	typ, err := m.TypeByID(t)
	if err != nil {
		return nil, err
	}
	normalized, err := typ.Normalize(value)
	if err != nil {
		return nil, fmt.Errorf("normalize search value: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Occurrence
	for _, o := range m.rows {
		if o.Type == t && o.Value == normalized {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CountsByType implements Repo.
func (m *MemRepo) CountsByType() (map[correlate.TypeID]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[correlate.TypeID]int64)
	for _, o := range m.rows {
		out[o.Type]++
	}
	return out, nil
}
