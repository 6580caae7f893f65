package casedb

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemCase is an in-memory Accessor for tests and fixtures. Implements Accessor.
type MemCase struct {
	mu          sync.Mutex
	current     *Case
	dataSources map[int64]*DataSource
	files       map[int64]*File
	artifacts   map[int64]*Artifact
	nextID      int64
}

// NewMemCase returns an empty in-memory case database.
func NewMemCase() *MemCase {
	return &MemCase{
		dataSources: make(map[int64]*DataSource),
		files:       make(map[int64]*File),
		artifacts:   make(map[int64]*Artifact),
	}
}

func (m *MemCase) nextIDLocked() int64 {
	m.nextID++
	return m.nextID
}

// SetCase installs the open case. A UUID is generated when c.UUID is empty.
func (m *MemCase) SetCase(c *Case) *Case {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	if cp.ID == 0 {
		cp.ID = m.nextIDLocked()
	}
	if cp.UUID == "" {
		cp.UUID = uuid.NewString()
	}
	m.current = &cp
	return &cp
}

// AddDataSource stores a data source and assigns its id.
func (m *MemCase) AddDataSource(ds *DataSource) *DataSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ds
	if cp.ID == 0 {
		cp.ID = m.nextIDLocked()
	}
	m.dataSources[cp.ID] = &cp
	return &cp
}

// AddFile stores a file and assigns its id.
func (m *MemCase) AddFile(f *File) *File {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	if cp.ID == 0 {
		cp.ID = m.nextIDLocked()
	}
	m.files[cp.ID] = &cp
	return &cp
}

// AddArtifact stores an artifact and assigns its id.
func (m *MemCase) AddArtifact(a *Artifact) *Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.Attrs = append([]Attribute(nil), a.Attrs...)
	if cp.ID == 0 {
		cp.ID = m.nextIDLocked()
	}
	m.artifacts[cp.ID] = &cp
	return &cp
}

// CurrentCase implements Accessor.
func (m *MemCase) CurrentCase() (*Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, errors.New("no open case")
	}
	cp := *m.current
	return &cp, nil
}

// ArtifactByID implements Accessor.
func (m *MemCase) ArtifactByID(id int64) (*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.artifacts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	cp.Attrs = append([]Attribute(nil), a.Attrs...)
	return &cp, nil
}

// FileByID implements Accessor.
func (m *MemCase) FileByID(id int64) (*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

// DataSourceByID implements Accessor.
func (m *MemCase) DataSourceByID(id int64) (*DataSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.dataSources[id]
	if !ok {
		return nil, nil
	}
	cp := *ds
	return &cp, nil
}

// ArtifactsByDataSource implements Accessor.
func (m *MemCase) ArtifactsByDataSource(dsID int64) ([]*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Artifact
	for _, a := range m.artifacts {
		f, ok := m.files[a.SourceFileID]
		if !ok || f.DataSourceID != dsID {
			continue
		}
		cp := *a
		cp.Attrs = append([]Attribute(nil), a.Attrs...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FilesByDataSource implements Accessor.
func (m *MemCase) FilesByDataSource(dsID int64) ([]*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*File
	for _, f := range m.files {
		if f.DataSourceID != dsID {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
