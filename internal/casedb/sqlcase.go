package casedb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SqlCase implements Accessor with SQLite.
type SqlCase struct {
	db *sql.DB
}

// Open opens or creates a case database at path and runs migrations.
// Creates the parent directory if it does not exist.
func Open(path string) (*SqlCase, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create case db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlCase{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlCase) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersion1 {
		return fmt.Errorf("unknown case db schema version %d", v)
	}
	return nil
}

func (s *SqlCase) Close() error {
	return s.db.Close()
}

// CreateCase inserts the case record. A UUID is generated when c.UUID is
// empty. Only one case per database is expected.
func (s *SqlCase) CreateCase(c *Case) (int64, error) {
	if c == nil {
		return 0, errors.New("case is nil")
	}
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = nowUTC()
	}
	res, err := s.db.Exec(
		"INSERT INTO cases(uuid, name, created_at) VALUES(?, ?, ?)",
		c.UUID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert case: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

// CreateDataSource inserts a data source row.
func (s *SqlCase) CreateDataSource(ds *DataSource) (int64, error) {
	if ds == nil {
		return 0, errors.New("data source is nil")
	}
	res, err := s.db.Exec(
		"INSERT INTO data_sources(case_id, device_id, name) VALUES(?, ?, ?)",
		ds.CaseID, ds.DeviceID, ds.Name,
	)
	if err != nil {
		return 0, fmt.Errorf("insert data source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	ds.ID = id
	return id, nil
}

// CreateFile inserts a file row.
func (s *SqlCase) CreateFile(f *File) (int64, error) {
	if f == nil {
		return 0, errors.New("file is nil")
	}
	res, err := s.db.Exec(
		"INSERT INTO files(data_source_id, name, parent_path, category, meta_allocated, md5) VALUES(?, ?, ?, ?, ?, ?)",
		f.DataSourceID, f.Name, f.ParentPath, int(f.Category), boolInt(f.MetaAllocated), f.MD5,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	f.ID = id
	return id, nil
}

// CreateArtifact inserts an artifact and its attributes in one transaction.
func (s *SqlCase) CreateArtifact(a *Artifact) (int64, error) {
	if a == nil {
		return 0, errors.New("artifact is nil")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		"INSERT INTO artifacts(type, source_file_id) VALUES(?, ?)",
		int(a.Type), a.SourceFileID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert artifact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, at := range a.Attrs {
		_, err := tx.Exec(
			"INSERT INTO artifact_attributes(artifact_id, type, kind, value_string, value_long, value_time, value_json) VALUES(?, ?, ?, ?, ?, ?, ?)",
			id, int(at.Type), int(at.Kind), at.ValueString, at.ValueLong, at.ValueTime, at.ValueJSON,
		)
		if err != nil {
			return 0, fmt.Errorf("insert attribute: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit artifact: %w", err)
	}
	a.ID = id
	return id, nil
}

// CurrentCase implements Accessor. Errors when the database holds no case.
func (s *SqlCase) CurrentCase() (*Case, error) {
	var c Case
	err := s.db.QueryRow(
		"SELECT id, uuid, name, created_at FROM cases ORDER BY id LIMIT 1",
	).Scan(&c.ID, &c.UUID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("no open case")
	}
	if err != nil {
		return nil, fmt.Errorf("query case: %w", err)
	}
	return &c, nil
}

// ArtifactByID implements Accessor.
func (s *SqlCase) ArtifactByID(id int64) (*Artifact, error) {
	var a Artifact
	var typ int
	err := s.db.QueryRow(
		"SELECT id, type, source_file_id FROM artifacts WHERE id = ?", id,
	).Scan(&a.ID, &typ, &a.SourceFileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query artifact %d: %w", id, err)
	}
	a.Type = ArtifactType(typ)
	if err := s.loadAttrs(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SqlCase) loadAttrs(a *Artifact) error {
	rows, err := s.db.Query(
		"SELECT type, kind, value_string, value_long, value_time, value_json FROM artifact_attributes WHERE artifact_id = ? ORDER BY id",
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("query attributes for artifact %d: %w", a.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var at Attribute
		var typ, kind int
		var vs, vt, vj sql.NullString
		var vl sql.NullInt64
		if err := rows.Scan(&typ, &kind, &vs, &vl, &vt, &vj); err != nil {
			return fmt.Errorf("scan attribute: %w", err)
		}
		at.Type = AttrType(typ)
		at.Kind = ValueKind(kind)
		at.ValueString = nullStr(vs)
		at.ValueTime = nullStr(vt)
		at.ValueJSON = nullStr(vj)
		if vl.Valid {
			at.ValueLong = vl.Int64
		}
		a.Attrs = append(a.Attrs, at)
	}
	return rows.Err()
}

// FileByID implements Accessor.
func (s *SqlCase) FileByID(id int64) (*File, error) {
	f, err := s.scanFile(s.db.QueryRow(
		"SELECT id, data_source_id, name, parent_path, category, meta_allocated, md5 FROM files WHERE id = ?", id,
	))
	if err != nil {
		return nil, fmt.Errorf("query file %d: %w", id, err)
	}
	return f, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SqlCase) scanFile(row rowScanner) (*File, error) {
	var f File
	var cat, alloc int
	var md5 sql.NullString
	err := row.Scan(&f.ID, &f.DataSourceID, &f.Name, &f.ParentPath, &cat, &alloc, &md5)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Category = FileCategory(cat)
	f.MetaAllocated = alloc != 0
	f.MD5 = nullStr(md5)
	return &f, nil
}

// DataSourceByID implements Accessor.
func (s *SqlCase) DataSourceByID(id int64) (*DataSource, error) {
	var ds DataSource
	var dev sql.NullString
	err := s.db.QueryRow(
		"SELECT id, case_id, device_id, name FROM data_sources WHERE id = ?", id,
	).Scan(&ds.ID, &ds.CaseID, &dev, &ds.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query data source %d: %w", id, err)
	}
	ds.DeviceID = nullStr(dev)
	return &ds, nil
}

// ArtifactsByDataSource implements Accessor.
func (s *SqlCase) ArtifactsByDataSource(dsID int64) ([]*Artifact, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.type, a.source_file_id
		 FROM artifacts a JOIN files f ON a.source_file_id = f.id
		 WHERE f.data_source_id = ? ORDER BY a.id`, dsID,
	)
	if err != nil {
		return nil, fmt.Errorf("query artifacts for data source %d: %w", dsID, err)
	}
	defer rows.Close()
	var out []*Artifact
	for rows.Next() {
		var a Artifact
		var typ int
		if err := rows.Scan(&a.ID, &typ, &a.SourceFileID); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		a.Type = ArtifactType(typ)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range out {
		if err := s.loadAttrs(a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FilesByDataSource implements Accessor.
func (s *SqlCase) FilesByDataSource(dsID int64) ([]*File, error) {
	rows, err := s.db.Query(
		"SELECT id, data_source_id, name, parent_path, category, meta_allocated, md5 FROM files WHERE data_source_id = ? ORDER BY id", dsID,
	)
	if err != nil {
		return nil, fmt.Errorf("query files for data source %d: %w", dsID, err)
	}
	defer rows.Close()
	var out []*File
	for rows.Next() {
		f, err := s.scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
