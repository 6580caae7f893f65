package centralrepo

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"crosshatch/internal/correlate"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default relative path for the repository SQLite DB.
// Resolve against cwd or workspace root; Open() creates the parent dir.
const DefaultDBPath = ".crosshatch/centralrepo.db"

func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// SqlRepo implements Repo with SQLite.
type SqlRepo struct {
	db *sql.DB
	// types is loaded once at open: names from the table, normalization
	// rules from the built-in descriptors keyed by id.
	types map[correlate.TypeID]correlate.Type
}

// Open opens or creates a central repository at path, runs migrations, and
// seeds the default correlation types.
func Open(path string) (*SqlRepo, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	r := &SqlRepo{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := r.seedTypes(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := r.loadTypes(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SqlRepo) migrate() error {
	var tableCount int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		if _, err := r.db.Exec(repoSchemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := r.db.Exec("INSERT INTO schema_version(version) VALUES(?)", repoSchemaVersion1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	var v int
	if err := r.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != repoSchemaVersion1 {
		return fmt.Errorf("unknown repo schema version %d", v)
	}
	return nil
}

func (r *SqlRepo) seedTypes() error {
	for _, t := range correlate.DefaultTypes() {
		_, err := r.db.Exec(
			"INSERT OR IGNORE INTO correlation_types(id, name, display_name) VALUES(?, ?, ?)",
			int(t.ID), t.Name, t.DisplayName,
		)
		if err != nil {
			return fmt.Errorf("seed type %s: %w", t.Name, err)
		}
	}
	return nil
}

func (r *SqlRepo) loadTypes() error {
	defaults := make(map[correlate.TypeID]correlate.Type)
	for _, t := range correlate.DefaultTypes() {
		defaults[t.ID] = t
	}
	rows, err := r.db.Query("SELECT id, name, display_name FROM correlation_types ORDER BY id")
	if err != nil {
		return fmt.Errorf("load types: %w", err)
	}
	defer rows.Close()
	r.types = make(map[correlate.TypeID]correlate.Type)
	for rows.Next() {
		var id int
		var name, display string
		if err := rows.Scan(&id, &name, &display); err != nil {
			return fmt.Errorf("scan type: %w", err)
		}
		tid := correlate.TypeID(id)
		if d, ok := defaults[tid]; ok {
			// Table owns the names; the built-in descriptor owns the rule.
			d.Name = name
			d.DisplayName = display
			r.types[tid] = d
		} else {
			r.types[tid] = correlate.Type{ID: tid, Name: name, DisplayName: display}
		}
	}
	return rows.Err()
}

func (r *SqlRepo) Close() error {
	return r.db.Close()
}

// TypeByID implements correlate.Registry.
func (r *SqlRepo) TypeByID(id correlate.TypeID) (correlate.Type, error) {
	t, ok := r.types[id]
	if !ok {
		return correlate.Type{}, fmt.Errorf("unknown correlation type %d", int(id))
	}
	return t, nil
}

// ListTypes implements Repo.
func (r *SqlRepo) ListTypes() ([]correlate.Type, error) {
	out := make([]correlate.Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// EnsureCase implements Repo.
func (r *SqlRepo) EnsureCase(caseUUID, name string) (string, error) {
	if caseUUID == "" {
		caseUUID = uuid.NewString()
	}
	_, err := r.db.Exec(
		"INSERT INTO repo_cases(uuid, name, created_at) VALUES(?, ?, ?) ON CONFLICT(uuid) DO UPDATE SET name = excluded.name",
		caseUUID, name, nowUTC(),
	)
	if err != nil {
		return "", fmt.Errorf("ensure case %s: %w", caseUUID, err)
	}
	return caseUUID, nil
}

// AddEntry implements Repo.
func (r *SqlRepo) AddEntry(e correlate.Entry) (int64, error) {
	if e.Value == "" {
		return 0, errors.New("entry value is empty")
	}
	if e.CaseUUID == "" {
		return 0, errors.New("entry has no case uuid")
	}
	if _, err := r.TypeByID(e.Type); err != nil {
		return 0, err
	}
	res, err := r.db.Exec(
		"INSERT INTO entries(type_id, value, case_uuid, data_source_id, file_path, file_obj_id, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		int(e.Type), e.Value, e.CaseUUID, e.DataSourceID, e.FilePath, e.FileObjID, nowUTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	return res.LastInsertId()
}

// FindByTypeValue implements Repo.
func (r *SqlRepo) FindByTypeValue(t correlate.TypeID, value string) ([]*Occurrence, error) {
	typ, err := r.TypeByID(t)
	if err != nil {
		return nil, err
	}
	normalized, err := typ.Normalize(value)
	if err != nil {
		return nil, fmt.Errorf("normalize search value: %w", err)
	}
	rows, err := r.db.Query(
		`SELECT e.id, e.type_id, e.value, e.case_uuid, c.name, e.data_source_id, e.file_path, e.file_obj_id, e.created_at
		 FROM entries e JOIN repo_cases c ON e.case_uuid = c.uuid
		 WHERE e.type_id = ? AND e.value = ? ORDER BY e.id`,
		int(t), normalized,
	)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	var out []*Occurrence
	for rows.Next() {
		var o Occurrence
		var typID int
		if err := rows.Scan(&o.ID, &typID, &o.Value, &o.CaseUUID, &o.CaseName, &o.DataSourceID, &o.FilePath, &o.FileObjID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		o.Type = correlate.TypeID(typID)
		out = append(out, &o)
	}
	return out, rows.Err()
}

// CountsByType implements Repo.
func (r *SqlRepo) CountsByType() (map[correlate.TypeID]int64, error) {
	rows, err := r.db.Query("SELECT type_id, COUNT(*) FROM entries GROUP BY type_id")
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()
	out := make(map[correlate.TypeID]int64)
	for rows.Next() {
		var id int
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[correlate.TypeID(id)] = n
	}
	return out, rows.Err()
}
