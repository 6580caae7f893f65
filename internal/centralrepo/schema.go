package centralrepo

// repoSchemaVersion1 is the current central repository schema.
const repoSchemaVersion1 = 1

var repoSchemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS correlation_types (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS repo_cases (
	uuid       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	type_id        INTEGER NOT NULL REFERENCES correlation_types(id),
	value          TEXT NOT NULL,
	case_uuid      TEXT NOT NULL REFERENCES repo_cases(uuid),
	data_source_id INTEGER NOT NULL,
	file_path      TEXT NOT NULL DEFAULT '',
	file_obj_id    INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_type_value ON entries(type_id, value);
CREATE INDEX IF NOT EXISTS idx_entries_case ON entries(case_uuid);
`
