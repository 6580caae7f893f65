package casedb

// schemaVersion1 is the current case database schema.
const schemaVersion1 = 1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS cases (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS data_sources (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id   INTEGER NOT NULL REFERENCES cases(id),
	device_id TEXT,
	name      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	data_source_id INTEGER NOT NULL REFERENCES data_sources(id),
	name           TEXT NOT NULL,
	parent_path    TEXT NOT NULL DEFAULT '',
	category       INTEGER NOT NULL,
	meta_allocated INTEGER NOT NULL DEFAULT 0,
	md5            TEXT
);
CREATE INDEX IF NOT EXISTS idx_files_ds ON files(data_source_id);

CREATE TABLE IF NOT EXISTS artifacts (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	type           INTEGER NOT NULL,
	source_file_id INTEGER NOT NULL REFERENCES files(id)
);
CREATE INDEX IF NOT EXISTS idx_artifacts_file ON artifacts(source_file_id);

CREATE TABLE IF NOT EXISTS artifact_attributes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	artifact_id  INTEGER NOT NULL REFERENCES artifacts(id),
	type         INTEGER NOT NULL,
	kind         INTEGER NOT NULL,
	value_string TEXT,
	value_long   INTEGER,
	value_time   TEXT,
	value_json   TEXT
);
CREATE INDEX IF NOT EXISTS idx_attrs_artifact ON artifact_attributes(artifact_id);
`
