package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_YAML(t *testing.T) {
	data := []byte("case_db: /cases/seizure.db\nrepo_db: /shared/repo.db\nparallel: 4\nlog_level: debug\n")
	c, err := Load(data, ".yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.CaseDB != "/cases/seizure.db" || c.RepoDB != "/shared/repo.db" {
		t.Errorf("paths: %+v", c)
	}
	if c.Parallel != 4 || c.LogLevel != "debug" {
		t.Errorf("values: %+v", c)
	}
	if c.LogFormat != "text" {
		t.Errorf("log_format default not applied: %q", c.LogFormat)
	}
}

func TestLoad_JSONDetectedFromContent(t *testing.T) {
	data := []byte(`{"case_db": "/cases/x.db", "parallel": 2}`)
	c, err := Load(data, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.CaseDB != "/cases/x.db" || c.Parallel != 2 {
		t.Errorf("got %+v", c)
	}
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load([]byte(""), ".yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Default()
	if *c != *d {
		t.Errorf("empty config != defaults: %+v vs %+v", c, d)
	}
	if d.Parallel != 1 || d.LogLevel != "info" {
		t.Errorf("defaults: %+v", d)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crosshatch.yml")
	if err := os.WriteFile(path, []byte("parallel: 8\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if c.Parallel != 8 {
		t.Errorf("parallel: %d", c.Parallel)
	}

	if _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load([]byte(":\n\t-bad"), ".yaml"); err == nil {
		t.Error("malformed yaml should error")
	}
}
