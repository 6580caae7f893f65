package main

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"crosshatch/internal/casedb"
)

// execRoot runs the CLI in-process and returns its combined output.
func execRoot(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("crosshatch %v: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

// seedCaseDB builds a minimal case database: one case, one data source,
// a contact artifact and a hashed carved file.
func seedCaseDB(t *testing.T, path string) (dsID, artifactID, fileID int64) {
	t.Helper()
	db, err := casedb.Open(path)
	if err != nil {
		t.Fatalf("open case db: %v", err)
	}
	defer db.Close()

	if _, err := db.CreateCase(&casedb.Case{Name: "CLI Fixture"}); err != nil {
		t.Fatalf("create case: %v", err)
	}
	ds := &casedb.DataSource{CaseID: 1, Name: "image.E01"}
	if _, err := db.CreateDataSource(ds); err != nil {
		t.Fatalf("create data source: %v", err)
	}
	source := &casedb.File{
		DataSourceID:  ds.ID,
		Name:          "contacts.db",
		ParentPath:    "/data/",
		Category:      casedb.CategoryFS,
		MetaAllocated: true,
	}
	if _, err := db.CreateFile(source); err != nil {
		t.Fatalf("create source file: %v", err)
	}
	a := &casedb.Artifact{
		Type:         casedb.ArtifactContact,
		SourceFileID: source.ID,
		Attrs: []casedb.Attribute{
			{Type: casedb.AttrPhone, Kind: casedb.KindString, ValueString: "+1 (555) 123-4567"},
		},
	}
	if _, err := db.CreateArtifact(a); err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	carved := &casedb.File{
		DataSourceID: ds.ID,
		Name:         "photo.jpg",
		ParentPath:   "/carved/",
		Category:     casedb.CategoryCarved,
		MD5:          "5d41402abc4b2a76b9719d911017c592",
	}
	if _, err := db.CreateFile(carved); err != nil {
		t.Fatalf("create carved file: %v", err)
	}
	return ds.ID, a.ID, carved.ID
}

func TestCLI_Types(t *testing.T) {
	out := execRoot(t, "types")
	for _, want := range []string{"files", "phone_number", "iccid_number"} {
		if !strings.Contains(out, want) {
			t.Errorf("types output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_DeriveArtifact(t *testing.T) {
	caseDB := filepath.Join(t.TempDir(), "case.db")
	_, artifactID, fileID := seedCaseDB(t, caseDB)

	out := execRoot(t, "derive", "--case-db", caseDB,
		"--artifact-id", strconv.FormatInt(artifactID, 10), "--log-level", "error")
	if !strings.Contains(out, "+15551234567") {
		t.Errorf("derive output missing normalized phone:\n%s", out)
	}

	out = execRoot(t, "derive", "--case-db", caseDB, "--artifact-id", "0",
		"--file-id", strconv.FormatInt(fileID, 10), "--log-level", "error")
	if !strings.Contains(out, "5d41402abc4b2a76b9719d911017c592") {
		t.Errorf("derive output missing file hash:\n%s", out)
	}
}

func TestCLI_IngestSearchStatus(t *testing.T) {
	dir := t.TempDir()
	caseDB := filepath.Join(dir, "case.db")
	repoDB := filepath.Join(dir, "repo.db")
	dsID, _, _ := seedCaseDB(t, caseDB)

	out := execRoot(t, "ingest", "--case-db", caseDB, "--repo-db", repoDB,
		"--data-source-id", strconv.FormatInt(dsID, 10), "--log-level", "error")
	if !strings.Contains(out, "Entries:   2") {
		t.Errorf("ingest output, want 2 entries (phone + hash):\n%s", out)
	}

	out = execRoot(t, "search", "--repo-db", repoDB, "--type", "3",
		"--log-level", "error", "+1 (555) 123-4567")
	if !strings.Contains(out, `"+15551234567" seen 1 time(s)`) {
		t.Errorf("search output:\n%s", out)
	}

	out = execRoot(t, "status", "--repo-db", repoDB, "--log-level", "error")
	if !strings.Contains(out, "phone_number") || !strings.Contains(out, "total") {
		t.Errorf("status output:\n%s", out)
	}
}
