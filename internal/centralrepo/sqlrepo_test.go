package centralrepo

import (
	"path/filepath"
	"testing"

	"crosshatch/internal/correlate"
)

func openTestRepo(t *testing.T) *SqlRepo {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSqlRepo_TypesSeeded(t *testing.T) {
	r := openTestRepo(t)

	types, err := r.ListTypes()
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	if len(types) != len(correlate.DefaultTypes()) {
		t.Fatalf("got %d types, want %d", len(types), len(correlate.DefaultTypes()))
	}
	phone, err := r.TypeByID(correlate.TypePhone)
	if err != nil {
		t.Fatalf("TypeByID: %v", err)
	}
	if phone.Name != "phone_number" {
		t.Errorf("phone type name: %q", phone.Name)
	}
	// Normalization rules survive the round trip through the table.
	if v, err := phone.Normalize("+1 (555) 123-4567"); err != nil || v != "+15551234567" {
		t.Errorf("phone normalize via repo: got %q err %v", v, err)
	}
	if _, err := r.TypeByID(correlate.TypeID(99)); err == nil {
		t.Error("unknown type id should error")
	}
}

func TestSqlRepo_CrossCaseSearch(t *testing.T) {
	r := openTestRepo(t)

	caseA, err := r.EnsureCase("", "Case Alpha")
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}
	if caseA == "" {
		t.Fatal("EnsureCase did not generate a uuid")
	}
	caseB, err := r.EnsureCase("", "Case Bravo")
	if err != nil {
		t.Fatalf("EnsureCase: %v", err)
	}

	for _, e := range []correlate.Entry{
		{Type: correlate.TypePhone, Value: "+15551234567", CaseUUID: caseA, DataSourceID: 1, FilePath: "/a/contacts.db", FileObjID: 10},
		{Type: correlate.TypePhone, Value: "+15551234567", CaseUUID: caseB, DataSourceID: 7, FilePath: "/b/calllog.db", FileObjID: 70},
		{Type: correlate.TypePhone, Value: "+15559999999", CaseUUID: caseB, DataSourceID: 7},
		{Type: correlate.TypeSSID, Value: "home", CaseUUID: caseA, DataSourceID: 1},
	} {
		if _, err := r.AddEntry(e); err != nil {
			t.Fatalf("AddEntry(%+v): %v", e, err)
		}
	}

	// Raw, un-normalized input finds the normalized rows.
	hits, err := r.FindByTypeValue(correlate.TypePhone, "+1 (555) 123-4567")
	if err != nil {
		t.Fatalf("FindByTypeValue: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2 (one per case)", len(hits))
	}
	seen := map[string]bool{}
	for _, h := range hits {
		seen[h.CaseName] = true
	}
	if !seen["Case Alpha"] || !seen["Case Bravo"] {
		t.Errorf("hits missing case names: %+v", hits)
	}

	counts, err := r.CountsByType()
	if err != nil {
		t.Fatalf("CountsByType: %v", err)
	}
	if counts[correlate.TypePhone] != 3 || counts[correlate.TypeSSID] != 1 {
		t.Errorf("counts: %+v", counts)
	}
}

func TestSqlRepo_AddEntryValidation(t *testing.T) {
	r := openTestRepo(t)
	caseA, _ := r.EnsureCase("", "Case Alpha")

	if _, err := r.AddEntry(correlate.Entry{Type: correlate.TypePhone, CaseUUID: caseA}); err == nil {
		t.Error("empty value should be rejected")
	}
	if _, err := r.AddEntry(correlate.Entry{Type: correlate.TypePhone, Value: "+15551234567"}); err == nil {
		t.Error("missing case uuid should be rejected")
	}
	if _, err := r.AddEntry(correlate.Entry{Type: correlate.TypeID(42), Value: "x", CaseUUID: caseA}); err == nil {
		t.Error("unknown type should be rejected")
	}
}

func TestSqlRepo_EnsureCaseIdempotent(t *testing.T) {
	r := openTestRepo(t)
	u1, err := r.EnsureCase("fixed-uuid", "First Name")
	if err != nil || u1 != "fixed-uuid" {
		t.Fatalf("EnsureCase: got %q err %v", u1, err)
	}
	u2, err := r.EnsureCase("fixed-uuid", "Renamed")
	if err != nil || u2 != "fixed-uuid" {
		t.Fatalf("EnsureCase repeat: got %q err %v", u2, err)
	}
	if _, err := r.AddEntry(correlate.Entry{Type: correlate.TypeSSID, Value: "net", CaseUUID: "fixed-uuid", DataSourceID: 1}); err != nil {
		t.Fatalf("AddEntry after re-ensure: %v", err)
	}
	hits, err := r.FindByTypeValue(correlate.TypeSSID, "net")
	if err != nil || len(hits) != 1 || hits[0].CaseName != "Renamed" {
		t.Fatalf("hits after rename: %+v err %v", hits, err)
	}
}
