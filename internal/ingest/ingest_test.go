package ingest

import (
	"context"
	"testing"

	"crosshatch/internal/casedb"
	"crosshatch/internal/centralrepo"
	"crosshatch/internal/correlate"
)

// buildFixture populates a MemCase with a mixed data source:
// 3 artifacts (two derivable, one account no-op) and 3 files
// (one hashable, one slack, one unhashed).
func buildFixture(t *testing.T) (*casedb.MemCase, int64) {
	t.Helper()
	m := casedb.NewMemCase()
	c := m.SetCase(&casedb.Case{Name: "ingest case"})
	ds := m.AddDataSource(&casedb.DataSource{CaseID: c.ID, Name: "phone image"})

	src := m.AddFile(&casedb.File{
		DataSourceID: ds.ID, Name: "artifacts.db",
		Category: casedb.CategoryFS, MetaAllocated: true,
	})
	m.AddArtifact(&casedb.Artifact{Type: casedb.ArtifactContact, SourceFileID: src.ID,
		Attrs: []casedb.Attribute{{Type: casedb.AttrPhone, Kind: casedb.KindString, ValueString: "+1 555 123 4567"}}})
	m.AddArtifact(&casedb.Artifact{Type: casedb.ArtifactWifiNetwork, SourceFileID: src.ID,
		Attrs: []casedb.Attribute{{Type: casedb.AttrSSID, Kind: casedb.KindString, ValueString: "home"}}})
	m.AddArtifact(&casedb.Artifact{Type: casedb.ArtifactAccount, SourceFileID: src.ID})

	m.AddFile(&casedb.File{
		DataSourceID: ds.ID, Name: "photo.jpg", Category: casedb.CategoryCarved,
		MD5: "0cc175b9c0f1b6a831c399e269772661",
	})
	m.AddFile(&casedb.File{
		DataSourceID: ds.ID, Name: "x-slack", Category: casedb.CategorySlack,
		MD5: "0cc175b9c0f1b6a831c399e269772661",
	})

	return m, ds.ID
}

func TestRun_CountsAndRepoContents(t *testing.T) {
	m, dsID := buildFixture(t)
	repo := centralrepo.NewMemRepo()

	res, err := New(m, repo, 4).Run(context.Background(), dsID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Artifacts != 3 {
		t.Errorf("Artifacts = %d, want 3", res.Artifacts)
	}
	if res.Files != 3 {
		t.Errorf("Files = %d, want 3", res.Files)
	}
	// phone + ssid + carved hash.
	if res.Entries != 3 {
		t.Errorf("Entries = %d, want 3", res.Entries)
	}
	// slack file + the unhashed artifacts.db source file.
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
	if res.Failed != 0 {
		t.Errorf("Failed = %d, want 0", res.Failed)
	}

	hits, err := repo.FindByTypeValue(correlate.TypePhone, "+15551234567")
	if err != nil || len(hits) != 1 {
		t.Fatalf("phone lookup after ingest: %d hits err %v", len(hits), err)
	}
	counts, _ := repo.CountsByType()
	if counts[correlate.TypeSSID] != 1 || counts[correlate.TypeFiles] != 1 {
		t.Errorf("counts: %+v", counts)
	}
}

func TestRun_SerialMatchesParallel(t *testing.T) {
	m, dsID := buildFixture(t)

	serial := centralrepo.NewMemRepo()
	resSerial, err := New(m, serial, 1).Run(context.Background(), dsID)
	if err != nil {
		t.Fatalf("serial Run: %v", err)
	}
	parallel := centralrepo.NewMemRepo()
	resParallel, err := New(m, parallel, 8).Run(context.Background(), dsID)
	if err != nil {
		t.Fatalf("parallel Run: %v", err)
	}
	if *resSerial != *resParallel {
		t.Errorf("serial %+v != parallel %+v", resSerial, resParallel)
	}
}

func TestRun_UnknownDataSource(t *testing.T) {
	m, _ := buildFixture(t)
	if _, err := New(m, centralrepo.NewMemRepo(), 1).Run(context.Background(), 9999); err == nil {
		t.Error("unknown data source should error")
	}
}

func TestRun_NoOpenCase(t *testing.T) {
	m := casedb.NewMemCase()
	if _, err := New(m, centralrepo.NewMemRepo(), 1).Run(context.Background(), 1); err == nil {
		t.Error("missing case should error")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	m, dsID := buildFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(m, centralrepo.NewMemRepo(), 2).Run(ctx, dsID); err == nil {
		t.Error("cancelled context should surface an error")
	}
}
