package casedb

import "testing"

func TestMemCase_MirrorsAccessor(t *testing.T) {
	m := NewMemCase()

	if _, err := m.CurrentCase(); err == nil {
		t.Error("CurrentCase before SetCase should error")
	}

	c := m.SetCase(&Case{Name: "mem case"})
	if c.ID == 0 || c.UUID == "" {
		t.Fatalf("SetCase did not assign id/uuid: %+v", c)
	}

	ds := m.AddDataSource(&DataSource{CaseID: c.ID, Name: "usb image"})
	f1 := m.AddFile(&File{DataSourceID: ds.ID, Name: "a.bin", Category: CategoryCarved})
	f2 := m.AddFile(&File{DataSourceID: ds.ID, Name: "b.bin", Category: CategorySlack})
	other := m.AddDataSource(&DataSource{CaseID: c.ID, Name: "other"})
	m.AddFile(&File{DataSourceID: other.ID, Name: "elsewhere.bin", Category: CategoryFS})

	a1 := m.AddArtifact(&Artifact{Type: ArtifactWifiNetwork, SourceFileID: f1.ID,
		Attrs: []Attribute{{Type: AttrSSID, Kind: KindString, ValueString: "home"}}})
	m.AddArtifact(&Artifact{Type: ArtifactCallLog, SourceFileID: f2.ID})

	got, err := m.ArtifactByID(a1.ID)
	if err != nil || got == nil || got.Attr(AttrSSID) == nil {
		t.Fatalf("ArtifactByID: got %+v err %v", got, err)
	}
	// Mutating the returned copy must not affect the store.
	got.Attrs[0].ValueString = "mutated"
	again, _ := m.ArtifactByID(a1.ID)
	if again.Attr(AttrSSID).Str() != "home" {
		t.Error("stored artifact was mutated through a returned copy")
	}

	arts, err := m.ArtifactsByDataSource(ds.ID)
	if err != nil || len(arts) != 2 {
		t.Fatalf("ArtifactsByDataSource: got %d err %v", len(arts), err)
	}
	if arts[0].ID > arts[1].ID {
		t.Error("artifacts not ordered by id")
	}
	files, err := m.FilesByDataSource(ds.ID)
	if err != nil || len(files) != 2 {
		t.Fatalf("FilesByDataSource: got %d err %v", len(files), err)
	}

	missing, err := m.FileByID(9999)
	if err != nil || missing != nil {
		t.Errorf("FileByID(9999): got %+v err %v, want nil, nil", missing, err)
	}
}
