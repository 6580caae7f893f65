// Package casedb models the per-case database: the case record, its data
// sources, files, and the typed artifacts extracted from them. Domain code
// reads through the Accessor interface; implementation is SQLite or in-memory.
package casedb

import "strconv"

// ArtifactType identifies what kind of finding an artifact is.
// Values are stable; they are stored in the artifacts table.
type ArtifactType int

const (
	ArtifactUnknown ArtifactType = iota
	ArtifactKeywordHit
	ArtifactWebBookmark
	ArtifactWebCookie
	ArtifactWebHistory
	ArtifactWebDownload
	ArtifactContact
	ArtifactCallLog
	ArtifactMessage
	ArtifactDeviceAttached
	ArtifactWifiNetwork
	ArtifactWifiAdapter
	ArtifactBluetoothPairing
	ArtifactBluetoothAdapter
	ArtifactDeviceInfo
	ArtifactSimAttached
	ArtifactWebFormAddress
	ArtifactInterestingHit
	ArtifactAccount
)

var artifactNames = map[ArtifactType]string{
	ArtifactUnknown:          "unknown",
	ArtifactKeywordHit:       "keyword_hit",
	ArtifactWebBookmark:      "web_bookmark",
	ArtifactWebCookie:        "web_cookie",
	ArtifactWebHistory:       "web_history",
	ArtifactWebDownload:      "web_download",
	ArtifactContact:          "contact",
	ArtifactCallLog:          "call_log",
	ArtifactMessage:          "message",
	ArtifactDeviceAttached:   "device_attached",
	ArtifactWifiNetwork:      "wifi_network",
	ArtifactWifiAdapter:      "wifi_adapter",
	ArtifactBluetoothPairing: "bluetooth_pairing",
	ArtifactBluetoothAdapter: "bluetooth_adapter",
	ArtifactDeviceInfo:       "device_info",
	ArtifactSimAttached:      "sim_attached",
	ArtifactWebFormAddress:   "web_form_address",
	ArtifactInterestingHit:   "interesting_artifact_hit",
	ArtifactAccount:          "account",
}

func (t ArtifactType) String() string {
	if n, ok := artifactNames[t]; ok {
		return n
	}
	return "artifact(" + strconv.Itoa(int(t)) + ")"
}

// AttrType identifies one attribute slot on an artifact.
type AttrType int

const (
	AttrKeyword AttrType = iota + 1
	AttrSetName
	AttrDomain
	AttrPhone
	AttrPhoneFrom
	AttrPhoneTo
	AttrDeviceID
	AttrMacAddress
	AttrSSID
	AttrIMEI
	AttrIMSI
	AttrICCID
	AttrEmail
	AttrAssociatedArtifact
)

// ValueKind selects which value field of an Attribute is active.
type ValueKind int

const (
	KindString ValueKind = iota
	KindLong
	KindTime
	KindJSON
)

// Attribute is one typed attribute on an artifact. Exactly one value field
// is meaningful, selected by Kind.
type Attribute struct {
	Type        AttrType
	Kind        ValueKind
	ValueString string
	ValueLong   int64
	ValueTime   string // RFC 3339
	ValueJSON   string
}

// Str renders the active value as a string. Long values render as decimal;
// time and JSON values render as stored.
func (a Attribute) Str() string {
	switch a.Kind {
	case KindLong:
		return strconv.FormatInt(a.ValueLong, 10)
	case KindTime:
		return a.ValueTime
	case KindJSON:
		return a.ValueJSON
	default:
		return a.ValueString
	}
}

// Artifact is one typed forensic finding with its flat attribute set.
// Immutable once loaded.
type Artifact struct {
	ID           int64
	Type         ArtifactType
	SourceFileID int64
	Attrs        []Attribute
}

// Attr returns the first attribute of the given type, or nil.
func (a *Artifact) Attr(t AttrType) *Attribute {
	for i := range a.Attrs {
		if a.Attrs[i].Type == t {
			return &a.Attrs[i]
		}
	}
	return nil
}

// FileCategory classifies where a file came from within the image.
type FileCategory int

const (
	CategoryFS FileCategory = iota + 1
	CategoryCarved
	CategoryDerived
	CategoryLocal
	CategoryLayout
	CategoryUnalloc
	CategoryUnused
	CategorySlack
	CategoryVirtualDir
	CategoryLocalDir
)

var categoryNames = map[FileCategory]string{
	CategoryFS:         "fs",
	CategoryCarved:     "carved",
	CategoryDerived:    "derived",
	CategoryLocal:      "local",
	CategoryLayout:     "layout",
	CategoryUnalloc:    "unalloc_blocks",
	CategoryUnused:     "unused_blocks",
	CategorySlack:      "slack",
	CategoryVirtualDir: "virtual_dir",
	CategoryLocalDir:   "local_dir",
}

func (c FileCategory) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "category(" + strconv.Itoa(int(c)) + ")"
}

// File is one file within a data source.
type File struct {
	ID            int64
	DataSourceID  int64
	Name          string
	ParentPath    string
	Category      FileCategory
	MetaAllocated bool
	MD5           string
}

// Path returns the full path (parent path + name) as recorded in the image.
func (f *File) Path() string {
	return f.ParentPath + f.Name
}

// Case is the case record. One case per case database.
type Case struct {
	ID        int64
	UUID      string
	Name      string
	CreatedAt string
}

// DataSource is one acquired image/device within the case.
type DataSource struct {
	ID       int64
	CaseID   int64
	DeviceID string
	Name     string
}

// Accessor is the read surface domain code uses against a case database.
// Implementations: SqlCase (SQLite) and MemCase (in-memory, for tests).
type Accessor interface {
	// CurrentCase returns the open case. Errors when no case exists
	// (the "case closed" condition callers must degrade on).
	CurrentCase() (*Case, error)
	// ArtifactByID returns the artifact with its attributes, or (nil, nil)
	// when the id is unknown.
	ArtifactByID(id int64) (*Artifact, error)
	// FileByID returns the file, or (nil, nil) when the id is unknown.
	FileByID(id int64) (*File, error)
	// DataSourceByID returns the data source, or (nil, nil) when unknown.
	DataSourceByID(id int64) (*DataSource, error)
	// ArtifactsByDataSource lists all artifacts whose source file belongs
	// to the data source.
	ArtifactsByDataSource(dsID int64) ([]*Artifact, error)
	// FilesByDataSource lists all files in the data source.
	FilesByDataSource(dsID int64) ([]*File, error)
}
