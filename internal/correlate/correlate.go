// Package correlate derives normalized cross-case correlation entries from
// artifact records and files. Extraction never errors out to callers: any
// lookup or normalization failure degrades to fewer (or zero) entries,
// logged with enough context to diagnose.
package correlate

import (
	"log/slog"
	"strings"

	"crosshatch/internal/casedb"
	"crosshatch/internal/logging"
)

// emailAddressesSetName is the keyword-hit set whose hits are email
// addresses found by the search ingest.
const emailAddressesSetName = "Email Addresses"

// emptyDataMD5 is the MD5 of zero bytes of content. Files carrying it were
// hashed but had no data to hash, so the value is a placeholder, not a key.
const emptyDataMD5 = "d41d8cd98f00b204e9800998ecf8427e"

// Entry is one normalized correlation value with its source coordinates.
// Produced fresh per extraction call; never cached.
type Entry struct {
	Type         TypeID
	Value        string
	CaseUUID     string
	DataSourceID int64
	FilePath     string
	FileObjID    int64
}

// Extractor maps artifacts and files to correlation entries. Stateless
// between calls; collaborators are injected, never looked up ambiently.
type Extractor struct {
	cases  casedb.Accessor
	types  Registry
	logger *slog.Logger
}

// NewExtractor returns an Extractor reading from cases and resolving type
// descriptors through types.
func NewExtractor(cases casedb.Accessor, types Registry) *Extractor {
	return &Extractor{
		cases:  cases,
		types:  types,
		logger: logging.New("extractor"),
	}
}

// EntriesForArtifact examines an artifact and derives zero or more
// correlation entries from its attributes. Entries are NOT persisted
// anywhere by this method.
func (x *Extractor) EntriesForArtifact(a *casedb.Artifact) []Entry {
	if a == nil {
		return nil
	}

	// An interesting-artifact hit is a meta-artifact: examine the artifact
	// it points at, not the hit itself.
	target := a
	if a.Type == casedb.ArtifactInterestingHit {
		target = x.resolveAssociated(a)
		if target == nil {
			return nil
		}
	}

	var entries []Entry
	switch target.Type {
	case casedb.ArtifactKeywordHit:
		if set := target.Attr(casedb.AttrSetName); set != nil && set.Str() == emailAddressesSetName {
			entries = x.emitAttr(entries, target, casedb.AttrKeyword, TypeEmail)
		}

	case casedb.ArtifactWebBookmark,
		casedb.ArtifactWebCookie,
		casedb.ArtifactWebDownload,
		casedb.ArtifactWebHistory:
		entries = x.emitAttr(entries, target, casedb.AttrDomain, TypeDomain)

	case casedb.ArtifactContact,
		casedb.ArtifactCallLog,
		casedb.ArtifactMessage:
		entries = x.emitPhone(entries, target)

	case casedb.ArtifactDeviceAttached:
		entries = x.emitAttr(entries, target, casedb.AttrDeviceID, TypeUSBID)
		entries = x.emitAttr(entries, target, casedb.AttrMacAddress, TypeMAC)

	case casedb.ArtifactWifiNetwork:
		entries = x.emitAttr(entries, target, casedb.AttrSSID, TypeSSID)

	case casedb.ArtifactWifiAdapter,
		casedb.ArtifactBluetoothPairing,
		casedb.ArtifactBluetoothAdapter:
		entries = x.emitAttr(entries, target, casedb.AttrMacAddress, TypeMAC)

	case casedb.ArtifactDeviceInfo:
		entries = x.emitAttr(entries, target, casedb.AttrIMEI, TypeIMEI)
		entries = x.emitAttr(entries, target, casedb.AttrIMSI, TypeIMSI)
		entries = x.emitAttr(entries, target, casedb.AttrICCID, TypeICCID)

	case casedb.ArtifactSimAttached:
		entries = x.emitAttr(entries, target, casedb.AttrIMSI, TypeIMSI)
		entries = x.emitAttr(entries, target, casedb.AttrICCID, TypeICCID)

	case casedb.ArtifactWebFormAddress:
		entries = x.emitAttr(entries, target, casedb.AttrPhone, TypePhone)
		entries = x.emitAttr(entries, target, casedb.AttrEmail, TypeEmail)

	case casedb.ArtifactAccount:
		// No extraction rule exists for accounts; emitting would require
		// per-account-type rules that were never defined. Deliberate no-op.

	case casedb.ArtifactInterestingHit:
		// Unreachable: hits are resolved to their target above. A hit
		// pointing at another hit is not followed.

	default:
		x.logger.Debug("no correlation rule for artifact type",
			"artifact_id", target.ID, "type", target.Type.String())
	}
	return entries
}

// resolveAssociated loads the artifact an interesting-artifact hit points
// at. Any failure yields nil (logged), per the degrade-only policy.
func (x *Extractor) resolveAssociated(hit *casedb.Artifact) *casedb.Artifact {
	assoc := hit.Attr(casedb.AttrAssociatedArtifact)
	if assoc == nil {
		return nil
	}
	target, err := x.cases.ArtifactByID(assoc.ValueLong)
	if err != nil {
		x.logger.Error("resolving associated artifact",
			"artifact_id", hit.ID, "associated_id", assoc.ValueLong, "error", err)
		return nil
	}
	if target == nil {
		x.logger.Warn("associated artifact not found",
			"artifact_id", hit.ID, "associated_id", assoc.ValueLong)
		return nil
	}
	if target.Type == casedb.ArtifactInterestingHit {
		return nil
	}
	return target
}

// emitPhone derives a PHONE entry from the first present phone attribute,
// normalized to digits with an optional leading "+". Too-short numbers are
// dropped silently: they are valid values, just not distinctive keys.
func (x *Extractor) emitPhone(entries []Entry, a *casedb.Artifact) []Entry {
	var raw string
	for _, t := range []casedb.AttrType{casedb.AttrPhone, casedb.AttrPhoneFrom, casedb.AttrPhoneTo} {
		if attr := a.Attr(t); attr != nil && attr.Str() != "" {
			raw = attr.Str()
			break
		}
	}
	if raw == "" {
		return entries
	}
	value, err := NormalizePhone(raw)
	if err != nil {
		return entries
	}
	if e := x.newEntry(a, TypePhone, value); e != nil {
		entries = append(entries, *e)
	}
	return entries
}

// emitAttr appends an entry of the given correlation type when the artifact
// carries the attribute with a non-empty string value.
func (x *Extractor) emitAttr(entries []Entry, a *casedb.Artifact, attr casedb.AttrType, typeID TypeID) []Entry {
	at := a.Attr(attr)
	if at == nil {
		return entries
	}
	value := at.Str()
	if value == "" {
		return entries
	}
	if e := x.newEntry(a, typeID, value); e != nil {
		entries = append(entries, *e)
	}
	return entries
}

// newEntry resolves the type descriptor, normalizes the value, and stamps
// the entry with the artifact's source coordinates. Returns nil on any
// failure, logged with the artifact id.
func (x *Extractor) newEntry(a *casedb.Artifact, typeID TypeID, value string) *Entry {
	typ, err := x.types.TypeByID(typeID)
	if err != nil {
		x.logger.Error("resolving correlation type", "type_id", int(typeID), "error", err)
		return nil
	}
	normalized, err := typ.Normalize(value)
	if err != nil {
		x.logger.Warn("value failed normalization",
			"artifact_id", a.ID, "type", typ.Name, "error", err)
		return nil
	}

	srcFile, err := x.cases.FileByID(a.SourceFileID)
	if err != nil {
		x.logger.Error("loading source file for artifact",
			"artifact_id", a.ID, "file_id", a.SourceFileID, "error", err)
		return nil
	}
	if srcFile == nil {
		x.logger.Error("source file missing for artifact",
			"artifact_id", a.ID, "file_id", a.SourceFileID)
		return nil
	}
	cur, err := x.cases.CurrentCase()
	if err != nil {
		x.logger.Error("no open case while deriving entry", "artifact_id", a.ID, "error", err)
		return nil
	}
	return &Entry{
		Type:         typeID,
		Value:        normalized,
		CaseUUID:     cur.UUID,
		DataSourceID: srcFile.DataSourceID,
		FilePath:     srcFile.Path(),
		FileObjID:    srcFile.ID,
	}
}

// EntryForFile derives the FILES (content hash) entry for a file, or nil
// when the file is ineligible, unhashed, or carries the empty-data
// placeholder hash. Returning nil is not an error condition.
func (x *Extractor) EntryForFile(f *casedb.File) *Entry {
	eligible, known := classifyFile(f)
	if !known {
		x.logger.Warn("unexpected file category", "file_id", f.ID, "category", int(f.Category))
		return nil
	}
	if !eligible {
		return nil
	}
	if f.MD5 == "" || strings.EqualFold(f.MD5, emptyDataMD5) {
		return nil
	}

	typ, err := x.types.TypeByID(TypeFiles)
	if err != nil {
		x.logger.Error("resolving files correlation type", "error", err)
		return nil
	}
	normalized, err := typ.Normalize(f.MD5)
	if err != nil {
		x.logger.Warn("file hash failed normalization", "file_id", f.ID, "error", err)
		return nil
	}
	cur, err := x.cases.CurrentCase()
	if err != nil {
		x.logger.Error("no open case while deriving file entry", "file_id", f.ID, "error", err)
		return nil
	}
	return &Entry{
		Type:         TypeFiles,
		Value:        normalized,
		CaseUUID:     cur.UUID,
		DataSourceID: f.DataSourceID,
		FilePath:     f.Path(),
		FileObjID:    f.ID,
	}
}
