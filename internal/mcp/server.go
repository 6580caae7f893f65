// Package mcp exposes correlation derivation and cross-case search as MCP
// tools over stdio, so agent clients can query the central repository
// without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"crosshatch/internal/casedb"
	"crosshatch/internal/centralrepo"
	"crosshatch/internal/correlate"
)

// Server wraps the MCP SDK server over an open case database and central
// repository.
type Server struct {
	MCPServer *sdkmcp.Server

	cases casedb.Accessor
	repo  centralrepo.Repo
	x     *correlate.Extractor
}

// NewServer creates an MCP server with derivation and search tools bound to
// the given case database and repository.
func NewServer(cases casedb.Accessor, repo centralrepo.Repo) *Server {
	s := &Server{
		cases: cases,
		repo:  repo,
		x:     correlate.NewExtractor(cases, repo),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "crosshatch", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "derive_artifact",
		Description: "Derive normalized correlation entries (email, phone, MAC, IMEI, ...) from one artifact in the open case.",
	}, s.handleDeriveArtifact)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "derive_file",
		Description: "Derive the content-hash correlation entry for one file, if the file is eligible and hashed.",
	}, s.handleDeriveFile)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search_value",
		Description: "Search the central repository for all sightings of a value across cases. The value is normalized before lookup.",
	}, s.handleSearchValue)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_types",
		Description: "List the registered correlation types.",
	}, s.handleListTypes)
}

// --- Tool input/output types ---

type entryOut struct {
	TypeID       int    `json:"type_id"`
	Value        string `json:"value"`
	CaseUUID     string `json:"case_uuid"`
	DataSourceID int64  `json:"data_source_id"`
	FilePath     string `json:"file_path,omitempty"`
	FileObjID    int64  `json:"file_obj_id,omitempty"`
}

func toEntryOut(e correlate.Entry) entryOut {
	return entryOut{
		TypeID:       int(e.Type),
		Value:        e.Value,
		CaseUUID:     e.CaseUUID,
		DataSourceID: e.DataSourceID,
		FilePath:     e.FilePath,
		FileObjID:    e.FileObjID,
	}
}

type deriveArtifactInput struct {
	ArtifactID int64 `json:"artifact_id" jsonschema:"artifact id in the open case database"`
}

type deriveArtifactOutput struct {
	Entries []entryOut `json:"entries"`
}

type deriveFileInput struct {
	FileID int64 `json:"file_id" jsonschema:"file id in the open case database"`
}

type deriveFileOutput struct {
	Found bool      `json:"found"`
	Entry *entryOut `json:"entry,omitempty"`
}

type searchValueInput struct {
	TypeID int    `json:"type_id" jsonschema:"correlation type id (0=files, 1=domain, 2=email, 3=phone, 4=usb, 5=ssid, 6=mac, 7=imei, 8=imsi, 9=iccid)"`
	Value  string `json:"value" jsonschema:"raw value to search for; normalized before lookup"`
}

type occurrenceOut struct {
	CaseUUID     string `json:"case_uuid"`
	CaseName     string `json:"case_name"`
	DataSourceID int64  `json:"data_source_id"`
	FilePath     string `json:"file_path,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type searchValueOutput struct {
	Normalized  string          `json:"normalized"`
	Occurrences []occurrenceOut `json:"occurrences"`
}

type listTypesInput struct{}

type typeOut struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type listTypesOutput struct {
	Types []typeOut `json:"types"`
}

// --- Tool handlers ---

func (s *Server) handleDeriveArtifact(_ context.Context, _ *sdkmcp.CallToolRequest, input deriveArtifactInput) (*sdkmcp.CallToolResult, deriveArtifactOutput, error) {
	a, err := s.cases.ArtifactByID(input.ArtifactID)
	if err != nil {
		return nil, deriveArtifactOutput{}, fmt.Errorf("load artifact %d: %w", input.ArtifactID, err)
	}
	if a == nil {
		return nil, deriveArtifactOutput{}, fmt.Errorf("artifact %d not found", input.ArtifactID)
	}
	out := deriveArtifactOutput{Entries: []entryOut{}}
	for _, e := range s.x.EntriesForArtifact(a) {
		out.Entries = append(out.Entries, toEntryOut(e))
	}
	return nil, out, nil
}

func (s *Server) handleDeriveFile(_ context.Context, _ *sdkmcp.CallToolRequest, input deriveFileInput) (*sdkmcp.CallToolResult, deriveFileOutput, error) {
	f, err := s.cases.FileByID(input.FileID)
	if err != nil {
		return nil, deriveFileOutput{}, fmt.Errorf("load file %d: %w", input.FileID, err)
	}
	if f == nil {
		return nil, deriveFileOutput{}, fmt.Errorf("file %d not found", input.FileID)
	}
	e := s.x.EntryForFile(f)
	if e == nil {
		return nil, deriveFileOutput{Found: false}, nil
	}
	eo := toEntryOut(*e)
	return nil, deriveFileOutput{Found: true, Entry: &eo}, nil
}

func (s *Server) handleSearchValue(_ context.Context, _ *sdkmcp.CallToolRequest, input searchValueInput) (*sdkmcp.CallToolResult, searchValueOutput, error) {
	typ, err := s.repo.TypeByID(correlate.TypeID(input.TypeID))
	if err != nil {
		return nil, searchValueOutput{}, err
	}
	normalized, err := typ.Normalize(input.Value)
	if err != nil {
		return nil, searchValueOutput{}, fmt.Errorf("normalize value: %w", err)
	}
	hits, err := s.repo.FindByTypeValue(typ.ID, input.Value)
	if err != nil {
		return nil, searchValueOutput{}, fmt.Errorf("search repository: %w", err)
	}
	out := searchValueOutput{Normalized: normalized, Occurrences: []occurrenceOut{}}
	for _, h := range hits {
		out.Occurrences = append(out.Occurrences, occurrenceOut{
			CaseUUID:     h.CaseUUID,
			CaseName:     h.CaseName,
			DataSourceID: h.DataSourceID,
			FilePath:     h.FilePath,
			CreatedAt:    h.CreatedAt,
		})
	}
	return nil, out, nil
}

func (s *Server) handleListTypes(_ context.Context, _ *sdkmcp.CallToolRequest, _ listTypesInput) (*sdkmcp.CallToolResult, listTypesOutput, error) {
	types, err := s.repo.ListTypes()
	if err != nil {
		return nil, listTypesOutput{}, fmt.Errorf("list types: %w", err)
	}
	out := listTypesOutput{Types: []typeOut{}}
	for _, t := range types {
		out.Types = append(out.Types, typeOut{ID: int(t.ID), Name: t.Name, DisplayName: t.DisplayName})
	}
	return nil, out, nil
}
