package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"crosshatch/internal/casedb"
	"crosshatch/internal/correlate"
)

var deriveFlags struct {
	dbPath     string
	artifactID int64
	fileID     int64
	jsonOut    bool
}

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive correlation entries from one artifact or file in the open case",
	Long: `Derives the normalized correlation values (email, phone, domain, MAC, IMEI,
file hash, ...) a single artifact or file contributes, without writing
anything to the central repository. Useful for inspecting what ingest
would record.`,
	RunE: runDerive,
}

func init() {
	f := deriveCmd.Flags()
	f.StringVar(&deriveFlags.dbPath, "case-db", "", "Case DB path")
	f.Int64Var(&deriveFlags.artifactID, "artifact-id", 0, "Artifact DB ID")
	f.Int64Var(&deriveFlags.fileID, "file-id", 0, "File DB ID")
	f.BoolVar(&deriveFlags.jsonOut, "json", false, "Emit entries as JSON")
}

func runDerive(cmd *cobra.Command, _ []string) error {
	if (deriveFlags.artifactID == 0) == (deriveFlags.fileID == 0) {
		return fmt.Errorf("exactly one of --artifact-id or --file-id is required")
	}

	cases, err := casedb.Open(caseDBPath(deriveFlags.dbPath))
	if err != nil {
		return fmt.Errorf("open case db: %w", err)
	}
	defer cases.Close()

	reg := correlate.NewBuiltinRegistry()
	x := correlate.NewExtractor(cases, reg)

	var entries []correlate.Entry
	switch {
	case deriveFlags.artifactID != 0:
		a, err := cases.ArtifactByID(deriveFlags.artifactID)
		if err != nil {
			return fmt.Errorf("load artifact: %w", err)
		}
		if a == nil {
			return fmt.Errorf("artifact #%d not found", deriveFlags.artifactID)
		}
		entries = x.EntriesForArtifact(a)
	default:
		f, err := cases.FileByID(deriveFlags.fileID)
		if err != nil {
			return fmt.Errorf("load file: %w", err)
		}
		if f == nil {
			return fmt.Errorf("file #%d not found", deriveFlags.fileID)
		}
		if e := x.EntryForFile(f); e != nil {
			entries = append(entries, *e)
		}
	}

	out := cmd.OutOrStdout()
	if deriveFlags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No correlation entries derived.")
		return nil
	}
	printEntries(out, reg, entries)
	return nil
}
