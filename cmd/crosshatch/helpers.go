package main

import (
	"fmt"
	"io"

	"crosshatch/internal/correlate"
)

// caseDBPath resolves the case database path: flag wins, then config.
func caseDBPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.CaseDB
}

// repoDBPath resolves the central repository path: flag wins, then config.
func repoDBPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.RepoDB
}

// typeName renders a correlation type id as its registry name, falling
// back to the numeric id for types the registry does not know.
func typeName(reg correlate.Registry, id correlate.TypeID) string {
	t, err := reg.TypeByID(id)
	if err != nil {
		return fmt.Sprintf("type-%d", id)
	}
	return t.Name
}

// printEntries writes one line per derived entry.
func printEntries(w io.Writer, reg correlate.Registry, entries []correlate.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%-18s %-40s %s\n", typeName(reg, e.Type), e.Value, e.FilePath)
	}
}
