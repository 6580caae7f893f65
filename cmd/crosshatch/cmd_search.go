package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"crosshatch/internal/centralrepo"
	"crosshatch/internal/correlate"
)

var searchFlags struct {
	repoDB  string
	typeID  int
	jsonOut bool
}

var searchCmd = &cobra.Command{
	Use:   "search <value>",
	Short: "Find every sighting of a value across all ingested cases",
	Long: `Normalizes the given value for the chosen correlation type and lists
every occurrence recorded in the central repository, across all cases.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.repoDB, "repo-db", "", "Central repository DB path")
	f.IntVar(&searchFlags.typeID, "type", -1, "Correlation type id (see 'crosshatch types') (required)")
	f.BoolVar(&searchFlags.jsonOut, "json", false, "Emit occurrences as JSON")

	_ = searchCmd.MarkFlagRequired("type")
}

func runSearch(cmd *cobra.Command, args []string) error {
	repo, err := centralrepo.Open(repoDBPath(searchFlags.repoDB))
	if err != nil {
		return fmt.Errorf("open central repository: %w", err)
	}
	defer repo.Close()

	typ, err := repo.TypeByID(correlate.TypeID(searchFlags.typeID))
	if err != nil {
		return err
	}
	normalized, err := typ.Normalize(args[0])
	if err != nil {
		return fmt.Errorf("normalize %q as %s: %w", args[0], typ.Name, err)
	}

	hits, err := repo.FindByTypeValue(typ.ID, args[0])
	if err != nil {
		return fmt.Errorf("search repository: %w", err)
	}

	out := cmd.OutOrStdout()
	if searchFlags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Fprintf(out, "No occurrences of %s %q\n", typ.Name, normalized)
		return nil
	}
	fmt.Fprintf(out, "%s %q seen %d time(s):\n", typ.Name, normalized, len(hits))
	for _, h := range hits {
		fmt.Fprintf(out, "  case %q (ds #%d) %s  %s\n", h.CaseName, h.DataSourceID, h.FilePath, h.CreatedAt)
	}
	return nil
}
