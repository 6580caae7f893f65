package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"crosshatch/internal/centralrepo"
	"crosshatch/internal/correlate"
)

var statusFlags struct {
	repoDB string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show central repository entry counts per correlation type",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFlags.repoDB, "repo-db", "", "Central repository DB path")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	repo, err := centralrepo.Open(repoDBPath(statusFlags.repoDB))
	if err != nil {
		return fmt.Errorf("open central repository: %w", err)
	}
	defer repo.Close()

	counts, err := repo.CountsByType()
	if err != nil {
		return fmt.Errorf("count entries: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(counts) == 0 {
		fmt.Fprintln(out, "Central repository is empty. Run 'crosshatch ingest' first.")
		return nil
	}

	ids := make([]correlate.TypeID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var total int64
	for _, id := range ids {
		fmt.Fprintf(out, "%-20s %d\n", typeName(repo, id), counts[id])
		total += counts[id]
	}
	fmt.Fprintf(out, "%-20s %d\n", "total", total)
	return nil
}
