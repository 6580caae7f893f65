package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crosshatch/internal/casedb"
	"crosshatch/internal/centralrepo"
	"crosshatch/internal/ingest"
)

var ingestFlags struct {
	caseDB       string
	repoDB       string
	dataSourceID int64
	parallel     int
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Derive correlation entries for a whole data source into the central repository",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestFlags.caseDB, "case-db", "", "Case DB path")
	f.StringVar(&ingestFlags.repoDB, "repo-db", "", "Central repository DB path")
	f.Int64Var(&ingestFlags.dataSourceID, "data-source-id", 0, "Data source DB ID (required)")
	f.IntVar(&ingestFlags.parallel, "parallel", 0, "Worker count (default from config)")

	_ = ingestCmd.MarkFlagRequired("data-source-id")
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cases, err := casedb.Open(caseDBPath(ingestFlags.caseDB))
	if err != nil {
		return fmt.Errorf("open case db: %w", err)
	}
	defer cases.Close()

	repo, err := centralrepo.Open(repoDBPath(ingestFlags.repoDB))
	if err != nil {
		return fmt.Errorf("open central repository: %w", err)
	}
	defer repo.Close()

	parallel := ingestFlags.parallel
	if parallel <= 0 {
		parallel = cfg.Parallel
	}

	runner := ingest.New(cases, repo, parallel)
	res, err := runner.Run(cmd.Context(), ingestFlags.dataSourceID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Artifacts: %d\n", res.Artifacts)
	fmt.Fprintf(out, "Files:     %d\n", res.Files)
	fmt.Fprintf(out, "Entries:   %d\n", res.Entries)
	fmt.Fprintf(out, "Skipped:   %d\n", res.Skipped)
	if res.Failed > 0 {
		fmt.Fprintf(out, "Failed:    %d\n", res.Failed)
	}
	return nil
}
