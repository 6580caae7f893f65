// Package ingest walks a data source and feeds every derivable correlation
// entry into the central repository. Per-item failures are logged and
// counted, never abort the run.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"crosshatch/internal/casedb"
	"crosshatch/internal/centralrepo"
	"crosshatch/internal/correlate"
	"crosshatch/internal/logging"
)

// Result summarizes one ingest run over a data source.
type Result struct {
	Artifacts int // artifacts examined
	Files     int // files examined
	Entries   int // entries written to the repository
	Skipped   int // files with no derivable entry (ineligible or unhashed)
	Failed    int // repository writes that failed
}

// Runner derives and persists correlation entries for whole data sources.
type Runner struct {
	cases    casedb.Accessor
	repo     centralrepo.Repo
	parallel int
	logger   *slog.Logger
}

// New returns a Runner. parallel bounds worker concurrency; values < 1 run
// serially.
func New(cases casedb.Accessor, repo centralrepo.Repo, parallel int) *Runner {
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{
		cases:    cases,
		repo:     repo,
		parallel: parallel,
		logger:   logging.New("ingest"),
	}
}

// Run derives correlation entries for every artifact and file of the data
// source and records them in the central repository. The case is registered
// in the repository first so entries have a case to hang off.
func (r *Runner) Run(ctx context.Context, dataSourceID int64) (*Result, error) {
	cur, err := r.cases.CurrentCase()
	if err != nil {
		return nil, fmt.Errorf("open case: %w", err)
	}
	if _, err := r.repo.EnsureCase(cur.UUID, cur.Name); err != nil {
		return nil, fmt.Errorf("register case in repository: %w", err)
	}

	ds, err := r.cases.DataSourceByID(dataSourceID)
	if err != nil {
		return nil, fmt.Errorf("load data source %d: %w", dataSourceID, err)
	}
	if ds == nil {
		return nil, fmt.Errorf("data source %d not found", dataSourceID)
	}

	artifacts, err := r.cases.ArtifactsByDataSource(dataSourceID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	files, err := r.cases.FilesByDataSource(dataSourceID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	r.logger.Info("ingest started",
		"data_source", ds.Name, "artifacts", len(artifacts), "files", len(files), "workers", r.parallel)

	x := correlate.NewExtractor(r.cases, r.repo)

	// One slot per item; workers never share a slot, so no locking needed.
	artResults := make([]Result, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, a := range artifacts {
		i, a := i, a
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			artResults[i] = r.ingestArtifact(x, a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fileResults := make([]Result, len(files))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileResults[i] = r.ingestFile(x, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &Result{Artifacts: len(artifacts), Files: len(files)}
	for _, res := range artResults {
		total.Entries += res.Entries
		total.Failed += res.Failed
	}
	for _, res := range fileResults {
		total.Entries += res.Entries
		total.Skipped += res.Skipped
		total.Failed += res.Failed
	}

	r.logger.Info("ingest finished",
		"data_source", ds.Name, "entries", total.Entries, "skipped", total.Skipped, "failed", total.Failed)
	return total, nil
}

func (r *Runner) ingestArtifact(x *correlate.Extractor, a *casedb.Artifact) Result {
	var res Result
	for _, e := range x.EntriesForArtifact(a) {
		if _, err := r.repo.AddEntry(e); err != nil {
			r.logger.Error("store entry", "artifact_id", a.ID, "type", int(e.Type), "error", err)
			res.Failed++
			continue
		}
		res.Entries++
	}
	return res
}

func (r *Runner) ingestFile(x *correlate.Extractor, f *casedb.File) Result {
	var res Result
	e := x.EntryForFile(f)
	if e == nil {
		res.Skipped++
		return res
	}
	if _, err := r.repo.AddEntry(*e); err != nil {
		r.logger.Error("store file entry", "file_id", f.ID, "error", err)
		res.Failed++
		return res
	}
	res.Entries++
	return res
}
