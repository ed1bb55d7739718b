// Package pipeline runs one acquisition-to-snapshot pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/brogergvhs/featsnap/internal/catalog"
	"github.com/brogergvhs/featsnap/internal/extract"
	"github.com/brogergvhs/featsnap/internal/materialize"
	"github.com/brogergvhs/featsnap/internal/snapshot"
	"github.com/brogergvhs/featsnap/internal/source"
)

type Logger interface {
	Debugf(string, ...any)
	Infof(string, ...any)
	Warnf(string, ...any)
}

type Options struct {
	// SnapshotPath is a locally saved page. Empty means fetch the remote page.
	SnapshotPath string
	OutputPath   string
	Acquirer     *source.Acquirer
	Log          Logger
}

// Report describes a completed run.
type Report struct {
	Origin     string
	Remote     bool
	Strategy   extract.Strategy
	Fragments  int
	Method     materialize.Method
	Partial    bool
	Degraded   bool
	Categories int
	Scenarios  int
	YearModels int
	Bytes      int64
	Written    int
	OutputPath string
	Document   *catalog.Document
}

// Run acquires the page, extracts and materializes the catalog scripts,
// groups the entries and writes the snapshot. The stages run strictly in
// sequence; the first fatal error stops the run and nothing is written.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Acquirer == nil {
		return nil, errors.New("pipeline: no acquirer configured")
	}
	if opts.OutputPath == "" {
		opts.OutputPath = snapshot.DefaultPath
	}
	log := opts.Log

	page, err := opts.Acquirer.Acquire(ctx, opts.SnapshotPath)
	if err != nil {
		return nil, err
	}
	log.Debugf("Acquired %s (%d bytes, charset %s)", page.Origin, page.Bytes, page.Charset)

	ex := extract.New(log)

	region, err := ex.Locate(page.HTML)
	if err != nil {
		return nil, err
	}
	log.Debugf("Located catalog region using %s strategy (%d bytes of markup)", region.Strategy, len(region.HTML()))

	script, err := ex.Extract(region)
	if err != nil {
		return nil, err
	}

	bindings, err := materialize.New(log).Materialize(ctx, script.Fragments)
	if err != nil {
		return nil, err
	}

	res, err := catalog.Transform(bindings.YearModels, bindings.Catalog)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", materialize.ErrParseFailed, err)
	}
	if res.Partial {
		log.Infof("Catalog mapping is empty; writing %d year/model combos with no categories", len(res.Document.YearModels))
	}

	n, err := snapshot.Write(opts.OutputPath, &res.Document)
	if err != nil {
		return nil, err
	}
	log.Debugf("Wrote %s", opts.OutputPath)

	return &Report{
		Origin:     page.Origin,
		Remote:     page.Remote,
		Strategy:   region.Strategy,
		Fragments:  len(script.Fragments),
		Method:     bindings.Method,
		Partial:    res.Partial,
		Degraded:   script.Degraded,
		Categories: len(res.Document.Categories),
		Scenarios:  res.Document.ScenarioCount(),
		YearModels: len(res.Document.YearModels),
		Bytes:      page.Bytes,
		Written:    n,
		OutputPath: opts.OutputPath,
		Document:   &res.Document,
	}, nil
}
