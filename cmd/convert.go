package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brogergvhs/featsnap/internal/config"
	"github.com/brogergvhs/featsnap/internal/pipeline"
	"github.com/brogergvhs/featsnap/internal/source"
	"github.com/brogergvhs/featsnap/internal/ui"
	"github.com/brogergvhs/featsnap/internal/util"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	flagOutput     string
	flagURL        string
	flagTimeout    time.Duration
	flagUserAgent  string
	flagNoProgress bool
	flagWatch      bool
)

// watchDebounce coalesces the burst of events editors and browsers emit
// while saving a file.
const watchDebounce = 300 * time.Millisecond

func init() {
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "snapshot output path (default _data/features.json)")
	rootCmd.Flags().StringVar(&flagURL, "url", "", "remote page to fetch when no snapshot path is given")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "remote fetch timeout (default 15s)")
	rootCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	rootCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "do not draw the download progress bar")
	rootCmd.Flags().BoolVar(&flagWatch, "watch", false, "re-run whenever the local snapshot changes")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		NoProgress:   flagNoProgress,
		Output:       flagOutput,
		SourceURL:    flagURL,
		Timeout:      flagTimeout,
		UserAgent:    flagUserAgent,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	defer logSvc.Sync()

	logSvc.Debugf("Config file: %s", usedPath)

	var snapshotPath string
	if len(args) == 1 {
		snapshotPath = args[0]
	}
	if flagWatch && snapshotPath == "" {
		return fmt.Errorf("--watch needs a local snapshot path")
	}

	opts := pipeline.Options{
		SnapshotPath: snapshotPath,
		OutputPath:   cfg.Output,
		Log:          logSvc,
	}

	newAcquirer := func(tracker source.Tracker) *source.Acquirer {
		return source.New(source.Options{
			URL:     cfg.SourceURL,
			Timeout: cfg.Timeout,
			Headers: util.BrowserHeaders,
			Tracker: tracker,
			Log:     logSvc,
			Client: util.NewHTTPClient(util.HTTPClientOptions{
				UserAgent:   cfg.UserAgent,
				DebugLogger: logSvc,
			}),
		})
	}

	if flagWatch {
		opts.Acquirer = newAcquirer(nil)
		return watch(cmd.Context(), opts, logSvc)
	}

	util.SetupInterruptHandler(cfg.Output)

	var pm *ui.MPBProgressManager
	if snapshotPath == "" && cfg.Progress {
		pm = ui.NewProgressManager()
		opts.Acquirer = newAcquirer(pm)
	} else {
		opts.Acquirer = newAcquirer(nil)
	}

	if snapshotPath == "" {
		logSvc.Infof("Fetching %s", opts.Acquirer.URL())
	}

	rep, err := pipeline.Run(context.Background(), opts)
	if pm != nil {
		pm.Close()
	}
	if err != nil {
		return err
	}

	report(rep, logSvc)
	return nil
}

func report(rep *pipeline.Report, log *ui.Logger) {
	log.Infof("Wrote %s from %s", rep.OutputPath, rep.Origin)
	log.Debugf("Region strategy: %s, %d fragments, materialized via %s", rep.Strategy, rep.Fragments, rep.Method)

	stats := ui.Stats{
		Categories: rep.Categories,
		Scenarios:  rep.Scenarios,
		YearModels: rep.YearModels,
		Bytes:      rep.Bytes,
		Partial:    rep.Partial,
	}
	stats.Print(os.Stdout)
}

// watch runs the pipeline once and again after every change to the
// snapshot file until interrupted. Failed runs are logged and watching
// continues.
func watch(parent context.Context, opts pipeline.Options, log *ui.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, err := filepath.Abs(opts.SnapshotPath)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot start file watcher: %w", err)
	}
	defer w.Close()

	// Browsers and editors often replace the file instead of writing it in
	// place, so the directory is watched and events are filtered by name.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(target), err)
	}

	runOnce := func() {
		rep, err := pipeline.Run(ctx, opts)
		if err != nil {
			log.Errorf("Run failed: %v", err)
			return
		}
		report(rep, log)
	}

	runOnce()
	log.Infof("Watching %s for changes (Ctrl+C to stop)", opts.SnapshotPath)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			util.CleanupUnfinishedSnapshots(opts.OutputPath)
			log.Infof("Stopped watching")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				log.Debugf("Change detected: %s", ev)
				debounce = time.After(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Watcher error: %v", err)

		case <-debounce:
			debounce = nil
			runOnce()
		}
	}
}
