package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rollcall/internal/extract"
	"rollcall/internal/match"
	"rollcall/internal/names"
	"rollcall/internal/reconcile"
	"rollcall/internal/report"
	"rollcall/internal/roster"
	"rollcall/internal/watch"
)

var (
	checkScope string
	checkMode  string
	checkModel string
	checkFile  string
	checkJSON  bool
)

// checkCmd reconciles one submission
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check submission text against the roster",
	Long: `Reads submission text from --file or stdin and reports who on the roster
is present and who is missing.

Example:
  pbpaste | rollcall check --scope all
  rollcall check --mode ai --model qwen3:8b --file chat.txt`,
	RunE: runCheck,
}

// watchCmd re-runs check whenever the submission file is written
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run check each time the submission file changes",
	RunE:  runWatch,
}

func init() {
	for _, c := range []*cobra.Command{checkCmd, watchCmd} {
		c.Flags().StringVar(&checkScope, "scope", "primary", "Target group: primary or all")
		c.Flags().StringVar(&checkMode, "mode", "turbo", "Matching mode: turbo or ai")
		c.Flags().StringVar(&checkModel, "model", "", "Model selector for ai mode (see 'rollcall models'); 'cloud' forces the cloud tier")
		c.Flags().StringVarP(&checkFile, "file", "f", "", "Submission file (default: stdin)")
		c.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	}
	watchCmd.MarkFlagRequired("file")
}

// checkRun holds everything one check needs.
type checkRun struct {
	engine *reconcile.Engine
	req    reconcile.Request
}

func newCheckRun(cmd *cobra.Command) (*checkRun, error) {
	scope, err := roster.ParseScope(checkScope)
	if err != nil {
		return nil, err
	}
	mode, err := reconcile.ParseMode(checkMode)
	if err != nil {
		return nil, err
	}
	class, err := names.ParseCharClass(cfg.Names.CharClass)
	if err != nil {
		return nil, err
	}
	builder, err := report.NewBuilder(cfg.Report.SortLocale)
	if err != nil {
		return nil, err
	}

	var ai reconcile.Extractor
	if mode == reconcile.ModeAI {
		stderr := cmd.ErrOrStderr()
		ex, err := extract.NewFromConfig(cfg, func(err error) {
			fmt.Fprintf(stderr, "warning: %v\n", err)
		})
		if err != nil {
			return nil, err
		}
		ai = ex
	}

	store := roster.Open(cfg.Roster.Path)
	return &checkRun{
		engine: reconcile.New(store, match.NewTurbo(class), ai, builder),
		req: reconcile.Request{
			Scope: scope,
			Mode:  mode,
			Model: extract.Selector(checkModel),
		},
	}, nil
}

func (c *checkRun) run(ctx context.Context, cmd *cobra.Command, text string) error {
	req := c.req
	req.Text = text
	outcome, err := c.engine.Run(ctx, req)
	if err != nil {
		return err
	}
	logger.Debug("check complete", zap.String("run_id", outcome.RunID), zap.String("tier", string(outcome.Tier)))

	if checkJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(outcome.Report)
	}
	printReport(cmd.OutOrStdout(), req, outcome, cfg.Report.NoticePrefix, cfg.Report.Mention)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	c, err := newCheckRun(cmd)
	if err != nil {
		return err
	}

	var text string
	if checkFile == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	} else {
		text, err = readInput(cmd, checkFile)
		if err != nil {
			return err
		}
	}

	return c.run(ctx, cmd, text)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	c, err := newCheckRun(cmd)
	if err != nil {
		return err
	}
	return watchSubmissions(ctx, cmd, c, checkFile)
}

// watchSubmissions checks path once if it exists, then again after every
// write, until ctx is done.
func watchSubmissions(ctx context.Context, cmd *cobra.Command, c *checkRun, path string) error {
	handle := serialize(func(ctx context.Context, path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			return
		}
		if err := c.run(ctx, cmd, string(data)); err != nil && !errors.Is(err, reconcile.ErrEmptySubmission) {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	})

	w, err := watch.New(path, watch.DefaultDebounce, handle)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", w.Path())
	if _, err := os.Stat(w.Path()); err == nil {
		handle(ctx, w.Path())
	}

	<-ctx.Done()
	stats := w.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped watching: %d events, %d runs, %d errors\n", stats.Events, stats.Runs, stats.Errors)
	return nil
}

// serialize wraps h so at most one call runs at a time.
func serialize(h watch.Handler) watch.Handler {
	var mu sync.Mutex
	return func(ctx context.Context, path string) {
		mu.Lock()
		defer mu.Unlock()
		h(ctx, path)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
