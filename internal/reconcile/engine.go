// Package reconcile runs one attendance check: it picks the target group from
// the roster, finds who is present in the submission text, and builds the
// report.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"rollcall/internal/extract"
	"rollcall/internal/logging"
	"rollcall/internal/match"
	"rollcall/internal/names"
	"rollcall/internal/report"
	"rollcall/internal/roster"
)

var (
	// ErrEmptySubmission is returned for empty or whitespace-only text.
	ErrEmptySubmission = errors.New("submission text is empty")

	// ErrEmptyRoster is returned when both roster groups are empty.
	ErrEmptyRoster = errors.New("roster is empty; replace the roster first")
)

// Mode selects the matching strategy.
type Mode string

const (
	ModeTurbo Mode = "turbo"
	ModeAI    Mode = "ai"
)

// ParseMode resolves a mode flag. Empty selects ModeTurbo.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTurbo:
		return ModeTurbo, nil
	case ModeAI:
		return ModeAI, nil
	}
	return "", fmt.Errorf("unknown mode %q (valid: turbo, ai)", s)
}

// RosterSource supplies the current roster.
type RosterSource interface {
	Current() roster.Roster
}

// Extractor is the AI strategy.
type Extractor interface {
	Extract(ctx context.Context, rawText string, sel extract.Selector) extract.Result
}

// Request is one check.
type Request struct {
	Text  string
	Scope roster.Scope
	Mode  Mode
	Model extract.Selector // ai mode only
}

// Outcome is the result of one check.
type Outcome struct {
	RunID   string
	Report  report.Report
	Mode    Mode
	Tier    extract.Tier // ai mode only
	Failure error        // failure reported by the extractor, if any
}

// Engine serializes checks against one roster.
type Engine struct {
	mu      sync.Mutex
	roster  RosterSource
	turbo   *match.Turbo
	ai      Extractor
	reports *report.Builder
}

// New creates an Engine. ai may be nil when only turbo mode is used.
func New(source RosterSource, turbo *match.Turbo, ai Extractor, reports *report.Builder) *Engine {
	if turbo == nil {
		turbo = match.NewTurbo(names.DefaultClass)
	}
	if reports == nil {
		reports = &report.Builder{}
	}
	return &Engine{roster: source, turbo: turbo, ai: ai, reports: reports}
}

// Run performs one check. Only one run executes at a time.
func (e *Engine) Run(ctx context.Context, req Request) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(req.Text) == "" {
		return Outcome{}, ErrEmptySubmission
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeTurbo
	}
	scope := req.Scope
	if scope == "" {
		scope = roster.ScopePrimary
	}

	r := e.roster.Current()
	if r.IsEmpty() {
		return Outcome{}, ErrEmptyRoster
	}

	out := Outcome{RunID: uuid.NewString(), Mode: mode}
	log := logging.WithRequestID(logging.CategoryRun, out.RunID).
		WithField("mode", string(mode)).
		WithField("scope", string(scope))
	timer := logging.StartTimer(logging.CategoryRun, "reconcile")
	defer timer.Stop()

	target := r.Target(scope)
	var candidates names.Set

	switch mode {
	case ModeTurbo:
		candidates = e.turbo.Match(target, req.Text)
	case ModeAI:
		if e.ai == nil {
			return Outcome{}, fmt.Errorf("ai mode is not configured")
		}
		res := e.ai.Extract(ctx, req.Text, req.Model)
		candidates = res.Names
		out.Tier = res.Tier
		out.Failure = res.Err
		if res.Err != nil {
			log.Warn("extraction reported failure: %v", res.Err)
		}
	default:
		return Outcome{}, fmt.Errorf("unknown mode %q", mode)
	}

	out.Report = e.reports.Build(target, candidates)
	log.Info("run complete: target=%d present=%d missing=%d percent=%s",
		out.Report.Total, out.Report.PresentCount, out.Report.MissingCount, out.Report.PercentString())
	return out, nil
}
