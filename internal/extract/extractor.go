// Package extract turns free-form submission text into candidate names by
// asking a language model, local tier first and cloud tier second.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rollcall/internal/llm"
	"rollcall/internal/logging"
	"rollcall/internal/names"
)

var (
	// ErrMissingCredential is reported when the cloud tier is needed but no
	// API key is configured.
	ErrMissingCredential = errors.New("no local model available and no cloud API key configured")

	// ErrCloudFailed wraps the cause of a failed cloud call.
	ErrCloudFailed = errors.New("cloud extraction failed")
)

// Tier names the backend that produced content.
type Tier string

const (
	TierNone  Tier = ""
	TierLocal Tier = "local"
	TierCloud Tier = "cloud"
)

// Selector picks a model. Any selector containing "cloud" (case-insensitive)
// requests the cloud tier directly.
type Selector string

// CloudSelector is the list entry standing for the cloud tier.
const CloudSelector Selector = "cloud"

// WantsCloud reports whether the selector requests the cloud tier.
func (s Selector) WantsCloud() bool {
	return strings.Contains(strings.ToLower(string(s)), "cloud")
}

// OutcomeKind classifies a single tier attempt.
type OutcomeKind int

const (
	OutcomeUnavailable OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "unavailable"
	}
}

// TierOutcome is what one tier attempt returns.
type TierOutcome struct {
	Kind    OutcomeKind
	Content string
	Err     error
}

// Success wraps usable content.
func Success(content string) TierOutcome { return TierOutcome{Kind: OutcomeSuccess, Content: content} }

// Unavailable means the tier could not be tried or gave nothing.
func Unavailable() TierOutcome { return TierOutcome{Kind: OutcomeUnavailable} }

// Failed carries the reason a tier attempt failed.
func Failed(err error) TierOutcome { return TierOutcome{Kind: OutcomeFailed, Err: err} }

// Result is the outcome of one Extract call.
type Result struct {
	Names names.Set
	Tier  Tier
	Err   error // reported failure, nil otherwise
}

// tier is one step of the extraction strategy list.
type tier interface {
	name() Tier
	// reportsFailure reports whether a Failed outcome ends extraction and
	// goes to the failure hook instead of falling through.
	reportsFailure() bool
	attempt(ctx context.Context, prompt string, sel Selector) TierOutcome
}

// Options configures an Extractor.
type Options struct {
	Local        llm.LocalBackend // nil disables the local tier
	LocalEnabled bool
	LocalModel   string // used when the selector is empty and no model is listed
	Prefer       string // substring picking the default model in Models

	Cloud      llm.ChatCompleter // nil means no credential
	CloudModel string

	Class names.CharClass

	// OnFailure receives each reported failure exactly once.
	OnFailure func(error)
}

// Extractor runs the tier list.
type Extractor struct {
	opts  Options
	tiers []tier
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	if opts.Class == "" {
		opts.Class = names.DefaultClass
	}
	return &Extractor{
		opts: opts,
		tiers: []tier{
			&localTier{backend: opts.Local, enabled: opts.LocalEnabled, model: opts.LocalModel},
			&cloudTier{client: opts.Cloud, model: opts.CloudModel},
		},
	}
}

// Extract asks the tiers in order for a JSON name array and cleans the
// first content produced. It never panics.
func (e *Extractor) Extract(ctx context.Context, rawText string, sel Selector) (result Result) {
	result = Result{Names: names.NewSet()}

	var reportOnce sync.Once
	report := func(err error) {
		reportOnce.Do(func() {
			result.Err = err
			logging.ExtractError("extraction failed: %v", err)
			if e.opts.OnFailure != nil {
				e.opts.OnFailure(err)
			}
		})
	}

	defer func() {
		if r := recover(); r != nil {
			result.Names = names.NewSet()
			result.Tier = TierNone
			report(fmt.Errorf("extractor panic: %v", r))
		}
	}()

	sel = e.resolveSelector(ctx, sel)
	prompt := BuildPrompt(rawText)
	for _, t := range e.tiers {
		out := t.attempt(ctx, prompt, sel)
		logging.ExtractDebug("tier %s: %s", t.name(), out.Kind)

		switch out.Kind {
		case OutcomeSuccess:
			parsed, err := ParseNames(out.Content, e.opts.Class)
			if err != nil {
				logging.ExtractWarn("tier %s returned unparseable output: %v", t.name(), err)
			}
			result.Names = parsed
			result.Tier = t.name()
			logging.Extract("tier %s extracted %d names", t.name(), parsed.Len())
			return result
		case OutcomeFailed:
			if t.reportsFailure() {
				report(out.Err)
				return result
			}
			logging.ExtractDebug("tier %s failed, falling through: %v", t.name(), out.Err)
		}
	}
	return result
}

// resolveSelector maps an empty selector to the preferred installed model.
// LocalModel is used only when no local model is listed.
func (e *Extractor) resolveSelector(ctx context.Context, sel Selector) Selector {
	if sel != "" || e.opts.Local == nil || !e.opts.LocalEnabled {
		return sel
	}
	if def := e.Models(ctx).DefaultSelector(); def != "" && !def.WantsCloud() {
		logging.ExtractDebug("using installed model %s", def)
		return def
	}
	return sel
}

// =============================================================================
// TIERS
// =============================================================================

type localTier struct {
	backend llm.LocalBackend
	enabled bool
	model   string
}

func (t *localTier) name() Tier           { return TierLocal }
func (t *localTier) reportsFailure() bool { return false }

func (t *localTier) attempt(ctx context.Context, prompt string, sel Selector) TierOutcome {
	if t.backend == nil || !t.enabled || sel.WantsCloud() {
		return Unavailable()
	}
	model := string(sel)
	if model == "" {
		model = t.model
	}
	if model == "" {
		return Unavailable()
	}

	content, err := t.backend.Generate(ctx, model, prompt)
	if err != nil {
		return Failed(err)
	}
	if strings.TrimSpace(content) == "" {
		return Unavailable()
	}
	return Success(content)
}

type cloudTier struct {
	client llm.ChatCompleter
	model  string
}

func (t *cloudTier) name() Tier           { return TierCloud }
func (t *cloudTier) reportsFailure() bool { return true }

func (t *cloudTier) attempt(ctx context.Context, prompt string, _ Selector) TierOutcome {
	if t.client == nil {
		return Failed(ErrMissingCredential)
	}
	content, err := t.client.ChatComplete(ctx, t.model, llm.UserMessage(prompt))
	if err != nil {
		return Failed(fmt.Errorf("%w: %s: %w", ErrCloudFailed, t.client.Name(), err))
	}
	logging.Extract("switched to cloud provider %s", t.client.Name())
	return Success(content)
}
