// Package demo sequences the three-phase search comparison: the same fixed
// query run through lexical search, hybrid search, and the full agentic chat
// pipeline, side by side.
package demo

import (
	"context"
	"log/slog"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/conversation"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/extract"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/resolve"
)

// Phase is one stage of the demo walkthrough.
type Phase string

const (
	PhaseIntro    Phase = "intro"
	PhaseLexical  Phase = "lexical"
	PhaseHybrid   Phase = "hybrid"
	PhaseAgentic  Phase = "agentic"
	PhaseComplete Phase = "complete"
)

// phaseOrder is the canonical walkthrough sequence.
var phaseOrder = []Phase{PhaseIntro, PhaseLexical, PhaseHybrid, PhaseAgentic, PhaseComplete}

const resultLimit = 5

// Searcher runs the two non-agentic search modes.
type Searcher interface {
	SearchLexical(ctx context.Context, query string, limit int) (*entity.SearchResult, error)
	SearchHybrid(ctx context.Context, query string, limit int) (*entity.SearchResult, error)
}

// TurnRunner runs one full chat turn through the consumer pipeline and
// returns the terminal reducer state.
type TurnRunner interface {
	RunTurn(ctx context.Context, message, userID string) (conversation.State, error)
}

// Result is the stored outcome of one phase. A phase failure is kept here
// rather than propagated so earlier phases' results survive it.
type Result struct {
	Phase    Phase
	Products []entity.Product
	Turn     *conversation.State
	Err      error
}

// Orchestrator is the demo phase machine. Phases advance only by explicit
// external action; there are no timers and no auto-advance.
type Orchestrator struct {
	query    string
	userID   string
	search   Searcher
	turns    TurnRunner
	resolver *resolve.Resolver
	logger   *slog.Logger

	phase   Phase
	results map[Phase]*Result
}

// New creates an orchestrator positioned at the intro phase.
func New(query, userID string, search Searcher, turns TurnRunner, lookup resolve.ProductLookup, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		query:    query,
		userID:   userID,
		search:   search,
		turns:    turns,
		resolver: resolve.New(lookup, logger),
		logger:   logger,
		phase:    PhaseIntro,
		results:  make(map[Phase]*Result),
	}
}

// Query returns the fixed demo query shared by every phase.
func (o *Orchestrator) Query() string {
	return o.query
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Advance moves to the next phase in the walkthrough and returns it.
// Advancing past complete stays at complete.
func (o *Orchestrator) Advance() Phase {
	for i, p := range phaseOrder {
		if p == o.phase && i+1 < len(phaseOrder) {
			o.phase = phaseOrder[i+1]
			break
		}
	}
	return o.phase
}

// Select jumps directly to a phase and resets that phase's stored result;
// the other phases keep theirs.
func (o *Orchestrator) Select(p Phase) {
	if !validPhase(p) {
		return
	}
	o.phase = p
	delete(o.results, p)
}

// Result returns the stored result for a phase, or nil if it has not run.
func (o *Orchestrator) Result(p Phase) *Result {
	return o.results[p]
}

// Run executes the current phase against the fixed query and stores its
// result. Intro and complete are presentation-only phases with nothing to
// fetch.
func (o *Orchestrator) Run(ctx context.Context) *Result {
	result := &Result{Phase: o.phase}

	switch o.phase {
	case PhaseLexical:
		res, err := o.search.SearchLexical(ctx, o.query, resultLimit)
		if err != nil {
			result.Err = err
		} else {
			result.Products = res.Products
		}

	case PhaseHybrid:
		res, err := o.search.SearchHybrid(ctx, o.query, resultLimit)
		if err != nil {
			result.Err = err
		} else {
			result.Products = res.Products
		}

	case PhaseAgentic:
		state, err := o.turns.RunTurn(ctx, o.query, o.userID)
		if err != nil {
			result.Err = err
			break
		}
		// Post-completion reference extraction and resolution; idempotent
		// over the same step list.
		ids := extract.ProductIDs(state.Message.Steps)
		state.Message.Products = o.resolver.Resolve(ctx, ids)
		result.Turn = &state
		result.Products = state.Message.Products

	default:
		return result
	}

	if result.Err != nil {
		o.logger.Warn("demo phase failed",
			"phase", o.phase,
			"error", result.Err,
		)
	}
	o.results[o.phase] = result
	return result
}

func validPhase(p Phase) bool {
	for _, known := range phaseOrder {
		if p == known {
			return true
		}
	}
	return false
}
