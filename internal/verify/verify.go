// Package verify orchestrates one verification run: parse both artifacts,
// extract semantic units, run the comparator and the three pattern detectors
// concurrently, assess impact, validate rules, and score the verdict.
package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"semgate/internal/ast"
	"semgate/internal/compare"
	"semgate/internal/detect"
	"semgate/internal/extractor"
	"semgate/internal/report"
	"semgate/internal/rules"
)

// Artifact is one immutable source text with its identity.
type Artifact struct {
	ID     string
	Source []byte
}

// Pair is one baseline/candidate verification input.
type Pair struct {
	Baseline  Artifact
	Candidate Artifact
}

// Options configures a Verifier.
type Options struct {
	Compare     compare.Options
	Detect      detect.Options
	Report      report.Options
	Rules       rules.Config
	CustomRules []rules.Rule

	// Workers bounds batch parallelism. Default: 4.
	Workers int

	// PairTimeout bounds the verification of one pair so a pathological
	// input cannot stall a batch. Default: 30s.
	PairTimeout time.Duration

	// CacheSize bounds the per-run parse memoization cache. Default: 128.
	CacheSize int
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{
		Compare:     compare.DefaultOptions(),
		Detect:      detect.DefaultOptions(),
		Report:      report.DefaultOptions(),
		Workers:     4,
		PairTimeout: 30 * time.Second,
		CacheSize:   128,
	}
}

// parsed memoizes the outcome of parsing and extracting one artifact.
type parsed struct {
	tree    *ast.Tree
	program *extractor.ProgramRepresentation
}

// Verifier runs verification over pairs and batches. It owns no mutable
// engine state beyond the per-run memoization cache, which is safe for
// concurrent use.
type Verifier struct {
	opts   Options
	ext    *extractor.Extractor
	engine *rules.Engine
	cache  *lru.Cache[string, *parsed]
}

// New validates the rule configuration and builds a Verifier. Configuration
// problems fail here, before any verification work starts.
func New(opts Options) (*Verifier, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.PairTimeout <= 0 {
		opts.PairTimeout = 30 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}

	engine, err := rules.NewEngine(opts.Rules, opts.CustomRules...)
	if err != nil {
		return nil, err
	}
	// Evicted entries own a C-allocated tree-sitter tree that must be
	// released explicitly.
	cache, err := lru.NewWithEvict[string, *parsed](opts.CacheSize, func(_ string, p *parsed) {
		p.tree.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &Verifier{
		opts:   opts,
		ext:    extractor.NewExtractor(),
		engine: engine,
		cache:  cache,
	}, nil
}

// Close releases every memoized parse tree. The Verifier must not be used
// afterwards.
func (v *Verifier) Close() {
	v.cache.Purge()
}

// VerifyPair verifies one baseline/candidate pair. A syntactically invalid
// artifact produces a report carrying the parse error instead of a verdict;
// only infrastructure failures return a non-nil error.
func (v *Verifier) VerifyPair(ctx context.Context, pair Pair) (*report.Report, error) {
	rep := &report.Report{
		BaselineID:  pair.Baseline.ID,
		CandidateID: pair.Candidate.ID,
		GeneratedAt: time.Now(),
	}

	base, err := v.load(ctx, pair.Baseline)
	if err != nil {
		return v.parseFailure(rep, err)
	}
	cand, err := v.load(ctx, pair.Candidate)
	if err != nil {
		return v.parseFailure(rep, err)
	}

	// The comparator and the three detectors are pure functions over the
	// immutable representations; run them as independent tasks.
	var (
		records                []compare.Record
		baseEvents, candEvents []string
		baseGuards, candGuards detect.ValidationFacts
		baseState, candState   []detect.StateBinding
	)
	vocab := extractor.DefaultValidationGuards()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records = compare.Compare(base.program, cand.program, v.opts.Compare)
		return gctx.Err()
	})
	g.Go(func() error {
		baseEvents, candEvents = detect.Events(base.tree), detect.Events(cand.tree)
		return gctx.Err()
	})
	g.Go(func() error {
		baseGuards, candGuards = detect.Validation(base.tree, vocab), detect.Validation(cand.tree, vocab)
		return gctx.Err()
	})
	g.Go(func() error {
		baseState, candState = detect.State(base.tree), detect.State(cand.tree)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	eventsOK, missingEvents := detect.EventsPreserved(baseEvents, candEvents)
	stateOK, missingState := detect.StatePreserved(baseState, candState, v.opts.Detect.StrictStateKinds)
	detection := detect.Result{
		EventHandlersPreserved:   eventsOK,
		ValidationLogicPreserved: detect.ValidationPreserved(baseGuards, candGuards, v.opts.Detect.ValidationPolicy),
		StateManagementPreserved: stateOK,
		MissingEventHandlers:     missingEvents,
		MissingStateBindings:     missingState,
		BaselineValidationCount:  baseGuards.Count(),
		CandidateValidationCount: candGuards.Count(),
	}

	ruleResult := v.engine.Run(ctx, []*extractor.ProgramRepresentation{base.program, cand.program})

	rep.Verdict = report.BuildVerdict(base.program, cand.program, records, detection, ruleResult, v.opts.Report)
	return rep, nil
}

// VerifyBatch verifies pairs with a bounded worker pool and a per-pair
// timeout, then runs cross-artifact rule validation over every candidate
// representation. Cancellation is cooperative: it is checked between pairs,
// not mid-pair; a failed pair never aborts the batch.
func (v *Verifier) VerifyBatch(ctx context.Context, pairs []Pair) (*report.BatchReport, *rules.Result, error) {
	reports := make([]*report.Report, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.opts.Workers)
	for i, pair := range pairs {
		i, pair := i, pair
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, v.opts.PairTimeout)
			defer cancel()

			rep, err := v.VerifyPair(pctx, pair)
			if err != nil {
				// a per-pair infrastructure failure is recorded, not fatal
				rep = &report.Report{
					BaselineID:  pair.Baseline.ID,
					CandidateID: pair.Candidate.ID,
					ParseError:  err.Error(),
					GeneratedAt: time.Now(),
				}
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Cross-artifact validation needs the full candidate set available.
	var candidates []*extractor.ProgramRepresentation
	for i, pair := range pairs {
		if reports[i] == nil || reports[i].Failed() {
			continue
		}
		if p, err := v.load(ctx, pair.Candidate); err == nil {
			candidates = append(candidates, p.program)
		}
	}
	batchRules := v.engine.Run(ctx, candidates)

	return report.BuildBatch(compact(reports)), batchRules, nil
}

// load parses and extracts one artifact, memoizing per content hash so the
// same artifact text is never parsed twice in a run.
func (v *Verifier) load(ctx context.Context, artifact Artifact) (*parsed, error) {
	sum := sha256.Sum256(artifact.Source)
	key := artifact.ID + ":" + hex.EncodeToString(sum[:8])
	if p, ok := v.cache.Get(key); ok {
		return p, nil
	}

	tree, err := ast.Parse(ctx, artifact.Source, artifact.ID)
	if err != nil {
		return nil, err
	}
	p := &parsed{tree: tree, program: v.ext.Extract(tree)}
	v.cache.Add(key, p)
	return p, nil
}

// parseFailure converts a parse error into a failed report; anything else
// stays a real error.
func (v *Verifier) parseFailure(rep *report.Report, err error) (*report.Report, error) {
	var pe *ast.ParseError
	if errors.As(err, &pe) {
		rep.ParseError = pe.Error()
		return rep, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		rep.ParseError = err.Error()
		return rep, nil
	}
	return nil, err
}

func compact(reports []*report.Report) []*report.Report {
	out := reports[:0]
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
