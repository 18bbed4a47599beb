package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/gitprof/pkg/expr"
	"github.com/macropower/gitprof/pkg/log"
	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/repoctx"
	"github.com/macropower/gitprof/pkg/rule"
)

var (
	// ErrProfileStore is returned when profiles cannot be listed.
	ErrProfileStore = errors.New("list profiles")

	// ErrContext is returned when the repository context cannot be built.
	ErrContext = errors.New("build repository context")
)

// ContextBuilder builds a [repoctx.Context] for a path.
type ContextBuilder interface {
	Build(ctx context.Context, path string) (*repoctx.Context, error)
}

// Detector scores the profiles of a [profile.Store] against repository
// contexts.
type Detector struct {
	store   profile.Store
	builder ContextBuilder
	tracer  trace.Tracer
	cache   *resultCache
	getwd   func() (string, error)
	rules   []rule.Rule
	config  Config
}

// DetectorOpt is a functional option for configuring a [Detector].
type DetectorOpt func(*Detector)

// WithRules replaces the rules selected by [Config].
func WithRules(rules ...rule.Rule) DetectorOpt {
	return func(d *Detector) {
		d.rules = rules
	}
}

// WithTracerProvider sets the [trace.TracerProvider]. The default is the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) DetectorOpt {
	return func(d *Detector) {
		d.tracer = tp.Tracer(tracerName)
	}
}

// WithGetwd sets the function used by [Detector.Detect] to find the current
// directory. The default is [os.Getwd].
func WithGetwd(fn func() (string, error)) DetectorOpt {
	return func(d *Detector) {
		d.getwd = fn
	}
}

const tracerName = "github.com/macropower/gitprof/pkg/detect"

// NewDetector creates a new [Detector].
func NewDetector(store profile.Store, builder ContextBuilder, cfg Config, opts ...DetectorOpt) (*Detector, error) {
	var env *expr.Environment
	if cfg.Expression {
		var err error

		env, err = expr.NewContextEnvironment()
		if err != nil {
			return nil, err
		}
	}

	d := &Detector{
		store:   store,
		builder: builder,
		config:  cfg,
		rules:   cfg.Rules(env),
		tracer:  otel.Tracer(tracerName),
		getwd:   os.Getwd,
	}
	for _, opt := range opts {
		opt(d)
	}

	if cfg.EnableCache && cfg.CacheSize > 0 {
		d.cache = newResultCache(cfg.CacheSize, cfg.CacheTTL)
	}

	return d, nil
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Rules returns the active rules.
func (d *Detector) Rules() []rule.Rule {
	return d.rules
}

// ScoreProfile scores p against c. It returns false when every rule
// abstained or the confidence is below [Config.MinConfidence].
func (d *Detector) ScoreProfile(ctx context.Context, p *profile.Profile, c *repoctx.Context) (Result, bool) {
	var (
		matched     []MatchedRule
		numerator   float64
		denominator float64
	)

	for _, r := range d.rules {
		score, ok := r.Match(ctx, p, c)
		if !ok {
			continue
		}

		weight := r.Priority().Weight()
		numerator += score * weight
		denominator += weight

		matched = append(matched, MatchedRule{
			RuleName:   r.Name(),
			Priority:   r.Priority(),
			Confidence: score,
		})
	}

	if len(matched) == 0 || denominator == 0 {
		return Result{}, false
	}

	confidence := numerator / denominator

	log.WithContext(ctx).DebugContext(ctx, "scored profile",
		slog.String("profile", p.Name),
		slog.Float64("confidence", confidence),
		slog.Int("matched_rules", len(matched)),
	)

	if confidence < d.config.MinConfidence {
		return Result{}, false
	}

	text := reason(p.Name, matched)

	return Result{
		Profile:      p,
		Confidence:   confidence,
		MatchedRules: matched,
		Reason:       text,
		Reasons:      []string{text},
	}, true
}

// Detect runs [Detector.DetectIn] on the current working directory.
func (d *Detector) Detect(ctx context.Context) (Result, bool, error) {
	wd, err := d.getwd()
	if err != nil {
		return Result{}, false, fmt.Errorf("%w: %w", ErrContext, err)
	}

	return d.DetectIn(ctx, wd)
}

// DetectIn returns the best profile for path, or false when no profile
// reached [Config.MinConfidence].
func (d *Detector) DetectIn(ctx context.Context, path string) (Result, bool, error) {
	results, err := d.DetectAll(ctx, path)
	if err != nil {
		return Result{}, false, err
	}

	if len(results) == 0 {
		return Result{}, false, nil
	}

	return results[0], true, nil
}

// DetectAll returns every profile that reached [Config.MinConfidence] for
// path, ordered by descending confidence and then by name.
func (d *Detector) DetectAll(ctx context.Context, path string) ([]Result, error) {
	ctx, span := d.tracer.Start(ctx, "DetectAll", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	abs, err := filepath.Abs(path)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrContext, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	var (
		results []Result
		cached  bool
	)

	if d.cache != nil {
		results, cached, err = d.cache.get(ctx, abs, d.detectAll)
	} else {
		results, err = d.detectAll(ctx, abs)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("results", len(results)),
		attribute.Bool("cached", cached),
	)

	return results, nil
}

func (d *Detector) detectAll(ctx context.Context, path string) ([]Result, error) {
	profiles, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileStore, err)
	}

	c, err := d.builder.Build(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContext, err)
	}

	results := []Result{}
	for _, p := range profiles {
		if r, ok := d.ScoreProfile(ctx, p, c); ok {
			results = append(results, r)
		}
	}

	sortResults(results)

	log.WithContext(ctx).DebugContext(ctx, "detected profiles",
		slog.String("path", path),
		slog.Int("profiles", len(profiles)),
		slog.Int("results", len(results)),
	)

	return results, nil
}

// Invalidate removes the cached results for path.
func (d *Detector) Invalidate(path string) {
	if d.cache == nil {
		return
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	d.cache.invalidate(abs)
}

// Purge removes all cached results.
func (d *Detector) Purge() {
	if d.cache != nil {
		d.cache.purge()
	}
}

// CacheLen returns the number of cached paths.
func (d *Detector) CacheLen() int {
	if d.cache == nil {
		return 0
	}

	return d.cache.len()
}
