package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"promptagent/internal/domain"
	"promptagent/internal/entitlement"
	"promptagent/internal/infra"
	"promptagent/internal/modelselect"
	"promptagent/internal/prompts"
	"promptagent/internal/providers/textgen"
)

const defaultTimeout = 30 * time.Second

// Generation outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Transition kinds reported to the Observer.
const (
	TransitionUpgrade = "upgrade"
	TransitionReset   = "reset"
)

// Observer receives pipeline events, typically for metrics.
type Observer interface {
	ObserveGeneration(feature domain.FeatureKey, outcome string)
	ObserveDenial(feature domain.FeatureKey, reason entitlement.Reason)
	ObserveTransition(kind string)
}

type nopObserver struct{}

func (nopObserver) ObserveGeneration(domain.FeatureKey, string) {}

func (nopObserver) ObserveDenial(domain.FeatureKey, entitlement.Reason) {}

func (nopObserver) ObserveTransition(string) {}

type Options struct {
	Store     domain.SessionRepository
	Catalog   *Catalog
	Composer  *prompts.Composer
	Generator textgen.Generator
	Models    modelselect.Models
	FreeLimit int
	Timeout   time.Duration
	Now       func() time.Time
	Pick      func(n int) int
	Logger    *infra.Logger
	Observer  Observer
}

// Pipeline serializes work per session id. Requests for different sessions
// never wait on each other.
type Pipeline struct {
	store     domain.SessionRepository
	catalog   *Catalog
	composer  *prompts.Composer
	generator textgen.Generator
	policy    *entitlement.Policy
	selector  *modelselect.Selector
	timeout   time.Duration
	now       func() time.Time
	pick      func(n int) int
	logger    *infra.Logger
	observer  Observer
	locks     *keyedMutex
}

// Result is the outcome of a successful Run.
type Result struct {
	Feature     domain.FeatureKey
	Text        string
	Suggestions []string
	Usage       domain.UsageSnapshot
	Session     *domain.Session
}

// Status is the current entitlement view of a session.
type Status struct {
	Session        *domain.Session
	Usage          domain.UsageSnapshot
	DailyUsedToday bool
}

func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Store == nil {
		return nil, errors.New("gateway: session store is required")
	}
	if opts.Composer == nil {
		return nil, errors.New("gateway: composer is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("gateway: generator is required")
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	pick := opts.Pick
	if pick == nil {
		pick = rand.IntN
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Pipeline{
		store:     opts.Store,
		catalog:   catalog,
		composer:  opts.Composer,
		generator: opts.Generator,
		policy:    entitlement.NewPolicy(catalog.Classes(), opts.FreeLimit),
		selector:  modelselect.NewSelector(catalog.Routes(), opts.Models),
		timeout:   timeout,
		now:       now,
		pick:      pick,
		logger:    logger,
		observer:  observer,
		locks:     newKeyedMutex(),
	}, nil
}

// Policy exposes the derived entitlement policy.
func (p *Pipeline) Policy() *entitlement.Policy {
	return p.policy
}

// Run executes feature key for session id. Validation happens before the
// quota check, and the ledger is only committed after upstream succeeds.
func (p *Pipeline) Run(ctx context.Context, id string, key domain.FeatureKey, in Input) (Result, error) {
	unlock := p.locks.Lock(id)
	defer unlock()

	s, err := p.load(ctx, id)
	if err != nil {
		return Result{}, err
	}
	now := p.now().UTC()
	today := domain.Today(now)
	log := p.logger.With().Str("session", id).Str("feature", string(key)).Str("tier", string(s.Tier)).Logger()

	desc, ok := p.catalog.Lookup(key)
	if !ok {
		p.observer.ObserveDenial(key, entitlement.ReasonUnknownFeature)
		return Result{}, &DeniedError{Feature: key, Reason: entitlement.ReasonUnknownFeature, Usage: p.policy.Snapshot(s)}
	}

	prompt, err := desc.Build(BuildContext{Composer: p.composer, Now: now, Pick: p.pick}, in)
	if err != nil {
		log.Debug().Err(err).Msg("invalid generation request")
		return Result{}, err
	}

	if d := p.policy.Decide(s, key, today); !d.Allowed {
		log.Debug().Str("reason", string(d.Reason)).Msg("generation denied")
		p.observer.ObserveDenial(key, d.Reason)
		return Result{}, &DeniedError{Feature: key, Reason: d.Reason, Usage: p.policy.Snapshot(s)}
	}

	if desc.SkipIfEmpty != nil && desc.SkipIfEmpty(in) {
		p.observer.ObserveGeneration(key, OutcomeSkipped)
		return Result{Feature: key, Suggestions: []string{}, Usage: p.policy.Snapshot(s), Session: s}, nil
	}

	params, err := p.selector.Select(s.Tier, key)
	if err != nil {
		return Result{}, err
	}

	gctx, cancel := context.WithTimeout(ctx, p.timeout)
	text, err := p.generator.Generate(gctx, textgen.Request{
		Model:       params.Model,
		Messages:    prompt.Messages(),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	cancel()
	if err != nil {
		log.Error().Err(err).Str("model", params.Model).Msg("generation failed")
		p.observer.ObserveGeneration(key, OutcomeError)
		return Result{}, &UpstreamError{Feature: key, Err: err}
	}
	text = prompts.CleanOutput(text)

	next, err := p.commit(ctx, s, key, today, now)
	if err != nil {
		return Result{}, err
	}
	p.observer.ObserveGeneration(key, OutcomeSuccess)
	log.Info().Int("usage_count", next.UsageCount).Str("model", params.Model).Msg("generation committed")

	res := Result{Feature: key, Text: text, Usage: p.policy.Snapshot(next), Session: next}
	if desc.Suggestions {
		res.Suggestions = prompts.ParseSuggestions(text)
	}
	return res, nil
}

// Status reports the session without creating it.
func (p *Pipeline) Status(ctx context.Context, id string) (Status, error) {
	s, err := p.load(ctx, id)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Session:        s,
		Usage:          p.policy.Snapshot(s),
		DailyUsedToday: s.DailyFlagDate != "" && s.DailyFlagDate == domain.Today(p.now()),
	}, nil
}

// Upgrade grants Pro. A session that is already Pro is returned unchanged.
func (p *Pipeline) Upgrade(ctx context.Context, id string) (*domain.Session, error) {
	unlock := p.locks.Lock(id)
	defer unlock()

	s, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.IsPro() {
		return s, nil
	}
	next := entitlement.Upgrade(s, p.now())
	if err := p.store.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("store upgrade: %w", err)
	}
	p.observer.ObserveTransition(TransitionUpgrade)
	p.logger.Info().Str("session", id).Msg("session upgraded to pro")
	return next, nil
}

// Reset returns the session to a fresh Free state.
func (p *Pipeline) Reset(ctx context.Context, id string) (*domain.Session, error) {
	unlock := p.locks.Lock(id)
	defer unlock()

	next := entitlement.Reset(id, p.now())
	if err := p.store.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("store reset: %w", err)
	}
	p.observer.ObserveTransition(TransitionReset)
	p.logger.Info().Str("session", id).Msg("session reset to free")
	return next, nil
}

func (p *Pipeline) load(ctx context.Context, id string) (*domain.Session, error) {
	s, err := p.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// commit applies the ledger. Stores that support atomic updates apply it to
// the latest stored state so concurrent replicas do not lose increments.
func (p *Pipeline) commit(ctx context.Context, s *domain.Session, key domain.FeatureKey, today string, now time.Time) (*domain.Session, error) {
	if u, ok := p.store.(domain.SessionUpdater); ok {
		next, err := u.Update(ctx, s.ID, func(cur *domain.Session) (*domain.Session, error) {
			return p.policy.Commit(cur, key, today, now), nil
		})
		if err != nil {
			return nil, fmt.Errorf("commit usage: %w", err)
		}
		return next, nil
	}
	next := p.policy.Commit(s, key, today, now)
	if err := p.store.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("commit usage: %w", err)
	}
	return next, nil
}
