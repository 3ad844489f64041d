// Package planner answers chain queries against a stored person catalog.
// It keeps one catalog snapshot per project, reloaded when the store's
// generation moves, and memoizes results per snapshot.
package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/chain"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/metrics"
)

const defaultProject = "default"

// Store is the part of the catalog store the planner reads.
type Store interface {
	ListPersons(ctx context.Context, projectName string) ([]apptype.Person, error)
	Generation(ctx context.Context, projectName string) (uint64, error)
}

// Query describes one chain request. Nil thresholds take the configured
// defaults; an explicit zero is honoured.
type Query struct {
	Project         string
	Start           string
	End             string
	Waypoints       []string
	MinOverlapYears *int
	MinFame         *int
}

// thresholds are a Query's resolved predicate and filter settings.
type thresholds struct {
	minOverlapYears int
	minFame         int
}

// Outcome is a chain result plus whether it came from the memo.
type Outcome struct {
	chain.StitchResult
	Cached bool
}

// Found reports whether a chain was produced.
func (o Outcome) Found() bool { return len(o.Chain) > 0 }

type snapshot struct {
	generation uint64
	persons    []apptype.Person
}

// Planner is safe for concurrent use.
type Planner struct {
	store  Store
	cfg    Config
	logger *zap.Logger
	memo   *chain.Memo

	mu        sync.RWMutex
	snapshots map[string]snapshot
	loads     singleflight.Group
}

// New creates a Planner over store. A nil logger disables logging.
func New(store Store, cfg *Config, logger *zap.Logger) *Planner {
	if cfg == nil {
		cfg = NewConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		store:     store,
		cfg:       *cfg,
		logger:    logger,
		memo:      chain.NewMemo(cfg.CacheSize),
		snapshots: make(map[string]snapshot),
	}
}

// Config returns the planner's defaults.
func (p *Planner) Config() Config { return p.cfg }

// CachedChains returns the number of memoized results.
func (p *Planner) CachedChains() int { return p.memo.Len() }

// BuildChain runs the greedy builder from q.Start to the present.
func (p *Planner) BuildChain(ctx context.Context, q Query) (Outcome, error) {
	return p.run(ctx, chain.KindPresent, q, func(ctx context.Context, e *chain.Engine) (chain.StitchResult, error) {
		c, err := e.BuildToPresentByName(ctx, q.Start)
		return chain.StitchResult{Chain: c}, err
	})
}

// FindPath finds a shortest chain from q.Start to q.End.
func (p *Planner) FindPath(ctx context.Context, q Query) (Outcome, error) {
	if strings.TrimSpace(q.End) == "" {
		return Outcome{}, fmt.Errorf("end person is required")
	}
	return p.run(ctx, chain.KindPath, q, func(ctx context.Context, e *chain.Engine) (chain.StitchResult, error) {
		c, err := e.FindPathByName(ctx, q.Start, q.End)
		return chain.StitchResult{Chain: c}, err
	})
}

// Stitch links q.Start through q.Waypoints to q.End, or to the present when End is empty.
func (p *Planner) Stitch(ctx context.Context, q Query) (Outcome, error) {
	out, err := p.run(ctx, chain.KindStitch, q, func(ctx context.Context, e *chain.Engine) (chain.StitchResult, error) {
		return e.StitchByName(ctx, q.Start, q.Waypoints, q.End)
	})
	if err == nil && !out.Cached {
		for range out.Skipped {
			metrics.Default().IncWaypointSkipped()
		}
	}
	return out, err
}

// Explain evaluates the connectivity predicate for two named persons.
func (p *Planner) Explain(ctx context.Context, project, a, b string, minOverlapYears *int) (apptype.ConnectionResult, error) {
	snap, err := p.snapshot(ctx, project)
	if err != nil {
		return apptype.ConnectionResult{}, err
	}
	e, err := p.engine(snap.persons, p.resolve(Query{MinOverlapYears: minOverlapYears}))
	if err != nil {
		return apptype.ConnectionResult{}, err
	}
	pa, ok := e.Lookup(a)
	if !ok {
		return apptype.ConnectionResult{}, fmt.Errorf("person %q not found", a)
	}
	pb, ok := e.Lookup(b)
	if !ok {
		return apptype.ConnectionResult{}, fmt.Errorf("person %q not found", b)
	}
	c := e.Explain(pa, pb)
	return apptype.ConnectionResult{
		A:            pa.Name,
		B:            pb.Name,
		Connectable:  c.Connectable,
		OverlapYears: c.OverlapYears,
		BirthGap:     c.BirthGap,
		Rule:         c.Rule,
	}, nil
}

func (p *Planner) run(ctx context.Context, kind string, q Query, compute func(context.Context, *chain.Engine) (chain.StitchResult, error)) (Outcome, error) {
	if strings.TrimSpace(q.Start) == "" {
		return Outcome{}, fmt.Errorf("start person is required")
	}
	q = p.withDefaults(q)
	th := p.resolve(q)
	snap, err := p.snapshot(ctx, q.Project)
	if err != nil {
		return Outcome{}, err
	}

	key := chain.MemoKey{
		Project:         q.Project,
		Generation:      snap.generation,
		Kind:            kind,
		Start:           q.Start,
		End:             q.End,
		Waypoints:       q.Waypoints,
		MinOverlapYears: th.minOverlapYears,
		MinFame:         th.minFame,
	}
	res, hit, err := p.memo.Do(ctx, key, func(ctx context.Context) (chain.StitchResult, error) {
		e, err := p.engine(snap.persons, th)
		if err != nil {
			return chain.StitchResult{}, err
		}
		return compute(ctx, e)
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("%s query failed: %w", kind, err)
	}
	metrics.Default().IncChainCache(kind, hit)
	metrics.Default().ObserveChainLength(kind, len(res.Chain))
	p.logger.Debug("chain query",
		zap.String("kind", kind),
		zap.String("project", q.Project),
		zap.String("start", q.Start),
		zap.String("end", q.End),
		zap.Int("persons", len(res.Chain)),
		zap.Bool("cached", hit))
	return Outcome{StitchResult: res, Cached: hit}, nil
}

func (p *Planner) withDefaults(q Query) Query {
	if strings.TrimSpace(q.Project) == "" {
		q.Project = defaultProject
	}
	return q
}

func (p *Planner) resolve(q Query) thresholds {
	th := thresholds{minOverlapYears: p.cfg.MinOverlapYears, minFame: p.cfg.MinFame}
	if q.MinOverlapYears != nil {
		th.minOverlapYears = *q.MinOverlapYears
	}
	if q.MinFame != nil {
		th.minFame = *q.MinFame
	}
	return th
}

func (p *Planner) engine(persons []apptype.Person, th thresholds) (*chain.Engine, error) {
	return chain.NewEngine(persons,
		chain.WithMinOverlapYears(th.minOverlapYears),
		chain.WithMinFame(th.minFame),
		chain.WithMaxGapYears(p.cfg.MaxGapYears),
		chain.WithDepthCap(p.cfg.DepthCap),
		chain.WithReferenceYear(p.cfg.ReferenceYear),
		chain.WithLogger(p.logger),
	)
}

// snapshot returns the project's catalog, reloading it when the store's
// generation has moved. Concurrent reloads of one project share a single read.
func (p *Planner) snapshot(ctx context.Context, project string) (snapshot, error) {
	if strings.TrimSpace(project) == "" {
		project = defaultProject
	}
	gen, err := p.store.Generation(ctx, project)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to read catalog generation: %w", err)
	}

	p.mu.RLock()
	snap, ok := p.snapshots[project]
	p.mu.RUnlock()
	if ok && snap.generation == gen {
		return snap, nil
	}

	v, err, _ := p.loads.Do(fmt.Sprintf("%s|%d", project, gen), func() (interface{}, error) {
		persons, err := p.store.ListPersons(ctx, project)
		if err != nil {
			return snapshot{}, err
		}
		s := snapshot{generation: gen, persons: persons}
		p.mu.Lock()
		if cur, ok := p.snapshots[project]; !ok || cur.generation <= gen {
			p.snapshots[project] = s
		}
		p.mu.Unlock()
		p.logger.Debug("loaded catalog snapshot",
			zap.String("project", project),
			zap.Uint64("generation", gen),
			zap.Int("persons", len(persons)))
		return s, nil
	})
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return v.(snapshot), nil
}

// Invalidate drops every snapshot and memoized chain.
func (p *Planner) Invalidate() {
	p.mu.Lock()
	p.snapshots = make(map[string]snapshot)
	p.mu.Unlock()
	p.memo.Purge()
}
