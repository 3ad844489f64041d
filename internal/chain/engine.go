package chain

import (
	"sort"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

// Engine answers chain queries over one immutable catalog snapshot.
type Engine struct {
	opts   Options
	pool   []apptype.Person
	byName map[string]apptype.Person
}

// NewEngine filters persons into the candidate pool and indexes them by name.
// The slice is copied; the caller may reuse it.
func NewEngine(persons []apptype.Person, opts ...Option) (*Engine, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	all := sortByFame(persons)
	byName := make(map[string]apptype.Person, len(all))
	for _, p := range all {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p
		}
	}

	return &Engine{
		opts:   o,
		pool:   FilterCandidates(all, o.MinFame),
		byName: byName,
	}, nil
}

// Options returns the effective options of e.
func (e *Engine) Options() Options { return e.opts }

// Candidates returns a copy of the filtered candidate pool, most famous first.
func (e *Engine) Candidates() []apptype.Person {
	out := make([]apptype.Person, len(e.pool))
	copy(out, e.pool)
	return out
}

// Lookup resolves a display name, preferring the most famous bearer.
// Lookup ignores the fame threshold.
func (e *Engine) Lookup(name string) (apptype.Person, bool) {
	p, ok := e.byName[name]
	return p, ok
}

// FilterCandidates keeps persons with Fame >= minFame, ordered by descending fame.
func FilterCandidates(persons []apptype.Person, minFame int) []apptype.Person {
	out := make([]apptype.Person, 0, len(persons))
	for _, p := range persons {
		if p.Fame >= minFame {
			out = append(out, p)
		}
	}
	sortInPlace(out)
	return out
}

func sortByFame(persons []apptype.Person) []apptype.Person {
	out := make([]apptype.Person, len(persons))
	copy(out, persons)
	sortInPlace(out)
	return out
}

func sortInPlace(ps []apptype.Person) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Fame != ps[j].Fame {
			return ps[i].Fame > ps[j].Fame
		}
		return ps[i].Key() < ps[j].Key()
	})
}

// searchSpace is the pool plus both endpoints, minus excluded keys.
// Endpoints are never excluded.
func (e *Engine) searchSpace(start, end apptype.Person, exclude map[string]struct{}) []apptype.Person {
	space := make([]apptype.Person, 0, len(e.pool)+2)
	seen := make(map[string]struct{}, len(e.pool)+2)
	for _, p := range []apptype.Person{start, end} {
		if _, ok := seen[p.Key()]; !ok {
			seen[p.Key()] = struct{}{}
			space = append(space, p)
		}
	}
	for _, p := range e.pool {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		if _, ok := exclude[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		space = append(space, p)
	}
	return space
}
