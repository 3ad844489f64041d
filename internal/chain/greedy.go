package chain

import (
	"context"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

// BuildToPresent extends a chain forward in time from start until a death
// year falls within PresentWindow of the reference year, no successor is
// left, or LengthCap persons have been collected.
//
// Birth years strictly increase along the returned chain. A short chain is a
// legitimate outcome; the only error is context cancellation.
func (e *Engine) BuildToPresent(ctx context.Context, start apptype.Person) (apptype.Chain, error) {
	return e.buildFrom(ctx, start, make(map[string]struct{}))
}

// BuildToPresentByName resolves start by name; an unknown name yields an empty chain.
func (e *Engine) BuildToPresentByName(ctx context.Context, start string) (apptype.Chain, error) {
	p, ok := e.Lookup(start)
	if !ok {
		return apptype.Chain{}, nil
	}
	return e.BuildToPresent(ctx, p)
}

// buildFrom runs the greedy walk. visited is extended in place; keys already
// in it are never picked.
func (e *Engine) buildFrom(ctx context.Context, start apptype.Person, visited map[string]struct{}) (apptype.Chain, error) {
	ref := e.opts.ReferenceYear
	out := apptype.Chain{start}
	visited[start.Key()] = struct{}{}
	current := start

	for len(out) < e.opts.LengthCap {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		death := current.EffectiveDeath(ref)
		if ref-death <= e.opts.PresentWindow {
			break
		}

		next, ok := e.bestSuccessor(current, death-e.opts.MinOverlapYears, visited)
		if !ok {
			next, ok = e.bestSuccessor(current, death+e.opts.RelaxGapYears, visited)
		}
		if !ok {
			break
		}

		out = append(out, next)
		visited[next.Key()] = struct{}{}
		current = next
	}
	return out, nil
}

// bestSuccessor scores unvisited candidates born in (current.Born, latestBirth].
func (e *Engine) bestSuccessor(current apptype.Person, latestBirth int, visited map[string]struct{}) (apptype.Person, bool) {
	death := current.EffectiveDeath(e.opts.ReferenceYear)

	var (
		best      apptype.Person
		bestScore float64
		found     bool
	)
	for _, c := range e.pool {
		if c.Born <= current.Born || c.Born > latestBirth {
			continue
		}
		if _, seen := visited[c.Key()]; seen {
			continue
		}
		s := e.score(c, death)
		// strict comparison keeps the more famous candidate on ties
		if !found || s > bestScore {
			best, bestScore, found = c, s, true
		}
	}
	return best, found
}

func (e *Engine) score(c apptype.Person, death int) float64 {
	proximity := e.opts.ProximityBase - float64(abs(c.Born-death))
	bonus := min(float64(c.Fame)*e.opts.FameWeight, e.opts.FameBonusCap)
	return proximity + bonus
}
