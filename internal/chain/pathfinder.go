package chain

import (
	"context"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

// frontier is one side of the bidirectional search. paths maps every person
// this side has reached to the path from the side's root to that person.
type frontier struct {
	queue [][]apptype.Person
	paths map[string][]apptype.Person
}

func newFrontier(root apptype.Person) *frontier {
	rootPath := []apptype.Person{root}
	return &frontier{
		queue: [][]apptype.Person{rootPath},
		paths: map[string][]apptype.Person{root.Key(): rootPath},
	}
}

// FindPath returns a chain with the fewest persons linking start to end under
// the connectivity predicate, or an empty chain when none exists within
// DepthCap edges per side. FindPath(a, a) is [a].
func (e *Engine) FindPath(ctx context.Context, start, end apptype.Person) (apptype.Chain, error) {
	return e.findPath(ctx, start, end, nil)
}

// FindPathByName resolves both endpoints by name; unknown names yield an empty chain.
func (e *Engine) FindPathByName(ctx context.Context, start, end string) (apptype.Chain, error) {
	s, ok := e.Lookup(start)
	if !ok {
		return apptype.Chain{}, nil
	}
	t, ok := e.Lookup(end)
	if !ok {
		return apptype.Chain{}, nil
	}
	return e.FindPath(ctx, s, t)
}

// findPath alternates between the two frontiers one layer at a time.
// Keys in exclude are never used as intermediates.
func (e *Engine) findPath(ctx context.Context, start, end apptype.Person, exclude map[string]struct{}) (apptype.Chain, error) {
	if start.Key() == end.Key() {
		return apptype.Chain{start}, nil
	}

	space := e.searchSpace(start, end, exclude)
	fwd, bwd := newFrontier(start), newFrontier(end)
	forward := true

	for len(fwd.queue) > 0 && len(bwd.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var best []apptype.Person
		var err error
		if forward {
			best, err = e.expandLayer(ctx, fwd, bwd, space, true)
		} else {
			best, err = e.expandLayer(ctx, bwd, fwd, space, false)
		}
		if err != nil {
			return nil, err
		}
		if best != nil {
			return apptype.Chain(best), nil
		}
		forward = !forward
	}
	return apptype.Chain{}, nil
}

// expandLayer dequeues every path of the active layer and extends it by each
// connectable person the active side has not reached. A person already
// reached by the other side is a meeting point; the shortest splice found in
// the layer is returned.
func (e *Engine) expandLayer(ctx context.Context, active, other *frontier, space []apptype.Person, forward bool) ([]apptype.Person, error) {
	layer := active.queue
	active.queue = nil

	var best []apptype.Person
	for _, path := range layer {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(path)-1 >= e.opts.DepthCap {
			continue
		}
		tail := path[len(path)-1]

		for _, c := range space {
			k := c.Key()
			if _, seen := active.paths[k]; seen {
				continue
			}
			if !e.Connectable(tail, c) {
				continue
			}

			next := extend(path, c)
			if meet, ok := other.paths[k]; ok {
				joined := splice(next, meet, forward)
				if best == nil || len(joined) < len(best) {
					best = joined
				}
				continue
			}
			active.paths[k] = next
			active.queue = append(active.queue, next)
		}
	}
	return best, nil
}

func extend(path []apptype.Person, p apptype.Person) []apptype.Person {
	out := make([]apptype.Person, len(path), len(path)+1)
	copy(out, path)
	return append(out, p)
}

// splice joins a path ending at the meeting person with the other side's
// path to the same person, keeping the meeting person once.
func splice(activePath, otherPath []apptype.Person, forward bool) []apptype.Person {
	head, tail := activePath, otherPath
	if !forward {
		head, tail = otherPath, activePath
	}
	out := make([]apptype.Person, 0, len(head)+len(tail)-1)
	out = append(out, head...)
	for i := len(tail) - 2; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out
}
