package chain

import (
	"context"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

// StitchResult is a stitched chain plus the waypoints that had to be left out.
type StitchResult struct {
	Chain   apptype.Chain
	Skipped []string
}

// Stitch builds one chain from start through each waypoint in order, then to
// end, or to the present when end is nil.
//
// Unknown or unreachable waypoints are skipped, logged, and reported in
// Skipped; the next segment starts again from the previous tail. If end is
// given but cannot be reached the chain is empty.
func (e *Engine) Stitch(ctx context.Context, start apptype.Person, waypoints []string, end *apptype.Person) (StitchResult, error) {
	res := StitchResult{Chain: apptype.Chain{start}}
	used := map[string]struct{}{start.Key(): {}}

	// Stops not reached yet stay out of earlier segments so they keep their order.
	type stop struct {
		name   string
		person apptype.Person
		known  bool
	}
	stops := make([]stop, len(waypoints))
	reserved := make(map[string]struct{}, len(waypoints)+1)
	for i, name := range waypoints {
		p, ok := e.Lookup(name)
		stops[i] = stop{name: name, person: p, known: ok}
		if ok {
			reserved[p.Key()] = struct{}{}
		}
	}
	if end != nil {
		reserved[end.Key()] = struct{}{}
	}

	tail := start
	for _, s := range stops {
		if !s.known {
			e.opts.Logger.Warn("waypoint not in catalog, skipping", zap.String("waypoint", s.name))
			res.Skipped = append(res.Skipped, s.name)
			continue
		}
		k := s.person.Key()
		if _, ok := used[k]; ok {
			// already on the chain, e.g. the start listed again
			continue
		}

		exclude := union(used, reserved)
		delete(exclude, k)
		seg, err := e.findPath(ctx, tail, s.person, exclude)
		if err != nil {
			return StitchResult{}, err
		}
		if len(seg) == 0 {
			e.opts.Logger.Warn("waypoint unreachable, skipping",
				zap.String("waypoint", s.name),
				zap.String("from", tail.Name))
			res.Skipped = append(res.Skipped, s.name)
			continue
		}

		res.Chain = appendSegment(res.Chain, seg, used)
		delete(reserved, k)
		tail = s.person
	}

	if end == nil {
		rest, err := e.buildFrom(ctx, tail, union(used, reserved))
		if err != nil {
			return StitchResult{}, err
		}
		res.Chain = appendSegment(res.Chain, rest, used)
		return res, nil
	}

	if _, ok := used[end.Key()]; ok {
		return res, nil
	}
	exclude := union(used, reserved)
	delete(exclude, end.Key())
	seg, err := e.findPath(ctx, tail, *end, exclude)
	if err != nil {
		return StitchResult{}, err
	}
	if len(seg) == 0 {
		e.opts.Logger.Info("no chain to end person",
			zap.String("from", tail.Name),
			zap.String("end", end.Name))
		return StitchResult{Chain: apptype.Chain{}, Skipped: res.Skipped}, nil
	}
	res.Chain = appendSegment(res.Chain, seg, used)
	return res, nil
}

// StitchByName resolves start, waypoints and end by name. An empty end runs
// the chain to the present. Unknown start or end yields an empty chain.
func (e *Engine) StitchByName(ctx context.Context, start string, waypoints []string, end string) (StitchResult, error) {
	s, ok := e.Lookup(start)
	if !ok {
		return StitchResult{Chain: apptype.Chain{}}, nil
	}
	var endPerson *apptype.Person
	if end != "" {
		p, ok := e.Lookup(end)
		if !ok {
			return StitchResult{Chain: apptype.Chain{}}, nil
		}
		endPerson = &p
	}
	return e.Stitch(ctx, s, waypoints, endPerson)
}

// appendSegment appends seg to out, dropping its leading junction person if
// it repeats out's tail, and records every appended key in used.
func appendSegment(out apptype.Chain, seg apptype.Chain, used map[string]struct{}) apptype.Chain {
	if len(seg) > 0 && len(out) > 0 && seg[0].Key() == out[len(out)-1].Key() {
		seg = seg[1:]
	}
	for _, p := range seg {
		k := p.Key()
		if _, dup := used[k]; dup {
			continue
		}
		used[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
