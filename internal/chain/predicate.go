package chain

import "github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"

// Rules reported by Explain.
const (
	RuleOverlap = "overlap"
	RuleGap     = "gap"
	RuleNone    = "none"
)

// Connection explains a connectivity decision.
type Connection struct {
	Connectable  bool
	OverlapYears int
	BirthGap     int
	Rule         string
}

// Connectable reports whether a and b may be adjacent in a chain.
// It is symmetric in its arguments.
func (e *Engine) Connectable(a, b apptype.Person) bool {
	return e.Explain(a, b).Connectable
}

// Explain evaluates the predicate and returns the numbers behind it.
// OverlapYears is negative when the lifespans are disjoint.
func (e *Engine) Explain(a, b apptype.Person) Connection {
	ref := e.opts.ReferenceYear
	overlap := min(a.EffectiveDeath(ref), b.EffectiveDeath(ref)) - max(a.Born, b.Born)
	gap := abs(a.Born - b.Born)

	c := Connection{OverlapYears: overlap, BirthGap: gap, Rule: RuleNone}
	switch {
	case overlap >= e.opts.MinOverlapYears:
		c.Connectable, c.Rule = true, RuleOverlap
	case gap <= e.opts.MaxGapYears:
		c.Connectable, c.Rule = true, RuleGap
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
