// Package chain links historical persons through overlapping lifetimes.
//
// What
//
//   - Connectable decides whether two biographies may sit next to each other:
//     either their lifespans intersect by at least MinOverlapYears, or, as a
//     looser fallback, their birth years are at most MaxGapYears apart.
//   - BuildToPresent walks greedily forward in time from a start person,
//     always picking the best-scored successor, until it reaches the present.
//   - FindPath runs a bidirectional breadth-first search between two persons
//     and returns a chain with the fewest persons.
//   - Stitch forces a chain through an ordered list of waypoints by joining
//     FindPath segments, finishing with FindPath to an end person or with
//     BuildToPresent when there is none.
//
// Greedy versus exact
//
//	BuildToPresent is a local heuristic and makes no promise of minimality;
//	it answers "how do I get from here to today". FindPath is exact under
//	the same predicate and answers "what is the shortest link between these
//	two". Stitch uses both.
//
// Keys
//
//	Persons are identified by Person.Key (the external id). Names are only
//	used to resolve caller input; when several persons share a name the most
//	famous one wins.
//
// Determinism
//
//	Candidates are scanned in descending fame order (ties by key), so every
//	search is reproducible for the same catalog and options.
//
// Every entry point allocates its own visited sets and queues; an Engine is
// immutable after NewEngine and safe for concurrent use.
package chain
