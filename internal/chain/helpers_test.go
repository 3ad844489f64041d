package chain

import (
	"fmt"
	"math/rand"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

const testReferenceYear = 2025

func person(id string, born int, died *int, fame int) apptype.Person {
	return apptype.Person{ID: id, Name: id, Born: born, Died: died, Fame: fame}
}

// lineCatalog returns n persons where only neighbours overlap by exactly 20
// years, so with a zero gap fallback the connectivity graph is a path.
func lineCatalog(n int) []apptype.Person {
	out := make([]apptype.Person, n)
	for i := range out {
		born := 40 * i
		out[i] = apptype.Person{
			ID:   fmt.Sprintf("p%02d", i),
			Name: fmt.Sprintf("P%d", i),
			Born: born,
			Died: apptype.Year(born + 60),
			Fame: 100 + i,
		}
	}
	return out
}

func lineEngine(n int, opts ...Option) (*Engine, []apptype.Person) {
	persons := lineCatalog(n)
	base := []Option{
		WithMinOverlapYears(20),
		WithMaxGapYears(0),
		WithMinFame(0),
		WithReferenceYear(testReferenceYear),
	}
	e, err := NewEngine(persons, append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return e, persons
}

// forwardCatalog is a hand-checked catalog for the greedy builder.
func forwardCatalog() []apptype.Person {
	return []apptype.Person{
		person("A", 1700, apptype.Year(1770), 200),
		person("B", 1740, apptype.Year(1810), 150),
		person("C", 1745, apptype.Year(1800), 500),
		person("D", 1790, apptype.Year(1860), 300),
		person("E", 1840, apptype.Year(1910), 120),
		person("F", 1890, apptype.Year(1960), 400),
		person("G", 1940, apptype.Year(2020), 250),
		person("Obscure", 1750, apptype.Year(1820), 10),
	}
}

func randomCatalog(seed int64, n int) []apptype.Person {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]apptype.Person, n)
	for i := range out {
		born := rnd.Intn(2500) - 500
		var died *int
		if born < 1950 || rnd.Intn(2) == 0 {
			died = apptype.Year(min(born+20+rnd.Intn(70), testReferenceYear))
		}
		out[i] = apptype.Person{
			ID:   fmt.Sprintf("r%04d", i),
			Name: fmt.Sprintf("R%d", i),
			Born: born,
			Died: died,
			Fame: rnd.Intn(300),
		}
	}
	return out
}

func keys(c apptype.Chain) []string {
	out := make([]string, len(c))
	for i, p := range c {
		out[i] = p.Key()
	}
	return out
}

func assertUnique(c apptype.Chain) error {
	seen := make(map[string]struct{}, len(c))
	for _, p := range c {
		if _, dup := seen[p.Key()]; dup {
			return fmt.Errorf("duplicate %q in %v", p.Key(), keys(c))
		}
		seen[p.Key()] = struct{}{}
	}
	return nil
}
