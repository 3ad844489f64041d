package chain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

func TestNewEngine_OptionViolation(t *testing.T) {
	cases := map[string]Option{
		"negative overlap": WithMinOverlapYears(-1),
		"negative fame":    WithMinFame(-5),
		"negative gap":     WithMaxGapYears(-1),
		"zero depth":       WithDepthCap(0),
		"zero length":      WithLengthCap(0),
	}
	for name, opt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewEngine(nil, opt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOptionViolation), "got %v", err)
		})
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	e, err := NewEngine(nil, WithLogger(nil))
	require.NoError(t, err)
	o := e.Options()
	assert.Equal(t, DefaultMinOverlapYears, o.MinOverlapYears)
	assert.Equal(t, DefaultMinFame, o.MinFame)
	assert.Equal(t, DefaultDepthCap, o.DepthCap)
	assert.Equal(t, DefaultLengthCap, o.LengthCap)
	assert.NotNil(t, o.Logger)
}

func TestFilterCandidates(t *testing.T) {
	got := FilterCandidates(forwardCatalog(), 150)
	assert.Equal(t, []string{"C", "F", "D", "G", "A", "B"}, keys(got))
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Fame, 150)
	}

	assert.Empty(t, FilterCandidates(forwardCatalog(), 10_000))
}

func TestFilterCandidates_TiesByKey(t *testing.T) {
	in := []apptype.Person{person("b", 0, nil, 5), person("a", 0, nil, 5), person("c", 0, nil, 9)}
	assert.Equal(t, []string{"c", "a", "b"}, keys(FilterCandidates(in, 0)))
}

func TestLookup_PrefersFame(t *testing.T) {
	persons := []apptype.Person{
		{ID: "q1", Name: "John Smith", Born: 1580, Died: apptype.Year(1631), Fame: 120},
		{ID: "q2", Name: "John Smith", Born: 1790, Died: apptype.Year(1850), Fame: 30},
	}
	e, err := NewEngine(persons)
	require.NoError(t, err)

	p, ok := e.Lookup("John Smith")
	require.True(t, ok)
	assert.Equal(t, "q1", p.ID)

	_, ok = e.Lookup("Nobody")
	assert.False(t, ok)

	// the low-fame namesake is not a candidate but the pool still holds q1
	assert.Equal(t, []string{"q1"}, keys(e.Candidates()))
}

func TestExplain(t *testing.T) {
	e, err := NewEngine(nil, WithMinOverlapYears(20), WithMaxGapYears(150), WithReferenceYear(testReferenceYear))
	require.NoError(t, err)

	a := person("a", 1800, apptype.Year(1860), 0)
	b := person("b", 1830, apptype.Year(1900), 0)
	c := person("c", 1940, apptype.Year(2000), 0)
	far := person("far", 1200, apptype.Year(1250), 0)
	living := person("living", 1990, nil, 0)

	conn := e.Explain(a, b)
	assert.True(t, conn.Connectable)
	assert.Equal(t, RuleOverlap, conn.Rule)
	assert.Equal(t, 30, conn.OverlapYears)

	conn = e.Explain(a, c)
	assert.True(t, conn.Connectable)
	assert.Equal(t, RuleGap, conn.Rule)
	assert.Equal(t, 140, conn.BirthGap)

	conn = e.Explain(a, far)
	assert.False(t, conn.Connectable)
	assert.Equal(t, RuleNone, conn.Rule)

	// living persons are capped at the reference year
	conn = e.Explain(c, living)
	assert.Equal(t, 10, conn.OverlapYears)
	conn = e.Explain(living, person("young", 2000, nil, 0))
	assert.Equal(t, 25, conn.OverlapYears)
	assert.Equal(t, RuleOverlap, conn.Rule)
}

func TestConnectable_Symmetric(t *testing.T) {
	persons := randomCatalog(7, 120)
	e, err := NewEngine(persons, WithReferenceYear(testReferenceYear))
	require.NoError(t, err)

	for _, a := range persons {
		for _, b := range persons {
			if e.Connectable(a, b) != e.Connectable(b, a) {
				t.Fatalf("asymmetric: %s/%s", a.Key(), b.Key())
			}
		}
	}
}

func FuzzConnectable(f *testing.F) {
	f.Add(1800, 60, 1850, 50, 20, 150)
	f.Add(-300, 70, 1990, -1, 0, 0)
	f.Fuzz(func(t *testing.T, bornA, lifeA, bornB, lifeB, overlap, gap int) {
		if overlap < 0 || gap < 0 {
			t.Skip()
		}
		e, err := NewEngine(nil, WithMinOverlapYears(overlap), WithMaxGapYears(gap), WithReferenceYear(testReferenceYear))
		require.NoError(t, err)
		a := person("a", bornA, nil, 0)
		if lifeA >= 0 {
			a.Died = apptype.Year(bornA + lifeA)
		}
		b := person("b", bornB, nil, 0)
		if lifeB >= 0 {
			b.Died = apptype.Year(bornB + lifeB)
		}
		if e.Connectable(a, b) != e.Connectable(b, a) {
			t.Fatalf("asymmetric for %+v %+v", a, b)
		}
	})
}
