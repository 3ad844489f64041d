package chain

import (
	"context"
	"testing"
)

func BenchmarkFindPath(b *testing.B) {
	persons := randomCatalog(5, 2000)
	e, err := NewEngine(persons, WithMinFame(100), WithReferenceYear(testReferenceYear))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, t := persons[i%len(persons)], persons[(i*7+3)%len(persons)]
		if _, err := e.FindPath(ctx, s, t); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildToPresent(b *testing.B) {
	persons := randomCatalog(5, 2000)
	e, err := NewEngine(persons, WithMinFame(100), WithReferenceYear(testReferenceYear))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.BuildToPresent(ctx, persons[i%len(persons)]); err != nil {
			b.Fatal(err)
		}
	}
}
