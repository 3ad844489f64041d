package database

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

const benchProject = "default"

func setupBenchDB(b *testing.B, n int) (*DBManager, func()) {
	b.Helper()
	cfg := NewConfig()
	cfg.URL = "file:benchdb?mode=memory&cache=shared"
	cfg.MultiProjectMode = false
	dbm, err := NewDBManager(cfg)
	if err != nil {
		b.Fatalf("NewDBManager: %v", err)
	}

	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	batch := make([]apptype.Person, 0, 200)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if _, err := dbm.UpsertPersons(ctx, benchProject, batch); err != nil {
			b.Fatalf("UpsertPersons: %v", err)
		}
		batch = batch[:0]
	}
	for i := range n {
		born := rnd.Intn(2400) - 400
		batch = append(batch, apptype.Person{
			ID:      "p_" + strconv.Itoa(i),
			Name:    "Person " + strconv.Itoa(i),
			Born:    born,
			Died:    apptype.Year(born + 30 + rnd.Intn(60)),
			Fame:    rnd.Intn(400),
			Domains: []string{"bench"},
		})
		if len(batch) == cap(batch) {
			flush()
		}
	}
	flush()

	cleanup := func() { _ = dbm.Close() }
	return dbm, cleanup
}

func BenchmarkListPersons(b *testing.B) {
	dbm, cleanup := setupBenchDB(b, 2000)
	defer cleanup()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dbm.ListPersons(ctx, benchProject); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchPersons(b *testing.B) {
	dbm, cleanup := setupBenchDB(b, 2000)
	defer cleanup()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dbm.SearchPersons(ctx, benchProject, "Person 1", 10, 0); err != nil {
			b.Fatal(err)
		}
	}
}
