package lifechain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(&Config{
		URL:           "file:" + filepath.Join(t.TempDir(), "lifechain.db"),
		MaxGapYears:   50,
		ReferenceYear: 2025,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_EndToEnd(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	const project = "default"

	stored, err := svc.ImportPersons(ctx, project, []Person{
		{ID: "a", Name: "A", Born: 1700, Died: Year(1760), Fame: 200},
		{ID: "b", Name: "B", Born: 1740, Died: Year(1800), Fame: 200},
		{ID: "c", Name: "C", Born: 1780, Died: Year(1850), Fame: 200},
		{Name: "D", Born: 1830, Died: Year(1890), Fame: 200},
	})
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.NotEmpty(t, stored[3].ID)

	path, err := svc.FindPath(ctx, Query{Project: project, Start: "A", End: "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, path.Chain.Names())

	stitched, err := svc.Stitch(ctx, Query{Project: project, Start: "A", Waypoints: []string{"C"}, End: "D"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, stitched.Chain.Names())

	conn, err := svc.CheckConnection(ctx, project, "C", "D", nil)
	require.NoError(t, err)
	assert.True(t, conn.Connectable)

	require.NoError(t, svc.CreateRelations(ctx, project, []Relation{{From: "a", To: "b", RelationType: "taught"}}))
	rels, err := svc.RelationsFor(ctx, project, path.Chain)
	require.NoError(t, err)
	assert.Len(t, rels, 1)

	found, err := svc.SearchPersons(ctx, project, "B", 10, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	n, err := svc.DeletePersons(ctx, project, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	broken, err := svc.FindPath(ctx, Query{Project: project, Start: "A", End: "C"})
	require.NoError(t, err)
	assert.False(t, broken.Found())
}

func TestService_ImportFile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`persons:
  - {id: x, name: X, born: 1900, died: 1960, fame: 150}
  - {id: y, name: Y, born: 1935, died: 2020, fame: 150}
relations:
  - {from: x, to: y, relationType: mentored}
`), 0o644))

	n, err := svc.ImportFile(ctx, "default", path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	chain, err := svc.BuildChain(ctx, Query{Start: "X"})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, chain.Chain.Names())

	got, err := svc.GetPersons(ctx, "default", []string{"Y"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].ID)
}

func TestConfig_ExplicitZeroThresholds(t *testing.T) {
	zero := 0
	pc := (&Config{MinOverlapYears: &zero, MinFame: &zero}).toPlanner()
	assert.Equal(t, 0, pc.MinOverlapYears)
	assert.Equal(t, 0, pc.MinFame)

	defaults := (&Config{}).toPlanner()
	assert.Positive(t, defaults.MinOverlapYears)
	assert.Positive(t, defaults.MinFame)
}
