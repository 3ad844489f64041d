package database

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

const testProject = "test-project"

func setupTestDB(t *testing.T) (*DBManager, func()) {
	t.Helper()
	config := NewConfig()
	// Use an in-memory database for testing.
	// The `cache=shared` is crucial for sharing the connection across different
	// calls to `sql.Open` within the same process. Each test gets its own name.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	config.URL = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	config.MultiProjectMode = false
	db, err := NewDBManager(config)
	require.NoError(t, err)

	cleanup := func() {
		err := db.Close()
		assert.NoError(t, err)
	}

	return db, cleanup
}

func samplePersons() []apptype.Person {
	return []apptype.Person{
		{ID: "q1", Name: "Isaac Newton", Born: 1643, Died: apptype.Year(1727), Fame: 300, Domains: []string{"physics", "mathematics"}, Region: "England"},
		{ID: "q2", Name: "Benjamin Franklin", Born: 1706, Died: apptype.Year(1790), Fame: 250, Domains: []string{"politics"}, Region: "America"},
		{ID: "q3", Name: "Jane Goodall", Born: 1934, Fame: 150, Domains: []string{"primatology"}, Region: "England"},
	}
}

func TestUpsertAndListPersons(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	stored, err := db.UpsertPersons(ctx, testProject, samplePersons())
	require.NoError(t, err)
	require.Len(t, stored, 3)

	all, err := db.ListPersons(ctx, testProject)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "q1", all[0].ID, "most famous first")

	var goodall apptype.Person
	for _, p := range all {
		if p.ID == "q3" {
			goodall = p
		}
	}
	assert.True(t, goodall.Living())
	assert.Equal(t, []string{"primatology"}, goodall.Domains)
	assert.Equal(t, "England", goodall.Region)
	require.NotNil(t, all[0].Died)
	assert.Equal(t, 1727, *all[0].Died)
}

func TestUpsertPersons_ReplacesByID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := db.UpsertPersons(ctx, testProject, samplePersons())
	require.NoError(t, err)

	_, err = db.UpsertPersons(ctx, testProject, []apptype.Person{
		{ID: "q3", Name: "Jane Goodall", Born: 1934, Died: apptype.Year(2025), Fame: 180},
	})
	require.NoError(t, err)

	got, err := db.GetPersonsByID(ctx, testProject, []string{"q3"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 180, got[0].Fame)
	require.NotNil(t, got[0].Died)
	assert.Equal(t, 2025, *got[0].Died)
	assert.Empty(t, got[0].Domains)

	all, err := db.ListPersons(ctx, testProject)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpsertPersons_DerivesMissingID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := apptype.Person{Name: "Hypatia", Born: 360, Died: apptype.Year(415), Fame: 120}
	first, err := db.UpsertPersons(ctx, testProject, []apptype.Person{p})
	require.NoError(t, err)
	require.NotEmpty(t, first[0].ID)

	second, err := db.UpsertPersons(ctx, testProject, []apptype.Person{p})
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)

	all, err := db.ListPersons(ctx, testProject)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertPersons_RejectsInvalidBatch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	batch := append(samplePersons(), apptype.Person{ID: "bad", Name: "Backwards", Born: 1900, Died: apptype.Year(1800)})
	_, err := db.UpsertPersons(ctx, testProject, batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backwards")

	all, err := db.ListPersons(ctx, testProject)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetPersonsByName(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	persons := append(samplePersons(), apptype.Person{ID: "q9", Name: "Isaac Newton", Born: 1900, Fame: 5})
	_, err := db.UpsertPersons(ctx, testProject, persons)
	require.NoError(t, err)

	got, err := db.GetPersonsByName(ctx, testProject, []string{"Isaac Newton", "Nobody"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].ID)
	assert.Equal(t, "q9", got[1].ID)

	none, err := db.GetPersonsByName(ctx, testProject, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchPersons(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	_, err := db.UpsertPersons(ctx, testProject, samplePersons())
	require.NoError(t, err)

	byName, err := db.SearchPersons(ctx, testProject, "newton", 10, 0)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "q1", byName[0].ID)

	byRegion, err := db.SearchPersons(ctx, testProject, "England", 10, 0)
	require.NoError(t, err)
	assert.Len(t, byRegion, 2)

	paged, err := db.SearchPersons(ctx, testProject, "England", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "q3", paged[0].ID)

	byDomain, err := db.SearchPersons(ctx, testProject, "politics", 0, 0)
	require.NoError(t, err)
	require.Len(t, byDomain, 1)
	assert.Equal(t, "q2", byDomain[0].ID)

	literal, err := db.SearchPersons(ctx, testProject, "%", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, literal)

	_, err = db.SearchPersons(ctx, testProject, "  ", 10, 0)
	assert.Error(t, err)
}

func TestDeletePersons_CascadesRelations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	_, err := db.UpsertPersons(ctx, testProject, samplePersons())
	require.NoError(t, err)
	require.NoError(t, db.CreateRelations(ctx, testProject, []apptype.Relation{
		{From: "q1", To: "q2", RelationType: "influenced"},
		{From: "q2", To: "q3", RelationType: "admired_by"},
	}))

	n, err := db.DeletePersons(ctx, testProject, []string{"q2", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rels, err := db.RelationsAmong(ctx, testProject, []string{"q1", "q2", "q3"})
	require.NoError(t, err)
	assert.Empty(t, rels)

	all, err := db.ListPersons(ctx, testProject)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGeneration_ChangesOnWrites(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	g0, err := db.Generation(ctx, testProject)
	require.NoError(t, err)

	_, err = db.UpsertPersons(ctx, testProject, samplePersons())
	require.NoError(t, err)
	g1, err := db.Generation(ctx, testProject)
	require.NoError(t, err)
	assert.Greater(t, g1, g0)

	require.NoError(t, db.CreateRelations(ctx, testProject, []apptype.Relation{{From: "q1", To: "q2", RelationType: "r"}}))
	g2, err := db.Generation(ctx, testProject)
	require.NoError(t, err)
	assert.Equal(t, g1, g2, "relations do not touch the catalog")

	_, err = db.DeletePersons(ctx, testProject, []string{"nope"})
	require.NoError(t, err)
	g3, err := db.Generation(ctx, testProject)
	require.NoError(t, err)
	assert.Equal(t, g2, g3, "no-op delete keeps the generation")

	_, err = db.DeletePersons(ctx, testProject, []string{"q3"})
	require.NoError(t, err)
	g4, err := db.Generation(ctx, testProject)
	require.NoError(t, err)
	assert.Greater(t, g4, g3)
}

func TestMultiProject(t *testing.T) {
	dir := t.TempDir()

	config := &Config{
		ProjectsDir:      dir,
		MultiProjectMode: true,
	}

	db, err := NewDBManager(config)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	persons := samplePersons()
	_, err = db.UpsertPersons(ctx, "project1", persons[:1])
	require.NoError(t, err)
	_, err = db.UpsertPersons(ctx, "project2", persons[1:2])
	require.NoError(t, err)

	p1, err := db.ListPersons(ctx, "project1")
	require.NoError(t, err)
	require.Len(t, p1, 1)
	assert.Equal(t, "q1", p1[0].ID)

	p2, err := db.ListPersons(ctx, "project2")
	require.NoError(t, err)
	require.Len(t, p2, 1)
	assert.Equal(t, "q2", p2[0].ID)

	_, err = db.ListPersons(ctx, "../escape")
	assert.Error(t, err)
}
