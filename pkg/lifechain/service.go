// Package lifechain is the library entry point: it stores person catalogs
// and answers chain queries without the MCP transport.
package lifechain

import (
	"context"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/catalog"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/database"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/planner"
)

// Re-exported so callers need no internal imports.
type (
	Person   = apptype.Person
	Chain    = apptype.Chain
	Relation = apptype.Relation
	Query    = planner.Query
	Outcome  = planner.Outcome
)

// Year returns a pointer to y for Person.Died.
func Year(y int) *int { return apptype.Year(y) }

// Service provides a library-first API for catalog and chain operations.
type Service struct {
	db      *database.DBManager
	planner *planner.Planner
}

// NewService constructs a Service with the provided config. A nil logger disables logging.
func NewService(cfg *Config, logger *zap.Logger) (*Service, error) {
	dm, err := database.NewDBManager(cfg.toDatabase())
	if err != nil {
		return nil, err
	}
	dm.SetLogger(logger)
	return &Service{db: dm, planner: planner.New(dm, cfg.toPlanner(), logger)}, nil
}

// Close releases resources.
func (s *Service) Close() error { return s.db.Close() }

// ImportPersons validates and stores persons, returning them with ids filled.
func (s *Service) ImportPersons(ctx context.Context, project string, persons []Person) ([]Person, error) {
	return s.db.UpsertPersons(ctx, project, persons)
}

// ImportFile loads a YAML or JSON catalog file and stores its persons and relations.
func (s *Service) ImportFile(ctx context.Context, project, path string) (int, error) {
	f, err := catalog.Load(path)
	if err != nil {
		return 0, err
	}
	stored, err := s.db.UpsertPersons(ctx, project, f.Persons)
	if err != nil {
		return 0, err
	}
	if err := s.db.CreateRelations(ctx, project, f.Relations); err != nil {
		return 0, err
	}
	return len(stored), nil
}

// GetPersons returns persons by display name.
func (s *Service) GetPersons(ctx context.Context, project string, names []string) ([]Person, error) {
	return s.db.GetPersonsByName(ctx, project, names)
}

// SearchPersons performs a substring search over name, region and domains.
func (s *Service) SearchPersons(ctx context.Context, project, query string, limit, offset int) ([]Person, error) {
	return s.db.SearchPersons(ctx, project, query, limit, offset)
}

// DeletePersons removes persons by id with their relations.
func (s *Service) DeletePersons(ctx context.Context, project string, ids []string) (int, error) {
	return s.db.DeletePersons(ctx, project, ids)
}

// BuildChain extends a chain from q.Start toward the present.
func (s *Service) BuildChain(ctx context.Context, q Query) (Outcome, error) {
	return s.planner.BuildChain(ctx, q)
}

// FindPath finds a shortest chain from q.Start to q.End.
func (s *Service) FindPath(ctx context.Context, q Query) (Outcome, error) {
	return s.planner.FindPath(ctx, q)
}

// Stitch links q.Start through q.Waypoints to q.End, or to the present.
func (s *Service) Stitch(ctx context.Context, q Query) (Outcome, error) {
	return s.planner.Stitch(ctx, q)
}

// CheckConnection explains the predicate for two named persons. A nil
// minOverlapYears uses the configured default.
func (s *Service) CheckConnection(ctx context.Context, project, a, b string, minOverlapYears *int) (apptype.ConnectionResult, error) {
	return s.planner.Explain(ctx, project, a, b, minOverlapYears)
}

// CreateRelations records known relations between persons by id.
func (s *Service) CreateRelations(ctx context.Context, project string, rels []Relation) error {
	return s.db.CreateRelations(ctx, project, rels)
}

// RelationsFor returns known relations among the persons of chain.
func (s *Service) RelationsFor(ctx context.Context, project string, chain Chain) ([]Relation, error) {
	ids := make([]string, len(chain))
	for i, p := range chain {
		ids[i] = p.Key()
	}
	return s.db.RelationsAmong(ctx, project, ids)
}
