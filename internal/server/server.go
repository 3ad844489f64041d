package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/buildinfo"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/database"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/metrics"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/planner"
)

const (
	serverName     = "mcp-lifechain-go"
	defaultProject = "default"
)

// MCPServer handles MCP protocol communication
type MCPServer struct {
	server  *mcp.Server
	db      *database.DBManager
	planner *planner.Planner
	logger  *zap.Logger
}

// NewMCPServer creates a new MCP server. A nil cfg reads the chain defaults
// from the environment; a nil logger disables logging.
func NewMCPServer(db *database.DBManager, cfg *planner.Config, logger *zap.Logger) *MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: buildinfo.Version,
	}, nil)

	mcpServer := &MCPServer{
		server:  server,
		db:      db,
		planner: planner.New(db, cfg, logger.Named("planner")),
		logger:  logger,
	}

	mcpServer.setupToolHandlers()
	return mcpServer
}

func schemaFor[T any](name string) *jsonschema.Schema {
	s, err := jsonschema.For[T]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for %s: %v", name, err))
	}
	return s
}

// setupToolHandlers registers all MCP tools
func (s *MCPServer) setupToolHandlers() {
	// Tools that return plain text do not need an output schema. Only
	// tools returning structured content should declare OutputSchema.
	mcp.AddTool(s.server, &mcp.Tool{
		Annotations: &mcp.ToolAnnotations{Title: "Import Persons"},
		Name:        "import_persons",
		Title:       "Import Persons",
		Description: "Insert or replace persons in the catalog. Persons without an id get one derived from name and birth year.",
		InputSchema: schemaFor[apptype.ImportPersonsArgs]("ImportPersonsArgs"),
	}, s.handleImportPersons)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "get_persons",
		Title:        "Get Persons",
		Description:  "Retrieve persons by display name.",
		InputSchema:  schemaFor[apptype.GetPersonsArgs]("GetPersonsArgs"),
		OutputSchema: schemaFor[apptype.PersonsResult]("PersonsResult (get)"),
	}, s.handleGetPersons)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "search_persons",
		Title:        "Search Persons",
		Description:  "Search persons by name, region or domain substring, most famous first.",
		InputSchema:  schemaFor[apptype.SearchPersonsArgs]("SearchPersonsArgs"),
		OutputSchema: schemaFor[apptype.PersonsResult]("PersonsResult (search)"),
	}, s.handleSearchPersons)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_persons",
		Title:       "Delete Persons",
		Description: "Delete persons by id together with their known relations.",
		InputSchema: schemaFor[apptype.DeletePersonsArgs]("DeletePersonsArgs"),
	}, s.handleDeletePersons)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "check_connection",
		Title:        "Check Connection",
		Description:  "Explain whether two persons may be adjacent in a chain: lifespan overlap, birth gap and the rule that decided.",
		InputSchema:  schemaFor[apptype.CheckConnectionArgs]("CheckConnectionArgs"),
		OutputSchema: schemaFor[apptype.ConnectionResult]("ConnectionResult"),
	}, s.handleCheckConnection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "build_chain",
		Title:        "Build Chain To Present",
		Description:  "Greedily extend a chain of overlapping lifetimes from a person toward the present day.",
		InputSchema:  schemaFor[apptype.BuildChainArgs]("BuildChainArgs"),
		OutputSchema: schemaFor[apptype.ChainResult]("ChainResult (build)"),
	}, s.handleBuildChain)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "find_path",
		Title:        "Find Path",
		Description:  "Find a chain with the fewest persons linking two persons.",
		InputSchema:  schemaFor[apptype.FindPathArgs]("FindPathArgs"),
		OutputSchema: schemaFor[apptype.ChainResult]("ChainResult (path)"),
	}, s.handleFindPath)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "stitch_chain",
		Title:        "Stitch Chain",
		Description:  "Link a person through ordered waypoints to an end person, or to the present when no end is given. Unreachable waypoints are reported in skipped.",
		InputSchema:  schemaFor[apptype.StitchChainArgs]("StitchChainArgs"),
		OutputSchema: schemaFor[apptype.ChainResult]("ChainResult (stitch)"),
	}, s.handleStitchChain)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_relations",
		Title:       "Create Relations",
		Description: "Record known relations between persons by id. Relations are shown alongside chains and never change them.",
		InputSchema: schemaFor[apptype.CreateRelationsArgs]("CreateRelationsArgs"),
	}, s.handleCreateRelations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "chain_relations",
		Title:        "Chain Relations",
		Description:  "List known relations among the given person ids, typically the ids of a computed chain.",
		InputSchema:  schemaFor[apptype.ChainRelationsArgs]("ChainRelationsArgs"),
		OutputSchema: schemaFor[apptype.RelationsResult]("RelationsResult"),
	}, s.handleChainRelations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "health_check",
		Title:        "Health Check",
		Description:  "Returns server and configuration information.",
		InputSchema:  schemaFor[apptype.HealthArgs]("HealthArgs"),
		OutputSchema: schemaFor[apptype.HealthResult]("HealthResult"),
	}, s.handleHealth)
}

func (s *MCPServer) getProjectName(providedName string) string {
	if strings.TrimSpace(providedName) != "" {
		return providedName
	}
	return defaultProject
}

func textResult(format string, args ...any) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

// handleImportPersons handles the import_persons tool call
func (s *MCPServer) handleImportPersons(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ImportPersonsArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("import_persons")
	var success bool
	defer func() { done(success) }()
	projectName := s.getProjectName(params.Arguments.ProjectArgs.ProjectName)

	stored, err := s.db.UpsertPersons(ctx, projectName, params.Arguments.Persons)
	if err != nil {
		return nil, fmt.Errorf("failed to import persons: %w", err)
	}
	success = true
	s.logger.Info("imported persons", zap.String("project", projectName), zap.Int("count", len(stored)))
	return textResult("Successfully imported %d persons into project %s", len(stored), projectName), nil
}

// handleGetPersons handles the get_persons tool call
func (s *MCPServer) handleGetPersons(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.GetPersonsArgs],
) (*mcp.CallToolResultFor[apptype.PersonsResult], error) {
	done := metrics.TimeTool("get_persons")
	var success bool
	defer func() { done(success) }()
	projectName := s.getProjectName(params.Arguments.ProjectArgs.ProjectName)

	persons, err := s.db.GetPersonsByName(ctx, projectName, params.Arguments.Names)
	if err != nil {
		return nil, fmt.Errorf("get_persons failed: %w", err)
	}
	success = true
	return &mcp.CallToolResultFor[apptype.PersonsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Found %d persons", len(persons))}},
		StructuredContent: apptype.PersonsResult{Persons: persons},
	}, nil
}

// handleSearchPersons handles the search_persons tool call
func (s *MCPServer) handleSearchPersons(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.SearchPersonsArgs],
) (*mcp.CallToolResultFor[apptype.PersonsResult], error) {
	done := metrics.TimeTool("search_persons")
	var success bool
	defer func() { done(success) }()
	projectName := s.getProjectName(params.Arguments.ProjectArgs.ProjectName)

	persons, err := s.db.SearchPersons(ctx, projectName, params.Arguments.Query, params.Arguments.Limit, params.Arguments.Offset)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	success = true
	return &mcp.CallToolResultFor[apptype.PersonsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: "Search completed successfully"}},
		StructuredContent: apptype.PersonsResult{Persons: persons},
	}, nil
}

// handleDeletePersons handles the delete_persons tool call
func (s *MCPServer) handleDeletePersons(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.DeletePersonsArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("delete_persons")
	var success bool
	defer func() { done(success) }()
	projectName := s.getProjectName(params.Arguments.ProjectArgs.ProjectName)

	n, err := s.db.DeletePersons(ctx, projectName, params.Arguments.IDs)
	if err != nil {
		return nil, fmt.Errorf("failed to delete persons: %w", err)
	}
	success = true
	return textResult("Deleted %d persons from project %s", n, projectName), nil
}

// handleCheckConnection handles the check_connection tool call
func (s *MCPServer) handleCheckConnection(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.CheckConnectionArgs],
) (*mcp.CallToolResultFor[apptype.ConnectionResult], error) {
	done := metrics.TimeTool("check_connection")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments
	projectName := s.getProjectName(args.ProjectArgs.ProjectName)

	res, err := s.planner.Explain(ctx, projectName, args.A, args.B, args.MinOverlapYears)
	if err != nil {
		return nil, fmt.Errorf("check_connection failed: %w", err)
	}
	success = true
	verdict := "not connectable"
	if res.Connectable {
		verdict = "connectable by " + res.Rule
	}
	return &mcp.CallToolResultFor[apptype.ConnectionResult]{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("%s and %s are %s (overlap %d years, birth gap %d years)",
				res.A, res.B, verdict, res.OverlapYears, res.BirthGap),
		}},
		StructuredContent: res,
	}, nil
}

// handleBuildChain handles the build_chain tool call
func (s *MCPServer) handleBuildChain(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.BuildChainArgs],
) (*mcp.CallToolResultFor[apptype.ChainResult], error) {
	done := metrics.TimeTool("build_chain")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	out, err := s.planner.BuildChain(ctx, planner.Query{
		Project:         s.getProjectName(args.ProjectArgs.ProjectName),
		Start:           args.Start,
		MinOverlapYears: args.MinOverlapYears,
		MinFame:         args.MinFame,
	})
	if err != nil {
		return nil, fmt.Errorf("build_chain failed: %w", err)
	}
	success = true
	return chainResult(out), nil
}

// handleFindPath handles the find_path tool call
func (s *MCPServer) handleFindPath(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.FindPathArgs],
) (*mcp.CallToolResultFor[apptype.ChainResult], error) {
	done := metrics.TimeTool("find_path")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	out, err := s.planner.FindPath(ctx, planner.Query{
		Project:         s.getProjectName(args.ProjectArgs.ProjectName),
		Start:           args.Start,
		End:             args.End,
		MinOverlapYears: args.MinOverlapYears,
		MinFame:         args.MinFame,
	})
	if err != nil {
		return nil, fmt.Errorf("find_path failed: %w", err)
	}
	success = true
	return chainResult(out), nil
}

// handleStitchChain handles the stitch_chain tool call
func (s *MCPServer) handleStitchChain(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.StitchChainArgs],
) (*mcp.CallToolResultFor[apptype.ChainResult], error) {
	done := metrics.TimeTool("stitch_chain")
	var success bool
	defer func() { done(success) }()
	args := params.Arguments

	out, err := s.planner.Stitch(ctx, planner.Query{
		Project:         s.getProjectName(args.ProjectArgs.ProjectName),
		Start:           args.Start,
		End:             args.End,
		Waypoints:       args.Waypoints,
		MinOverlapYears: args.MinOverlapYears,
		MinFame:         args.MinFame,
	})
	if err != nil {
		return nil, fmt.Errorf("stitch_chain failed: %w", err)
	}
	success = true
	return chainResult(out), nil
}

func chainResult(out planner.Outcome) *mcp.CallToolResultFor[apptype.ChainResult] {
	text := "No chain found"
	if out.Found() {
		text = fmt.Sprintf("Chain of %d persons: %s", len(out.Chain), strings.Join(out.Chain.Names(), " → "))
	}
	if len(out.Skipped) > 0 {
		text += fmt.Sprintf(" (skipped waypoints: %s)", strings.Join(out.Skipped, ", "))
	}
	persons := []apptype.Person(out.Chain)
	if persons == nil {
		persons = []apptype.Person{}
	}
	return &mcp.CallToolResultFor[apptype.ChainResult]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: apptype.ChainResult{
			Persons: persons,
			Skipped: out.Skipped,
			Found:   out.Found(),
		},
	}
}

// handleCreateRelations handles the create_relations tool call
func (s *MCPServer) handleCreateRelations(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.CreateRelationsArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("create_relations")
	var success bool
	defer func() { done(success) }()
	projectName := s.getProjectName(params.Arguments.ProjectArgs.ProjectName)
	relations := params.Arguments.Relations

	if err := s.db.CreateRelations(ctx, projectName, relations); err != nil {
		return nil, fmt.Errorf("failed to create relations: %w", err)
	}
	success = true
	return textResult("Created %d relations in project %s", len(relations), projectName), nil
}

// handleChainRelations handles the chain_relations tool call
func (s *MCPServer) handleChainRelations(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ChainRelationsArgs],
) (*mcp.CallToolResultFor[apptype.RelationsResult], error) {
	done := metrics.TimeTool("chain_relations")
	var success bool
	defer func() { done(success) }()
	projectName := s.getProjectName(params.Arguments.ProjectArgs.ProjectName)

	rels, err := s.db.RelationsAmong(ctx, projectName, params.Arguments.IDs)
	if err != nil {
		return nil, fmt.Errorf("chain_relations failed: %w", err)
	}
	success = true
	return &mcp.CallToolResultFor[apptype.RelationsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Found %d relations", len(rels))}},
		StructuredContent: apptype.RelationsResult{Relations: rels},
	}, nil
}

// handleHealth handles the health_check tool call
func (s *MCPServer) handleHealth(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.HealthArgs],
) (*mcp.CallToolResultFor[apptype.HealthResult], error) {
	done := metrics.TimeTool("health_check")
	defer func() { done(true) }()
	inUse, idle := s.db.PoolStats()
	metrics.Default().ObservePoolStats(inUse, idle)
	cfg := s.planner.Config()
	res := apptype.HealthResult{
		Name:            serverName,
		Version:         buildinfo.Version,
		Revision:        buildinfo.Revision,
		BuildDate:       buildinfo.BuildDate,
		MultiProject:    s.db.MultiProject(),
		ReferenceYear:   cfg.ReferenceYear,
		MinOverlapYears: cfg.MinOverlapYears,
		MinFame:         cfg.MinFame,
		CachedChains:    s.planner.CachedChains(),
	}
	return &mcp.CallToolResultFor[apptype.HealthResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: "ok"}},
		StructuredContent: res,
	}, nil
}

// reportPoolStats publishes pool gauges every interval until ctx is done.
func (s *MCPServer) reportPoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				inUse, idle := s.db.PoolStats()
				metrics.Default().ObservePoolStats(inUse, idle)
			}
		}
	}()
}

// Run starts the MCP server with stdio transport
func (s *MCPServer) Run(ctx context.Context) error {
	s.reportPoolStats(ctx, 5*time.Second)
	transport := mcp.NewStdioTransport()
	return s.server.Run(ctx, transport)
}

// RunSSE starts the MCP server over SSE at the given address and endpoint
func (s *MCPServer) RunSSE(ctx context.Context, addr string, endpoint string) error {
	s.reportPoolStats(ctx, 5*time.Second)
	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server { return s.server })
	mux := http.NewServeMux()
	mux.Handle(endpoint, handler)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("SSE MCP server listening", zap.String("addr", addr), zap.String("endpoint", endpoint))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
