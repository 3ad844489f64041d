package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

type StepResult struct {
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type Report struct {
	SSEURL     string       `json:"sse_url"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
	Steps      []StepResult `json:"steps"`
	Passed     bool         `json:"passed"`
}

// fixture persons; ids are prefixed so the run can clean up after itself
var fixture = []apptype.Person{
	{ID: "it-a", Name: "IT Alpha", Born: 1700, Died: apptype.Year(1760), Fame: 900},
	{ID: "it-b", Name: "IT Bravo", Born: 1740, Died: apptype.Year(1800), Fame: 900},
	{ID: "it-c", Name: "IT Charlie", Born: 1780, Died: apptype.Year(1850), Fame: 900},
	{ID: "it-d", Name: "IT Delta", Born: 1830, Died: apptype.Year(1890), Fame: 900},
}

func main() {
	sseURL := flag.String("sse-url", "http://localhost:8080/sse", "SSE endpoint URL")
	project := flag.String("project", "default", "Project name to use")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-tester", Version: "dev"}, nil)
	transport := mcp.NewSSEClientTransport(*sseURL, nil)

	start := time.Now()
	report := Report{SSEURL: *sseURL, StartedAt: start}
	steps := make([]StepResult, 0, 16)

	// Connect
	tConn := time.Now()
	connRes := StepResult{Name: "connect"}
	session, err := client.Connect(ctx, transport)
	if err != nil {
		connRes.Error = err.Error()
		connRes.ElapsedMs = elapsedMsSince(tConn)
		report.Steps = append(steps, connRes)
		report.DurationMs = elapsedMsSince(start)
		writeReport(report)
		os.Exit(1)
	}
	defer session.Close()
	connRes.Success = true
	connRes.ElapsedMs = elapsedMsSince(tConn)
	steps = append(steps, connRes)

	pa := apptype.ProjectArgs{ProjectName: *project}
	ids := make([]string, len(fixture))
	for i, p := range fixture {
		ids[i] = p.ID
	}

	steps = append(steps, runListTools(ctx, session))
	steps = append(steps, runTool(ctx, session, "import_persons", apptype.ImportPersonsArgs{ProjectArgs: pa, Persons: fixture}, nil))
	steps = append(steps, runTool(ctx, session, "get_persons", apptype.GetPersonsArgs{ProjectArgs: pa, Names: []string{"IT Alpha"}},
		expectPersons(1)))
	steps = append(steps, runTool(ctx, session, "search_persons", apptype.SearchPersonsArgs{ProjectArgs: pa, Query: "IT ", Limit: 10},
		expectPersons(len(fixture))))
	steps = append(steps, runTool(ctx, session, "check_connection", apptype.CheckConnectionArgs{ProjectArgs: pa, A: "IT Alpha", B: "IT Bravo"},
		expectConnectable))
	steps = append(steps, runTool(ctx, session, "find_path", apptype.FindPathArgs{ProjectArgs: pa, Start: "IT Alpha", End: "IT Delta"},
		expectChain("IT Alpha", "IT Delta")))
	steps = append(steps, runTool(ctx, session, "build_chain", apptype.BuildChainArgs{ProjectArgs: pa, Start: "IT Alpha"},
		expectChain("IT Alpha", "")))
	steps = append(steps, runTool(ctx, session, "stitch_chain", apptype.StitchChainArgs{ProjectArgs: pa, Start: "IT Alpha", Waypoints: []string{"IT Charlie"}, End: "IT Delta"},
		expectChain("IT Alpha", "IT Delta")))
	steps = append(steps, runTool(ctx, session, "create_relations", apptype.CreateRelationsArgs{ProjectArgs: pa, Relations: []apptype.Relation{{From: "it-a", To: "it-b", RelationType: "taught"}}}, nil))
	steps = append(steps, runTool(ctx, session, "chain_relations", apptype.ChainRelationsArgs{ProjectArgs: pa, IDs: ids}, nil))
	steps = append(steps, runTool(ctx, session, "health_check", apptype.HealthArgs{}, nil))
	// cleanup
	steps = append(steps, runTool(ctx, session, "delete_persons", apptype.DeletePersonsArgs{ProjectArgs: pa, IDs: ids}, nil))

	report.Steps = steps
	report.DurationMs = elapsedMsSince(start)
	report.Passed = true
	for _, s := range steps {
		if !s.Success {
			report.Passed = false
			break
		}
	}
	writeReport(report)

	if !report.Passed {
		os.Exit(1)
	}
}

func writeReport(report Report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}

func runListTools(ctx context.Context, session *mcp.ClientSession) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "list_tools"}
	if _, err := session.ListTools(ctx, &mcp.ListToolsParams{}); err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

// runTool calls a tool and, when check is set, validates its structured output.
func runTool(ctx context.Context, session *mcp.ClientSession, name string, args any, check func(json.RawMessage) error) StepResult {
	t0 := time.Now()
	res := StepResult{Name: name}
	defer func() { res.ElapsedMs = elapsedMsSince(t0) }()

	raw, _ := json.Marshal(args)
	out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: json.RawMessage(raw)})
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.IsError:
		res.Error = "tool reported an error"
	case check != nil:
		structured, _ := json.Marshal(out.StructuredContent)
		if cerr := check(structured); cerr != nil {
			res.Error = cerr.Error()
		} else {
			res.Success = true
		}
	default:
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func expectPersons(n int) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var out apptype.PersonsResult
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
		if len(out.Persons) < n {
			return fmt.Errorf("expected at least %d persons, got %d", n, len(out.Persons))
		}
		return nil
	}
}

func expectConnectable(raw json.RawMessage) error {
	var out apptype.ConnectionResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if !out.Connectable {
		return fmt.Errorf("expected %s and %s to connect", out.A, out.B)
	}
	return nil
}

// expectChain checks the chain endpoints; an empty last accepts any tail.
func expectChain(first, last string) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var out apptype.ChainResult
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
		if !out.Found || len(out.Persons) == 0 {
			return fmt.Errorf("no chain found")
		}
		if got := out.Persons[0].Name; got != first {
			return fmt.Errorf("chain starts at %q, want %q", got, first)
		}
		if got := out.Persons[len(out.Persons)-1].Name; last != "" && got != last {
			return fmt.Errorf("chain ends at %q, want %q", got, last)
		}
		return nil
	}
}

// elapsedMsSince returns max(1ms, elapsed) to avoid zero durations on fast steps
func elapsedMsSince(t0 time.Time) int64 {
	d := time.Since(t0) / time.Millisecond
	if d <= 0 {
		return 1
	}
	return int64(d)
}
