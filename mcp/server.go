// Package mcp exposes read-only content and run inspection tools over the
// Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/anshulchahar/gita/internal/app"
	"github.com/anshulchahar/gita/internal/ledger"
)

// Server wraps the MCP server with gita tools.
type Server struct {
	app       *app.App
	mcpServer *server.MCPServer
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server with the gita tools registered.
func NewServer(a *app.App, version string) *Server {
	s := &Server{app: a}
	s.mcpServer = server.NewMCPServer(
		"gita",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Run serves over stdin and stdout.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "gita_validate_unit", Description: "Check unit content documents for structural problems"},
		{Name: "gita_lesson_chain", Description: "Show a unit's lessons in order with their prerequisites"},
		{Name: "gita_plan_sync", Description: "Count the writes a sync would send, per collection"},
		{Name: "gita_last_run", Description: "Report the most recent sync or wipe run and its failures"},
	}
}

// CallTool executes a tool by name with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "gita_validate_unit":
		return s.handleValidate(ctx, args)
	case "gita_lesson_chain":
		return s.handleLessonChain(ctx, args)
	case "gita_plan_sync":
		return s.handlePlanSync(ctx, args)
	case "gita_last_run":
		return s.handleLastRun(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("gita_validate_unit",
		mcp.WithDescription("Check unit content documents for structural problems: lesson order and prerequisite chain, section verse ranges, question counts and payloads. Omit unit to check every unit."),
		mcp.WithNumber("unit",
			mcp.Description("Unit number to check (default: all units)"),
		),
	), s.wrap(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("gita_lesson_chain",
		mcp.WithDescription("Show a unit's lessons in order with section, prerequisite and question counts."),
		mcp.WithNumber("unit",
			mcp.Description("Unit number"),
			mcp.Required(),
		),
	), s.wrap(s.handleLessonChain))

	s.mcpServer.AddTool(mcp.NewTool("gita_plan_sync",
		mcp.WithDescription("Dry run of a sync: validates content and counts the writes per collection without contacting the store."),
		mcp.WithString("units",
			mcp.Description("Comma-separated unit numbers, e.g. \"1,2\" (default: all units)"),
		),
	), s.wrap(s.handlePlanSync))

	s.mcpServer.AddTool(mcp.NewTool("gita_last_run",
		mcp.WithDescription("Report the most recent recorded run with its per-collection failures."),
		mcp.WithString("kind",
			mcp.Description("Run kind: sync or wipe (default: any)"),
		),
	), s.wrap(s.handleLastRun))
}

type handler func(ctx context.Context, args map[string]any) (*ToolResult, error)

func (s *Server) wrap(h handler) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, req.GetArguments())
		if err != nil {
			return nil, err
		}
		return toMCPResult(result), nil
	}
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

func (s *Server) handleValidate(_ context.Context, args map[string]any) (*ToolResult, error) {
	var units []int
	if n, ok := intArg(args, "unit"); ok {
		units = []int{n}
	}
	reports, err := s.app.Validate(units)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("validate failed: %v", err), IsError: true}, nil
	}
	if len(reports) == 0 {
		return &ToolResult{Content: "No unit files found."}, nil
	}

	var b strings.Builder
	invalid := 0
	for _, r := range reports {
		if r.Valid {
			fmt.Fprintf(&b, "unit %d: ok (%d lessons, %d questions)\n", r.Unit, r.Lessons, r.Questions)
			continue
		}
		invalid++
		fmt.Fprintf(&b, "unit %d: %d problem(s)\n", r.Unit, len(r.Violations))
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "  - %s\n", v)
		}
	}
	return &ToolResult{Content: strings.TrimRight(b.String(), "\n"), IsError: invalid > 0}, nil
}

func (s *Server) handleLessonChain(_ context.Context, args map[string]any) (*ToolResult, error) {
	n, ok := intArg(args, "unit")
	if !ok {
		return &ToolResult{Content: "unit is required", IsError: true}, nil
	}
	chain, err := s.app.LessonChain(n)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("lesson chain failed: %v", err), IsError: true}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Unit %d: %d lessons\n", n, len(chain))
	for _, l := range chain {
		prereq := "-"
		if l.Prerequisite != "" {
			prereq = l.Prerequisite
		}
		fmt.Fprintf(&b, "%2d. %s [%s] %q after %s, %d question(s)", l.Order, l.ID, l.Section, l.Name, prereq, l.Questions)
		if l.Placeholders > 0 {
			fmt.Fprintf(&b, ", %d placeholder(s)", l.Placeholders)
		}
		b.WriteByte('\n')
	}
	return &ToolResult{Content: strings.TrimRight(b.String(), "\n")}, nil
}

func (s *Server) handlePlanSync(_ context.Context, args map[string]any) (*ToolResult, error) {
	units, err := parseUnits(args["units"])
	if err != nil {
		return &ToolResult{Content: err.Error(), IsError: true}, nil
	}
	writes, err := s.app.Plan(units)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("plan failed: %v", err), IsError: true}, nil
	}

	var order []string
	counts := map[string]int{}
	for _, w := range writes {
		if counts[w.Collection] == 0 {
			order = append(order, w.Collection)
		}
		counts[w.Collection]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d writes planned\n", len(writes))
	for _, c := range order {
		fmt.Fprintf(&b, "  %s: %d\n", c, counts[c])
	}
	return &ToolResult{Content: strings.TrimRight(b.String(), "\n")}, nil
}

func (s *Server) handleLastRun(ctx context.Context, args map[string]any) (*ToolResult, error) {
	kind, _ := args["kind"].(string)
	run, err := s.app.LastRun(ctx, kind)
	if errors.Is(err, ledger.ErrNoRuns) {
		return &ToolResult{Content: "No runs recorded."}, nil
	}
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("last run failed: %v", err), IsError: true}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s run %s at %s (%s)\n", run.Kind, run.ID, run.StartedAt.Format("2006-01-02 15:04:05Z07:00"), run.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "succeeded: %d, failed: %d\n", run.Succeeded, run.Failed)
	if run.Aborted != "" {
		fmt.Fprintf(&b, "aborted: %s\n", run.Aborted)
	}
	for _, f := range run.Failures {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	return &ToolResult{Content: strings.TrimRight(b.String(), "\n")}, nil
}

// parseUnits accepts "1,2,5" or a JSON array of numbers.
func parseUnits(v any) ([]int, error) {
	var units []int
	switch t := v.(type) {
	case nil:
	case string:
		for _, part := range strings.Split(t, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid unit %q", part)
			}
			units = append(units, n)
		}
	case []any:
		for _, item := range t {
			f, ok := item.(float64)
			if !ok || f < 1 {
				return nil, fmt.Errorf("invalid unit %v", item)
			}
			units = append(units, int(f))
		}
	default:
		return nil, fmt.Errorf("units must be a string, got %T", v)
	}
	return units, nil
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}
