// Package mcp exposes the memory system over the Model Context Protocol so
// assistant runtimes can query, ingest, and inspect tiered memory as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/tiermem/internal/metrics"
	"github.com/flemzord/tiermem/internal/migrate"
	"github.com/flemzord/tiermem/internal/retrieval"
)

// Deps are the collaborators the MCP tools delegate to.
type Deps struct {
	Resolver   *retrieval.Resolver
	Aggregator *metrics.Aggregator
	Migrator   *migrate.Adapter
	Logger     *slog.Logger
}

// BuildServer assembles the MCP server with the memory tools registered.
func BuildServer(version string, deps Deps) *server.MCPServer {
	s := server.NewMCPServer("tiermem", version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("memory_query",
		mcp.WithDescription("Answer a question from tiered memory, serving the cheapest tier the query allows."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question to answer.")),
		mcp.WithString("tier", mcp.Description("Optional tier override: auto, short, overview, or full.")),
	), deps.handleQuery)

	s.AddTool(mcp.NewTool("memory_ingest",
		mcp.WithDescription("Store new content under a key, deriving reduced tiers when auto-summarization is on."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Stable record key, typically a date stamp.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The full content to remember.")),
	), deps.handleIngest)

	s.AddTool(mcp.NewTool("memory_migrate",
		mcp.WithDescription("Import flat markdown memory files from a directory. Idempotent per record key."),
		mcp.WithString("dir", mcp.Required(), mcp.Description("Directory holding .md memory files.")),
	), deps.handleMigrate)

	s.AddTool(mcp.NewTool("performance_dashboard",
		mcp.WithDescription("Report token-saving statistics and the projected economic benefit."),
	), deps.handleDashboard)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (d Deps) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	override, _ := args["tier"].(string)

	res, err := d.Resolver.Resolve(ctx, query, override)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return toolResultJSON(res)
}

func (d Deps) handleIngest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	key, ok := args["key"].(string)
	if !ok || key == "" {
		return mcp.NewToolResultError("key parameter is required"), nil
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultError("content parameter is required"), nil
	}

	if err := d.Resolver.Ingest(ctx, key, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("stored record %q", key)), nil
}

func (d Deps) handleMigrate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	dir, ok := args["dir"].(string)
	if !ok || dir == "" {
		return mcp.NewToolResultError("dir parameter is required"), nil
	}

	res, err := d.Migrator.Run(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return toolResultJSON(res)
}

func (d Deps) handleDashboard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dashboard := struct {
		Summary metrics.Summary        `json:"summary"`
		Benefit metrics.Benefit        `json:"benefit"`
		Recent  []metrics.HistoryEntry `json:"recent"`
	}{
		Summary: d.Aggregator.Summary(),
		Benefit: d.Aggregator.EconomicBenefit(100, 0.000001),
		Recent:  d.Aggregator.Recent(10),
	}

	return toolResultJSON(dashboard)
}

func toolResultJSON(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
