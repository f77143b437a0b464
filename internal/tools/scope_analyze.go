package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scopegen/scopegen/internal/catalog"
	"github.com/scopegen/scopegen/internal/config"
	"github.com/scopegen/scopegen/internal/density"
)

// AnalyzeTool handles the scope_analyze MCP tool.
// It ranks a project's directories by code density and reports the
// focus candidates a generation run would pick without configuration.
type AnalyzeTool struct {
	catalog *catalog.Catalog
}

// NewAnalyzeTool creates an AnalyzeTool using the given extension
// catalog.
func NewAnalyzeTool(cat *catalog.Catalog) *AnalyzeTool {
	return &AnalyzeTool{catalog: cat}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("scope_analyze",
		mcp.WithDescription(
			"Rank a project's directories by how many recognized code files "+
				"they contain (counts roll up to ancestors). Shows every directory "+
				"above the significance threshold plus the focus candidates an "+
				"unconfigured generation run would select.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to the project root"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum ranked entries to show (default 20)"),
		),
	)
}

// Handle processes the scope_analyze tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errResult := projectRoot(req)
	if errResult != nil {
		return errResult, nil
	}
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	defaults := config.NewDefaults()
	scanner := density.New(
		t.catalog.List(ctx),
		defaults.ExcludeDirs(),
		density.WithImportantNames(defaults.ImportantDirs()),
	)

	ranked := scanner.Ranked(root)
	if len(ranked) == 0 {
		return mcp.NewToolResultText(
			"No directory reached the significance threshold. " +
				"A generation run here would fall back to plain top-level directories.",
		), nil
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var sb strings.Builder
	sb.WriteString("## Code Density\n\n")
	sb.WriteString("| Directory | Code files |\n|---|---|\n")
	for _, rec := range ranked {
		sb.WriteString(fmt.Sprintf("| `%s` | %d |\n", rec.RelPath, rec.Count))
	}

	if candidates := scanner.Scan(root); len(candidates) > 0 {
		sb.WriteString("\n### Focus Candidates\n\n")
		for _, rel := range candidates {
			sb.WriteString(fmt.Sprintf("- `%s`\n", rel))
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
