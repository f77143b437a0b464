package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scopegen/scopegen/internal/catalog"
	"github.com/scopegen/scopegen/internal/generate"
	"github.com/scopegen/scopegen/internal/history"
)

// GenerateTool handles the scope_generate MCP tool.
// It runs a full generation pass: resolve focus directories, render
// trees, write descriptor documents, and persist the configuration.
type GenerateTool struct {
	catalog *catalog.Catalog
	history *history.Store
}

// NewGenerateTool creates a GenerateTool. history may be nil to skip
// run recording.
func NewGenerateTool(cat *catalog.Catalog, store *history.Store) *GenerateTool {
	return &GenerateTool{catalog: cat, history: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateTool) Definition() mcp.Tool {
	return mcp.NewTool("scope_generate",
		mcp.WithDescription(
			"Run a full generation pass over a project: resolve the configured "+
				"focus directories (or detect them by code density when no usable "+
				"configuration exists), render one tree per directory, write the "+
				"agent descriptor documents, and persist scopegen.yaml. "+
				"Descriptor failures are partial: the run continues and reports them.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to the project root"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory for descriptor documents (default: the project root)"),
		),
	)
}

// Handle processes the scope_generate tool call.
func (t *GenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errResult := projectRoot(req)
	if errResult != nil {
		return errResult, nil
	}

	runner := &generate.Runner{
		Root:      root,
		OutputDir: strings.TrimSpace(req.GetString("output_dir", "")),
		Catalog:   t.catalog,
		History:   t.history,
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Generation Complete\n\n")
	sb.WriteString(fmt.Sprintf("**Run ID:** %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("**Focus source:** %s\n", result.Source))
	sb.WriteString(fmt.Sprintf("**Configuration:** %s\n\n", result.ConfigPath))

	sb.WriteString("### Descriptors\n\n")
	for _, desc := range result.Descriptors {
		sb.WriteString(fmt.Sprintf("- `%s` → %s\n", desc.Name, desc.AgentPath))
	}
	if len(result.Failed) > 0 {
		sb.WriteString("\n### Failed Directories\n\n")
		for _, rel := range result.Failed {
			sb.WriteString(fmt.Sprintf("- `%s`\n", rel))
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
