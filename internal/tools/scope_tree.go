package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scopegen/scopegen/internal/classify"
	"github.com/scopegen/scopegen/internal/config"
	"github.com/scopegen/scopegen/internal/ignore"
	"github.com/scopegen/scopegen/internal/tree"
)

// TreeTool handles the scope_tree MCP tool.
// It renders a depth-bounded ASCII tree for a directory, honoring the
// project's exclusion rules and extension allow-list.
type TreeTool struct{}

// NewTreeTool creates a TreeTool.
func NewTreeTool() *TreeTool {
	return &TreeTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *TreeTool) Definition() mcp.Tool {
	return mcp.NewTool("scope_tree",
		mcp.WithDescription(
			"Render an ASCII tree for a project directory. "+
				"Files sort before directories, depth is bounded, and the project's "+
				"exclusion rules and extension allow-list apply. "+
				"Use 'dir' to render a subdirectory instead of the root.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to the project root"),
		),
		mcp.WithString("dir",
			mcp.Description("Project-relative subdirectory to render (default: the root)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum nesting depth; 0 means direct children only (default 3)"),
		),
	)
}

// Handle processes the scope_tree tool call.
func (t *TreeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errResult := projectRoot(req)
	if errResult != nil {
		return errResult, nil
	}

	target := root
	rel := strings.Trim(filepath.ToSlash(req.GetString("dir", "")), "/")
	if rel != "" {
		target = filepath.Join(root, filepath.FromSlash(rel))
	}

	defaults := config.NewDefaults()
	classifier := classify.New(defaults.ExcludeDirs(), defaults.IncludeExtensions(), ignore.NewPredicate(root))
	renderer := tree.New(classifier, root)

	lines, err := renderer.Render(target, tree.Options{
		MaxDepth: req.GetInt("max_depth", tree.DefaultMaxDepth),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering tree: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("```\n")
	if rel != "" {
		sb.WriteString(rel + "/\n")
	} else {
		sb.WriteString(filepath.Base(root) + "/\n")
	}
	if len(lines) > 0 {
		sb.WriteString(tree.Join(lines))
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("\n%d entries.\n", len(lines)))

	return mcp.NewToolResultText(sb.String()), nil
}
