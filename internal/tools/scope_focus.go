package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scopegen/scopegen/internal/focus"
)

// FocusTool handles the scope_focus MCP tool.
// It resolves focus specs against a project root and reports which
// strategy matched each one, or runs the broader diagnostic search
// when a spec cannot be resolved.
type FocusTool struct{}

// NewFocusTool creates a FocusTool.
func NewFocusTool() *FocusTool {
	return &FocusTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *FocusTool) Definition() mcp.Tool {
	return mcp.NewTool("scope_focus",
		mcp.WithDescription(
			"Resolve focus directory specs against a project root. "+
				"Specs may be plain names ('api'), paths ('src/components'), or "+
				"underscore-encoded paths ('src_components'). Names starting with a "+
				"double underscore ('__tests__') are taken verbatim. "+
				"Reports the matching directory and resolution strategy per spec; "+
				"unresolved specs get a list of near matches.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to the project root"),
		),
		mcp.WithString("specs",
			mcp.Required(),
			mcp.Description("Comma-separated focus directory specs"),
		),
		mcp.WithString("separators",
			mcp.Description("Characters treated as path separators in specs (default: '_')"),
		),
	)
}

// Handle processes the scope_focus tool call.
func (t *FocusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errResult := projectRoot(req)
	if errResult != nil {
		return errResult, nil
	}

	raws := splitList(req.GetString("specs", ""))
	if len(raws) == 0 {
		return mcp.NewToolResultError("'specs' is required"), nil
	}
	separators := splitList(req.GetString("separators", ""))

	resolver := focus.NewResolver(root, nil)

	var sb strings.Builder
	sb.WriteString("## Focus Resolution\n\n")
	resolvedCount := 0
	for _, raw := range raws {
		spec := focus.Parse(raw, separators)
		res, err := resolver.Resolve(spec)
		if err != nil {
			sb.WriteString(fmt.Sprintf("- ❌ `%s` — not found", raw))
			if matches := focus.Diagnose(root, spec.Final()); len(matches) > 0 {
				sb.WriteString("; near matches:")
				for _, m := range matches {
					sb.WriteString(fmt.Sprintf(" `%s` (%s)", m.Rel, m.Strategy))
				}
			}
			sb.WriteString("\n")
			continue
		}
		resolvedCount++
		sb.WriteString(fmt.Sprintf("- ✅ `%s` → `%s` (%s)\n", raw, res.Rel, res.Strategy))
	}
	sb.WriteString(fmt.Sprintf("\n%d of %d specs resolved.\n", resolvedCount, len(raws)))

	return mcp.NewToolResultText(sb.String()), nil
}
