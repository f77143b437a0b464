// Package tools implements the MCP tools exposed by the scopegen server.
// Each tool lives in its own file with a Definition for registration and
// a Handle method for execution.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// projectRoot validates and normalizes the required "path" argument.
// The second return value is a ready-to-return tool error when the
// path is unusable.
func projectRoot(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	raw := strings.TrimSpace(req.GetString("path", ""))
	if raw == "" {
		return "", mcp.NewToolResultError("'path' is required")
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("invalid path %q: %v", raw, err))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("path %q does not exist", raw))
	}
	if !info.IsDir() {
		return "", mcp.NewToolResultError(fmt.Sprintf("path %q is not a directory", raw))
	}
	return abs, nil
}

// splitList parses a comma-separated argument into trimmed entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
