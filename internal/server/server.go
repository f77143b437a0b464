// Package server wires the MCP components and creates the server
// instance. This is the composition root: concrete dependencies are
// created here and injected into the tools. No business logic lives
// here.
package server

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/scopegen/scopegen/internal/catalog"
	"github.com/scopegen/scopegen/internal/history"
	"github.com/scopegen/scopegen/internal/logging"
	"github.com/scopegen/scopegen/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every tool registered.
//
// The returned cleanup function closes the history store's database
// connection and must be called on shutdown (typically via defer). It
// is always non-nil and safe to call even if history init failed.
func New() (*server.MCPServer, func(), error) {
	log := logging.L()

	cat := catalog.New(catalog.WithLogger(log))

	// History is best-effort: a failed open disables run recording but
	// never blocks the server.
	cleanup := noop
	var store *history.Store
	if s, err := history.New(history.DefaultConfig()); err != nil {
		log.Warn("run history disabled", zap.Error(err))
	} else {
		store = s
		cleanup = func() {
			if err := s.Close(); err != nil {
				log.Warn("closing history store", zap.Error(err))
			}
		}
	}

	srv := server.NewMCPServer(
		"scopegen",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	treeTool := tools.NewTreeTool()
	srv.AddTool(treeTool.Definition(), treeTool.Handle)

	focusTool := tools.NewFocusTool()
	srv.AddTool(focusTool.Definition(), focusTool.Handle)

	analyzeTool := tools.NewAnalyzeTool(cat)
	srv.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	generateTool := tools.NewGenerateTool(cat, store)
	srv.AddTool(generateTool.Definition(), generateTool.Handle)

	return srv, cleanup, nil
}

func noop() {}

func serverInstructions() string {
	return `scopegen scans a project tree, selects the directories where the
code actually lives, and writes one agent descriptor document per
directory so coding agents can be scoped to a single subtree.

Typical flow:
1. scope_analyze — see which directories are code-dense.
2. scope_focus — check how your focus specs resolve.
3. scope_generate — write the descriptor documents and scopegen.yaml.
4. scope_tree — inspect any directory's rendered tree on its own.`
}
