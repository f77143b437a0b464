// scopegen scans a project tree, selects the directories where the code
// actually lives, and writes one agent descriptor document per
// directory so coding agents can be scoped to a single subtree.
//
// Usage:
//
//	scopegen generate [path]   # one generation pass
//	scopegen watch [path]      # regenerate on an interval
//	scopegen analyze [path]    # rank directories by code density
//	scopegen find <name>       # diagnose where a directory name matches
//	scopegen history           # list recorded runs
//	scopegen serve             # start the MCP server (stdio transport)
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/scopegen/scopegen/internal/catalog"
	"github.com/scopegen/scopegen/internal/config"
	"github.com/scopegen/scopegen/internal/density"
	"github.com/scopegen/scopegen/internal/focus"
	"github.com/scopegen/scopegen/internal/generate"
	"github.com/scopegen/scopegen/internal/history"
	"github.com/scopegen/scopegen/internal/logging"
	scopeserver "github.com/scopegen/scopegen/internal/server"
	"github.com/scopegen/scopegen/internal/updater"
)

var (
	logLevel  string
	logFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scopegen",
	Short: "Directory selection and tree rendering for agent-scoped projects",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; explicit environment always wins.
		_ = godotenv.Load()
		if !cmd.Flags().Changed("log-level") {
			if v := os.Getenv("SCOPEGEN_LOG_LEVEL"); v != "" {
				logLevel = v
			}
		}
		if !cmd.Flags().Changed("log-format") {
			if v := os.Getenv("SCOPEGEN_LOG_FORMAT"); v != "" {
				logFormat = v
			}
		}
		return logging.Init(logging.Config{Level: logLevel, Format: logFormat})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)

	generateCmd.Flags().StringP("output", "o", "", "directory for descriptor documents (default: the project root)")
	generateCmd.Flags().StringP("config", "c", "", "configuration file path (default: <root>/scopegen.yaml)")
	generateCmd.Flags().Bool("no-history", false, "skip recording this run")

	watchCmd.Flags().DurationP("interval", "i", 30*time.Second, "regeneration interval")
	watchCmd.Flags().StringP("output", "o", "", "directory for descriptor documents (default: the project root)")

	analyzeCmd.Flags().IntP("limit", "n", 20, "maximum ranked entries to show")

	findCmd.Flags().String("root", ".", "project root to search")

	historyCmd.Flags().IntP("limit", "n", 10, "number of runs to show")
}

func argOrCwd(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// newCatalog builds the extension catalog, honoring the
// SCOPEGEN_CATALOG_URL override (empty value pins the static fallback).
func newCatalog() *catalog.Catalog {
	opts := []catalog.Option{catalog.WithLogger(logging.L())}
	if url, ok := os.LookupEnv("SCOPEGEN_CATALOG_URL"); ok {
		opts = append(opts, catalog.WithURL(url))
	}
	return catalog.New(opts...)
}

// openHistory opens the run-history store, returning nil when it is
// unavailable so commands degrade instead of failing.
func openHistory() *history.Store {
	store, err := history.New(history.DefaultConfig())
	if err != nil {
		logging.S().Warnw("run history unavailable", "error", err)
		return nil
	}
	return store
}

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Resolve focus directories, render trees, and write descriptor documents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		configPath, _ := cmd.Flags().GetString("config")
		noHistory, _ := cmd.Flags().GetBool("no-history")

		runner := &generate.Runner{
			Root:       argOrCwd(args),
			ConfigPath: configPath,
			OutputDir:  output,
			Catalog:    newCatalog(),
			Log:        logging.L(),
		}
		if !noHistory {
			if store := openHistory(); store != nil {
				defer store.Close()
				runner.History = store
			}
		}

		result, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Run %s (focus source: %s)\n", result.RunID, result.Source)
		for _, desc := range result.Descriptors {
			fmt.Printf("  %s -> %s\n", desc.Name, desc.AgentPath)
		}
		for _, rel := range result.Failed {
			fmt.Printf("  FAILED %s\n", rel)
		}
		fmt.Printf("Configuration written to %s\n", result.ConfigPath)
		return nil
	},
}

// --- watch ---

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Regenerate descriptor documents on an interval until interrupted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		output, _ := cmd.Flags().GetString("output")

		runner := &generate.Runner{
			Root:      argOrCwd(args),
			OutputDir: output,
			Catalog:   newCatalog(),
			Log:       logging.L(),
		}
		if store := openHistory(); store != nil {
			defer store.Close()
			runner.History = store
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s every %s (ctrl-c to stop)\n", runner.Root, interval)
		if err := runner.Watch(ctx, interval); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Rank directories by how much recognized code they contain",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		root, err := filepath.Abs(argOrCwd(args))
		if err != nil {
			return err
		}

		cat := newCatalog()
		defaults := config.NewDefaults()
		scanner := density.New(
			cat.List(cmd.Context()),
			defaults.ExcludeDirs(),
			density.WithImportantNames(defaults.ImportantDirs()),
			density.WithLogger(logging.L()),
		)

		ranked := scanner.Ranked(root)
		if len(ranked) == 0 {
			fmt.Println("No directory reached the significance threshold.")
			return nil
		}
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DIRECTORY\tCODE FILES")
		for _, rec := range ranked {
			fmt.Fprintf(w, "%s\t%d\n", rec.RelPath, rec.Count)
		}
		w.Flush()

		if candidates := scanner.Scan(root); len(candidates) > 0 {
			fmt.Println("\nFocus candidates:")
			for _, rel := range candidates {
				fmt.Printf("  %s\n", rel)
			}
		}
		return nil
	},
}

// --- find ---

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Show every directory a focus name could match, with the strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootFlag, _ := cmd.Flags().GetString("root")
		root, err := filepath.Abs(rootFlag)
		if err != nil {
			return err
		}

		matches := focus.Diagnose(root, args[0])
		if len(matches) == 0 {
			fmt.Printf("No directory matching %q under %s\n", args[0], root)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DIRECTORY\tSTRATEGY")
		for _, m := range matches {
			fmt.Fprintf(w, "%s\t%s\n", m.Rel, m.Strategy)
		}
		return w.Flush()
	},
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded generation runs, or the directories of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.New(history.DefaultConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if len(args) == 1 {
			dirs, err := store.RunDirectories(args[0])
			if err != nil {
				return err
			}
			if len(dirs) == 0 {
				fmt.Printf("No directories recorded for run %s\n", args[0])
				return nil
			}
			fmt.Fprintln(w, "DIRECTORY\tSPEC\tTREE LINES")
			for _, d := range dirs {
				fmt.Fprintf(w, "%s\t%s\t%d\n", d.RelPath, d.Spec, d.LineCount)
			}
			return w.Flush()
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.RecentRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		fmt.Fprintln(w, "STARTED\tPROJECT\tDIRS\tRUN ID")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.StartedAt, r.ProjectTitle, r.DirectoryCount, r.ID)
		}
		return w.Flush()
	},
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, cleanup, err := scopeserver.New()
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		// Best-effort version check on stderr so MCP's stdio transport
		// on stdout stays clean.
		go func() {
			if result := updater.Check(scopeserver.Version); result.UpdateAvailable {
				fmt.Fprintf(os.Stderr,
					"\nUpdate available: v%s -> v%s (run: scopegen update)\n\n",
					result.CurrentVersion, result.LatestVersion)
			}
		}()

		return mcpserver.ServeStdio(srv)
	},
}

// --- update ---

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update scopegen to the latest release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result := updater.Check(scopeserver.Version)
		if !result.UpdateAvailable {
			fmt.Printf("Already at the latest version (v%s)\n", result.CurrentVersion)
			return nil
		}

		fmt.Printf("Updating v%s -> v%s...\n", result.CurrentVersion, result.LatestVersion)
		if err := updater.SelfUpdate(scopeserver.Version); err != nil {
			return fmt.Errorf("update failed: %w (download manually from %s)", err, result.ReleaseURL)
		}
		fmt.Printf("Updated to v%s. Restart scopegen to use it.\n", result.LatestVersion)
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the scopegen version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scopegen v%s\n", scopeserver.Version)
	},
}
