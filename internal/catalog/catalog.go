// Package catalog supplies the set of recognized code-file extensions.
//
// The set can be refreshed from a public language-extension catalog, but
// the fetch is strictly best-effort: any failure resolves to the static
// fallback list, so consumers always receive a concrete set before core
// logic runs. The result is memoized for the process lifetime.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultURL is the public list of programming-language extensions.
const DefaultURL = "https://gist.githubusercontent.com/ppisarczyk/43962d06686722d26d176fad46879d41/raw/Programming_Languages_Extensions.json"

const (
	fetchTimeout = 3 * time.Second
	maxAttempts  = 3
	initialWait  = 100 * time.Millisecond
	waitJitter   = 0.1
)

// Catalog resolves the extension set once and caches it.
type Catalog struct {
	url    string
	client *http.Client
	log    *zap.Logger

	once sync.Once
	exts map[string]struct{}
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithURL overrides the catalog URL. An empty URL disables fetching and
// pins the catalog to the static fallback list.
func WithURL(url string) Option {
	return func(c *Catalog) { c.url = url }
}

// WithHTTPClient overrides the HTTP client (test injection).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Catalog) { c.client = client }
}

// WithLogger attaches a diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

// New creates a Catalog with the default URL and timeout.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		url:    DefaultURL,
		client: &http.Client{Timeout: fetchTimeout},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extensions returns the resolved extension set. The first call fetches
// (with bounded retries and backoff); subsequent calls return the cached
// set. Never returns an empty set.
func (c *Catalog) Extensions(ctx context.Context) map[string]struct{} {
	c.once.Do(func() {
		c.exts = c.resolve(ctx)
	})
	return c.exts
}

// List returns the resolved extensions as a sorted slice.
func (c *Catalog) List(ctx context.Context) []string {
	exts := c.Extensions(ctx)
	out := make([]string, 0, len(exts))
	for ext := range exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) resolve(ctx context.Context) map[string]struct{} {
	if c.url == "" {
		return FallbackExtensions()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		exts, err := c.fetch(ctx)
		if err == nil {
			c.log.Info("loaded extension catalog",
				zap.Int("extensions", len(exts)), zap.String("url", c.url))
			return exts
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
			case <-time.After(backoff(attempt)):
			}
		}
	}

	c.log.Warn("extension catalog unavailable, using static fallback",
		zap.Error(lastErr))
	return FallbackExtensions()
}

// fetch downloads and parses the catalog JSON: an array of language
// records, each with an optional "extensions" list. Entries may hold
// several comma-separated extensions.
func (c *Catalog) fetch(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching catalog: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading catalog body: %w", err)
	}

	var languages []struct {
		Extensions []string `json:"extensions"`
	}
	if err := json.Unmarshal(body, &languages); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	exts := make(map[string]struct{})
	for _, lang := range languages {
		for _, raw := range lang.Extensions {
			for _, ext := range strings.Split(raw, ",") {
				ext = strings.TrimSpace(ext)
				if strings.HasPrefix(ext, ".") {
					exts[ext] = struct{}{}
				}
			}
		}
	}
	if len(exts) == 0 {
		return nil, fmt.Errorf("parsing catalog: no extensions found")
	}

	// Config and documentation extensions the language list omits.
	for _, ext := range additionalExtensions {
		exts[ext] = struct{}{}
	}
	return exts, nil
}

func backoff(attempt int) time.Duration {
	wait := float64(initialWait) * math.Pow(2, float64(attempt-1))
	wait += wait * waitJitter * (rand.Float64()*2 - 1)
	return time.Duration(wait)
}

// additionalExtensions are always merged into a fetched catalog.
var additionalExtensions = []string{
	".md", ".json", ".yaml", ".yml", ".toml", ".xml", ".ini", ".conf",
	".config", ".env", ".rst", ".txt", ".lock", ".dockerfile", ".ipynb",
}

// FallbackExtensions returns a fresh copy of the static extension set.
func FallbackExtensions() map[string]struct{} {
	exts := make(map[string]struct{}, len(fallbackList))
	for _, ext := range fallbackList {
		exts[ext] = struct{}{}
	}
	return exts
}

var fallbackList = []string{
	// Web
	".html", ".htm", ".css", ".scss", ".sass", ".less",
	".js", ".jsx", ".ts", ".tsx", ".vue", ".svelte", ".php",
	// Python
	".py", ".pyx", ".pyi", ".ipynb",
	// Java / JVM
	".java", ".kt", ".kts", ".groovy", ".gradle", ".scala",
	// C family
	".c", ".h", ".cpp", ".hpp", ".cc", ".cxx", ".hxx", ".cs",
	// Go
	".go", ".mod",
	// Rust
	".rs", ".toml",
	// Ruby
	".rb", ".erb", ".rake", ".gemspec",
	// Swift / Objective-C
	".swift", ".m", ".mm",
	// Shell
	".sh", ".bash", ".zsh", ".fish", ".ps1",
	// Functional
	".hs", ".elm", ".ml", ".mli", ".clj", ".cljs", ".ex", ".exs", ".erl",
	// Other languages
	".dart", ".r", ".jl", ".lua", ".pl", ".pm", ".nim", ".cr", ".zig",
	".sql", ".proto",
	// Config and documentation
	".json", ".yaml", ".yml", ".xml", ".ini", ".cfg", ".conf", ".config",
	".env", ".editorconfig",
	".md", ".markdown", ".rst", ".adoc", ".txt",
}
