// Package descriptor writes the per-directory agent documents that
// scope an external coding agent to one subtree.
package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scopegen/scopegen/internal/focus"
	"github.com/scopegen/scopegen/internal/tree"
	"go.uber.org/zap"
)

// RulesFileName is the optional base-rules file prepended to every
// descriptor when present at the project root.
const RulesFileName = "AGENT_RULES.md"

// Descriptor records where one focus directory's documents were written.
type Descriptor struct {
	Name      string
	AgentPath string
	TreePath  string
}

// Writer renders and persists descriptor documents.
type Writer struct {
	outputDir    string
	projectTitle string
	baseRules    string
	log          *zap.Logger
}

// NewWriter creates a Writer. baseRules may be empty; a nil logger
// keeps the writer silent.
func NewWriter(outputDir, projectTitle, baseRules string, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		outputDir:    outputDir,
		projectTitle: projectTitle,
		baseRules:    baseRules,
		log:          log,
	}
}

// LoadBaseRules reads the base rules file under projectRoot. A missing
// file is not an error, just an empty rules block.
func LoadBaseRules(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, RulesFileName))
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}

// DocumentName derives the descriptor identity for a resolved
// directory:
//
//   - a directory whose own name begins with a double underscore keeps
//     its bare name;
//   - a path deeper than one level combines the first and last
//     segments ("src/components" → "src_components");
//   - otherwise the immediate parent's name is combined with the
//     directory's own name.
func DocumentName(res focus.Resolved) string {
	segments := strings.Split(res.Rel, "/")
	base := segments[len(segments)-1]

	if strings.HasPrefix(base, "__") {
		return base
	}
	if len(segments) > 1 {
		return segments[0] + "_" + base
	}
	return filepath.Base(filepath.Dir(res.Path)) + "_" + base
}

// Write persists the agent document and the raw tree file for one
// focus directory, creating the output directory as needed.
func (w *Writer) Write(res focus.Resolved, lines []tree.Line) (Descriptor, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return Descriptor{}, fmt.Errorf("creating output directory: %w", err)
	}

	name := DocumentName(res)
	desc := Descriptor{
		Name:      name,
		AgentPath: filepath.Join(w.outputDir, "agent_"+name+".md"),
		TreePath:  filepath.Join(w.outputDir, "tree_"+name+".txt"),
	}

	treeText := tree.Join(lines)
	if err := os.WriteFile(desc.TreePath, []byte(treeText+"\n"), 0o644); err != nil {
		return Descriptor{}, fmt.Errorf("writing tree file: %w", err)
	}

	doc := w.document(res, treeText)
	if err := os.WriteFile(desc.AgentPath, []byte(doc), 0o644); err != nil {
		return Descriptor{}, fmt.Errorf("writing agent file: %w", err)
	}

	w.log.Info("descriptor written",
		zap.String("directory", res.Rel),
		zap.String("agent", desc.AgentPath))
	return desc, nil
}

func (w *Writer) document(res focus.Resolved, treeText string) string {
	var sb strings.Builder
	if w.baseRules != "" {
		sb.WriteString(w.baseRules)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "# %s — %s\n\n", w.projectTitle, res.Rel)
	sb.WriteString("You will focus on the current files only:\n\n")
	sb.WriteString("```\n")
	sb.WriteString(res.Rel)
	sb.WriteString("/\n")
	if treeText != "" {
		sb.WriteString(treeText)
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	return sb.String()
}
