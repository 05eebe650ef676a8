// Package knowledge contains the pure rules for assembling the knowledge-base
// files the optimizer reads. Reading and writing happen in the app layer.
package knowledge

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/example/automl/internal/core/constraint"
)

// Workspace subdirectories of a dataset.
const (
	ResourcesDir     = "resources"
	ArgumentationDir = "argumentation"
	LogsDir          = "logs"
	GuardFileName    = "guards.txt"
)

// DatasetPath returns <workspace>/<dataset>.
func DatasetPath(workspace, dataset string) string {
	return filepath.Join(workspace, dataset)
}

// GuardPath returns the iteration-0 guard file of a dataset.
func GuardPath(datasetPath string) string {
	return filepath.Join(datasetPath, ResourcesDir, GuardFileName)
}

// FragmentPaths returns the kb and rules fragments an earlier optimizer run
// left for iteration k.
func FragmentPaths(datasetPath string, k int) (kbPath, rulesPath string) {
	dir := filepath.Join(datasetPath, ArgumentationDir)
	return filepath.Join(dir, fmt.Sprintf("kb_%d.txt", k)),
		filepath.Join(dir, fmt.Sprintf("rules_%d.txt", k))
}

// CompleteKBPath returns the cumulative knowledge base of iteration k.
func CompleteKBPath(datasetPath string, k int) string {
	return filepath.Join(datasetPath, ArgumentationDir, fmt.Sprintf("complete_kb_%d.txt", k))
}

// ComposeGuard concatenates the base rules and the derived constraints,
// each block followed by a blank-line separator.
func ComposeGuard(baseRules string, facts []constraint.Fact) string {
	return baseRules + "\n" + constraint.Render(facts) + "\n"
}

// FilterRules keeps the rule lines ending with target, in order.
// Matching is a case-sensitive suffix match on the line as stored.
func FilterRules(rules, target string) string {
	var kept []string
	for _, line := range splitLines(rules) {
		if strings.HasSuffix(line, target) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ComposeIterationKB concatenates an iteration's kb fragment with its
// (optionally filtered) mined rules.
func ComposeIterationKB(kb, rules string) string {
	return kb + "\n" + rules + "\n"
}

// splitLines splits on every line boundary a text file may carry (\n, \r\n,
// \r, \v, \f, \x1c-\x1e, U+0085, U+2028, U+2029) without keeping terminators.
// A trailing terminator does not produce an empty final line.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
