package walker

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skippedDirs are never descended into, whatever the patterns say.
var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".umlwidget":   true,
	".venv":        true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
}

func skipDir(name string) bool {
	return skippedDirs[strings.ToLower(name)]
}

// Patterns is a set of doublestar globs matched against slash-separated
// paths relative to the walk root. A pattern without a slash also matches
// the bare file name, so "*.puml" selects sources at any depth.
type Patterns []string

// Compile normalises and validates raw glob patterns.
func Compile(raw []string) (Patterns, error) {
	var p Patterns
	for _, r := range raw {
		r = filepath.ToSlash(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !doublestar.ValidatePattern(r) {
			return nil, fmt.Errorf("invalid glob pattern %q", r)
		}
		p = append(p, r)
	}
	return p, nil
}

// Match reports whether rel matches any pattern.
func (p Patterns) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, pattern := range p {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}

// MatchesInclude reports whether rel is selected by the include patterns.
// No patterns selects everything.
func MatchesInclude(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	p, err := Compile(patterns)
	return err == nil && p.Match(rel)
}

// MatchesExclude reports whether rel is removed by the exclude patterns.
func MatchesExclude(rel string, patterns []string) bool {
	p, err := Compile(patterns)
	return err == nil && p.Match(rel)
}

// readGitignore translates the root .gitignore into doublestar patterns.
// Negated entries are not supported and are dropped.
func readGitignore(root string) Patterns {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	var p Patterns
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		dirOnly := strings.HasSuffix(line, "/")
		line = strings.TrimSuffix(line, "/")
		// A slash anywhere but the end anchors the entry to the root.
		if strings.Contains(line, "/") {
			line = strings.TrimPrefix(line, "/")
		} else {
			line = "**/" + line
		}
		if !doublestar.ValidatePattern(line) {
			continue
		}
		p = append(p, line+"/**")
		if !dirOnly {
			p = append(p, line)
		}
	}
	return p
}
