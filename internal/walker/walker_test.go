package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// testdataDir returns the absolute path to the testdata/diagrams directory.
func testdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file location")
	}
	root := filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "diagrams")
	abs, err := filepath.Abs(root)
	if err != nil {
		t.Fatalf("resolve testdata path: %v", err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		t.Fatalf("testdata dir does not exist: %s", abs)
	}
	return abs
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	sort.Strings(out)
	return out
}

func TestWalk_BasicTraversal(t *testing.T) {
	dir := testdataDir(t)

	files, err := Walk(Options{Root: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	// drafts/ is gitignored, node_modules is excluded by default and
	// notes.txt holds no diagrams.
	want := []string{"docs/components.plantuml", "docs/guide.md", "sequence.puml"}
	got := relPaths(files)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_FileFields(t *testing.T) {
	dir := testdataDir(t)

	files, err := Walk(Options{Root: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, f := range files {
		if f.Path == "" || !filepath.IsAbs(f.Path) {
			t.Errorf("File.Path for %s is not absolute: %q", f.RelPath, f.Path)
		}
		if f.Size <= 0 {
			t.Errorf("File.Size for %s is %d, expected > 0", f.RelPath, f.Size)
		}
		wantKind := KindDiagram
		if strings.HasSuffix(f.RelPath, ".md") {
			wantKind = KindMarkdown
		}
		if f.Kind != wantKind {
			t.Errorf("File.Kind for %s = %q, want %q", f.RelPath, f.Kind, wantKind)
		}
	}
}

func TestWalk_IncludeFilter(t *testing.T) {
	dir := testdataDir(t)

	files, err := Walk(Options{
		Root:    dir,
		Include: []string{"*.puml"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	got := relPaths(files)
	if len(got) != 1 || got[0] != "sequence.puml" {
		t.Errorf("include filter *.puml returned %v", got)
	}
}

func TestWalk_ExcludeFilter(t *testing.T) {
	dir := testdataDir(t)

	files, err := Walk(Options{
		Root:    dir,
		Exclude: []string{"*.md"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, f := range files {
		if strings.HasSuffix(f.RelPath, ".md") {
			t.Errorf("exclude filter *.md did not exclude: %s", f.RelPath)
		}
	}
}

func TestWalk_DoubleStarInclude(t *testing.T) {
	dir := testdataDir(t)

	files, err := Walk(Options{
		Root:    dir,
		Include: []string{"docs/**"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(files) != 2 {
		t.Errorf("expected 2 files under docs/, got %v", relPaths(files))
	}
	for _, f := range files {
		if !strings.HasPrefix(f.RelPath, "docs/") {
			t.Errorf("include filter docs/** let through: %s", f.RelPath)
		}
	}
}

func TestWalk_SkipsBinaryFiles(t *testing.T) {
	tmpDir := t.TempDir()

	os.WriteFile(filepath.Join(tmpDir, "a.puml"), []byte("@startuml\nA -> B\n@enduml"), 0644)

	binary := make([]byte, 100)
	binary[50] = 0x00
	os.WriteFile(filepath.Join(tmpDir, "corrupt.puml"), binary, 0644)

	files, err := Walk(Options{Root: tmpDir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if got := relPaths(files); len(got) != 1 || got[0] != "a.puml" {
		t.Errorf("expected only a.puml, got %v", got)
	}
}

func TestWalk_SkipsLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()

	os.WriteFile(filepath.Join(tmpDir, "small.puml"), []byte("@startuml\n@enduml"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "big.puml"), []byte(strings.Repeat("A", 200)), 0644)

	files, err := Walk(Options{
		Root:        tmpDir,
		MaxFileSize: 100,
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, f := range files {
		if f.RelPath == "big.puml" {
			t.Error("big.puml should have been skipped (exceeds MaxFileSize)")
		}
	}
}

func TestWalk_DefaultExcludeDirs(t *testing.T) {
	tmpDir := t.TempDir()

	for _, dir := range []string{"node_modules", ".git", "vendor", ".umlwidget"} {
		dirPath := filepath.Join(tmpDir, dir)
		os.MkdirAll(dirPath, 0755)
		os.WriteFile(filepath.Join(dirPath, "x.puml"), []byte("@startuml\n@enduml"), 0644)
	}
	os.WriteFile(filepath.Join(tmpDir, "app.puml"), []byte("@startuml\n@enduml"), 0644)

	files, err := Walk(Options{Root: tmpDir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d: %v", len(files), relPaths(files))
	}
}

func TestWalk_Gitignore(t *testing.T) {
	tmpDir := t.TempDir()

	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("# scratch\n*.wsd\nsecret.puml\nbuild-out/\n"), 0644)
	os.MkdirAll(filepath.Join(tmpDir, "build-out"), 0755)

	os.WriteFile(filepath.Join(tmpDir, "app.puml"), []byte("@startuml\n@enduml"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "old.wsd"), []byte("@startuml\n@enduml"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "secret.puml"), []byte("@startuml\n@enduml"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "build-out", "gen.puml"), []byte("@startuml\n@enduml"), 0644)

	files, err := Walk(Options{Root: tmpDir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if got := relPaths(files); len(got) != 1 || got[0] != "app.puml" {
		t.Errorf("expected only app.puml to survive .gitignore, got %v", got)
	}
}

func TestWalk_InvalidPattern(t *testing.T) {
	_, err := Walk(Options{Root: t.TempDir(), Include: []string{"[unclosed"}})
	if err == nil {
		t.Fatal("expected an error for a malformed include pattern")
	}
}

func TestReadGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("/out\n!keep.puml\nnotes/*.wsd\n"), 0644)

	ignored := readGitignore(tmpDir)
	tests := []struct {
		rel  string
		want bool
	}{
		{"out/a.svg.puml", true},
		{"out", true},
		{"src/out/a.puml", false},
		{"keep.puml", false},
		{"notes/old.wsd", true},
		{"deep/notes/old.wsd", false},
	}
	for _, tt := range tests {
		if got := ignored.Match(tt.rel); got != tt.want {
			t.Errorf("gitignore match %q = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		filename string
		want     Kind
	}{
		{"seq.puml", KindDiagram},
		{"SEQ.PUML", KindDiagram},
		{"arch.plantuml", KindDiagram},
		{"a.pu", KindDiagram},
		{"inc.iuml", KindDiagram},
		{"legacy.wsd", KindDiagram},
		{"README.md", KindMarkdown},
		{"notes.markdown", KindMarkdown},
		{"main.go", KindUnknown},
		{"Makefile", KindUnknown},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.filename); got != tt.want {
			t.Errorf("DetectKind(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestMatchesInclude_Empty(t *testing.T) {
	if !MatchesInclude("anything.puml", nil) {
		t.Error("empty include patterns should include everything")
	}
}

func TestMatchesInclude_Pattern(t *testing.T) {
	if !MatchesInclude("seq.puml", []string{"*.puml"}) {
		t.Error("*.puml should match seq.puml")
	}
	if MatchesInclude("guide.md", []string{"*.puml"}) {
		t.Error("*.puml should not match guide.md")
	}
}

func TestMatchesExclude_Pattern(t *testing.T) {
	if !MatchesExclude("drafts/wip.puml", []string{"drafts/**"}) {
		t.Error("drafts/** should match drafts/wip.puml")
	}
	if MatchesExclude("seq.puml", []string{"drafts/**"}) {
		t.Error("drafts/** should not match seq.puml")
	}
}

func TestMatchesInclude_DoubleStarPattern(t *testing.T) {
	if !MatchesInclude("docs/arch/components.puml", []string{"**/*.puml"}) {
		t.Error("**/*.puml should match docs/arch/components.puml")
	}
}
