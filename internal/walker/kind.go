package walker

import (
	"path/filepath"
	"strings"
)

// Kind classifies a file by how diagrams are read from it.
type Kind string

const (
	KindUnknown  Kind = ""
	KindDiagram  Kind = "diagram"  // the whole file is PlantUML source
	KindMarkdown Kind = "markdown" // diagrams live in fenced code blocks
)

// extensionToKind maps file extensions to the kind of diagram source.
var extensionToKind = map[string]Kind{
	".puml":     KindDiagram,
	".plantuml": KindDiagram,
	".pu":       KindDiagram,
	".iuml":     KindDiagram,
	".wsd":      KindDiagram,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".mdown":    KindMarkdown,
}

// DetectKind returns the kind for a filename, or KindUnknown when the file
// cannot hold diagrams.
func DetectKind(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	return extensionToKind[ext]
}
