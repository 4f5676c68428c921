package host

import (
	_ "embed"
	"html/template"
	"net/http"
)

//go:embed editor.html
var editorHTML string

var editorTemplate = template.Must(template.New("editor").Parse(editorHTML))

type editorPage struct {
	ID         string
	Text       string
	PreviewURL string
}

// handleEditor serves the editor view for one node.
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	n, ok := lookupNode(w, r, s.nodes)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := editorTemplate.Execute(w, editorPage{
		ID:         n.ID,
		Text:       n.State.Text,
		PreviewURL: n.State.URL,
	}); err != nil {
		s.logger.Warn("rendering editor page", "node", n.ID, "error", err)
	}
}
