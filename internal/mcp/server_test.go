package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
	"github.com/corbenferris/figjam-plantuml/internal/render"
)

// mockRenderer implements Renderer for testing.
type mockRenderer struct {
	body string
	err  error
}

func (m *mockRenderer) Server() string { return "http://render.local/plantuml" }

func (m *mockRenderer) Render(_ context.Context, text string, format plantuml.Format) (string, string, error) {
	url, err := plantuml.FormatURL(text, m.Server(), format)
	if err != nil {
		return "", "", err
	}
	if m.err != nil {
		return url, "", m.err
	}
	return url, m.body, nil
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestToolDefinitions(t *testing.T) {
	// Verify tool names and required properties.
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"encode", encodeTool, "plantuml_encode"},
		{"decode", decodeTool, "plantuml_decode"},
		{"url", urlTool, "plantuml_url"},
		{"render", renderTool, "plantuml_render"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	r := &mockRenderer{}
	srv := NewServer(r)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.renderer != r {
		t.Error("renderer not set correctly")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	srv := NewServer(&mockRenderer{})
	ctx := t.Context()
	text := "@startuml\nBob -> Alice : hello\n@enduml"

	enc, err := srv.handleEncode(ctx, callRequest(map[string]any{"text": text}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.IsError {
		t.Fatalf("unexpected tool error: %v", enc.Content)
	}
	token := resultText(t, enc)

	dec, err := srv.handleDecode(ctx, callRequest(map[string]any{"token": token}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, dec); got != text {
		t.Errorf("decoded %q, want %q", got, text)
	}
}

func TestDecodeErrors(t *testing.T) {
	srv := NewServer(&mockRenderer{})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing token", map[string]any{}, "missing required parameter"},
		{"invalid character", map[string]any{"token": "ab$d"}, "invalid"},
		{"corrupt stream", map[string]any{"token": "____"}, "decoding failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := srv.handleDecode(t.Context(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if got := resultText(t, result); !strings.Contains(got, tt.want) {
				t.Errorf("error text %q does not contain %q", got, tt.want)
			}
		})
	}
}

func TestHandleURL(t *testing.T) {
	srv := NewServer(&mockRenderer{})

	result, err := srv.handleURL(t.Context(), callRequest(map[string]any{"text": "A -> B", "format": "txt"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := plantuml.FormatURL("A -> B", "http://render.local/plantuml", plantuml.FormatTXT)
	if got := resultText(t, result); got != want {
		t.Errorf("url = %q, want %q", got, want)
	}

	result, _ = srv.handleURL(t.Context(), callRequest(map[string]any{"text": "A -> B", "format": "gif"}))
	if !result.IsError {
		t.Error("expected tool error for unsupported format")
	}
}

func TestHandleRender(t *testing.T) {
	t.Run("svg", func(t *testing.T) {
		srv := NewServer(&mockRenderer{body: "<svg/>"})
		result, err := srv.handleRender(t.Context(), callRequest(map[string]any{"text": "A -> B"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := resultText(t, result); got != "<svg/>" {
			t.Errorf("body = %q", got)
		}
	})

	t.Run("png", func(t *testing.T) {
		srv := NewServer(&mockRenderer{body: "\x89PNG"})
		result, err := srv.handleRender(t.Context(), callRequest(map[string]any{"text": "A -> B", "format": "png"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, c := range result.Content {
			if img, ok := c.(mcp.ImageContent); ok {
				found = img.MIMEType == "image/png"
			}
		}
		if !found {
			t.Error("expected PNG image content")
		}
	})

	t.Run("service failure", func(t *testing.T) {
		srv := NewServer(&mockRenderer{err: &render.RequestFailedError{StatusCode: 400, Body: "Syntax Error?"}})
		result, err := srv.handleRender(t.Context(), callRequest(map[string]any{"text": "A ->"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		got := resultText(t, result)
		if !strings.Contains(got, "Failed to fetch diagram: 400 Bad Request") || !strings.Contains(got, "Syntax Error?") {
			t.Errorf("error text = %q", got)
		}
	})
}
