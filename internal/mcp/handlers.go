package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
	"github.com/corbenferris/figjam-plantuml/internal/render"
)

func (s *Server) handleEncode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	token, err := plantuml.Encode(text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(token), nil
}

func (s *Server) handleDecode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := request.RequireString("token")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: token"), nil
	}

	text, err := plantuml.Decode(token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("decoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	format, err := plantuml.ParseFormat(request.GetString("format", "svg"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	url, err := plantuml.FormatURL(text, s.renderer.Server(), format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(url), nil
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	format, err := plantuml.ParseFormat(request.GetString("format", "svg"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	url, body, err := s.renderer.Render(ctx, text, format)
	if err != nil {
		return mcp.NewToolResultError(renderFailure(err)), nil
	}

	if format == plantuml.FormatPNG {
		return mcp.NewToolResultImage(url, base64.StdEncoding.EncodeToString([]byte(body)), "image/png"), nil
	}
	return mcp.NewToolResultText(body), nil
}

// renderFailure appends the service's diagnostic body, which for PlantUML
// names the offending line.
func renderFailure(err error) string {
	var reqErr *render.RequestFailedError
	if errors.As(err, &reqErr) && reqErr.Body != "" {
		return err.Error() + "\n" + reqErr.Body
	}
	return err.Error()
}
