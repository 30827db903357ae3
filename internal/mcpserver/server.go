// Package mcpserver exposes Folio documents to LLM clients over the Model
// Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/docservice"
)

// FormatURI is the resource URI of the format contract.
const FormatURI = "folio://format"

// Server wraps the MCP server with Folio tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates an MCP server with all Folio tools registered.
func New(svc *docservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document titles and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the canonical annotated Markdown of a document, metadata comments included."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. guides/setup.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("preview_document",
		mcp.WithDescription("Read a document as plain Markdown with all metadata removed."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.previewDocument)

	s.mcp.AddTool(mcp.NewTool("import_document",
		mcp.WithDescription("Store Markdown text as a document, creating or replacing it. "+
			"The text is normalized to the canonical layout. Read the format contract first via "+
			"get_format_contract or the "+FormatURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the document (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown text following the Folio format")),
	), s.importDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List indexed documents."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
		mcp.WithString("sort", mcp.Description("Sort order: path, title or updated")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the Folio document format contract. "+
			"Call this before importing documents."),
	), s.getFormatContract)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Folio Format Contract",
			mcp.WithResourceDescription("Annotated Markdown layout of Folio documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio runs the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError turns a service error into a tool-level error result.
func toolError(path string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	case errors.Is(err, apperr.ErrInvalidPath):
		return mcp.NewToolResultError(fmt.Sprintf("not a document path: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type hit struct {
		Path    string `json:"path"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	}
	out := make([]hit, len(hits))
	for i, h := range hits {
		out[i] = hit{Path: h.Path, Title: h.Title, Snippet: h.Snippet}
	}
	return jsonResult(out), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Load(ctx, path)
	if err != nil {
		return toolError(path, err), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) previewDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pv, err := s.svc.Preview(ctx, path)
	if err != nil {
		return toolError(path, err), nil
	}
	return mcp.NewToolResultText(pv.Text), nil
}

func (s *Server) importDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Import(ctx, path, content)
	if err != nil {
		return toolError(path, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("imported: %s (checksum %s)", doc.Path, doc.Checksum)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.List(ctx, req.GetInt("limit", 50), req.GetInt("offset", 0), req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if total == 0 {
		return mcp.NewToolResultText("no documents"), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.Path + "\t" + it.Title
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getFormatContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
