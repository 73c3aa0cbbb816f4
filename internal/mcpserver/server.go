// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes library tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lectern/internal/libraryservice"
)

const manifestFormatURI = "lectern://manifest-format"

// Server wraps the MCP server with library tools.
type Server struct {
	mcp *server.MCPServer
	svc *libraryservice.Service
}

// New creates a new MCP server with all library tools registered.
func New(svc *libraryservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lectern",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the registered library source folders."),
	), s.listSources)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List the books under a folder inside a registered library source."),
		mcp.WithString("dir", mcp.Required(), mcp.Description("Absolute folder path inside a library source")),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("open_book",
		mcp.WithDescription("Read the normalized text of a book. PDF and EPUB books need a .txt snapshot next to them."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the book file")),
	), s.openBook)

	s.mcp.AddTool(mcp.NewTool("sample_article",
		mcp.WithDescription("Return one reading-comprehension article from the corpus."),
		mcp.WithString("family", mcp.Required(), mcp.Enum("wiki", "prose"), mcp.Description("Corpus family")),
		mcp.WithString("tier", mcp.Required(), mcp.Enum("easy", "medium", "hard"), mcp.Description("Difficulty tier")),
	), s.sampleArticle)

	s.mcp.AddTool(mcp.NewTool("corpus_info",
		mcp.WithDescription("Report which corpus families and tiers are available and how many articles each holds."),
	), s.corpusInfo)

	s.mcp.AddTool(mcp.NewTool("export_manifest",
		mcp.WithDescription("Write a portable manifest of every registered source. "+
			"See the "+manifestFormatURI+" resource for the format."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Destination file path")),
	), s.exportManifest)

	s.mcp.AddTool(mcp.NewTool("import_manifest",
		mcp.WithDescription("Register the sources of a manifest by finding their folders under a shared root."),
		mcp.WithString("manifest_path", mcp.Required(), mcp.Description("Manifest file path")),
		mcp.WithString("shared_root", mcp.Required(), mcp.Description("Folder containing the source folders")),
	), s.importManifest)

	s.mcp.AddResource(
		mcp.NewResource(manifestFormatURI, "Library Manifest Format",
			mcp.WithResourceDescription("Structure and import rules of portable library manifests."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readManifestFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listSources(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Sources()), nil
}

func (s *Server) listBooks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.ListBooks(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items), nil
}

func (s *Server) openBook(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	book, err := s.svc.OpenBook(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("# " + book.Title + "\n\n" + book.Content), nil
}

func (s *Server) sampleArticle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	family, err := req.RequireString("family")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tier, err := req.RequireString("tier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	article := s.svc.SampleArticle(family, tier)
	if article == nil {
		return mcp.NewToolResultText("no article available for " + family + "/" + tier), nil
	}
	return jsonResult(article), nil
}

func (s *Server) corpusInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.CorpusInfo()), nil
}

func (s *Server) exportManifest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ExportManifest(ctx, libraryservice.StaticPicker{Save: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) importManifest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manifestPath, err := req.RequireString("manifest_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sharedRoot, err := req.RequireString("shared_root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.ImportManifest(ctx, libraryservice.StaticPicker{File: manifestPath, Folder: sharedRoot})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) readManifestFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      manifestFormatURI,
			MIMEType: "text/markdown",
			Text:     ManifestFormat,
		},
	}, nil
}
