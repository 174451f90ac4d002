package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ymori/esgrag/internal/rag"
)

// Asker answers questions against the report corpus.
type Asker interface {
	Ask(ctx context.Context, question string) (*rag.Response, error)
}

// Index is the slice of the storage surface the tools need.
type Index interface {
	AdvancedSearch(ctx context.Context, query string, years []int, k int) ([]string, error)
	Health(ctx context.Context) error
	Count(ctx context.Context) (uint64, error)
	Collection() string
}

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Service Asker
	Index   Index
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "esgrag-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_reports",
		Description: "Answer a question about the indexed sustainability reports. Rewrites the question, retrieves relevant passages, and generates a grounded answer with sources.",
	}, makeAskHandler(cfg.Service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_reports",
		Description: "Search report passages directly by hybrid semantic and keyword matching, optionally filtered by report year. Returns raw passages without answer generation.",
	}, makeSearchHandler(cfg.Index))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Get the current status of the report index including passage count and health.",
	}, makeStatusHandler(cfg.Index))

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
