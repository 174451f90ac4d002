package mcpserver

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewHTTPHandler creates an HTTP handler for the MCP server using the
// Streamable HTTP transport. Stateless mode suits this server: every tool
// call is self-contained.
func NewHTTPHandler(server *Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server.MCPServer()
	}, &mcp.StreamableHTTPOptions{Stateless: true})
}
