// ABOUTME: MCP server exposing medicines, reminders, trackers, and appointments to AI agents.
// ABOUTME: Tools mutate the shared state store; resources render read-only dashboards.
package mcp

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/healhub/internal/state"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Server wraps the MCP server with healhub functionality.
type Server struct {
	mcpServer *mcp.Server
	store     *state.Store
	loc       *time.Location
	clock     clockwork.Clock
}

// NewServer creates a new MCP server backed by the state store.
// A nil location means local time.
func NewServer(store *state.Store, loc *time.Location) (*Server, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		store: store,
		loc:   loc,
		clock: store.Clock(),
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    "healhub",
		Version: Version,
	}, nil)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) now() time.Time {
	return s.clock.Now().In(s.loc)
}
