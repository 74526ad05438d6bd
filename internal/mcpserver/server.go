// Package mcpserver exposes the answer engine as an MCP tool so agent
// clients can query the budget dataset over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/salutethegenius/bahamasopendata/internal/domain/answer"
	"github.com/salutethegenius/bahamasopendata/internal/rag"
)

const version = "1.0.0"

// AskInput is the input schema for the ask_budget tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"natural-language question about Bahamas government finances"`
	FiscalYear string `json:"fiscal_year,omitempty" jsonschema:"optional fiscal year filter, e.g. 2024/25"`
}

type Server struct {
	rag    *rag.Service
	server *mcp.Server
}

func New(service *rag.Service) *Server {
	s := &Server{
		rag: service,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "bahamasopendata",
			Version: version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_budget",
		Description: "Answer questions about Bahamas government budget documents with citations",
	}, s.handleAsk)

	return s
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, answer.Answer, error) {
	return nil, s.rag.Ask(ctx, input.Question, input.FiscalYear), nil
}
