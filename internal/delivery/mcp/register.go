package mcp

import (
	"context"
	"encoding/json"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/FreePeak/pg-mcp-server/internal/logger"
)

// Register wires every catalog tool onto the MCP server. Each handler renders
// its envelope as a single text content payload, so clients always receive a
// well-formed JSON document whether the call succeeded or failed.
func Register(srv *server.MCPServer, d *Dispatcher) {
	for _, desc := range d.registry.Descriptors() {
		name := desc.Tool.Name
		srv.AddTool(desc.Tool, func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			envelope := d.Dispatch(ctx, name, req.GetArguments())
			payload, err := json.MarshalIndent(envelope, "", "  ")
			if err != nil {
				logger.Error("Failed to marshal response for %s: %v", name, err)
				return mcpgo.NewToolResultError(err.Error()), nil
			}
			return mcpgo.NewToolResultText(string(payload)), nil
		})
		logger.Debug("Registered tool %s", name)
	}
}
