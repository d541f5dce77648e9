// Package mcp contains the tool catalog and the dispatcher that routes tool
// invocations to database operations, plus the glue registering both onto an
// MCP server.
package mcp

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// HandlerFunc builds the SQL template and parameters for one tool, invokes the
// executor through the dispatcher, and shapes the response envelope.
type HandlerFunc func(ctx context.Context, d *Dispatcher, args map[string]interface{}) interface{}

// ToolDescriptor pairs a tool's discovery metadata with its handler. Descriptors
// are constructed once at process start and shared read-only by all requests.
type ToolDescriptor struct {
	Tool    mcpgo.Tool
	Handler HandlerFunc
}

// Registry is the static catalog of available tools.
type Registry struct {
	tools map[string]ToolDescriptor
	order []string
}

// NewRegistry builds the catalog of the four database tools.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]ToolDescriptor)}

	r.add(mcpgo.NewTool("execute_query",
		mcpgo.WithDescription(
			"Execute a SQL query on the PostgreSQL database. "+
				"Supports SELECT, INSERT, UPDATE, DELETE operations. "+
				"Use parameterized queries for safety."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("SQL query to execute"),
		),
		mcpgo.WithArray("params",
			mcpgo.Description("Optional parameters for parameterized query"),
			mcpgo.Items(map[string]interface{}{
				"type": []interface{}{"string", "number", "boolean", "null"},
			}),
		),
	), handleExecuteQuery)

	r.add(mcpgo.NewTool("list_schemas",
		mcpgo.WithDescription("List all available database schemas"),
	), handleListSchemas)

	r.add(mcpgo.NewTool("list_tables",
		mcpgo.WithDescription("List all tables in the database, optionally filtered by schema"),
		mcpgo.WithString("schema",
			mcpgo.Description("Optional schema name to filter tables"),
		),
	), handleListTables)

	r.add(mcpgo.NewTool("describe_table",
		mcpgo.WithDescription("Get detailed column information for a specific table"),
		mcpgo.WithString("table_name",
			mcpgo.Required(),
			mcpgo.Description("Name of the table to describe"),
		),
		mcpgo.WithString("schema",
			mcpgo.Description("Schema name (default: 'public')"),
			mcpgo.DefaultString(defaultSchema),
		),
	), handleDescribeTable)

	return r
}

func (r *Registry) add(tool mcpgo.Tool, handler HandlerFunc) {
	r.tools[tool.Name] = ToolDescriptor{Tool: tool, Handler: handler}
	r.order = append(r.order, tool.Name)
}

// Lookup returns the descriptor for a tool name.
func (r *Registry) Lookup(name string) (ToolDescriptor, bool) {
	desc, ok := r.tools[name]
	return desc, ok
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []ToolDescriptor {
	out := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}
