package mcp

import (
	"context"
	"fmt"

	"github.com/FreePeak/pg-mcp-server/internal/logger"
	"github.com/FreePeak/pg-mcp-server/pkg/db"
)

const defaultSchema = "public"

// Catalog queries. Schema and table names arrive as user arguments, so they
// are always bound as parameters, never interpolated.
const (
	listSchemasSQL = `SELECT schema_name
FROM information_schema.schemata
WHERE schema_name NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
ORDER BY schema_name`

	listTablesSQL = `SELECT table_schema, table_name, table_type
FROM information_schema.tables
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`

	listTablesBySchemaSQL = `SELECT table_schema, table_name, table_type
FROM information_schema.tables
WHERE table_schema = $1
ORDER BY table_schema, table_name`

	describeTableSQL = `SELECT column_name, data_type, character_maximum_length, is_nullable, column_default
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`
)

// ValidationError reports a missing required argument or an unknown tool name.
// It is raised before any database access, with zero side effects.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// QueryExecutor runs one SQL statement with positional parameters.
// Satisfied by *db.Executor.
type QueryExecutor interface {
	Execute(ctx context.Context, sql string, params []interface{}) (*db.QueryResult, error)
}

// Dispatcher maps (tool name, arguments) pairs to handlers and wraps every
// outcome in a response envelope. Backend errors never escape past it.
type Dispatcher struct {
	registry *Registry
	executor QueryExecutor
}

// NewDispatcher creates a dispatcher over the given catalog and executor.
func NewDispatcher(registry *Registry, executor QueryExecutor) *Dispatcher {
	return &Dispatcher{registry: registry, executor: executor}
}

// Dispatch routes one tool request. The returned value is always a well-formed
// envelope; failures of any kind carry success=false and a readable message.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]interface{}) interface{} {
	desc, ok := d.registry.Lookup(name)
	if !ok {
		logger.Warn("Unknown tool requested: %s", name)
		return failure(fmt.Sprintf("Unknown tool: %s", name))
	}

	logger.Debug("Tool called: %s", name)
	return desc.Handler(ctx, d, args)
}

// requireString extracts a required string argument.
func requireString(args map[string]interface{}, key string) (string, *ValidationError) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", &ValidationError{Message: fmt.Sprintf("%s is required", key)}
	}
	return value, nil
}

// optionalString extracts an optional string argument, empty when absent.
func optionalString(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return value
}

func handleExecuteQuery(ctx context.Context, d *Dispatcher, args map[string]interface{}) interface{} {
	query, verr := requireString(args, "query")
	if verr != nil {
		return failure(verr.Message)
	}

	var params []interface{}
	if arr, ok := args["params"].([]interface{}); ok {
		params = arr
	}

	result, err := d.executor.Execute(ctx, query, params)
	if err != nil {
		logger.Error("execute_query failed: %v", err)
		return failure(err.Error())
	}

	data := result.Rows
	if !result.HasRows {
		// Mutating statements report a single affected-row record.
		data = []map[string]interface{}{{"affected_rows": result.RowsAffected}}
	}
	return executeQueryResponse{Success: true, RowCount: len(data), Data: data}
}

func handleListSchemas(ctx context.Context, d *Dispatcher, args map[string]interface{}) interface{} {
	result, err := d.executor.Execute(ctx, listSchemasSQL, nil)
	if err != nil {
		logger.Error("list_schemas failed: %v", err)
		return failure(err.Error())
	}

	schemas := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if name, ok := row["schema_name"].(string); ok {
			schemas = append(schemas, name)
		}
	}
	return listSchemasResponse{Success: true, Schemas: schemas}
}

func handleListTables(ctx context.Context, d *Dispatcher, args map[string]interface{}) interface{} {
	query := listTablesSQL
	var params []interface{}
	if schema := optionalString(args, "schema"); schema != "" {
		query = listTablesBySchemaSQL
		params = []interface{}{schema}
	}

	result, err := d.executor.Execute(ctx, query, params)
	if err != nil {
		logger.Error("list_tables failed: %v", err)
		return failure(err.Error())
	}

	tables := result.Rows
	if tables == nil {
		tables = []map[string]interface{}{}
	}
	return listTablesResponse{Success: true, TableCount: len(tables), Tables: tables}
}

func handleDescribeTable(ctx context.Context, d *Dispatcher, args map[string]interface{}) interface{} {
	tableName, verr := requireString(args, "table_name")
	if verr != nil {
		return failure(verr.Message)
	}
	schema := optionalString(args, "schema")
	if schema == "" {
		schema = defaultSchema
	}

	result, err := d.executor.Execute(ctx, describeTableSQL, []interface{}{schema, tableName})
	if err != nil {
		logger.Error("describe_table failed: %v", err)
		return failure(err.Error())
	}

	columns := result.Rows
	if columns == nil {
		columns = []map[string]interface{}{}
	}
	return describeTableResponse{Success: true, Schema: schema, Table: tableName, Columns: columns}
}
