package mcp

// Response envelopes. Field names and shapes are part of the wire contract;
// every failure, whatever its kind, surfaces as errorResponse.

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func failure(message string) errorResponse {
	return errorResponse{Success: false, Error: message}
}

type executeQueryResponse struct {
	Success  bool                     `json:"success"`
	RowCount int                      `json:"row_count"`
	Data     []map[string]interface{} `json:"data"`
}

type listSchemasResponse struct {
	Success bool     `json:"success"`
	Schemas []string `json:"schemas"`
}

type listTablesResponse struct {
	Success    bool                     `json:"success"`
	TableCount int                      `json:"table_count"`
	Tables     []map[string]interface{} `json:"tables"`
}

type describeTableResponse struct {
	Success bool                     `json:"success"`
	Schema  string                   `json:"schema"`
	Table   string                   `json:"table"`
	Columns []map[string]interface{} `json:"columns"`
}
