package db

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
)

// QueryResult is either a sequence of row mappings (statements that produced a
// result schema) or an affected-row count (statements that did not) — never both.
type QueryResult struct {
	HasRows      bool
	Rows         []map[string]interface{}
	RowsAffected int64
}

// session is the slice of a pooled connection the executor needs. Satisfied by
// *pgxpool.Conn.
type session interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
}

// Executor runs one SQL statement per call against a pooled connection,
// normalizing the result shape and managing commit/rollback. Parameter values
// are always bound by the driver, never spliced into the SQL text.
type Executor struct {
	acquire func(ctx context.Context) (session, error)
}

// NewExecutor creates an executor backed by the given pool.
func NewExecutor(pool *Pool) *Executor {
	return &Executor{
		acquire: func(ctx context.Context) (session, error) {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}
}

// Execute runs a single statement with positional parameters.
//
// Statements that report a result schema have their rows fetched and returned;
// statements without one commit and report the affected-row count. A statement
// that both mutates and returns rows (INSERT/UPDATE/DELETE ... RETURNING) is
// committed as well — the command tag, not the presence of rows, decides
// whether there is anything to persist. Pure reads discard their implicit
// transaction via rollback.
//
// The connection is released on every exit path, including cancellation, and
// any backend error rolls back before surfacing as a DatabaseError.
func (e *Executor) Execute(ctx context.Context, sqlText string, params []interface{}) (*QueryResult, error) {
	sess, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Release()

	tx, err := sess.Begin(ctx)
	if err != nil {
		return nil, &DatabaseError{Message: err.Error()}
	}
	// No-op after a successful commit; the cancellation safety net otherwise.
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, sqlText, normalizeParams(params)...)
	if err != nil {
		return nil, &DatabaseError{Message: err.Error()}
	}

	hasSchema := len(rows.FieldDescriptions()) > 0

	var data []map[string]interface{}
	for rows.Next() {
		values, valErr := rows.Values()
		if valErr != nil {
			rows.Close()
			return nil, &DatabaseError{Message: valErr.Error()}
		}
		row := make(map[string]interface{}, len(values))
		for i, fd := range rows.FieldDescriptions() {
			row[fd.Name] = normalizeValue(values[i])
		}
		data = append(data, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, &DatabaseError{Message: err.Error()}
	}

	tag := rows.CommandTag()
	mutated := tag.Insert() || tag.Update() || tag.Delete()
	if !hasSchema || mutated {
		if err := tx.Commit(ctx); err != nil {
			return nil, &DatabaseError{Message: err.Error()}
		}
	}

	if hasSchema {
		if data == nil {
			data = []map[string]interface{}{}
		}
		return &QueryResult{HasRows: true, Rows: data}, nil
	}
	return &QueryResult{RowsAffected: tag.RowsAffected()}, nil
}

// normalizeParams adjusts JSON-decoded argument values for driver binding:
// integral float64s become int64 so they bind cleanly to integer columns.
// Values outside the int64 range stay float64; the round trip through int64
// would corrupt them.
func normalizeParams(params []interface{}) []interface{} {
	if len(params) == 0 {
		return nil
	}
	out := make([]interface{}, len(params))
	for i, p := range params {
		if f, ok := p.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) &&
			float64(int64(f)) == f {
			out[i] = int64(f)
			continue
		}
		out[i] = p
	}
	return out
}

// normalizeValue converts driver values into JSON-friendly shapes, the same
// way result rows are flattened everywhere else in the server.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
