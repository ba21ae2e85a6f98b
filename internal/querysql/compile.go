package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/semithue/internal/queryir"
)

// SQLCompiler compiles run queries to parameterized SQL for SQLite.
//
// Every query is ordered by seq so results are deterministic.
// Values are always parameterized, never interpolated.
type SQLCompiler struct {
	// Table is the runs table name.
	Table string

	// Columns is the SELECT column list, in scan order.
	Columns []string
}

// NewSQLCompiler creates a compiler selecting columns from table.
func NewSQLCompiler(table string, columns ...string) *SQLCompiler {
	return &SQLCompiler{
		Table:   table,
		Columns: columns,
	}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// The query is validated first; field names only reach the SQL text after
// they have been checked against queryir.Fields.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect compiles a queryir.Select to SQL.
func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	// Last keeps the newest matches; the outer query restores ascending order.
	if q.Last > 0 {
		whereClause = fmt.Sprintf(" WHERE seq IN (SELECT seq FROM %s%s ORDER BY seq DESC LIMIT ?)",
			c.Table, whereClause)
		params = append(params, q.Last)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY seq ASC",
		c.selectClause(),
		c.Table,
		whereClause)

	return sql, params, nil
}

func (c *SQLCompiler) selectClause() string {
	if len(c.Columns) == 0 {
		return "*"
	}
	return strings.Join(c.Columns, ", ")
}

// compilePredicate recursively compiles a predicate to a SQL WHERE fragment.
func (c *SQLCompiler) compilePredicate(pred queryir.Predicate) (string, []any, error) {
	switch p := pred.(type) {
	case queryir.Equals:
		return c.compileEquals(p)
	case *queryir.Equals:
		return c.compileEquals(*p)
	case queryir.AtLeast:
		return p.Field + " >= ?", []any{p.Min}, nil
	case *queryir.AtLeast:
		return p.Field + " >= ?", []any{p.Min}, nil
	case queryir.And:
		return c.compileAnd(p)
	case *queryir.And:
		return c.compileAnd(*p)
	case queryir.Or:
		return c.compileOr(p)
	case *queryir.Or:
		return c.compileOr(*p)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", pred)
	}
}

func (c *SQLCompiler) compileEquals(p queryir.Equals) (string, []any, error) {
	return p.Field + " = ?", []any{p.Value}, nil
}

// compileAnd joins the parts with AND. An empty And is true.
func (c *SQLCompiler) compileAnd(p queryir.And) (string, []any, error) {
	if len(p.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	return c.join(p.Predicates, " AND ")
}

// compileOr joins the parts with OR. An empty Or is false.
func (c *SQLCompiler) compileOr(p queryir.Or) (string, []any, error) {
	if len(p.Predicates) == 0 {
		return "1 = 0", nil, nil
	}
	return c.join(p.Predicates, " OR ")
}

func (c *SQLCompiler) join(preds []queryir.Predicate, sep string) (string, []any, error) {
	parts := make([]string, 0, len(preds))
	var params []any
	for _, pred := range preds {
		sql, predParams, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, sep) + ")", params, nil
}
