package store

import (
	"context"

	"github.com/roach88/semithue/internal/queryir"
	"github.com/roach88/semithue/internal/querysql"
)

// QueryRuns returns the runs selected by q, in seq order.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) QueryRuns(ctx context.Context, q queryir.Query) ([]Run, error) {
	sql, params, err := querysql.NewSQLCompiler("runs", runColumnList...).Compile(q)
	if err != nil {
		return nil, err
	}
	return s.queryRuns(ctx, sql, params...)
}
