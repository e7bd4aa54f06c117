package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrReadOnly is returned for every Exec and every writable transaction
// attempted through a guarded connection.
var ErrReadOnly = errors.New("db: store is read-only")

// guardConnector opens connections on the underlying driver and wraps them
// so that only queries reach the store.
type guardConnector struct {
	driver driver.Driver
	dsn    string
	logger *slog.Logger
	logSQL bool
}

type guardConn struct {
	conn   driver.Conn
	logger *slog.Logger
	logSQL bool
}

type guardStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
	logSQL bool
}

// NewGuardConnector returns a driver.Connector for use with sql.OpenDB.
// When logSQL is set every statement is logged at debug level with its
// arguments and duration. A nil logger means slog.Default().
func NewGuardConnector(drv driver.Driver, dsn string, logger *slog.Logger, logSQL bool) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &guardConnector{driver: drv, dsn: dsn, logger: logger, logSQL: logSQL}
}

func (c *guardConnector) Driver() driver.Driver {
	return c.driver
}

func (c *guardConnector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &guardConn{conn: conn, logger: c.logger, logSQL: c.logSQL}, nil
}

func (c *guardConn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &guardStmt{stmt: stmt, query: query, logger: c.logger, logSQL: c.logSQL}, nil
}

func (c *guardConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if prep, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err := prep.PrepareContext(ctx, query)
		if err != nil {
			return nil, err
		}
		return &guardStmt{stmt: stmt, query: query, logger: c.logger, logSQL: c.logSQL}, nil
	}
	return c.Prepare(query)
}

func (c *guardConn) Close() error {
	return c.conn.Close()
}

func (c *guardConn) Begin() (driver.Tx, error) {
	return nil, ErrReadOnly
}

// BeginTx only permits read-only transactions.
func (c *guardConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if !opts.ReadOnly {
		return nil, ErrReadOnly
	}
	if beginTx, ok := c.conn.(driver.ConnBeginTx); ok {
		return beginTx.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019 – fallback when underlying conn does not implement ConnBeginTx
	return c.conn.Begin()
}

func (c *guardConn) Ping(ctx context.Context) error {
	if p, ok := c.conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *guardStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.logStatement("exec", args, 0, ErrReadOnly)
	return nil, ErrReadOnly
}

func (s *guardStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.logStatement("exec", namedValuesToSlice(args), 0, ErrReadOnly)
	return nil, ErrReadOnly
}

func (s *guardStmt) Query(args []driver.Value) (driver.Rows, error) {
	start := time.Now()
	//nolint:staticcheck // SA1019 – required when underlying stmt does not implement StmtQueryContext
	rows, err := s.stmt.Query(args)
	s.logStatement("query", args, time.Since(start), err)
	return rows, err
}

func (s *guardStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	var (
		rows driver.Rows
		err  error
	)
	if queryCtx, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = queryCtx.QueryContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 – fallback when underlying stmt does not implement StmtQueryContext
		rows, err = s.stmt.Query(namedValuesToValues(args))
	}
	s.logStatement("query", namedValuesToSlice(args), time.Since(start), err)
	return rows, err
}

func (s *guardStmt) Close() error {
	return s.stmt.Close()
}

func (s *guardStmt) NumInput() int {
	return s.stmt.NumInput()
}

func (s *guardStmt) logStatement(op string, args any, d time.Duration, err error) {
	if !s.logSQL {
		return
	}
	attrs := []any{
		"op", op,
		"sql", s.query,
		"args", args,
		"duration_ms", d.Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	s.logger.Debug("sql", attrs...)
}

func namedValuesToSlice(args []driver.NamedValue) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if a.Name != "" {
			out[i] = a.Name + "=" + formatArg(a.Value)
		} else {
			out[i] = formatArg(a.Value)
		}
	}
	return out
}

func namedValuesToValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArg(v any) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
