// 包 store：数据仓库访问层，负责按驱动打开连接池，并以“单请求单连接单查询”的方式执行只读查询
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clubip-api/internal/config"
	"clubip-api/internal/logger"

	_ "github.com/lib/pq"
	sf "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"
)

var (
	// ErrConnect：获取仓库会话失败
	ErrConnect = errors.New("store: connect failed")
	// ErrQuery：查询执行或读取结果失败
	ErrQuery = errors.New("store: query failed")
)

// Row：一行查询结果，列名统一为大写
type Row map[string]any

// Store：持有连接池与方言
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func AttachDB(db *sql.DB, d Dialect) *Store { return &Store{db: db, dialect: d} }

// 文档注释：按配置打开仓库连接池
// 背景：Snowflake 通过显式 Config 构造 Connector，避免凭据经由全局环境传递；其余驱动使用 DSN。
// 约束：不在此处发起网络连接，连接在首个请求获取会话时建立。
func Open(w config.Warehouse) (*Store, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	var db *sql.DB
	switch w.Driver {
	case config.DriverSnowflake:
		cfg := sf.Config{
			Account:      w.Account,
			User:         w.Username,
			Password:     w.Password,
			Warehouse:    w.Warehouse,
			Database:     w.Database,
			Schema:       w.Schema,
			Role:         w.Role,
			LoginTimeout: w.LoginTimeout,
			Application:  "clubip-api",
		}
		db = sql.OpenDB(sf.NewConnector(sf.SnowflakeDriver{}, cfg))
	case config.DriverPostgres, config.DriverSQLite:
		var err error
		db, err = sql.Open(w.Driver, w.DSN)
		if err != nil {
			return nil, err
		}
	}
	db.SetMaxOpenConns(w.MaxOpenConns)
	db.SetMaxIdleConns(w.MaxIdleConns)
	logger.L().Debug("store_open", "driver", w.Driver)
	return AttachDB(db, NewDialect(w.Driver, w.Database, w.Schema)), nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.dialect }

// Ping：健康检查使用
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// 文档注释：在独占会话上执行一次只读查询
// 背景：每次调用获取一条专用连接，仅执行一条语句，并在所有返回路径上释放。
// 返回：列名大写的结果行；会话获取失败包装为 ErrConnect，执行或扫描失败包装为 ErrQuery。
// 约束：释放连接与关闭结果集的错误只记录不返回，不得覆盖主结果。
func (s *Store) Query(ctx context.Context, sqlText string, binds ...any) ([]Row, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.L().Debug("conn_release_error", "err", cerr)
		}
	}()
	rows, err := conn.QueryContext(ctx, sqlText, binds...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()
	out, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for i := range cols {
		cols[i] = strings.ToUpper(cols[i])
	}
	out := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				r[c] = string(b)
				continue
			}
			r[c] = vals[i]
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
