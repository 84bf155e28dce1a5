// 包 config：集中读取进程环境变量并生成显式配置结构；各组件只接收结构体，不再直接读取环境
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSnowflake = "snowflake"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
)

// Warehouse：数据仓库连接参数，构造连接器时一次性传入
type Warehouse struct {
	Driver       string
	DSN          string
	Account      string
	Username     string
	Password     string
	Warehouse    string
	Database     string
	Schema       string
	Role         string
	LoginTimeout time.Duration
	MaxOpenConns int
	MaxIdleConns int
}

type Redis struct {
	Enabled bool
	Addr    string
	Pass    string
	DB      int
}

type RateLimit struct {
	Enabled bool
	QPS     int
	Burst   int
}

type TLS struct {
	Enabled  bool
	CertPath string
	KeyPath  string
}

type GeoIP struct {
	CityPath string
	ASNPath  string
}

// Config：服务整体配置
type Config struct {
	Addr         string
	APIBase      string
	LookupsFile  string
	MigrateLocal bool
	Warehouse    Warehouse
	Redis        Redis
	RateLimit    RateLimit
	TLS          TLS
	GeoIP        GeoIP
}

// 文档注释：从环境变量构建配置
// 背景：沿用“空值即默认”的读取方式；凭据仅在此处读取一次，随后以结构体形式下发到连接器。
// 约束：不做连接校验，连通性问题在首次查询时暴露；格式错误的数值回退到默认值。
func FromEnv() Config {
	var c Config
	c.Addr = envOr("ADDR", ":8080")
	c.APIBase = strings.TrimRight(envOr("API_BASE", "/api"), "/")
	c.LookupsFile = os.Getenv("LOOKUPS_FILE")
	c.MigrateLocal = os.Getenv("MIGRATE_LOCAL") == "true"

	w := &c.Warehouse
	w.Driver = strings.ToLower(envOr("WAREHOUSE_DRIVER", DriverSnowflake))
	w.DSN = os.Getenv("WAREHOUSE_DSN")
	w.Account = os.Getenv("SNOWFLAKE_ACCOUNT")
	w.Username = os.Getenv("SNOWFLAKE_USERNAME")
	w.Password = os.Getenv("SNOWFLAKE_PASSWORD")
	w.Warehouse = os.Getenv("SNOWFLAKE_WAREHOUSE")
	w.Database = envOr("SNOWFLAKE_DATABASE", "CLUBIP")
	w.Schema = envOr("SNOWFLAKE_SCHEMA", "PUBLIC")
	w.Role = os.Getenv("SNOWFLAKE_ROLE")
	w.LoginTimeout = envDuration("WAREHOUSE_LOGIN_TIMEOUT", 30*time.Second)
	w.MaxOpenConns = envInt("WAREHOUSE_MAX_OPEN_CONNS", 10)
	w.MaxIdleConns = envInt("WAREHOUSE_MAX_IDLE_CONNS", 2)
	if w.Driver == DriverPostgres && w.DSN == "" {
		w.DSN = BuildPostgresDSNFromEnv()
	}
	if w.Driver == DriverSQLite && w.DSN == "" {
		w.DSN = filepath.Join("data", "clubip.db")
	}

	c.Redis.Enabled = os.Getenv("REDIS_ENABLED") == "true"
	c.Redis.Addr = envOr("REDIS_HOST", "127.0.0.1") + ":" + envOr("REDIS_PORT", "6379")
	c.Redis.Pass = os.Getenv("REDIS_PASS")
	// REDIS_DB 解析失败时回退到 0
	if n := envInt("REDIS_DB", 0); n >= 0 {
		c.Redis.DB = n
	}

	c.RateLimit.Enabled = os.Getenv("RATE_LIMIT_ENABLED") == "true"
	c.RateLimit.QPS = envInt("RATE_LIMIT_QPS", 200)
	c.RateLimit.Burst = envInt("RATE_LIMIT_BURST", c.RateLimit.QPS)

	c.TLS.Enabled = os.Getenv("TLS_ENABLE") == "true"
	c.TLS.CertPath = envOr("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
	c.TLS.KeyPath = envOr("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))

	c.GeoIP.CityPath = os.Getenv("GEOIP_CITY_PATH")
	c.GeoIP.ASNPath = os.Getenv("GEOIP_ASN_PATH")
	return c
}

// Validate：检查驱动所需的最小参数
func (w Warehouse) Validate() error {
	switch w.Driver {
	case DriverSnowflake:
		if w.Account == "" || w.Username == "" {
			return errors.New("config: SNOWFLAKE_ACCOUNT and SNOWFLAKE_USERNAME are required")
		}
	case DriverPostgres, DriverSQLite:
		if w.DSN == "" {
			return errors.New("config: WAREHOUSE_DSN is required for " + w.Driver)
		}
	default:
		return errors.New("config: unknown WAREHOUSE_DRIVER " + strconv.Quote(w.Driver))
	}
	return nil
}

// Backend：对外错误信息中使用的后端名称
func (w Warehouse) Backend() string {
	switch w.Driver {
	case DriverPostgres:
		return "PostgreSQL"
	case DriverSQLite:
		return "SQLite"
	}
	return "Snowflake"
}

// BuildPostgresDSNFromEnv：按 PG_* 变量拼接 DSN，仅在 postgres 驱动且未显式给出 DSN 时使用
func BuildPostgresDSNFromEnv() string {
	dsn := "postgres://" + envOr("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + envOr("PG_HOST", "localhost") + ":" + envOr("PG_PORT", "5432") + "/" + envOr("PG_DB", "clubip")
	dsn += "?sslmode=" + envOr("PG_SSLMODE", "disable")
	return dsn
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
