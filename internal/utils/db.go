// 包 utils：外部连接工具（Postgres/Redis），统一环境变量读取
package utils

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"os"
	"time"

	"kerala-map/internal/config"

	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv：PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE 组装 DSN
// 约束：PG_DSN 存在时直接使用，忽略其余分项；用户名与密码按 URL 规则转义
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(envOr("PG_HOST", "localhost"), envOr("PG_PORT", "5432")),
		Path:     "/" + envOr("PG_DB", "kerala_map"),
		RawQuery: url.Values{"sslmode": {envOr("PG_SSLMODE", "disable")}}.Encode(),
	}
	user := envOr("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// OpenPostgresFromEnv：打开连接并 Ping 一次
// 背景：批处理只写入几十行，连接池保持很小即可
func OpenPostgresFromEnv(ctx context.Context) (*sql.DB, error) {
	return OpenPostgres(ctx, BuildPostgresDSNFromEnv())
}

func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(config.Int("PG_MAX_OPEN_CONNS", 4))
	db.SetMaxIdleConns(config.Int("PG_MAX_IDLE_CONNS", 2))
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
