package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"kerala-map/internal/logger"
)

// 背景：发布开启时首次运行自动建表，后续运行直接覆盖写入
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _district_outlines (
            name TEXT PRIMARY KEY,
            geojson JSONB NOT NULL,
            label_lon DOUBLE PRECISION,
            label_lat DOUBLE PRECISION,
            lb_count INT NOT NULL DEFAULT 0,
            stats JSONB NOT NULL DEFAULT '{}'::jsonb,
            strategy TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT '',
            built_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS _district_build_runs (
            id BIGSERIAL PRIMARY KEY,
            started_at TIMESTAMPTZ NOT NULL,
            finished_at TIMESTAMPTZ NOT NULL,
            districts INT NOT NULL,
            failed INT NOT NULL,
            strategy TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_district_build_runs_started ON _district_build_runs(started_at DESC)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema stmt %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
