// 包 store: 组织区外轮廓与构建记录的 PostgreSQL 读写
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"kerala-map/internal/logger"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// District: 一个组织区的发布行；Label 为空表示无标注点
type District struct {
	Name     string
	GeoJSON  json.RawMessage
	Label    *[2]float64
	LBCount  int
	Stats    json.RawMessage
	Strategy string
	Status   string
	BuiltAt  time.Time
}

// Run: 一次构建的汇总
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Districts  int
	Failed     int
	Strategy   string
}

const upsertDistrict = `INSERT INTO _district_outlines(name, geojson, label_lon, label_lat, lb_count, stats, strategy, status, built_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (name) DO UPDATE SET
    geojson=EXCLUDED.geojson, label_lon=EXCLUDED.label_lon, label_lat=EXCLUDED.label_lat,
    lb_count=EXCLUDED.lb_count, stats=EXCLUDED.stats, strategy=EXCLUDED.strategy,
    status=EXCLUDED.status, built_at=EXCLUDED.built_at`

// 文档注释：批量覆盖写入
// 背景：一次构建的全部组织区在同一事务内提交，读者不会看到新旧混合的结果。
// 约束：任一行失败整体回滚；空 stats 写为 {}。
func (s *Store) UpsertDistricts(ctx context.Context, ds []District) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, upsertDistrict)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, d := range ds {
		var lon, lat sql.NullFloat64
		if d.Label != nil {
			lon = sql.NullFloat64{Float64: d.Label[0], Valid: true}
			lat = sql.NullFloat64{Float64: d.Label[1], Valid: true}
		}
		stats := d.Stats
		if len(stats) == 0 {
			stats = json.RawMessage("{}")
		}
		builtAt := d.BuiltAt
		if builtAt.IsZero() {
			builtAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, d.Name, []byte(d.GeoJSON), lon, lat, d.LBCount, []byte(stats), d.Strategy, d.Status, builtAt); err != nil {
			return fmt.Errorf("upsert %s: %w", d.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("db_districts_upserted", "count", len(ds))
	return nil
}

// ListDistricts: 按名称排序
func (s *Store) ListDistricts(ctx context.Context) ([]District, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, geojson, label_lon, label_lat, lb_count, stats, strategy, status, built_at FROM _district_outlines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []District
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DeleteDistricts: 删除指定组织区，返回删除行数
func (s *Store) DeleteDistricts(ctx context.Context, names ...string) (int64, error) {
	var n int64
	for _, name := range names {
		res, err := s.db.ExecContext(ctx, `DELETE FROM _district_outlines WHERE name=$1`, name)
		if err != nil {
			return n, err
		}
		c, _ := res.RowsAffected()
		n += c
	}
	return n, nil
}

// 文档注释：清理不再配置的组织区
// 背景：组织区列表调整后，旧名称的行会一直留在表中被前端读到。
// 约束：keep 为空时不删除任何行，避免误配置清空整表；返回删除行数。
func (s *Store) PruneDistricts(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		return 0, nil
	}
	want := make(map[string]bool, len(keep))
	for _, k := range keep {
		want[k] = true
	}
	existing, err := s.ListDistricts(ctx)
	if err != nil {
		return 0, err
	}
	var stale []string
	for _, d := range existing {
		if !want[d.Name] {
			stale = append(stale, d.Name)
		}
	}
	n, err := s.DeleteDistricts(ctx, stale...)
	if err != nil {
		return n, err
	}
	if n > 0 {
		logger.L().Info("db_districts_pruned", "count", n, "names", stale)
	}
	return n, nil
}

// RecordRun: 追加一次构建记录
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO _district_build_runs(started_at, finished_at, districts, failed, strategy) VALUES($1, $2, $3, $4, $5)`,
		r.StartedAt, r.FinishedAt, r.Districts, r.Failed, r.Strategy)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDistrict(sc scanner) (*District, error) {
	var d District
	var gj, stats []byte
	var lon, lat sql.NullFloat64
	if err := sc.Scan(&d.Name, &gj, &lon, &lat, &d.LBCount, &stats, &d.Strategy, &d.Status, &d.BuiltAt); err != nil {
		return nil, err
	}
	d.GeoJSON = json.RawMessage(gj)
	d.Stats = json.RawMessage(stats)
	if lon.Valid && lat.Valid {
		d.Label = &[2]float64{lon.Float64, lat.Float64}
	}
	return &d, nil
}
