package main

import (
	"context"
	"os"
	"time"

	"kerala-map/internal/config"
	"kerala-map/internal/district"
	"kerala-map/internal/logger"
	"kerala-map/internal/metrics"
	"kerala-map/internal/migrate"
	"kerala-map/internal/outline"
	"kerala-map/internal/render"
	"kerala-map/internal/results"
	"kerala-map/internal/store"
	"kerala-map/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：生成组织区结果地图
// 背景：读取各组织区层级文件与结果表，合并外轮廓后把记录注入 HTML 页面；PUBLISH_TO_DB=true 时同时写入 Postgres。
// 约束：单个组织区失败只输出占位记录；仅模板读取、页面写出或发布失败时以非零状态退出。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	cfg := config.Load()
	ctx := context.Background()
	started := time.Now()

	params, err := outline.ParamsFromEnv()
	if err != nil {
		l.Error("outline_params_error", "err", err)
		os.Exit(1)
	}
	cache, closeCache, err := outline.CacheFromEnv(ctx)
	if err != nil {
		l.Error("outline_cache_error", "err", err)
		os.Exit(1)
	}
	tmpl, err := render.LoadTemplate(cfg.MapTemplate)
	if err != nil {
		l.Error("template_load_error", "path", cfg.MapTemplate, "err", err)
		os.Exit(1)
	}
	l.Info("map_build_begin", "districts", len(cfg.Districts), "strategy", params.Strategy,
		"hierarchy_dir", cfg.HierarchyDir, "results_dir", cfg.ResultsDir)

	m := metrics.New()
	rs := results.LoadDir(cfg.ResultsDir, results.DefaultFiles())
	b := district.NewBuilder(cfg.HierarchyPath, outline.NewMerger(params, cache), rs, m)
	recs := b.BuildAll(ctx, cfg.Districts)
	closeCache()

	page, err := render.Inject(render.SetTitle(tmpl, cfg.MapTitle), recs)
	if err != nil {
		l.Error("render_error", "err", err)
		os.Exit(1)
	}
	if err := render.WriteFile(cfg.MapOutput, page); err != nil {
		l.Error("map_write_error", "path", cfg.MapOutput, "err", err)
		os.Exit(1)
	}
	m.OutputBytes.WithLabelValues("html").Set(float64(len(page)))
	failed := district.Failed(recs)
	l.Info("map_written", "path", cfg.MapOutput, "bytes", len(page), "districts", len(recs), "failed", failed)

	if cfg.PublishToDB {
		if err := publish(ctx, recs, cfg.PublishPrune, store.Run{
			StartedAt: started, FinishedAt: time.Now(), Districts: len(recs), Failed: failed, Strategy: string(params.Strategy),
		}); err != nil {
			l.Error("publish_error", "err", err)
			os.Exit(1)
		}
	}
	if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
		l.Error("metrics_write_error", "path", cfg.MetricsTextfile, "err", err)
	}
	l.Info("map_build_done", "duration_ms", time.Since(started).Milliseconds())
}

// publish：建表后整批覆盖写入，并追加一条构建记录；prune 时删除不在本次列表中的组织区
func publish(ctx context.Context, recs []district.Record, prune bool, run store.Run) error {
	db, err := utils.OpenPostgresFromEnv(ctx)
	if err != nil {
		return err
	}
	s := store.AttachDB(db)
	defer s.Close()
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		return err
	}
	rows, err := district.ToStore(recs, run.FinishedAt.UTC())
	if err != nil {
		return err
	}
	if err := s.UpsertDistricts(ctx, rows); err != nil {
		return err
	}
	if prune {
		keep := make([]string, 0, len(recs))
		for _, r := range recs {
			keep = append(keep, r.Name)
		}
		if _, err := s.PruneDistricts(ctx, keep); err != nil {
			return err
		}
	}
	return s.RecordRun(ctx, run)
}
