package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"kerala-map/internal/config"
	"kerala-map/internal/district"
	"kerala-map/internal/logger"
	"kerala-map/internal/metrics"
	"kerala-map/internal/outline"
	"kerala-map/internal/render"

	"github.com/joho/godotenv"
)

// 文档注释：导出组织区外轮廓
// 背景：只执行层级抽取与轮廓合并，不读取结果表；输出 GeoJSON FeatureCollection，每个组织区一个特征（raw 策略为原始特征）。
// 约束：无轮廓的组织区不输出特征，仅记录日志；写出失败以非零状态退出。
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
	m := metrics.New()
	b := district.NewBuilder(cfg.HierarchyPath, outline.NewMerger(params, cache), nil, m)
	recs := b.BuildAll(ctx, cfg.Districts)
	closeCache()

	fc := district.Collection(recs)
	out, err := json.Marshal(fc)
	if err != nil {
		l.Error("geojson_encode_error", "err", err)
		os.Exit(1)
	}
	if err := render.WriteFile(cfg.OutlineOutput, out); err != nil {
		l.Error("geojson_write_error", "path", cfg.OutlineOutput, "err", err)
		os.Exit(1)
	}
	m.OutputBytes.WithLabelValues("geojson").Set(float64(len(out)))
	if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
		l.Error("metrics_write_error", "path", cfg.MetricsTextfile, "err", err)
	}
	l.Info("outline_export_done", "path", cfg.OutlineOutput, "features", len(fc.Features),
		"failed", district.Failed(recs), "duration_ms", time.Since(started).Milliseconds())
}
