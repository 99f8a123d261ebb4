package outline

import (
	"fmt"
	"os"
	"strings"

	"kerala-map/internal/config"
)

// Strategy：合并策略
type Strategy string

const (
	// StrategyGapFill：逐个外扩 → 合并 → 内缩 → 去洞 → 简化（默认）
	StrategyGapFill Strategy = "gapfill"
	// StrategySmooth：先合并，再小幅外扩/内缩平滑边缘，保留洞
	StrategySmooth Strategy = "smooth"
	// StrategyComponent：先合并，再按连通分量外扩后二次合并
	StrategyComponent Strategy = "component"
	// StrategyRaw：不合并，直接输出原始特征
	StrategyRaw Strategy = "raw"
)

// LabelMode：标注点取法
type LabelMode string

const (
	LabelPointOnSurface LabelMode = "point_on_surface"
	LabelCentroid       LabelMode = "centroid"
)

// 文档注释：合并参数（单位均为度，WGS84）
// 背景：0.01° 约 1.1km；外扩距离需覆盖缺失地方机构留下的空隙，内缩距离小于外扩以保留填补结果。
// 约束：Shrink/FallbackShrink 以正数表示，执行时取负。
type Params struct {
	Strategy       Strategy
	Expand         float64
	Shrink         float64
	Simplify       float64
	FallbackExpand float64
	FallbackShrink float64
	QuadSegs       int
	Label          LabelMode
}

// DefaultParams：各策略的默认参数
func DefaultParams(s Strategy) Params {
	p := Params{
		Strategy:       s,
		Simplify:       0.001,
		FallbackExpand: 0.003,
		FallbackShrink: 0.001,
		QuadSegs:       16,
		Label:          LabelPointOnSurface,
	}
	switch s {
	case StrategySmooth:
		p.Expand, p.Shrink = 0.001, 0.0005
	case StrategyComponent:
		p.Expand, p.Shrink = 0.005, 0.003
	case StrategyRaw:
	default:
		p.Strategy = StrategyGapFill
		p.Expand, p.Shrink = 0.012, 0.005
	}
	return p
}

// ParamsFromEnv：OUTLINE_STRATEGY 选择策略默认值，其余 OUTLINE_* 覆盖单项
func ParamsFromEnv() (Params, error) {
	s, err := ParseStrategy(os.Getenv("OUTLINE_STRATEGY"))
	if err != nil {
		return Params{}, err
	}
	p := DefaultParams(s)
	p.Expand = config.Float("OUTLINE_EXPAND", p.Expand)
	p.Shrink = config.Float("OUTLINE_SHRINK", p.Shrink)
	p.Simplify = config.Float("OUTLINE_SIMPLIFY", p.Simplify)
	p.FallbackExpand = config.Float("OUTLINE_FALLBACK_EXPAND", p.FallbackExpand)
	p.FallbackShrink = config.Float("OUTLINE_FALLBACK_SHRINK", p.FallbackShrink)
	p.QuadSegs = config.Int("OUTLINE_QUADSEGS", p.QuadSegs)
	switch strings.ToLower(os.Getenv("OUTLINE_LABEL")) {
	case "", "point_on_surface", "representative":
	case "centroid":
		p.Label = LabelCentroid
	default:
		return Params{}, fmt.Errorf("unknown OUTLINE_LABEL %q", os.Getenv("OUTLINE_LABEL"))
	}
	return p, nil
}

// ParseStrategy：空串视为默认 gapfill
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyGapFill:
		return StrategyGapFill, nil
	case StrategySmooth:
		return StrategySmooth, nil
	case StrategyComponent:
		return StrategyComponent, nil
	case StrategyRaw:
		return StrategyRaw, nil
	}
	return "", fmt.Errorf("unknown outline strategy %q", s)
}

// fingerprint：参与缓存键的参数文本
func (p Params) fingerprint() string {
	return fmt.Sprintf("%s|%g|%g|%g|%g|%g|%d|%s", p.Strategy, p.Expand, p.Shrink, p.Simplify, p.FallbackExpand, p.FallbackShrink, p.QuadSegs, p.Label)
}
