// 包 config：批处理命令的路径与开关配置，全部来自 .env 与环境变量
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDistricts：30 个组织区，顺序即输出顺序
var DefaultDistricts = []string{
	"Alappuzha North", "Alappuzha South", "Ernakulam City", "Ernakulam East", "Ernakulam North",
	"Idukki North", "Idukki South", "Kannur North", "Kannur South", "Kasaragod",
	"Kollam East", "Kollam West", "Kottayam East", "Kottayam West", "Kozhikode City",
	"Kozhikode North", "Kozhikode Rural", "Malappuram Central", "Malappuram East", "Malappuram West",
	"Palakkad East", "Palakkad West", "Pathanamthitta", "Thiruvananthapuram City",
	"Thiruvananthapuram North", "Thiruvananthapuram South", "Thrissur City", "Thrissur North",
	"Thrissur South", "Wayanad",
}

// Config：一次运行所需的全部路径与开关
type Config struct {
	HierarchyDir    string
	ResultsDir      string
	Districts       []string
	MapTemplate     string
	MapTitle        string
	MapOutput       string
	OutlineOutput   string
	PublishToDB     bool
	PublishPrune    bool
	MetricsTextfile string
}

// Load：读取环境变量并填充默认值
// 约束：不做存在性校验；缺失的输入文件在流水线中按占位记录处理
func Load() Config {
	c := Config{
		HierarchyDir:    getenv("HIERARCHY_DIR", filepath.Join("data", "kerala_lb_by_org_district")),
		ResultsDir:      getenv("RESULTS_DIR", "data"),
		Districts:       SplitList(os.Getenv("DISTRICTS")),
		MapTemplate:     os.Getenv("MAP_TEMPLATE"),
		MapTitle:        getenv("MAP_TITLE", "Mission 2025 Results - Kerala Districts"),
		MapOutput:       getenv("MAP_OUTPUT", "kerala_map.html"),
		OutlineOutput:   getenv("OUTLINE_OUTPUT", "district_outlines.geojson"),
		PublishToDB:     Bool("PUBLISH_TO_DB", false),
		PublishPrune:    Bool("PUBLISH_PRUNE", false),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
	}
	if len(c.Districts) == 0 {
		c.Districts = append([]string(nil), DefaultDistricts...)
	}
	return c
}

// HierarchyPath：<dir>/<District>/<District>_hierarchy_with_geojson.json
func (c Config) HierarchyPath(district string) string {
	return filepath.Join(c.HierarchyDir, district, district+"_hierarchy_with_geojson.json")
}

// SplitList：逗号分隔，去空白与空项
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Bool：解析 true/false/1/0，解析失败回退默认值
func Bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Float：解析失败或未设置时回退默认值
func Float(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return def
}

// Int：仅接受正整数
func Int(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
