package hierarchy

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"kerala-map/internal/logger"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// LoadFile：读取单个组织区的层级文件
// 约束：文件不存在时返回的错误满足 os.IsNotExist，调用方据此生成占位记录
func LoadFile(district, path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(district, path, b)
}

// Parse：解析层级 JSON 内容
func Parse(district, path string, b []byte) (*Document, error) {
	root, err := decodeOrdered(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &Document{District: district, Path: path, Root: root}, nil
}

// 文档注释：递归抽取所有 geojson.features
// 背景：任意层 map 若含 geojson 且其 features 为数组，则收集全部特征；geojson 键本身不再下钻，避免重复收集。
// 约束：特征按文档顺序返回（先本层 geojson，再按键顺序下钻）。
func ExtractFeatures(doc *Document) Extraction {
	var ex Extraction
	if doc == nil {
		return ex
	}
	walkFeatures(doc.Root, &ex)
	if ex.Skipped > 0 {
		logger.L().Warn("hierarchy_features_skipped", "district", doc.District, "skipped", ex.Skipped)
	}
	return ex
}

func walkFeatures(v any, ex *Extraction) {
	switch x := v.(type) {
	case Object:
		if gj, ok := getObj(x, "geojson"); ok {
			if arr, ok := getArr(gj, "features"); ok {
				for _, it := range arr {
					f, err := decodeFeature(it)
					if err != nil {
						ex.Skipped++
						logger.L().Debug("hierarchy_feature_decode_error", "err", err)
						continue
					}
					ex.Features = append(ex.Features, f)
				}
			}
		}
		for _, f := range x {
			if f.Key == "geojson" {
				continue
			}
			walkFeatures(f.Value, ex)
		}
	case []any:
		for _, child := range x {
			walkFeatures(child, ex)
		}
	}
}

// decodeFeature：map → go-geom Feature
// 背景：go-geom 的 Feature.ID 为字符串，源数据中存在数值 id，先统一转为文本
func decodeFeature(v any) (*geojson.Feature, error) {
	o, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("feature is %T, not an object", v)
	}
	m := plain(o).(map[string]any)
	if id, ok := m["id"]; ok {
		if id == nil {
			delete(m, "id")
		} else if _, isStr := id.(string); !isStr {
			m["id"] = toText(id)
		}
	}
	if _, ok := m["type"]; !ok {
		return nil, fmt.Errorf("feature without type")
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var f geojson.Feature
	if err := f.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return &f, nil
}

// 文档注释：递归抽取地方机构并按 lsgi_type 分桶
// 背景：local_bodies 数组所在对象的 lsgi_type（G/M/C）决定其下全部条目的类型。
// 约束：不下钻 local_bodies 自身，避免机构内部嵌套结构被重复计数。
func ExtractLocalBodies(doc *Document) LocalBodies {
	var lbs LocalBodies
	if doc == nil {
		return lbs
	}
	walkLocalBodies(doc.Root, &lbs)
	return lbs
}

func walkLocalBodies(v any, lbs *LocalBodies) {
	switch x := v.(type) {
	case Object:
		if arr, ok := getArr(x, "local_bodies"); ok {
			t := strings.ToUpper(strings.TrimSpace(getStr(x, "lsgi_type")))
			for _, it := range arr {
				lbs.Total++
				m, ok := it.(Object)
				if !ok {
					continue
				}
				code, _ := m.Get("code")
				wards, _ := m.Get("ward_count")
				lb := LocalBody{
					Name:      getStr(m, "name"),
					Code:      toText(code),
					WardCount: int(toFloat(wards)),
				}
				switch t {
				case TypePanchayat:
					lbs.Panchayat = append(lbs.Panchayat, lb)
				case TypeMunicipality:
					lbs.Municipality = append(lbs.Municipality, lb)
				case TypeCorporation:
					lbs.Corporation = append(lbs.Corporation, lb)
				}
			}
		}
		for _, f := range x {
			if f.Key == "local_bodies" {
				continue
			}
			walkLocalBodies(f.Value, lbs)
		}
	case []any:
		for _, child := range x {
			walkLocalBodies(child, lbs)
		}
	}
}

func getStr(o Object, k string) string {
	v, _ := o.Get(k)
	s, _ := v.(string)
	return s
}

func getObj(o Object, k string) (Object, bool) {
	v, _ := o.Get(k)
	c, ok := v.(Object)
	return c, ok
}

func getArr(o Object, k string) ([]any, bool) {
	v, _ := o.Get(k)
	a, ok := v.([]any)
	return a, ok
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	default:
		return 0
	}
}
