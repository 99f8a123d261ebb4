package hierarchy

import "github.com/twpayne/go-geom/encoding/geojson"

// 文档注释：组织区层级文档与从中抽取的最小结构
// 背景：层级 JSON 为任意嵌套的 map/list，几何挂在任意层的 geojson.features 下，地方机构挂在 local_bodies 下。
// 约束：对象解码为保序的 Object，数组为 []any；单个组织区文件规模为 MB 级，整体常驻内存。
type Document struct {
	District string
	Path     string
	Root     any
}

// LocalBody：地方自治机构（LSGI）
type LocalBody struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	WardCount int    `json:"ward_count"`
}

// LSGI 类型代码
const (
	TypePanchayat    = "G"
	TypeMunicipality = "M"
	TypeCorporation  = "C"
)

// LocalBodies：按类型分桶；Total 统计全部条目，包括未识别类型
type LocalBodies struct {
	Panchayat    []LocalBody
	Municipality []LocalBody
	Corporation  []LocalBody
	Total        int
}

// Extraction：特征抽取结果；Skipped 为几何无法解码而跳过的特征数
type Extraction struct {
	Features []*geojson.Feature
	Skipped  int
}
