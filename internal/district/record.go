// 包 district：把层级、外轮廓与结果表组装为前端使用的组织区记录
package district

import (
	"strings"

	"kerala-map/internal/hierarchy"
	"kerala-map/internal/outline"
	"kerala-map/internal/results"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// 文档注释：组织区记录
// 背景：JSON 键名由前端页面直接读取，不可改名；centroid 键保留旧名，值为面内标注点。
// 约束：geojson、csvData、localBodies 列表在无数据时输出为空集合而非 null。
type Record struct {
	Name                string                     `json:"name"`
	LBCount             int                        `json:"lbCount"`
	GeoJSON             *geojson.FeatureCollection `json:"geojson"`
	Centroid            *[2]float64                `json:"centroid"`
	CSVData             map[string]results.Row     `json:"csvData"`
	VoteShareData       VoteShareData              `json:"voteShareData"`
	TotalLocalBodiesWon int                        `json:"totalLocalBodiesWon"`
	LocalBodyWon        int                        `json:"localBodyWon"`
	TargetLocalBody     int                        `json:"targetLocalBody"`
	TotalLocalBody      int                        `json:"totalLocalBody"`
	LB2020Won           int                        `json:"lb2020Won"`
	LocalBody2ndNoTie   int                        `json:"localBody2ndNoTie"`
	LocalBody2ndWithTie int                        `json:"localBody2ndWithTie"`
	Ward2ndNoTie        int                        `json:"ward2ndNoTie"`
	Ward2ndWithTie      int                        `json:"ward2ndWithTie"`
	LocalBodies         map[string]LocalBodyGroup  `json:"localBodies"`

	Status  string           `json:"-"`
	Outline *outline.Outline `json:"-"`
}

// LocalBodyGroup：某类地方机构的数量与列表
type LocalBodyGroup struct {
	Count int                   `json:"count"`
	List  []hierarchy.LocalBody `json:"list"`
}

// Shares：三个年份的得票率原文；空白为 null
type Shares struct {
	Y2025 *string `json:"2025"`
	Y2024 *string `json:"2024"`
	Y2020 *string `json:"2020"`
}

// ShareEntry：分类计数与得票率；overall 无计数
type ShareEntry struct {
	Count     *int    `json:"count,omitempty"`
	VoteShare *Shares `json:"vote_share"`
}

type PanchayatShares struct {
	FirstWithoutTie  ShareEntry `json:"first_without_tie"`
	FirstTie         ShareEntry `json:"first_tie"`
	SecondWithoutTie ShareEntry `json:"second_without_tie"`
	SecondTie        ShareEntry `json:"second_tie"`
	Overall          ShareEntry `json:"overall"`
}

type MunicipalityShares struct {
	First            ShareEntry `json:"first"`
	SecondWithoutTie ShareEntry `json:"second_without_tie"`
	SecondWithTie    ShareEntry `json:"second_with_tie"`
	Overall          ShareEntry `json:"overall"`
}

type CorporationShares struct {
	First   ShareEntry `json:"first"`
	Overall ShareEntry `json:"overall"`
}

type VoteShareData struct {
	Panchayat    PanchayatShares    `json:"panchayat"`
	Municipality MunicipalityShares `json:"municipality"`
	Corporation  CorporationShares  `json:"corporation"`
}

// 分类表中的列名
const (
	colShare2025   = "2025 Vote Share"
	colShare2024   = "2024 Vote Share"
	colShare2020   = "2020 Vote Share"
	colResultWards = "NDA - 2025 Result Wards"
)

// 文档注释：按分类表与汇总表构造得票率结构
// 背景：分类表某行存在时才填入 vote_share；municipality.first 无对应分类表，始终为 null。
// 约束：corporation.first 与 corporation.overall 共用同一份得票率。
func buildVoteShares(rows map[string]results.Row, s results.Summary) VoteShareData {
	var v VoteShareData
	v.Panchayat.FirstWithoutTie = ShareEntry{Count: intp(s.GPFirstNoTie), VoteShare: sharesOf(rows, results.CatPanchayatFirstNoTie)}
	v.Panchayat.FirstTie = ShareEntry{Count: intp(s.GPFirstTie), VoteShare: sharesOf(rows, results.CatPanchayatFirstTie)}
	v.Panchayat.SecondWithoutTie = ShareEntry{Count: intp(s.GPSecondNoTie), VoteShare: sharesOf(rows, results.CatPanchayatSecondNoTie)}
	v.Panchayat.SecondTie = ShareEntry{Count: intp(s.GPSecondTie), VoteShare: sharesOf(rows, results.CatPanchayatSecondTie)}
	v.Panchayat.Overall = ShareEntry{VoteShare: sharesOf(rows, results.CatOrgPanchayat30)}

	v.Municipality.First = ShareEntry{Count: intp(s.MunicipalityFirst)}
	v.Municipality.SecondWithoutTie = ShareEntry{Count: intp(s.Municipality2ndNoTie), VoteShare: sharesOf(rows, results.CatMunicipality2ndNoTie)}
	v.Municipality.SecondWithTie = ShareEntry{Count: intp(s.Municipality2ndTie), VoteShare: sharesOf(rows, results.CatMunicipality2ndTie)}
	v.Municipality.Overall = ShareEntry{VoteShare: sharesOf(rows, results.CatMunicipality)}

	corp := sharesOf(rows, results.CatCorporation)
	v.Corporation.First = ShareEntry{Count: intp(s.CorporationFirst), VoteShare: corp}
	v.Corporation.Overall = ShareEntry{VoteShare: corp}
	return v
}

func sharesOf(rows map[string]results.Row, cat string) *Shares {
	r, ok := rows[cat]
	if !ok || len(r) == 0 {
		return nil
	}
	return &Shares{
		Y2025: blankNil(r[colShare2025]),
		Y2024: blankNil(r[colShare2024]),
		Y2020: blankNil(r[colShare2020]),
	}
}

func blankNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func intp(n int) *int { return &n }

// applyAggregates：汇总表与 Sheet1 的派生统计
func applyAggregates(r *Record, rows map[string]results.Row, s results.Summary, sh results.Sheet) {
	r.LocalBodyWon = s.GPFirstNoTie + s.GPFirstTie + s.MunicipalityFirst + s.CorporationFirst
	r.TotalLocalBodiesWon = r.LocalBodyWon + s.GPSecondNoTie + s.GPSecondTie + s.Municipality2ndNoTie + s.Municipality2ndTie
	r.TargetLocalBody = sh.GP2025Target + sh.M2025Target + sh.C2025Target
	r.TotalLocalBody = sh.GPTotal + sh.MTotal + sh.CTotal
	r.LB2020Won = sh.GP2020Won + sh.M2020Won + sh.C2020Won
	r.LocalBody2ndNoTie = s.GPSecondNoTie + s.Municipality2ndNoTie
	r.LocalBody2ndWithTie = s.GPSecondTie + s.Municipality2ndTie
	r.Ward2ndNoTie = wards(rows, results.CatPanchayatSecondNoTie) + wards(rows, results.CatMunicipality2ndNoTie)
	r.Ward2ndWithTie = wards(rows, results.CatPanchayatSecondTie) + wards(rows, results.CatMunicipality2ndTie)
}

func wards(rows map[string]results.Row, cat string) int {
	return results.Number(rows[cat][colResultWards])
}

func localBodyGroups(lbs hierarchy.LocalBodies) map[string]LocalBodyGroup {
	group := func(list []hierarchy.LocalBody) LocalBodyGroup {
		if list == nil {
			list = []hierarchy.LocalBody{}
		}
		return LocalBodyGroup{Count: len(list), List: list}
	}
	return map[string]LocalBodyGroup{
		"panchayat":    group(lbs.Panchayat),
		"municipality": group(lbs.Municipality),
		"corporation":  group(lbs.Corporation),
	}
}
