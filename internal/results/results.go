// 包 results：读取组织区选举结果表（分类表、汇总表、地方机构目标表）
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"kerala-map/internal/logger"
)

// Row：按表头取值的一行；表头去除首尾空白与 BOM
type Row map[string]string

// Summary：Result.csv 中每个组织区的分类计数
type Summary struct {
	GPFirstNoTie         int
	GPFirstTie           int
	GPSecondNoTie        int
	GPSecondTie          int
	MunicipalityFirst    int
	Municipality2ndNoTie int
	Municipality2ndTie   int
	CorporationFirst     int
}

// Sheet：Results-2025 Sheet1 中的地方机构总数、2020 已胜、2025 目标
type Sheet struct {
	GPTotal      int
	GP2020Won    int
	GP2025Target int
	MTotal       int
	M2020Won     int
	M2025Target  int
	CTotal       int
	C2020Won     int
	C2025Target  int
}

// Set：全部结果表按组织区索引
type Set struct {
	Categories map[string]map[string]Row
	Summaries  map[string]Summary
	Sheets     map[string]Sheet
}

// DistrictColumn：分类表与汇总表中的组织区列
const DistrictColumn = "Org District"

// 文档注释：从目录读取全部结果表
// 背景：任一文件缺失或损坏只记录日志并跳过，对应组织区的统计按 0 处理。
// 约束：组织区名按原样（去空白）匹配；Grand Total 汇总行跳过。
func LoadDir(dir string, files Files) *Set {
	set := &Set{
		Categories: make(map[string]map[string]Row),
		Summaries:  make(map[string]Summary),
		Sheets:     make(map[string]Sheet),
	}
	l := logger.L()
	for _, cf := range files.Categories {
		rows, err := readRowsFile(filepath.Join(dir, cf.File))
		if err != nil {
			logMissing(cf.File, err)
			continue
		}
		n := 0
		for _, r := range rows {
			d := strings.TrimSpace(r[DistrictColumn])
			if d == "" || d == "Grand Total" {
				continue
			}
			if set.Categories[d] == nil {
				set.Categories[d] = make(map[string]Row)
			}
			set.Categories[d][cf.Key] = r
			n++
		}
		l.Info("results_category_loaded", "category", cf.Key, "rows", n)
	}
	if files.Summary != "" {
		if rows, err := readRowsFile(filepath.Join(dir, files.Summary)); err != nil {
			logMissing(files.Summary, err)
		} else {
			for d, s := range ParseSummary(rows) {
				set.Summaries[d] = s
			}
			l.Info("results_summary_loaded", "districts", len(set.Summaries))
		}
	}
	if files.Sheet != "" {
		f, err := os.Open(filepath.Join(dir, files.Sheet))
		if err != nil {
			logMissing(files.Sheet, err)
		} else {
			sheets, err := ParseSheet(f)
			_ = f.Close()
			if err != nil {
				logMissing(files.Sheet, err)
			} else {
				set.Sheets = sheets
				l.Info("results_sheet_loaded", "districts", len(sheets))
			}
		}
	}
	return set
}

func logMissing(file string, err error) {
	if errors.Is(err, os.ErrNotExist) {
		logger.L().Warn("results_file_missing", "file", file)
		return
	}
	logger.L().Error("results_file_error", "file", file, "err", err)
}

func readRowsFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

// ReadRows：首行为表头的 CSV → Row 列表；短行缺失的列不写入
func ReadRows(r io.Reader) ([]Row, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = normalizeHeader(header[i])
	}
	var out []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+2, err)
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(rec) && h != "" {
				row[h] = rec[i]
			}
		}
		out = append(out, row)
	}
}

// ParseSummary：Result.csv 行 → 组织区计数
func ParseSummary(rows []Row) map[string]Summary {
	out := make(map[string]Summary)
	for _, r := range rows {
		d := strings.TrimSpace(r[DistrictColumn])
		if d == "" || d == "Grand Total" {
			continue
		}
		out[d] = Summary{
			GPFirstNoTie:         Number(r["GP First Without Tie"]),
			GPFirstTie:           Number(r["GP First Tie"]),
			GPSecondNoTie:        Number(r["GP Second Without Tie"]),
			GPSecondTie:          Number(r["GP Second Tie"]),
			MunicipalityFirst:    Number(r["Municipality First"]),
			Municipality2ndNoTie: Number(r["Municipality 2nd Without Tie"]),
			Municipality2ndTie:   Number(r["Municipality 2nd With Tie"]),
			CorporationFirst:     Number(r["Corporation 1st"]),
		}
	}
	return out
}

// sheetFirstDataRow：Sheet1 前 6 行为多级表头
const sheetFirstDataRow = 6

// 文档注释：按列位置解析 Sheet1
// 背景：该表为多级合并表头，无法按列名读取；列位置：0=区，1/4/5=GP 总数/2020 已胜/2025 目标，6/9/10=市政，11/14/15=市政公司。
// 约束：少于 16 列的行与 Total 行跳过；"-" 与空白按 0 处理。
func ParseSheet(r io.Reader) (map[string]Sheet, error) {
	recs, err := newReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Sheet)
	for i := sheetFirstDataRow; i < len(recs); i++ {
		row := recs[i]
		if len(row) < 16 {
			continue
		}
		d := strings.TrimSpace(row[0])
		if d == "" || d == "Total" {
			continue
		}
		out[d] = Sheet{
			GPTotal:      Number(row[1]),
			GP2020Won:    Number(row[4]),
			GP2025Target: Number(row[5]),
			MTotal:       Number(row[6]),
			M2020Won:     Number(row[9]),
			M2025Target:  Number(row[10]),
			CTotal:       Number(row[11]),
			C2020Won:     Number(row[14]),
			C2025Target:  Number(row[15]),
		}
	}
	return out, nil
}

// Number：去千分位逗号后解析整数；空白、"-"、非法值均为 0
func Number(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
