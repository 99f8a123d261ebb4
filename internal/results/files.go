package results

// 分类结果表的键，对应前端 csvData 的键
const (
	CatOrgPanchayat30       = "org_panchayat_30"
	CatCorporation          = "corporation"
	CatMunicipality         = "municipality"
	CatPanchayatFirstNoTie  = "od_panchayat_first_no_tie"
	CatPanchayatFirstTie    = "od_panchayat_first_tie"
	CatPanchayatSecondNoTie = "od_panchayat_second_no_tie"
	CatPanchayatSecondTie   = "od_panchayat_second_tie"
	CatMunicipality2ndNoTie = "municipality_2nd_no_tie"
	CatMunicipality2ndTie   = "municipality_2nd_tie"
)

// CategoryFile：分类键与文件名
type CategoryFile struct {
	Key  string
	File string
}

// Files：一次导入涉及的全部结果表
type Files struct {
	Categories []CategoryFile
	Summary    string
	Sheet      string
}

// DefaultFiles：导出表格的原始文件名（含空格与括号）
func DefaultFiles() Files {
	return Files{
		Categories: []CategoryFile{
			{CatOrgPanchayat30, "Organisational District Wise Result 2025 - 30 Org Panchayat (2).csv"},
			{CatCorporation, "Organisational District Wise Result 2025 - Corporation Latest (2).csv"},
			{CatMunicipality, "Organisational District Wise Result 2025 - Municipality Latest (2).csv"},
			{CatPanchayatFirstNoTie, "Organisational District Wise Result 2025 - OD Panchayat first (No tie) (1).csv"},
			{CatPanchayatFirstTie, "Organisational District Wise Result 2025 - OD Panchayat First (Tie) (1).csv"},
			{CatPanchayatSecondNoTie, "Organisational District Wise Result 2025 -  OD Panchayat Second (No Tie) (1).csv"},
			{CatPanchayatSecondTie, "Organisational District Wise Result 2025 - OD Panchayat Second (Tie) (1).csv"},
			{CatMunicipality2ndNoTie, "Organisational District Wise Result 2025 - Municipality 2nd (NO TIE) .csv"},
			{CatMunicipality2ndTie, "Organisational District Wise Result 2025 - M - 2nd (Tie) (2).csv"},
		},
		Summary: "Organisational District Wise Result 2025 - Result.csv",
		Sheet:   "Results-2025 - Sheet1.csv",
	}
}
