package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFiscalPeriod(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		year    string
		quarter int
		ok      bool
	}{
		{
			name:    "march period end full year close",
			title:   "2026年3月期 決算短信〔日本基準〕（連結）",
			year:    "2025",
			quarter: 4,
			ok:      true,
		},
		{
			name:    "march period end presentation",
			title:   "2026年3月期 決算説明資料",
			year:    "2025",
			quarter: 4,
			ok:      true,
		},
		{
			name:    "explicit quarter",
			title:   "2026年3月期 第1四半期決算短信",
			year:    "2025",
			quarter: 1,
			ok:      true,
		},
		{
			name:    "full width quarter digit",
			title:   "2026年3月期 第２四半期決算短信",
			year:    "2025",
			quarter: 2,
			ok:      true,
		},
		{
			name:    "interim period",
			title:   "2025年12月期 中間決算説明資料",
			year:    "2025",
			quarter: 2,
			ok:      true,
		},
		{
			name:    "december period end names own year",
			title:   "2025年12月期 通期決算説明会資料",
			year:    "2025",
			quarter: 4,
			ok:      true,
		},
		{
			name:    "reiwa era conversion",
			title:   "令和7年3月期 決算短信",
			year:    "2024",
			quarter: 4,
			ok:      true,
		},
		{
			name:    "reiwa first year",
			title:   "令和元年3月期 決算短信",
			year:    "2018",
			quarter: 4,
			ok:      true,
		},
		{
			name:    "nendo names fiscal year directly",
			title:   "2025年度 成長可能性に関する説明資料",
			year:    "2025",
			quarter: 0,
			ok:      true,
		},
		{
			name:    "fy tag",
			title:   "FY2025 Financial Results Presentation",
			year:    "2025",
			quarter: 0,
			ok:      true,
		},
		{
			name:  "no year token is unresolvable",
			title: "中期経営計画の策定に関するお知らせ",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParseFiscalPeriod(tt.title)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.year, p.Year)
				assert.Equal(t, tt.quarter, p.Quarter)
			}
		})
	}
}

func TestEraToGregorian(t *testing.T) {
	assert.Equal(t, 2025, EraToGregorian("令和", "7"))
	assert.Equal(t, 2019, EraToGregorian("令和", "元"))
	assert.Equal(t, 2019, EraToGregorian("平成", "31"))
	assert.Equal(t, 0, EraToGregorian("昭和", "40"))
}
