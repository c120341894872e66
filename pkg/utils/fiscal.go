package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// FiscalPeriod is a fiscal year plus optional quarter resolved from a
// disclosure title. Quarter 0 means "no quarter" (non-periodic documents).
type FiscalPeriod struct {
	Year    string
	Quarter int
}

var (
	periodEndRe = regexp.MustCompile(`(\d{4})年(\d{1,2})月期`)
	eraPeriodRe = regexp.MustCompile(`(令和|平成)(元|\d{1,2})年(\d{1,2})月期`)
	fiscalTagRe = regexp.MustCompile(`(?i)FY\s?(\d{4})`)
	nendoRe     = regexp.MustCompile(`(\d{4})年度`)
	quarterRe   = regexp.MustCompile(`第([1-4１-４])四半期`)
)

// ParseFiscalPeriod resolves the fiscal year and quarter from a disclosure
// title using the common Japanese conventions: "YYYY年M月期" names the fiscal
// period by its end month (a March-ending period belongs to the previous
// Gregorian fiscal year), era years (令和/平成) convert to Gregorian, and
// "YYYY年度"/"FYyyyy" name the fiscal year directly. Returns false when no
// year token is present; callers must treat that as a terminal skip, never
// guess a default.
func ParseFiscalPeriod(title string) (FiscalPeriod, bool) {
	year, ok := parseFiscalYear(title)
	if !ok {
		return FiscalPeriod{}, false
	}
	return FiscalPeriod{Year: year, Quarter: parseQuarter(title)}, true
}

func parseFiscalYear(title string) (string, bool) {
	if m := periodEndRe.FindStringSubmatch(title); m != nil {
		endYear, _ := strconv.Atoi(m[1])
		endMonth, _ := strconv.Atoi(m[2])
		return strconv.Itoa(fiscalYearFromPeriodEnd(endYear, endMonth)), true
	}
	if m := eraPeriodRe.FindStringSubmatch(title); m != nil {
		endYear := EraToGregorian(m[1], m[2])
		if endYear == 0 {
			return "", false
		}
		endMonth, _ := strconv.Atoi(m[3])
		return strconv.Itoa(fiscalYearFromPeriodEnd(endYear, endMonth)), true
	}
	if m := nendoRe.FindStringSubmatch(title); m != nil {
		return m[1], true
	}
	if m := fiscalTagRe.FindStringSubmatch(title); m != nil {
		return m[1], true
	}
	return "", false
}

// fiscalYearFromPeriodEnd maps a period-end year/month onto the fiscal year.
// Periods ending in the first half of a calendar year (the typical March
// close) belong to the prior year; December closes name their own year.
func fiscalYearFromPeriodEnd(endYear, endMonth int) int {
	if endMonth <= 6 {
		return endYear - 1
	}
	return endYear
}

// EraToGregorian converts a Japanese era year (令和/平成, 元 = first year)
// to a Gregorian year. Returns 0 for unknown eras.
func EraToGregorian(era, year string) int {
	n := 1
	if year != "元" {
		n, _ = strconv.Atoi(year)
	}
	switch era {
	case "令和":
		return 2018 + n
	case "平成":
		return 1988 + n
	default:
		return 0
	}
}

func parseQuarter(title string) int {
	if m := quarterRe.FindStringSubmatch(title); m != nil {
		d := []rune(m[1])[0]
		if d >= '１' && d <= '４' {
			return int(d-'１') + 1
		}
		return int(d - '0')
	}
	if strings.Contains(title, "中間") || strings.Contains(title, "半期") {
		return 2
	}
	// A 短信/通期 title with no quarter token is the full-year close.
	if strings.Contains(title, "決算短信") || strings.Contains(title, "通期") || strings.Contains(title, "本決算") {
		return 4
	}
	return 0
}
