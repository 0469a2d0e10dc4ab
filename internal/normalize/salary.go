package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// amount matches "50,000", "50000.50", or "50k".
const amount = `(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)(k)?`

// Ordered salary patterns; the first match wins. Symbols are optional on the
// upper bound of a range ("$50k - 80k").
var salaryPatterns = []*regexp.Regexp{
	// Symbol range: "$50k - $80k", "£30,000–£40,000", "€25 to €35".
	regexp.MustCompile(`(?i)([$£€])\s*` + amount + `\s*(?:-|–|—|to)\s*[$£€]?\s*` + amount),
	// Bare range with trailing unit: "40,000 - 60,000 per year".
	regexp.MustCompile(`(?i)` + amount + `\s*(?:-|–|—|to)\s*` + amount + `\s*(?:/|per\s+)`),
	// Single symbol amount: "$95k", "€4,200/month".
	regexp.MustCompile(`(?i)([$£€])\s*` + amount),
}

var currencyBySymbol = map[string]string{
	"$": "USD",
	"£": "GBP",
	"€": "EUR",
}

var periodTokens = []struct {
	token  string
	period jobs.SalaryPeriod
}{
	{"hour", jobs.PeriodHourly},
	{"/hr", jobs.PeriodHourly},
	{"hourly", jobs.PeriodHourly},
	{"day", jobs.PeriodDaily},
	{"daily", jobs.PeriodDaily},
	{"week", jobs.PeriodWeekly},
	{"weekly", jobs.PeriodWeekly},
	{"month", jobs.PeriodMonthly},
	{"/mo", jobs.PeriodMonthly},
	{"monthly", jobs.PeriodMonthly},
	{"annum", jobs.PeriodYearly},
	{"year", jobs.PeriodYearly},
	{"/yr", jobs.PeriodYearly},
	{"annual", jobs.PeriodYearly},
}

// ParseSalary tries the ordered pattern list against free salary text. It
// returns nil when nothing matches; it never guesses. "k" shorthand scales by
// 1000, currency defaults to USD, period defaults to yearly.
func ParseSalary(text string) *jobs.Salary {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for i, pattern := range salaryPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var salary jobs.Salary
		switch i {
		case 0: // symbol range
			salary.Currency = currencyBySymbol[m[1]]
			salary.Min = parseAmount(m[2], m[3] != "")
			salary.Max = parseAmount(m[4], m[5] != "")
		case 1: // bare range
			salary.Currency = "USD"
			salary.Min = parseAmount(m[1], m[2] != "")
			salary.Max = parseAmount(m[3], m[4] != "")
		case 2: // single amount
			salary.Currency = currencyBySymbol[m[1]]
			salary.Min = parseAmount(m[2], m[3] != "")
			salary.Max = salary.Min
		}
		if salary.Currency == "" {
			salary.Currency = "USD"
		}
		if salary.Min > salary.Max {
			salary.Min, salary.Max = salary.Max, salary.Min
		}
		salary.Period = inferPeriod(text)
		return &salary
	}
	return nil
}

func parseAmount(digits string, thousands bool) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0
	}
	if thousands {
		v *= 1000
	}
	return v
}

func inferPeriod(text string) jobs.SalaryPeriod {
	lower := strings.ToLower(text)
	for _, entry := range periodTokens {
		if strings.Contains(lower, entry.token) {
			return entry.period
		}
	}
	return jobs.PeriodYearly
}
