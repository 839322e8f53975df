// Package normalize converts free-text posting fields into validated,
// comparable structured values.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/practicejobs/ingest/internal/domain/model"
)

// Plausibility bounds. Figures outside these ranges are almost always
// misparsed fragments (zip codes, phone numbers, reference ids) or provider
// formatting accidents, not real compensation.
const (
	minHourly = 15
	maxHourly = 500
	minAnnual = 40_000
	maxAnnual = 500_000

	// inferHourlyBelow: a bare currency figure under this magnitude cannot
	// plausibly be an annual salary, so it is read as an hourly rate.
	inferHourlyBelow = 500
)

// salaryRe recognizes currency-prefixed ranges and singles:
// "$65-$75/hr", "$150k to $180k", "$120,000 per year", "$48.50/hour".
var salaryRe = regexp.MustCompile(
	`(?i)\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k)?` +
		`(?:\s*(?:-|–|—|\bto\b)\s*\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k)?)?` +
		`\s*(?:(?:/|\bper\b)\s*(hr|hour|hourly|yr|year|yearly|annum|annually|mo|month|monthly|wk|week|weekly))?`)

var periodSuffixes = map[string]model.SalaryPeriod{
	"hr":       model.SalaryPeriodHourly,
	"hour":     model.SalaryPeriodHourly,
	"hourly":   model.SalaryPeriodHourly,
	"yr":       model.SalaryPeriodAnnual,
	"year":     model.SalaryPeriodAnnual,
	"yearly":   model.SalaryPeriodAnnual,
	"annum":    model.SalaryPeriodAnnual,
	"annually": model.SalaryPeriodAnnual,
	"mo":       model.SalaryPeriodMonthly,
	"month":    model.SalaryPeriodMonthly,
	"monthly":  model.SalaryPeriodMonthly,
	"wk":       model.SalaryPeriodWeekly,
	"week":     model.SalaryPeriodWeekly,
	"weekly":   model.SalaryPeriodWeekly,
}

// ParseSalary scans free text for a salary figure and returns it in its
// original period. The first match that survives plausibility validation
// wins; text with no plausible figure yields an empty Salary.
func ParseSalary(text string) model.Salary {
	for _, m := range salaryRe.FindAllStringSubmatch(text, -1) {
		if salary, ok := buildSalary(m); ok {
			return salary
		}
	}
	return model.Salary{}
}

// buildSalary converts one regex match into a validated Salary.
func buildSalary(m []string) (model.Salary, bool) {
	minVal, ok := parseAmount(m[1], m[2] != "")
	if !ok {
		return model.Salary{}, false
	}

	maxVal := minVal
	if m[3] != "" {
		// A "k" on either side of a range applies to both: "$150-180k".
		maxVal, ok = parseAmount(m[3], m[4] != "" || m[2] != "")
		if !ok {
			return model.Salary{}, false
		}
		if m[4] != "" && m[2] == "" && minVal < 1000 {
			minVal *= 1000
		}
	}

	// Source formatting sometimes reverses the bounds; swap rather than
	// discard, since the data is present, just misordered.
	if minVal > maxVal {
		minVal, maxVal = maxVal, minVal
	}

	period, estimated := inferPeriod(m[5], minVal)

	if !plausible(minVal, period) || !plausible(maxVal, period) {
		return model.Salary{}, false
	}

	return model.Salary{
		Min:       &minVal,
		Max:       &maxVal,
		Period:    period,
		Estimated: estimated,
	}, true
}

func parseAmount(raw string, thousands bool) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if thousands {
		v *= 1000
	}
	return v, true
}

// inferPeriod resolves the pay period: an explicit suffix wins; otherwise the
// magnitude decides, and the result is flagged as estimated.
func inferPeriod(suffix string, amount float64) (model.SalaryPeriod, bool) {
	if suffix != "" {
		if p, ok := periodSuffixes[strings.ToLower(suffix)]; ok {
			return p, false
		}
	}
	if amount < inferHourlyBelow {
		return model.SalaryPeriodHourly, true
	}
	return model.SalaryPeriodAnnual, true
}

func plausible(amount float64, period model.SalaryPeriod) bool {
	if period == model.SalaryPeriodHourly {
		return amount >= minHourly && amount <= maxHourly
	}
	annual := amount * period.AnnualFactor()
	return annual >= minAnnual && annual <= maxAnnual
}

// Annualize converts a raw figure in the salary's period to a whole-dollar
// annual amount for cross-posting comparison (hourly x 2080, weekly x 52,
// monthly x 12).
func Annualize(amount float64, period model.SalaryPeriod) int {
	return int(math.Round(amount * period.AnnualFactor()))
}

// FormatDisplay derives the deterministic display string for a salary:
// "$65-$75/hr", "$150k-$180k/yr", "$8,500/mo", or "Competitive" when absent.
// Inferred figures are prefixed with "~".
func FormatDisplay(s model.Salary) string {
	if !s.Present() {
		return "Competitive"
	}

	minVal := valueOr(s.Min, s.Max)
	maxVal := valueOr(s.Max, s.Min)

	var body string
	if minVal == maxVal {
		body = "$" + formatAmount(minVal, s.Period)
	} else {
		body = "$" + formatAmount(minVal, s.Period) + "-$" + formatAmount(maxVal, s.Period)
	}
	body += periodLabel(s.Period)

	if s.Estimated {
		return "~" + body
	}
	return body
}

func valueOr(v, fallback *float64) float64 {
	if v != nil {
		return *v
	}
	return *fallback
}

func periodLabel(p model.SalaryPeriod) string {
	switch p {
	case model.SalaryPeriodHourly:
		return "/hr"
	case model.SalaryPeriodWeekly:
		return "/wk"
	case model.SalaryPeriodMonthly:
		return "/mo"
	default:
		return "/yr"
	}
}

// formatAmount renders a single figure: annual amounts in whole thousands
// become "150k", everything else gets thousands separators and trimmed
// decimals.
func formatAmount(v float64, p model.SalaryPeriod) string {
	if p == model.SalaryPeriodAnnual && v >= 1000 && math.Mod(v, 1000) == 0 {
		return strconv.FormatFloat(v/1000, 'f', -1, 64) + "k"
	}
	if v == math.Trunc(v) {
		return groupThousands(int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func groupThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
