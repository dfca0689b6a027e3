package analytics

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// DefaultTarget is what absent or unrecognized frequency input normalizes to.
var DefaultTarget = domain.FrequencyTarget{Count: 1, Period: domain.PeriodDay}

var (
	timesPerRegex = regexp.MustCompile(`^(\d+)\s*(?:x|times?)?\s*(?:per|/|a|an|every)\s*(day|week|month|year)$`)
	everyNRegex   = regexp.MustCompile(`^every\s+(\d+)\s+days?$`)
)

var legacyKeywords = map[string]domain.FrequencyTarget{
	"daily":     {Count: 1, Period: domain.PeriodDay},
	"every day": {Count: 1, Period: domain.PeriodDay},
	"weekly":    {Count: 1, Period: domain.PeriodWeek},
	"monthly":   {Count: 1, Period: domain.PeriodMonth},
	"yearly":    {Count: 1, Period: domain.PeriodYear},
	"annually":  {Count: 1, Period: domain.PeriodYear},
}

// Normalize turns whatever a habit record stored as its expected frequency
// into a canonical FrequencyTarget. It never fails.
func Normalize(raw any) domain.FrequencyTarget {
	switch v := raw.(type) {
	case nil:
		return DefaultTarget
	case domain.FrequencyTarget:
		return fromFields(v.Count, string(v.Period), v.CycleDays)
	case *domain.FrequencyTarget:
		if v == nil {
			return DefaultTarget
		}
		return fromFields(v.Count, string(v.Period), v.CycleDays)
	case map[string]any:
		return fromMap(v)
	case json.RawMessage:
		return fromJSON(v)
	case []byte:
		return fromJSON(v)
	case string:
		return fromString(v)
	default:
		return DefaultTarget
	}
}

func fromJSON(data []byte) domain.FrequencyTarget {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return DefaultTarget
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return DefaultTarget
	}

	switch v := decoded.(type) {
	case map[string]any:
		return fromMap(v)
	case string:
		return fromString(v)
	default:
		return DefaultTarget
	}
}

func fromString(s string) domain.FrequencyTarget {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return DefaultTarget
	}

	if strings.HasPrefix(text, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(text), &obj); err == nil {
			return fromMap(obj)
		}
	}

	text = strings.Join(strings.Fields(text), " ")

	if t, ok := legacyKeywords[text]; ok {
		return t
	}

	if m := everyNRegex.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 1 {
			return DefaultTarget
		}
		return domain.FrequencyTarget{Count: 1, Period: domain.PeriodDay, CycleDays: n}
	}

	if m := timesPerRegex.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = 1
		}
		return fromFields(n, m[2], 0)
	}

	return DefaultTarget
}

func fromMap(m map[string]any) domain.FrequencyTarget {
	count := coerceCount(m["count"])
	period, _ := m["period"].(string)

	cycle := 0
	if raw, ok := m["cycle_days"]; ok {
		cycle = coerceCount(raw)
	}

	return fromFields(count, period, cycle)
}

func fromFields(count int, period string, cycleDays int) domain.FrequencyTarget {
	if count < 1 {
		count = 1
	}

	p := domain.Period(strings.ToLower(strings.TrimSpace(period)))
	if !p.Valid() {
		p = domain.PeriodDay
	}

	if p != domain.PeriodDay || cycleDays < 2 {
		cycleDays = 0
	}

	return domain.FrequencyTarget{Count: count, Period: p, CycleDays: cycleDays}
}

func coerceCount(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return n
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 1
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > math.MaxInt32 {
		return 1
	}
	return int(f)
}
