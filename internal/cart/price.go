package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizePrice turns catalog price data into a non-negative amount.
// Anything it cannot read becomes 0.
func NormalizePrice(v any) float64 {
	switch p := v.(type) {
	case nil:
		return 0
	case float64:
		return clampPrice(p)
	case float32:
		return clampPrice(float64(p))
	case int:
		return clampPrice(float64(p))
	case int64:
		return clampPrice(float64(p))
	case int32:
		return clampPrice(float64(p))
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return 0
		}
		return clampPrice(f)
	case string:
		return parsePrice(p)
	default:
		return 0
	}
}

func clampPrice(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// parsePrice reads "12,50 €", "1 250.00", "€1,250.50" and friends.
func parsePrice(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}

	commas := strings.Count(cleaned, ",")
	dots := strings.Count(cleaned, ".")

	switch {
	case commas > 0 && dots > 0:
		// the right-most separator is the decimal one
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case commas == 1:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case commas > 1:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case dots > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return clampPrice(f)
}
