package extract

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// findVehicleJSONLD returns the first structured-data object in document
// order that describes a vehicle. Blocks that fail to decode are skipped.
func findVehicleJSONLD(doc *goquery.Document) map[string]any {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		found = vehicleIn(v)
		return found == nil
	})
	return found
}

func vehicleIn(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if obj := vehicleIn(item); obj != nil {
				return obj
			}
		}
	case map[string]any:
		if isVehicle(t) {
			return t
		}
		if graph, ok := t["@graph"].([]any); ok {
			return vehicleIn(graph)
		}
	}
	return nil
}

func isVehicle(obj map[string]any) bool {
	for _, typ := range typesOf(obj["@type"]) {
		switch typ {
		case "Vehicle", "Car":
			return true
		case "Product":
			if cat, _ := obj["category"].(string); strings.EqualFold(strings.TrimSpace(cat), "auto") {
				return true
			}
		}
	}
	return false
}

func typesOf(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// nameOf reads a plain string or the "name" of a nested object.
func nameOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return nameOf(t["name"])
	}
	return ""
}

func imageOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := imageOf(item); s != "" {
				return s
			}
		}
	case map[string]any:
		if u := imageOf(t["url"]); u != "" {
			return u
		}
		return imageOf(t["contentUrl"])
	}
	return ""
}

// priceOf reads offers.price where offers is an object or a list of them.
func priceOf(obj map[string]any) (float64, bool) {
	switch offers := obj["offers"].(type) {
	case map[string]any:
		return leadingFloat(offers["price"])
	case []any:
		for _, o := range offers {
			if m, ok := o.(map[string]any); ok {
				if p, ok := leadingFloat(m["price"]); ok {
					return p, true
				}
			}
		}
	}
	return 0, false
}

func mileageOf(v any) (int, bool) {
	if m, ok := v.(map[string]any); ok {
		return leadingInt(m["value"])
	}
	return leadingInt(v)
}

var (
	leadingNumRe = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?`)
	decimalComma = regexp.MustCompile(`,(\d{1,2})$`)
	separators   = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "", ",", "", "'", "")
)

// leadingFloat parses a JSON number or the leading number of a string.
// Spaces and thousands separators are dropped; a trailing ",NN" is read as
// decimals.
func leadingFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		s := strings.TrimSpace(t)
		s = decimalComma.ReplaceAllString(s, ".$1")
		s = separators.Replace(s)
		num := leadingNumRe.FindString(s)
		if num == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// leadingInt is leadingFloat truncated toward zero.
func leadingInt(v any) (int, bool) {
	f, ok := leadingFloat(v)
	if !ok || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
