package usecase

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	minScore     = 1
	maxScore     = 10
	neutralScore = 5
	maxKeywords  = 4
)

// rawResults is the loose shape of a batch answer. Fields are decoded per
// element so a single malformed entry does not discard its siblings.
type rawResults struct {
	Results []map[string]json.RawMessage `json:"results"`
}

// number reads a JSON number or a numeric string.
func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// clampScore rounds half away from zero and clamps to [1,10]. Missing or
// non-numeric input is neutral.
func clampScore(raw json.RawMessage) int {
	f, ok := number(raw)
	if !ok {
		return neutralScore
	}
	r := math.Round(f)
	switch {
	case r < minScore:
		return minScore
	case r > maxScore:
		return maxScore
	default:
		return int(r)
	}
}

// resultIndex reads the index field; fractional values are rejected.
func resultIndex(entry map[string]json.RawMessage) (int, bool) {
	f, ok := number(entry["index"])
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// keywords keeps up to four string entries of a list; anything else is empty.
func keywords(raw json.RawMessage) []string {
	out := []string{}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return out
	}
	for _, item := range list {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		out = append(out, s)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
