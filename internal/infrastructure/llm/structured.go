package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"DailyDigest/internal/infrastructure/parser"
)

var (
	fenceOpenExpr  = regexp.MustCompile("```(?:json)?\\n?")
	fenceCloseExpr = regexp.MustCompile("\\n?```")
	resultsExpr    = regexp.MustCompile(`(?s)\{\s*"results"\s*:\s*\[.*?\]\s*\}`)
)

// ParseStructured extracts a JSON object from model output that may be
// wrapped in code fences or surrounded by prose.
func ParseStructured[T any](text string) (T, error) {
	var out T

	cleaned := fenceOpenExpr.ReplaceAllString(text, "")
	cleaned = fenceCloseExpr.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	for _, candidate := range candidates(cleaned) {
		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return v, nil
		}
	}

	return out, fmt.Errorf("no JSON object in model output: %q", parser.Truncate(text, 200))
}

func candidates(text string) []string {
	var list []string

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		list = append(list, text[start:end+1])
	}
	if m := resultsExpr.FindString(text); m != "" {
		list = append(list, m)
	}
	return list
}
