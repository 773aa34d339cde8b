package parser

import "DailyDigest/internal/scanner"

// DefaultParser is used when no strategy is configured.
const DefaultParser = "pattern"

// NewRegistry registers every built-in feed parser.
func NewRegistry() *scanner.Registry {
	reg := scanner.NewRegistry()
	reg.Register(NewPatternParser())
	reg.Register(NewGofeedParser())
	return reg
}
