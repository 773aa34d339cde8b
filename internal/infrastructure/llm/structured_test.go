package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type results struct {
	Results []struct {
		Index int `json:"index"`
	} `json:"results"`
}

func TestParseStructuredFencedWithProse(t *testing.T) {
	t.Parallel()

	text := "Sure! Here you go:\n```json\n{\"results\":[{\"index\":0},{\"index\":1}]}\n```\nHope that helps."
	got, err := ParseStructured[results](text)
	require.NoError(t, err)
	require.Len(t, got.Results, 2)
	assert.Equal(t, 1, got.Results[1].Index)
}

func TestParseStructuredResultsPattern(t *testing.T) {
	t.Parallel()

	// The outer span is invalid JSON, so the second strategy must win.
	text := `note {broken} then {"results": [{"index": 3}]} and {more}`
	got, err := ParseStructured[results](text)
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 3, got.Results[0].Index)
}

func TestParseStructuredFailureShowsPrefix(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 300)
	_, err := ParseStructured[results](text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), strings.Repeat("x", 200))
	assert.NotContains(t, err.Error(), strings.Repeat("x", 201))
}
