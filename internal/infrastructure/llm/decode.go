package llm

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errEmptyStream = errors.New("event stream carried no content")

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type completion struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// isEventStream reports whether a response body is server-sent events even
// though a non-streaming answer was requested.
func isEventStream(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), "data:")
}

// decodeEventStream concatenates the delta fragments of every data line.
// Unparseable chunks and the [DONE] sentinel are skipped.
func decodeEventStream(body string) (string, error) {
	var out strings.Builder

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 {
			out.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scan event stream: %w", err)
	}

	if out.Len() == 0 {
		return "", errEmptyStream
	}
	return out.String(), nil
}

// decodeCompletion extracts choices[0].message.content. The second result
// is false when the field was absent, which is not an error.
func decodeCompletion(body string) (string, bool, error) {
	var c completion
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return "", false, fmt.Errorf("decode completion: %w", err)
	}
	if len(c.Choices) == 0 || c.Choices[0].Message.Content == nil {
		return "", false, nil
	}
	return *c.Choices[0].Message.Content, true, nil
}
