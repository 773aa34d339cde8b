package usecase

import (
	"context"
	"regexp"
	"strconv"
	"sync"
)

var promptIndexExpr = regexp.MustCompile(`(?m)^Index (\d+):`)

// indicesIn lists the article indices a batch prompt mentions.
func indicesIn(prompt string) []int {
	var out []int
	for _, m := range promptIndexExpr.FindAllStringSubmatch(prompt, -1) {
		n, _ := strconv.Atoi(m[1])
		out = append(out, n)
	}
	return out
}

type fakeChat struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeChat) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

func (f *fakeChat) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
