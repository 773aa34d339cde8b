package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/usecase"
)

type printer struct {
	out     io.Writer
	success *color.Color
	title   *color.Color
	dim     *color.Color
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		title:   color.New(color.FgCyan, color.Bold),
		dim:     color.New(color.Faint),
	}
}

// summary prints the run stats and a top-3 preview.
func (p *printer) summary(res usecase.Result) {
	s := res.Digest.Stats
	p.success.Fprintln(p.out, "✅ Done")
	if res.OutputPath != "" {
		fmt.Fprintf(p.out, "📁 Report: %s\n", res.OutputPath)
	}
	fmt.Fprintf(p.out, "📊 Stats: %d sources → %d articles → %d recent → %d selected\n",
		s.SuccessFeeds, s.TotalArticles, s.FilteredArticles, len(res.Digest.Articles))

	if len(res.Digest.Articles) == 0 {
		return
	}
	fmt.Fprintln(p.out)
	p.title.Fprintln(p.out, "🏆 Top 3 Preview:")
	for i, a := range res.Digest.Articles {
		if i == 3 {
			break
		}
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, a.DisplayTitle())
		p.dim.Fprintf(p.out, "     %s...\n", parser.Truncate(a.Summary, 80))
	}
}
