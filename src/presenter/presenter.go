// Package presenter renders verification outcomes for the terminal. It is
// stateless: each call renders what it is given and keeps nothing.
package presenter

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sceptre-labs/sceptre/src/knowledge"
	"github.com/sceptre-labs/sceptre/src/risk"
	"github.com/sceptre-labs/sceptre/src/verify"
)

type Presenter struct {
	sanitizer *bluemonday.Policy
}

func New() *Presenter {
	// Service summaries may carry markup; strip it all before printing.
	return &Presenter{sanitizer: bluemonday.StrictPolicy()}
}

// Render prints one verification result: the risk band, the sanitized
// summary, the score, supporting sources, and any contract warnings.
func (p *Presenter) Render(w io.Writer, res *verify.Result) {
	band := risk.Classify(res.CredibilityAssessment)

	fmt.Fprintf(w, "[%s] %s (%s)\n", band.Icon, res.CredibilityAssessment, band.Severity)
	fmt.Fprintf(w, "score: %.2f (%s)\n", res.ClassificationScore, res.ClassificationLabel)

	summary := strings.TrimSpace(html.UnescapeString(p.sanitizer.Sanitize(res.Summary)))
	if summary != "" {
		fmt.Fprintf(w, "\n%s\n", summary)
	}

	if len(res.Sources) > 0 {
		fmt.Fprintf(w, "\nsources:\n")
		for i, src := range res.Sources {
			fmt.Fprintf(w, "  %d. %s\n     %s (relevance %s)\n", i+1, src.Title, src.URL, src.RelevanceScore)
		}
	}

	if res.Timestamp != "" {
		fmt.Fprintf(w, "\nchecked at %s\n", res.Timestamp)
	}

	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

// RenderRefreshLog prints the knowledge-base refresh history in the order
// the refreshes completed.
func (p *Presenter) RenderRefreshLog(w io.Writer, entries []knowledge.RefreshResult) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no knowledge base refreshes yet")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%d. %s — %d documents (%s)\n", i+1, e.Topic, e.DocumentCount, e.Message)
	}
}
