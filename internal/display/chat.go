package display

import (
	"github.com/fatih/color"

	"github.com/harrison/flagwise/internal/counselor"
	"github.com/harrison/flagwise/internal/tree"
)

// Reply prints a counselor reply and any fallback advisory.
func (p *Printer) Reply(r counselor.Reply) {
	if r.Error != "" {
		p.Advise(Advisory{Title: r.Error})
	}
	label := "flagwise"
	if r.Source != counselor.SourceRuleBased {
		label = "flagwise (" + r.Source + ")"
	}
	p.printf("%s %s\n", p.paint(label+":", color.FgCyan, color.Bold), r.Content)
}

// Node prints a decision-tree node with numbered options.
func (p *Printer) Node(n *tree.Node) {
	if n == nil {
		return
	}
	if n.Response != "" {
		p.printf("%s\n", n.Response)
	}
	if n.IsConclusion() {
		p.printf("\n%s\n", p.paint(n.Conclusion, color.Bold))
		if n.Insight != "" {
			p.printf("%s\n", n.Insight)
		}
		return
	}
	p.printf("%s\n", p.paint(n.Question, color.Bold))
	for i, o := range n.Options {
		p.printf("  %d) %s\n", i+1, o.Text)
	}
}
