package guide

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var guideHeading = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*):\s+(.+)$`)

// Parse reads a guidance document. Each level-1 heading "id: Title" starts a
// guide; the first paragraph is its summary; level-2 headings name sections
// whose list items become entries.
func Parse(source []byte) (*Library, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	lib := &Library{guides: make(map[string]*Guide)}

	var current *Guide
	var section *[]string

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := strings.TrimSpace(nodeText(node, source))
			switch node.Level {
			case 1:
				m := guideHeading.FindStringSubmatch(headingText)
				if m == nil {
					return ast.WalkStop, fmt.Errorf("guide heading %q must look like \"id: Title\"", headingText)
				}
				if _, dup := lib.guides[m[1]]; dup {
					return ast.WalkStop, fmt.Errorf("duplicate guide id %q", m[1])
				}
				current = &Guide{ID: m[1], Title: m[2]}
				lib.guides[current.ID] = current
				section = nil
			case 2:
				if current == nil {
					return ast.WalkStop, fmt.Errorf("section %q appears before any guide", headingText)
				}
				s, err := current.section(strings.ToLower(headingText))
				if err != nil {
					return ast.WalkStop, err
				}
				section = s
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			if current != nil && section == nil && current.Summary == "" {
				current.Summary = strings.TrimSpace(nodeText(node, source))
			}
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			if section != nil {
				item := strings.TrimSpace(nodeText(node, source))
				if item != "" {
					*section = append(*section, item)
				}
			}
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse guide library: %w", err)
	}

	return lib, nil
}

// nodeText concatenates the text of all descendants of n.
func nodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte(' ')
				}
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
