// Package tree implements the guided exploration: a static graph of question
// nodes joined by options, walked one step at a time by a Session until a
// conclusion node is reached.
package tree

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/pattern"
)

//go:embed nodes.yaml
var defaultNodes []byte

// Option is one choice offered at a node.
type Option struct {
	Text     string   `yaml:"text" json:"text"`
	Keywords []string `yaml:"keywords" json:"-"`
	Next     string   `yaml:"next" json:"next_node_id"`
}

// Node is a question in the graph. A node with a non-empty Conclusion is
// terminal.
type Node struct {
	ID                 string   `yaml:"id" json:"id"`
	Keywords           []string `yaml:"keywords" json:"keywords,omitempty"`
	Question           string   `yaml:"question" json:"question"`
	Response           string   `yaml:"response" json:"response,omitempty"`
	Options            []Option `yaml:"options" json:"options,omitempty"`
	Depth              int      `yaml:"depth" json:"depth"`
	Category           string   `yaml:"category" json:"category"`
	Conclusion         string   `yaml:"conclusion" json:"conclusion,omitempty"`
	Insight            string   `yaml:"insight" json:"insight,omitempty"`
	PsychometricWeight int      `yaml:"psychometric_weight" json:"psychometric_weight,omitempty"`
}

// IsConclusion reports whether n is terminal.
func (n *Node) IsConclusion() bool {
	return n != nil && n.Conclusion != ""
}

// Tree is the immutable node table.
type Tree struct {
	Root  string
	nodes map[string]*Node
	order []string
}

type treeFile struct {
	Root  string `yaml:"root"`
	Nodes []Node `yaml:"nodes"`
}

// Parse decodes and validates a node table. Every option must point at an
// existing node and every non-terminal node must offer at least one option.
func Parse(data []byte) (*Tree, error) {
	var f treeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse conversation tree: %w", err)
	}

	t := &Tree{Root: f.Root, nodes: make(map[string]*Node, len(f.Nodes))}
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("conversation tree node %d has no id", i)
		}
		if _, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate conversation tree node %q", n.ID)
		}
		for k, kw := range n.Keywords {
			n.Keywords[k] = strings.ToLower(kw)
		}
		for o := range n.Options {
			for k, kw := range n.Options[o].Keywords {
				n.Options[o].Keywords[k] = strings.ToLower(kw)
			}
		}
		t.nodes[n.ID] = n
		t.order = append(t.order, n.ID)
	}

	if _, ok := t.nodes[t.Root]; !ok {
		return nil, fmt.Errorf("conversation tree root %q is not a node", t.Root)
	}
	for _, id := range t.order {
		n := t.nodes[id]
		if !n.IsConclusion() && len(n.Options) == 0 {
			return nil, fmt.Errorf("node %q has neither options nor a conclusion", id)
		}
		for _, o := range n.Options {
			if _, ok := t.nodes[o.Next]; !ok {
				return nil, fmt.Errorf("node %q option %q points at unknown node %q", id, o.Text, o.Next)
			}
		}
	}
	return t, nil
}

// Default returns the embedded node table.
func Default() *Tree {
	t, err := Parse(defaultNodes)
	if err != nil {
		panic(err)
	}
	return t
}

// Node looks up a node by id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// IDs returns node ids in table order.
func (t *Tree) IDs() []string {
	return append([]string(nil), t.order...)
}

// Conclusions returns the ids of terminal nodes, sorted.
func (t *Tree) Conclusions() []string {
	var ids []string
	for _, id := range t.order {
		if t.nodes[id].IsConclusion() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// recentContext is how many earlier user turns count toward a node match.
const recentContext = 3

// FindMatchingNode returns the node whose keywords best match message, or
// nil when none match. Hits in message count double; hits in the last few
// user turns of the transcript break ties. Earlier table order wins ties
// that remain.
func (t *Tree) FindMatchingNode(message string, transcript []models.ChatMessage) *Node {
	text := pattern.Normalize(message)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var recent []string
	users := models.UserMessages(transcript)
	for i := len(users) - 1; i >= 0 && len(recent) < recentContext; i-- {
		if users[i].Content != message {
			recent = append(recent, pattern.Normalize(users[i].Content))
		}
	}

	var best *Node
	bestScore := 0
	for _, id := range t.order {
		n := t.nodes[id]
		hits := countHits(text, n.Keywords)
		if hits == 0 {
			continue
		}
		score := hits * 2
		for _, r := range recent {
			score += countHits(r, n.Keywords)
		}
		if score > bestScore {
			best, bestScore = n, score
		}
	}
	return best
}

func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// matchOption returns the index of the option whose keywords or text best
// match message, or -1.
func matchOption(options []Option, message string) int {
	text := pattern.Normalize(strings.TrimSpace(message))
	if text == "" {
		return -1
	}
	best, bestHits := -1, 0
	for i, o := range options {
		if strings.EqualFold(text, o.Text) {
			return i
		}
		if hits := countWordHits(text, o.Keywords); hits > bestHits {
			best, bestHits = i, hits
		}
	}
	return best
}

// countWordHits matches single-word keywords against whole words so short
// answers like "no" do not fire inside "know".
func countWordHits(text string, keywords []string) int {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(text, kw) {
				hits++
			}
			continue
		}
		if set[kw] {
			hits++
		}
	}
	return hits
}
