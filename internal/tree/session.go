package tree

import (
	"errors"
	"fmt"
	"time"

	"github.com/harrison/flagwise/internal/models"
)

var (
	// ErrUnknownNode is returned when moving to an id that is not in the tree.
	ErrUnknownNode = errors.New("unknown conversation node")
	// ErrNoSession is returned when an operation needs a current node or an
	// open path and there is none.
	ErrNoSession = errors.New("no conversation in progress")
	// ErrInvalidOption is returned for an out-of-range option index.
	ErrInvalidOption = errors.New("invalid option")
)

// Session is one guided exploration. It starts with no current node; the
// path opens on the first move and closes on CompletePath. A Session is not
// safe for concurrent use; give each conversation its own.
type Session struct {
	tree    *Tree
	current *Node
	path    *models.ConversationPath
	now     func() time.Time
}

// NewSession creates an idle session over t. now defaults to time.Now.
func NewSession(t *Tree, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{tree: t, now: now}
}

// Tree returns the node table the session walks.
func (s *Session) Tree() *Tree { return s.tree }

// Current returns the current node, or nil when idle.
func (s *Session) Current() *Node { return s.current }

// Active reports whether a path is open.
func (s *Session) Active() bool { return s.path != nil }

// Start moves to the root node, opening a new path if none is open.
func (s *Session) Start() *Node {
	n, _ := s.MoveToNode(s.tree.Root)
	return n
}

// MoveToNode advances the current pointer to id and records it on the path.
func (s *Session) MoveToNode(id string) (*Node, error) {
	n, ok := s.tree.Node(id)
	if !ok {
		return nil, fmt.Errorf("move to %q: %w", id, ErrUnknownNode)
	}
	if s.path == nil {
		p := models.NewConversationPath(s.now())
		s.path = &p
	}
	s.path.Nodes = append(s.path.Nodes, id)
	s.current = n
	return n, nil
}

// CurrentOptions returns the choices at the current node; nil when idle or
// at a conclusion.
func (s *Session) CurrentOptions() []Option {
	if s.current == nil {
		return nil
	}
	return s.current.Options
}

// SelectOption follows option i of the current node.
func (s *Session) SelectOption(i int) (*Node, error) {
	if s.current == nil {
		return nil, ErrNoSession
	}
	if i < 0 || i >= len(s.current.Options) {
		return nil, fmt.Errorf("option %d at %q: %w", i, s.current.ID, ErrInvalidOption)
	}
	return s.MoveToNode(s.current.Options[i].Next)
}

// Advance handles a free-text turn. When idle it enters the best matching
// node; otherwise it follows the option the message matches. It reports
// whether the session moved.
func (s *Session) Advance(message string, transcript []models.ChatMessage) (*Node, bool) {
	if s.current == nil {
		n := s.tree.FindMatchingNode(message, transcript)
		if n == nil {
			return nil, false
		}
		if _, err := s.MoveToNode(n.ID); err != nil {
			return nil, false
		}
		return n, true
	}
	i := matchOption(s.current.Options, message)
	if i < 0 {
		return s.current, false
	}
	n, err := s.SelectOption(i)
	if err != nil {
		return s.current, false
	}
	return n, true
}

// HasReachedConclusion reports whether the current node is terminal.
func (s *Session) HasReachedConclusion() bool {
	return s.current.IsConclusion()
}

// Conclusion returns the current node's conclusion text, or "".
func (s *Session) Conclusion() string {
	if !s.HasReachedConclusion() {
		return ""
	}
	return s.current.Conclusion
}

// CalculateScore is 100 minus the psychometric weights of the visited
// nodes, clamped to [0, 100]. An idle session scores 100.
func (s *Session) CalculateScore() int {
	if s.path == nil {
		return 100
	}
	score := 100
	for _, id := range s.path.Nodes {
		if n, ok := s.tree.Node(id); ok {
			score -= n.PsychometricWeight
		}
	}
	return min(100, max(0, score))
}

// Path returns a copy of the open path.
func (s *Session) Path() (models.ConversationPath, bool) {
	if s.path == nil {
		return models.ConversationPath{}, false
	}
	p := *s.path
	p.Nodes = append([]string(nil), s.path.Nodes...)
	return p, true
}

// CompletePath finalizes the open path with end time, conclusion, insights
// and score, then resets the session to idle.
func (s *Session) CompletePath() (models.ConversationPath, error) {
	if s.path == nil {
		return models.ConversationPath{}, ErrNoSession
	}
	p, _ := s.Path()

	end := s.now().UTC()
	score := s.CalculateScore()
	p.EndTime = &end
	p.Score = &score
	p.Conclusion = s.Conclusion()

	seen := make(map[string]bool)
	for _, id := range p.Nodes {
		n, ok := s.tree.Node(id)
		if !ok || n.Insight == "" || seen[n.Insight] {
			continue
		}
		seen[n.Insight] = true
		p.Insights = append(p.Insights, n.Insight)
	}

	s.Reset()
	return p, nil
}

// Reset abandons any open path and returns to idle.
func (s *Session) Reset() {
	s.current = nil
	s.path = nil
}
