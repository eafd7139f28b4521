package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationPath is the record of one guided exploration: the node ids
// visited in order and, once a conclusion is reached, its outcome.
type ConversationPath struct {
	ID         string     `json:"id"`
	Nodes      []string   `json:"nodes"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Conclusion string     `json:"conclusion,omitempty"`
	Insights   []string   `json:"insights,omitempty"`
	Score      *int       `json:"score,omitempty"`
}

// NewConversationPath starts an empty path at the given time.
func NewConversationPath(at time.Time) ConversationPath {
	return ConversationPath{ID: uuid.NewString(), StartTime: at.UTC()}
}

// Completed reports whether the path reached a conclusion.
func (p ConversationPath) Completed() bool {
	return p.EndTime != nil
}

// Duration is the time from start to end, or zero for an open path.
func (p ConversationPath) Duration() time.Duration {
	if p.EndTime == nil {
		return 0
	}
	return p.EndTime.Sub(p.StartTime)
}
