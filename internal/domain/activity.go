package domain

// MaxSnippetLength caps the deleted text attached to an activity, in characters.
const MaxSnippetLength = 100

// DefaultActivityHistory is how many activities a room keeps for late readers.
const DefaultActivityHistory = 50

// ActivityEvent is a human-readable account of one edit, broadcast as "user-activity".
// DeletedLines holds 0-based indices into the document before the edit.
type ActivityEvent struct {
	Username     string `json:"username"`
	Action       string `json:"action"`
	Timestamp    string `json:"timestamp"`
	CodeSnippet  string `json:"codeSnippet,omitempty"`
	DeletedLines []int  `json:"deletedLines,omitempty"`
}

// TruncateSnippet shortens s to MaxSnippetLength characters without splitting a rune.
func TruncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxSnippetLength {
		return s
	}
	return string(runes[:MaxSnippetLength])
}

// ActivityLog keeps the most recent activities of a room, oldest first.
// It is not safe for concurrent use; the owning room serializes access.
type ActivityLog struct {
	limit  int
	events []ActivityEvent
}

// NewActivityLog creates a log that retains at most limit events.
// A non-positive limit falls back to DefaultActivityHistory.
func NewActivityLog(limit int) *ActivityLog {
	if limit <= 0 {
		limit = DefaultActivityHistory
	}
	return &ActivityLog{limit: limit}
}

// Append records ev, evicting the oldest event once the limit is reached.
func (l *ActivityLog) Append(ev ActivityEvent) {
	if len(l.events) >= l.limit {
		copy(l.events, l.events[len(l.events)-l.limit+1:])
		l.events = l.events[:l.limit-1]
	}
	l.events = append(l.events, ev)
}

// Recent returns a copy of the retained events.
func (l *ActivityLog) Recent() []ActivityEvent {
	out := make([]ActivityEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of retained events.
func (l *ActivityLog) Len() int { return len(l.events) }
