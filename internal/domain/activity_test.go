package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateSnippet(t *testing.T) {
	assert.Equal(t, "short", TruncateSnippet("short"))

	long := strings.Repeat("x", 150)
	assert.Len(t, TruncateSnippet(long), MaxSnippetLength)

	// multi-byte runes are never split
	wide := strings.Repeat("é", 120)
	got := TruncateSnippet(wide)
	assert.Equal(t, MaxSnippetLength, len([]rune(got)))
	assert.Equal(t, strings.Repeat("é", MaxSnippetLength), got)
}

func TestActivityLog_KeepsMostRecent(t *testing.T) {
	log := NewActivityLog(3)
	for _, a := range []string{"a", "b", "c", "d", "e"} {
		log.Append(ActivityEvent{Action: a})
	}
	recent := log.Recent()
	assert.Equal(t, 3, log.Len())
	assert.Equal(t, []string{"c", "d", "e"}, []string{recent[0].Action, recent[1].Action, recent[2].Action})

	// Recent returns a copy
	recent[0].Action = "mutated"
	assert.Equal(t, "c", log.Recent()[0].Action)
}

func TestActivityLog_DefaultLimit(t *testing.T) {
	log := NewActivityLog(0)
	for i := 0; i < DefaultActivityHistory+10; i++ {
		log.Append(ActivityEvent{})
	}
	assert.Equal(t, DefaultActivityHistory, log.Len())
}
