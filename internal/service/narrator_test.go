package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunagantinikhil/code-cast1/internal/diff"
	"github.com/gunagantinikhil/code-cast1/internal/domain"
)

func narrate(prev, next string, prior domain.Ledger) *domain.ActivityEvent {
	p, n := diff.SplitLines(prev), diff.SplitLines(next)
	changes := diff.Classify(p, n, diff.Align(p, n))
	return Narrate(changes, p, prior, "bob", "T2")
}

func TestNarrate_EnteredCode(t *testing.T) {
	ev := narrate("", "line1", nil)
	require.NotNil(t, ev)
	assert.Equal(t, "entered code in line 1", ev.Action)
	assert.Equal(t, "bob", ev.Username)
	assert.Equal(t, "T2", ev.Timestamp)
	assert.Empty(t, ev.CodeSnippet)
	assert.Nil(t, ev.DeletedLines)
}

func TestNarrate_EnteredSeveralLines(t *testing.T) {
	ev := narrate("a", "a\nb\nc", nil)
	require.NotNil(t, ev)
	assert.Equal(t, "entered code in lines 2, 3", ev.Action)
}

func TestNarrate_ModifiedSingleAuthor(t *testing.T) {
	prior := domain.Ledger{0: {OriginalAuthor: "alice", LastAuthor: "alice", Action: domain.LineAdded, Line: "line1"}}
	ev := narrate("line1", "line1-changed", prior)
	require.NotNil(t, ev)
	assert.Equal(t, "modified alice's code in line 1", ev.Action)
}

func TestNarrate_ModifiedSeveralAuthors(t *testing.T) {
	prior := domain.Ledger{
		0: {OriginalAuthor: "alice", LastAuthor: "alice", Line: "a"},
		1: {OriginalAuthor: "carol", LastAuthor: "carol", Line: "b"},
	}
	ev := narrate("a\nb", "x\ny", prior)
	require.NotNil(t, ev)
	assert.Equal(t, "modified others' code in lines 1, 2", ev.Action)
}

func TestNarrate_DeletionWinsAndCarriesSnippet(t *testing.T) {
	prior := domain.Ledger{
		1: {OriginalAuthor: "alice", LastAuthor: "bob", Line: "b"},
		2: {OriginalAuthor: "alice", LastAuthor: "alice", Line: "c"},
	}
	ev := narrate("a\nb\nc", "a", prior)
	require.NotNil(t, ev)
	assert.Equal(t, "deleted alice's code in lines 2, 3", ev.Action)
	assert.Equal(t, "b\nc", ev.CodeSnippet)
	assert.Equal(t, []int{1, 2}, ev.DeletedLines)
}

func TestNarrate_DeletionWithoutLedgerIsOthers(t *testing.T) {
	ev := narrate("a\nb", "a", nil)
	require.NotNil(t, ev)
	assert.Equal(t, "deleted others' code in line 2", ev.Action)
}

func TestNarrate_SnippetTruncated(t *testing.T) {
	long := strings.Repeat("x", 150)
	ev := narrate("keep\n"+long, "keep", nil)
	require.NotNil(t, ev)
	assert.Len(t, ev.CodeSnippet, domain.MaxSnippetLength)
}

func TestNarrate_BlankOnlyEditIsSilent(t *testing.T) {
	assert.Nil(t, narrate("a", "a\n\n   ", nil))
	assert.Nil(t, narrate("a\nb", "a\nb", nil))
}

func TestActivityKind(t *testing.T) {
	assert.Equal(t, "deleted", activityKind("deleted others' code in line 1"))
	assert.Equal(t, "modified", activityKind("modified alice's code in line 1"))
	assert.Equal(t, "entered", activityKind("entered code in line 1"))
}
