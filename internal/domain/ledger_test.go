package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunagantinikhil/code-cast1/internal/diff"
)

// edit runs one attributed edit the same way the sync engine does.
func edit(t *testing.T, prior Ledger, prevText, nextText, user, ts string) Ledger {
	t.Helper()
	prev, next := diff.SplitLines(prevText), diff.SplitLines(nextText)
	matches := diff.Align(prev, next)
	c := diff.Classify(prev, next, matches)
	return prior.Rebase(matches, c.Added, c.Modified, next, user, ts)
}

func TestLedger_JSONUsesStringKeys(t *testing.T) {
	l := Ledger{2: {OriginalAuthor: "alice", LastAuthor: "bob", Timestamp: "t", Action: LineModified, Line: "x"}}
	b, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2":{"originalAuthor":"alice","username":"bob","timestamp":"t","action":"modified","line":"x"}}`, string(b))

	var back Ledger
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, l.Equal(back))
}

func TestLedger_RebaseEndToEnd(t *testing.T) {
	l := edit(t, Ledger{}, "", "line1", "alice", "T1")
	require.Len(t, l, 1)
	assert.Equal(t, LedgerEntry{OriginalAuthor: "alice", LastAuthor: "alice", Timestamp: "T1", Action: LineAdded, Line: "line1"}, l[0])

	l = edit(t, l, "line1", "line1-changed", "bob", "T2")
	require.Len(t, l, 1)
	assert.Equal(t, LedgerEntry{OriginalAuthor: "alice", LastAuthor: "bob", Timestamp: "T2", Action: LineModified, Line: "line1-changed"}, l[0])
}

func TestLedger_OriginalAuthorSurvivesUnrelatedEdits(t *testing.T) {
	doc := "keep me"
	l := edit(t, Ledger{}, "", doc, "alice", "T1")

	users := []string{"bob", "carol", "dave", "erin"}
	for i, u := range users {
		next := "header " + u + "\n" + doc
		if i > 0 {
			next = doc + "\nfooter " + u
		}
		l = edit(t, l, doc, next, u, "T")
		doc = next
	}

	var found bool
	for _, e := range l {
		if e.Line == "keep me" {
			found = true
			assert.Equal(t, "alice", e.OriginalAuthor)
			assert.Equal(t, "alice", e.LastAuthor)
		}
	}
	assert.True(t, found)
}

func TestLedger_OriginalAuthorSurvivesRepeatedModification(t *testing.T) {
	l := edit(t, Ledger{}, "", "v0", "alice", "T0")
	prev := "v0"
	for i, u := range []string{"bob", "carol", "dave"} {
		next := "v" + string(rune('1'+i))
		l = edit(t, l, prev, next, u, "T")
		prev = next
		assert.Equal(t, "alice", l[0].OriginalAuthor)
		assert.Equal(t, u, l[0].LastAuthor)
	}
}

func TestLedger_RebaseDropsDeletedLines(t *testing.T) {
	l := edit(t, Ledger{}, "", "a\nb\nc", "alice", "T1")
	l = edit(t, l, "a\nb\nc", "a\nc", "bob", "T2")
	require.Len(t, l, 2)
	assert.Equal(t, "a", l[0].Line)
	assert.Equal(t, "c", l[1].Line)
	assert.Equal(t, "alice", l[1].LastAuthor)
}

func TestLedger_RebaseIdempotentOnSameText(t *testing.T) {
	l := edit(t, Ledger{}, "", "a\n\nb", "alice", "T1")
	again := edit(t, l, "a\n\nb", "a\n\nb", "alice", "T2")
	assert.True(t, l.Equal(again))
}

func TestLedger_RebaseSkipsOutOfBoundsIndices(t *testing.T) {
	next := []string{"x"}
	l := Ledger{}.Rebase(
		[]diff.Match{{Prev: 0, Next: 5}},
		[]int{-1, 0, 3},
		[]int{7},
		next, "alice", "T",
	)
	assert.Len(t, l, 1)
	assert.Equal(t, "x", l[0].Line)
}

// merge aligns prevText with nextText and merges frag the same way the sync engine does.
func merge(prior Ledger, prevText, nextText string, frag LedgerFragment) (Ledger, []string) {
	prev, next := diff.SplitLines(prevText), diff.SplitLines(nextText)
	matches := diff.Align(prev, next)
	c := diff.Classify(prev, next, matches)
	return prior.Merge(frag, next, matches, c.Modified)
}

func TestLedger_MergePreservesOriginalAuthor(t *testing.T) {
	base := Ledger{0: {OriginalAuthor: "alice", LastAuthor: "alice", Action: LineAdded, Line: "a"}}
	frag := LedgerFragment{
		"0": {Username: "bob", Timestamp: "T2", Action: LineModified, Line: "a2"},
		"1": {Username: "bob", Timestamp: "T2", Action: LineAdded, Line: "b"},
	}
	asserted, skipped := merge(base, "a", "a2\nb", frag)
	assert.Empty(t, skipped)
	assert.Equal(t, LedgerEntry{OriginalAuthor: "alice", LastAuthor: "bob", Timestamp: "T2", Action: LineModified, Line: "a2"}, asserted[0])
	assert.Equal(t, LedgerEntry{OriginalAuthor: "bob", LastAuthor: "bob", Timestamp: "T2", Action: LineAdded, Line: "b"}, asserted[1])

	// the input ledger is untouched
	assert.Equal(t, "alice", base[0].LastAuthor)
}

func TestLedger_MergeFollowsAlignmentOnInsertAbove(t *testing.T) {
	base := edit(t, Ledger{}, "", "a\nb", "alice", "T1")
	frag := LedgerFragment{"0": {Username: "bob", Timestamp: "T2", Action: LineAdded, Line: "x"}}

	asserted, skipped := merge(base, "a\nb", "x\na\nb", frag)
	assert.Empty(t, skipped)
	require.Len(t, asserted, 1)
	assert.Equal(t, "bob", asserted[0].OriginalAuthor)

	// a fragment entry for a line carried down keeps that line's original author
	asserted, _ = merge(base, "a\nb", "x\na\nb", LedgerFragment{"2": {Username: "bob", Action: LineModified}})
	assert.Equal(t, "alice", asserted[2].OriginalAuthor)
	assert.Equal(t, "bob", asserted[2].LastAuthor)
	assert.Equal(t, "b", asserted[2].Line)
}

func TestLedger_MergeSkipsMalformedEntries(t *testing.T) {
	base := Ledger{0: {OriginalAuthor: "alice", LastAuthor: "alice", Action: LineAdded, Line: "a"}}
	frag := LedgerFragment{
		"abc": {Username: "bob", Action: LineAdded},
		"-1":  {Username: "bob", Action: LineAdded},
		"9":   {Username: "bob", Action: LineAdded},
		"1":   {Username: "bob", Action: LineAdded},
		"2":   {Username: "", Action: LineAdded},
		"3":   {Username: "bob", Action: "deleted"},
		"0":   {Username: "bob", Timestamp: "T", Action: LineModified},
	}
	asserted, skipped := merge(base, "a", "a\n \nc\nd", frag)
	assert.Equal(t, []string{"-1", "1", "2", "3", "9", "abc"}, skipped)
	assert.Len(t, asserted, 1)
	assert.Equal(t, "bob", asserted[0].LastAuthor)
	assert.Equal(t, "alice", asserted[0].OriginalAuthor)
}

func TestLedger_Overlay(t *testing.T) {
	base := Ledger{0: {LastAuthor: "alice"}, 1: {LastAuthor: "alice"}}
	out := base.Overlay(Ledger{1: {LastAuthor: "bob"}, 2: {LastAuthor: "bob"}})
	assert.Equal(t, Ledger{0: {LastAuthor: "alice"}, 1: {LastAuthor: "bob"}, 2: {LastAuthor: "bob"}}, out)
	assert.Equal(t, "alice", base[1].LastAuthor)
	assert.True(t, base.Overlay(nil).Equal(base))
}

func TestParseFragment(t *testing.T) {
	frag, err := ParseFragment(nil)
	require.NoError(t, err)
	assert.Nil(t, frag)

	frag, err = ParseFragment(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, frag)

	frag, err = ParseFragment(json.RawMessage(`{"0":{"username":"a","timestamp":"t","action":"added","line":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, "a", frag["0"].Username)

	_, err = ParseFragment(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}
