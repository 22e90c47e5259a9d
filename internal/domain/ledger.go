package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/gunagantinikhil/code-cast1/internal/diff"
)

// LineAction is the kind of the most recent change to a line.
type LineAction string

const (
	LineAdded    LineAction = "added"
	LineModified LineAction = "modified"
)

// Valid reports whether a is one of the known line actions.
func (a LineAction) Valid() bool {
	return a == LineAdded || a == LineModified
}

// LedgerEntry is the provenance of one line. Field names follow the wire contract:
// "username" is the last author, "line" is the line text.
type LedgerEntry struct {
	OriginalAuthor string     `json:"originalAuthor"`
	LastAuthor     string     `json:"username"`
	Timestamp      string     `json:"timestamp"`
	Action         LineAction `json:"action"`
	Line           string     `json:"line"`
}

// Author returns who the line is attributed to for narration purposes.
func (e LedgerEntry) Author() string {
	if e.OriginalAuthor != "" {
		return e.OriginalAuthor
	}
	return e.LastAuthor
}

// Ledger maps a 0-based line index to its provenance.
// encoding/json writes the keys as decimal strings ({"0": {...}}), which is what clients expect.
type Ledger map[int]LedgerEntry

// Clone returns a copy that can be mutated without affecting l.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for idx, entry := range l {
		out[idx] = entry
	}
	return out
}

// Equal reports whether both ledgers hold the same entries at the same indices.
func (l Ledger) Equal(other Ledger) bool {
	if len(l) != len(other) {
		return false
	}
	for idx, entry := range l {
		if o, ok := other[idx]; !ok || o != entry {
			return false
		}
	}
	return true
}

// FragmentEntry is one line of authorship asserted by a client for text it just typed.
type FragmentEntry struct {
	Username  string     `json:"username"`
	Timestamp string     `json:"timestamp"`
	Action    LineAction `json:"action"`
	Line      string     `json:"line"`
}

// LedgerFragment is a client-asserted partial ledger, keyed exactly as received.
type LedgerFragment map[string]FragmentEntry

// ParseFragment decodes the raw "authorship" field of an edit.
// An absent or null field yields a nil fragment and no error.
func ParseFragment(raw json.RawMessage) (LedgerFragment, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var frag LedgerFragment
	if err := json.Unmarshal(raw, &frag); err != nil {
		return nil, err
	}
	return frag, nil
}

// Merge resolves a client fragment against the edit it arrived with and returns the
// accepted entries, keyed by line of lines. l is the ledger of the previous document;
// matches and modified come from aligning that document with lines, so a line carried over
// or modified in place keeps its original author from l, and any other line is originated
// by the fragment's username.
// Entries whose key is not a line index inside lines, that point at a blank line, or that
// carry no username or an unknown action are skipped; their keys are returned sorted.
func (l Ledger) Merge(frag LedgerFragment, lines []string, matches []diff.Match, modified []int) (Ledger, []string) {
	prevOf := make(map[int]int, len(matches)+len(modified))
	for _, idx := range modified {
		prevOf[idx] = idx
	}
	for _, m := range matches {
		prevOf[m.Next] = m.Prev
	}

	asserted := make(Ledger, len(frag))
	var skipped []string
	for key, incoming := range frag {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(lines) ||
			diff.IsBlank(lines[idx]) || incoming.Username == "" || !incoming.Action.Valid() {
			skipped = append(skipped, key)
			continue
		}
		original := incoming.Username
		if prev, ok := prevOf[idx]; ok {
			if existing, ok := l[prev]; ok && existing.Author() != "" {
				original = existing.Author()
			}
		}
		asserted[idx] = LedgerEntry{
			OriginalAuthor: original,
			LastAuthor:     incoming.Username,
			Timestamp:      incoming.Timestamp,
			Action:         incoming.Action,
			Line:           lines[idx],
		}
	}
	sort.Strings(skipped)
	return asserted, skipped
}

// Overlay returns a copy of l with every entry of top written over it.
func (l Ledger) Overlay(top Ledger) Ledger {
	out := l.Clone()
	for idx, entry := range top {
		out[idx] = entry
	}
	return out
}

// Rebase realigns l (the ledger of the previous snapshot) onto newLines.
//
// Matched lines carry their entry across to the new index. Added lines are originated by
// username. Modified lines keep the previous original author at that index when there is
// one. Everything else, including entries of deleted lines, is dropped.
func (l Ledger) Rebase(matches []diff.Match, added, modified []int, newLines []string, username, timestamp string) Ledger {
	next := make(Ledger, len(newLines))
	inBounds := func(idx int) bool {
		return idx >= 0 && idx < len(newLines) && !diff.IsBlank(newLines[idx])
	}

	for _, m := range matches {
		prev, ok := l[m.Prev]
		if !ok || !inBounds(m.Next) {
			continue
		}
		if prev.OriginalAuthor == "" {
			prev.OriginalAuthor = prev.LastAuthor
		}
		prev.Line = newLines[m.Next]
		next[m.Next] = prev
	}

	for _, idx := range added {
		if !inBounds(idx) {
			continue
		}
		next[idx] = LedgerEntry{
			OriginalAuthor: username,
			LastAuthor:     username,
			Timestamp:      timestamp,
			Action:         LineAdded,
			Line:           newLines[idx],
		}
	}

	for _, idx := range modified {
		if !inBounds(idx) {
			continue
		}
		original := username
		if prev, ok := l[idx]; ok && prev.Author() != "" {
			original = prev.Author()
		}
		next[idx] = LedgerEntry{
			OriginalAuthor: original,
			LastAuthor:     username,
			Timestamp:      timestamp,
			Action:         LineModified,
			Line:           newLines[idx],
		}
	}
	return next
}
