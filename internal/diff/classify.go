package diff

// Changes is an edit classified into line sets. Deleted holds previous-snapshot indices,
// Added and Modified hold new-snapshot indices. All three are ascending and disjoint.
type Changes struct {
	Deleted  []int
	Added    []int
	Modified []int
}

// Empty reports whether the edit touched no non-blank line.
func (c Changes) Empty() bool {
	return len(c.Deleted) == 0 && len(c.Added) == 0 && len(c.Modified) == 0
}

// Classify derives deletions, insertions and modifications from an alignment.
//
// Unmatched non-blank previous lines are deletion candidates and unmatched non-blank new
// lines are insertion candidates; blank lines never count. An index that is a candidate on
// both sides is a modification at that index. This is purely positional: a line that moved
// shows up as a deletion at its old index and an insertion at its new one.
func Classify(prev, next []string, matches []Match) Changes {
	matchedPrev := make(map[int]struct{}, len(matches))
	matchedNext := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		matchedPrev[m.Prev] = struct{}{}
		matchedNext[m.Next] = struct{}{}
	}

	var deleted []int
	for i, line := range prev {
		if _, ok := matchedPrev[i]; !ok && !IsBlank(line) {
			deleted = append(deleted, i)
		}
	}
	added := make(map[int]struct{})
	for j, line := range next {
		if _, ok := matchedNext[j]; !ok && !IsBlank(line) {
			added[j] = struct{}{}
		}
	}

	var c Changes
	for _, idx := range deleted {
		if _, ok := added[idx]; ok {
			c.Modified = append(c.Modified, idx)
			delete(added, idx)
			continue
		}
		c.Deleted = append(c.Deleted, idx)
	}
	for j := range next {
		if _, ok := added[j]; ok {
			c.Added = append(c.Added, j)
		}
	}
	return c
}
