package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gunagantinikhil/code-cast1/internal/diff"
	"github.com/gunagantinikhil/code-cast1/internal/domain"
)

// Narrate turns a classified edit into at most one activity.
//
// Deletions win over modifications, which win over insertions; an edit that touched only
// blank lines yields nil. prevLines and prior are the document and ledger as they were
// before the edit, and are used to name whose code was deleted or modified.
func Narrate(c diff.Changes, prevLines []string, prior domain.Ledger, username, timestamp string) *domain.ActivityEvent {
	switch {
	case len(c.Deleted) > 0:
		removed := make([]string, 0, len(c.Deleted))
		for _, idx := range c.Deleted {
			if idx >= 0 && idx < len(prevLines) {
				removed = append(removed, prevLines[idx])
			}
		}
		return &domain.ActivityEvent{
			Username:     username,
			Action:       fmt.Sprintf("deleted %s code in %s", ownerOf(c.Deleted, prior), lineList(c.Deleted)),
			Timestamp:    timestamp,
			CodeSnippet:  domain.TruncateSnippet(strings.Join(removed, "\n")),
			DeletedLines: append([]int(nil), c.Deleted...),
		}
	case len(c.Modified) > 0:
		return &domain.ActivityEvent{
			Username:  username,
			Action:    fmt.Sprintf("modified %s code in %s", ownerOf(c.Modified, prior), lineList(c.Modified)),
			Timestamp: timestamp,
		}
	case len(c.Added) > 0:
		return &domain.ActivityEvent{
			Username:  username,
			Action:    "entered code in " + lineList(c.Added),
			Timestamp: timestamp,
		}
	}
	return nil
}

// ownerOf names the single prior author of the given lines in possessive form, or "others'"
// when the lines have several authors or none on record.
func ownerOf(indices []int, prior domain.Ledger) string {
	authors := make(map[string]struct{})
	var last string
	for _, idx := range indices {
		entry, ok := prior[idx]
		if !ok || entry.Author() == "" {
			continue
		}
		last = entry.Author()
		authors[last] = struct{}{}
	}
	if len(authors) == 1 {
		return last + "'s"
	}
	return "others'"
}

// lineList renders 0-based indices as "line 3" or "lines 1, 4, 5".
func lineList(indices []int) string {
	if len(indices) == 1 {
		return "line " + strconv.Itoa(indices[0]+1)
	}
	nums := make([]string, len(indices))
	for i, idx := range indices {
		nums[i] = strconv.Itoa(idx + 1)
	}
	return "lines " + strings.Join(nums, ", ")
}
