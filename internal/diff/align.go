// Package diff aligns two snapshots of a document line by line.
//
// Alignment is a longest common subsequence over whole lines, computed with a full
// dynamic-programming table: O(n*m) time and memory in the line counts of the two
// snapshots. There is no cut-off, so document size is the scaling limit of every edit.
package diff

import "strings"

// Match pairs a line of the previous snapshot with an identical line of the new one.
type Match struct {
	Prev int
	Next int
}

// SplitLines splits text on line feeds. An empty text is a single empty line.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// IsBlank reports whether a line is empty after trimming whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Align returns a longest common subsequence of prev and next as index pairs in ascending order.
// Lines match only when byte-for-byte equal.
//
// When several subsequences of the same length exist, the backtrack prefers stepping back on
// the prev side over the next side on ties. Clients rely on this choice for stable line
// numbers, so it must not change.
func Align(prev, next []string) []Match {
	n, m := len(prev), len(next)
	if n == 0 || m == 0 {
		return nil
	}

	width := m + 1
	dp := make([]int, (n+1)*width)
	for i := 1; i <= n; i++ {
		row := i * width
		up := (i - 1) * width
		for j := 1; j <= m; j++ {
			if prev[i-1] == next[j-1] {
				dp[row+j] = dp[up+j-1] + 1
			} else if dp[up+j] >= dp[row+j-1] {
				dp[row+j] = dp[up+j]
			} else {
				dp[row+j] = dp[row+j-1]
			}
		}
	}

	matches := make([]Match, 0, dp[n*width+m])
	i, j := n, m
	for i > 0 && j > 0 {
		switch {
		case prev[i-1] == next[j-1]:
			matches = append(matches, Match{Prev: i - 1, Next: j - 1})
			i--
			j--
		case dp[(i-1)*width+j] >= dp[i*width+j-1]:
			i--
		default:
			j--
		}
	}

	for l, r := 0, len(matches)-1; l < r; l, r = l+1, r-1 {
		matches[l], matches[r] = matches[r], matches[l]
	}
	return matches
}
