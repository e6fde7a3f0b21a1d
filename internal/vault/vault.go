// Package vault stores snapshot archives off-site.
package vault

import "sort"

// sortNewestFirst orders archive names by recency. Names are timestamp
// prefixed, so reverse lexicographic order is newest first.
func sortNewestFirst(names []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
}
