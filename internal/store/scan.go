package store

import (
	"sort"

	"github.com/blueberrycongee/redikv/internal/glob"
)

// scanPage slices a sorted, stable item list into one SCAN-style page
// starting at cursor, returning the next cursor (0 once exhausted) and the
// page contents. Cursor is a plain index into the sorted snapshot rather
// than Redis's reverse-binary bucket cursor — both satisfy the contract
// the spec actually requires (full coverage, cheap progress, safe to
// resume), and an index is what a from-scratch deterministic store can
// offer without mirroring Redis's internal hash table layout.
func scanPage(items []string, cursor int, count int) (int, []string) {
	if cursor < 0 || cursor >= len(items) {
		return 0, nil
	}
	end := cursor + count
	if end >= len(items) {
		return 0, items[cursor:]
	}
	return end, items[cursor:end]
}

// MatchGlobOrAll matches pattern against s, per internal/glob's
// Redis-compatible semantics.
func MatchGlobOrAll(pattern, s string) bool {
	return glob.Match(pattern, s)
}

// Scan implements the keyspace-wide SCAN command: cursor-based iteration
// with COUNT/MATCH/TYPE filtering over a sorted snapshot of live keys.
func (s *Store) Scan(cursor int, count int, match string, typeFilter string, nowMs int64) (int, []string) {
	keys := s.allLiveKeys(nowMs)
	sort.Strings(keys)
	if count <= 0 {
		count = 10
	}
	next, page := scanPage(keys, cursor, count)
	out := make([]string, 0, len(page))
	for _, k := range page {
		if match != "" && !MatchGlobOrAll(match, k) {
			continue
		}
		if typeFilter != "" {
			e := s.data[k]
			if e.Value.Kind.String() != typeFilter {
				continue
			}
		}
		out = append(out, k)
	}
	return next, out
}
