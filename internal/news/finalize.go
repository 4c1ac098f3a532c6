package news

import (
	"slices"
	"strings"
)

// Finalize removes duplicate records, keeping the first one seen, and orders
// the rest newest first. Records with the same date are ordered by section
// (case-insensitive) and then keep their input order. Undated records sort last.
func Finalize(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	slices.SortStableFunc(out, compareRecords)
	return out
}

func compareRecords(a, b Record) int {
	switch {
	case a.PublishedAt == nil && b.PublishedAt == nil:
	case a.PublishedAt == nil:
		return 1
	case b.PublishedAt == nil:
		return -1
	default:
		// descending
		if c := b.PublishedAt.Compare(*a.PublishedAt); c != 0 {
			return c
		}
	}
	return strings.Compare(strings.ToLower(a.Section), strings.ToLower(b.Section))
}
