package skeleton

import (
	"sort"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

// resolveOverlaps sorts ranges ascending by start byte and drops any range
// that overlaps an already-kept one, preferring the later-starting (inner)
// range — spec §3 body-prune-range invariant, §4.B overlap policy.
func resolveOverlaps(ranges []driver.PruneRange) []driver.PruneRange {
	if len(ranges) < 2 {
		return ranges
	}
	sorted := make([]driver.PruneRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	kept := make([]driver.PruneRange, 0, len(sorted))
	for i := 0; i < len(sorted); i++ {
		cur := sorted[i]
		// Look ahead: if a later-starting range begins before cur ends,
		// that inner range wins and cur is dropped entirely.
		overlapped := false
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Start >= cur.End {
				break
			}
			overlapped = true
			break
		}
		if overlapped {
			continue
		}
		kept = append(kept, cur)
	}
	return kept
}

// applyRanges replaces every range in ranges (already overlap-resolved)
// with its replacement text, working in reverse byte order so earlier
// offsets stay valid as later (higher-offset) edits are applied first.
func applyRanges(source []byte, ranges []driver.PruneRange) []byte {
	if len(ranges) == 0 {
		return source
	}
	sorted := make([]driver.PruneRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	out := make([]byte, len(source))
	copy(out, source)
	for _, r := range sorted {
		if r.Start < 0 || r.End > len(out) || r.Start >= r.End {
			continue
		}
		var buf []byte
		buf = append(buf, out[:r.Start]...)
		buf = append(buf, r.Replacement...)
		buf = append(buf, out[r.End:]...)
		out = buf
	}
	return out
}
