package retention

import (
	"sort"
	"time"
)

// EvaluateDirectory applies the age and count stages to one directory's
// snapshot. Each stage operates on the survivors of the previous one, so a
// file selected by the age stage is never double-counted by the count stage.
// The returned survivors feed the global size stage via EvaluateSize.
//
// The evaluation never touches the filesystem: re-running it on the same
// snapshot yields the same decisions in the same order.
func EvaluateDirectory(records []FileRecord, now time.Time, maxAge time.Duration, maxFiles int) ([]Decision, []FileRecord) {
	if len(records) == 0 {
		return nil, nil
	}

	var decisions []Decision
	survivors := make([]FileRecord, 0, len(records))

	if maxAge > 0 {
		cutoff := now.Add(-maxAge)
		for _, rec := range records {
			// now - mtime >= maxAge, i.e. mtime <= now - maxAge.
			if !rec.ModTime.After(cutoff) {
				decisions = append(decisions, Decision{File: rec, Reason: ReasonExpired})
				continue
			}
			survivors = append(survivors, rec)
		}
	} else {
		survivors = append(survivors, records...)
	}

	if maxFiles > 0 && len(survivors) > maxFiles {
		sortOldestFirst(survivors)
		overflow := len(survivors) - maxFiles
		for _, rec := range survivors[:overflow] {
			decisions = append(decisions, Decision{File: rec, Reason: ReasonCountOverflow})
		}
		survivors = survivors[overflow:]
	}

	return decisions, survivors
}

// EvaluateSize applies the aggregate disk size stage across the union of all
// monitored directories' survivors. Files are evicted globally oldest first
// until the retained total is at or below maxBytes or no files remain.
func EvaluateSize(survivors []FileRecord, maxBytes int64) []Decision {
	if maxBytes <= 0 || len(survivors) == 0 {
		return nil
	}

	var total int64
	for _, rec := range survivors {
		total += rec.Size
	}
	if total <= maxBytes {
		return nil
	}

	ordered := make([]FileRecord, len(survivors))
	copy(ordered, survivors)
	sortOldestFirst(ordered)

	var decisions []Decision
	for _, rec := range ordered {
		if total <= maxBytes {
			break
		}
		decisions = append(decisions, Decision{File: rec, Reason: ReasonSizeOverflow})
		total -= rec.Size
	}
	return decisions
}

// sortOldestFirst orders records by modification time ascending, breaking
// identical timestamps by path so evaluation stays deterministic.
func sortOldestFirst(records []FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].ModTime.Equal(records[j].ModTime) {
			return records[i].Path < records[j].Path
		}
		return records[i].ModTime.Before(records[j].ModTime)
	})
}
