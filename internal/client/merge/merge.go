// Package merge reconciles the local journal with a remote copy using
// last-write-wins per entry id.
package merge

import "github.com/dmitrijs2005/dailyreflect/internal/models"

// Merge combines local and remote collections.
//
// Local entries are kept unless the remote entry with the same id is
// strictly newer (models.Newer); on a tie the local copy wins. Remote
// entries whose id is in tombstones were deleted locally and are dropped.
// Entries taken from remote are marked synced. The result is sorted with
// models.SortReflections, so merging its output again with the same remote
// yields the same collection.
func Merge(local, remote []models.Reflection, tombstones []string) []models.Reflection {
	deleted := make(map[string]struct{}, len(tombstones))
	for _, id := range tombstones {
		deleted[id] = struct{}{}
	}

	byID := make(map[string]models.Reflection, len(local)+len(remote))
	order := make([]string, 0, len(local)+len(remote))
	for _, e := range local {
		if _, ok := byID[e.ID]; ok {
			continue
		}
		byID[e.ID] = e
		order = append(order, e.ID)
	}

	for _, r := range remote {
		if _, ok := deleted[r.ID]; ok {
			continue
		}
		cur, ok := byID[r.ID]
		if ok && !models.Newer(r, cur) {
			continue
		}
		if !ok {
			order = append(order, r.ID)
		}
		r.Synced = true
		byID[r.ID] = r
	}

	out := make([]models.Reflection, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	models.SortReflections(out)
	return out
}

// Unsynced returns the entries that still need a remote write. Entries owned
// by a different user are never pushed.
func Unsynced(entries []models.Reflection, userID string) []models.Reflection {
	var out []models.Reflection
	for _, e := range entries {
		if e.Synced {
			continue
		}
		if e.UserID != "" && e.UserID != userID {
			continue
		}
		e.UserID = userID
		out = append(out, e)
	}
	return out
}
