package engine

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"notedeck/internal/model"
)

// rankStep is the gap left above the current maximum when a new item is
// ranked, so inserts never force renumbering of existing siblings.
const rankStep = 100

// The engine is single-threaded by design (one operation runs to completion
// at a time), so a shared collator is fine.
var nameCollator = collate.New(language.Und, collate.IgnoreCase, collate.Numeric)

// compareRank orders two items for display: numeric y descending, nil y after
// any numeric y, and a case-insensitive name comparison when both are nil.
// Returns <0 when a sorts before b.
func compareRank(ya, yb *float64, nameA, nameB string) int {
	switch {
	case ya != nil && yb != nil:
		if *ya > *yb {
			return -1
		}
		if *ya < *yb {
			return 1
		}
		return 0
	case ya != nil:
		return -1
	case yb != nil:
		return 1
	default:
		return nameCollator.CompareString(nameA, nameB)
	}
}

// SortNotes sorts notes in display order (stable, descending by y).
func SortNotes(notes []*model.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return compareRank(notes[i].Y, notes[j].Y, notes[i].Title, notes[j].Title) < 0
	})
}

// SortFolders sorts folders in display order (stable, descending by y).
func SortFolders(folders []*model.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		return compareRank(folders[i].Y, folders[j].Y, folders[i].Name, folders[j].Name) < 0
	})
}

// NextRank returns a ranking key strictly above every given key:
// max(y)+rankStep, where the max of an empty or all-nil set is 0.
func NextRank(ys []*float64) float64 {
	max := 0.0
	for _, y := range ys {
		if y != nil && *y > max {
			max = *y
		}
	}
	return max + rankStep
}

func noteRanks(notes []*model.Note) []*float64 {
	ys := make([]*float64, 0, len(notes))
	for _, n := range notes {
		ys = append(ys, n.Y)
	}
	return ys
}

func folderRanks(folders []*model.Folder) []*float64 {
	ys := make([]*float64, 0, len(folders))
	for _, f := range folders {
		ys = append(ys, f.Y)
	}
	return ys
}

// ReorderResult describes the rank updates needed to realize an index-based
// reorder. YByID includes only items whose y actually changed, bounding write
// amplification on large sibling lists.
type ReorderResult struct {
	YByID map[string]float64
}

// planReorder takes the display-sorted sibling ids with their current ranks,
// removes the item at from, reinserts it at to, and assigns the resulting
// list strictly decreasing ranks (count-index+rankStep). Items whose rank is
// unchanged are omitted from the result.
func planReorder(ids []string, ys []*float64, from, to int) (ReorderResult, error) {
	if len(ids) != len(ys) {
		return ReorderResult{}, errors.New("ids and ranks length mismatch")
	}
	n := len(ids)
	if from < 0 || from >= n {
		return ReorderResult{}, errors.New("reorder source index out of range")
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}

	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != from {
			order = append(order, i)
		}
	}
	order = append(order[:to], append([]int{from}, order[to:]...)...)

	res := ReorderResult{YByID: map[string]float64{}}
	for pos, idx := range order {
		want := float64(n-pos) + rankStep
		if ys[idx] != nil && *ys[idx] == want {
			continue
		}
		res.YByID[ids[idx]] = want
	}
	return res, nil
}

// ReorderNotes moves the note at index from (in the folder's display-sorted
// listing) to index to and persists the changed ranks. The in-memory order is
// final once this returns, even if persistence fails.
func (w *Workspace) ReorderNotes(ctx context.Context, folderID string, from, to int) error {
	notes := w.Notes(folderID)
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	plan, err := planReorder(ids, noteRanks(notes), from, to)
	if err != nil {
		return err
	}

	var firstErr error
	for _, n := range notes {
		y, ok := plan.YByID[n.ID]
		if !ok {
			continue
		}
		yy := y
		n.Y = &yy
		n.UpdatedAt = w.now()
		if err := w.wrapPersist("note", w.persist.UpdateNote(ctx, n)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReorderFolders is ReorderNotes for a folder's subfolder listing (or the
// root listing when parentID is the root sentinel).
func (w *Workspace) ReorderFolders(ctx context.Context, parentID string, from, to int) error {
	folders := w.Subfolders(parentID)
	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	plan, err := planReorder(ids, folderRanks(folders), from, to)
	if err != nil {
		return err
	}

	var firstErr error
	for _, f := range folders {
		y, ok := plan.YByID[f.ID]
		if !ok {
			continue
		}
		yy := y
		f.Y = &yy
		f.UpdatedAt = w.now()
		if err := w.wrapPersist("folder", w.persist.UpdateFolder(ctx, f)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
