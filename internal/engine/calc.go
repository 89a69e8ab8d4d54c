package engine

import (
	"context"
	"math"

	"notedeck/internal/model"
)

// computeCalcValue derives a calc folder's value from its direct children.
// Crossed-out notes and crossed-out nested calc folders are excluded from
// every method. Nested calc folders contribute their own CalcNumber, and only
// to sum; average, percentage and goal read notes alone.
func computeCalcValue(f *model.Folder, notes []*model.Note, subfolders []*model.Folder) float64 {
	var noteSum float64
	var noteCount int
	for _, n := range notes {
		if n.ParentID != f.ID || n.CrossedOut || !n.HasCalcNumber {
			continue
		}
		noteSum += n.CalcNumber
		noteCount++
	}

	switch f.CalcMethod.Kind {
	case model.CalcAverage:
		if noteCount == 0 {
			return 0
		}
		return round2(noteSum / float64(noteCount))
	case model.CalcPercentage:
		return round2(noteSum * f.CalcMethod.Parameter() / 100)
	case model.CalcGoal:
		return noteSum
	default:
		// sum, and the default for an unset method
		total := noteSum
		for _, sub := range subfolders {
			if sub.ParentID != f.ID || sub.Type != model.FolderTypeCalc || sub.CrossedOut {
				continue
			}
			total += sub.CalcNumber
		}
		return total
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recompute rederives folderID's calc value from the current child set and
// persists it together with the re-encoded method string. The recomputed
// value is kept locally even when persistence fails.
func (w *Workspace) Recompute(ctx context.Context, folderID string) (float64, error) {
	f, ok := w.FindFolder(folderID)
	if !ok {
		return 0, errNotFound("folder", folderID)
	}
	if f.Type != model.FolderTypeCalc {
		return 0, errNotFound("calc folder", folderID)
	}

	f.CalcNumber = computeCalcValue(f, w.notes, w.folders)
	f.UpdatedAt = w.now()
	err := w.wrapPersist("calc folder", w.persist.UpdateFolder(ctx, f))
	return f.CalcNumber, err
}

// SetCalcMethod changes a calc folder's aggregation method (and parameter)
// and recomputes immediately.
func (w *Workspace) SetCalcMethod(ctx context.Context, folderID string, m model.CalcMethod) error {
	f, ok := w.FindFolder(folderID)
	if !ok {
		return errNotFound("folder", folderID)
	}
	if f.Type != model.FolderTypeCalc {
		return errNotFound("calc folder", folderID)
	}
	f.CalcMethod = m
	_, err := w.Recompute(ctx, folderID)
	if err != nil {
		return err
	}
	w.recomputeChain(ctx, f.ParentID)
	return nil
}

// GoalProgress reports a goal folder's (value, target) pair for progress
// display. ok is false when the folder is not a goal calc folder.
func (w *Workspace) GoalProgress(folderID string) (value, target float64, ok bool) {
	f, found := w.FindFolder(folderID)
	if !found || f.Type != model.FolderTypeCalc || f.CalcMethod.Kind != model.CalcGoal {
		return 0, 0, false
	}
	return f.CalcNumber, f.CalcMethod.Parameter(), true
}

// recomputeChain recomputes folderID if it is a calc folder, then walks
// upward recomputing each calc parent in turn, so a nested value change
// propagates one level at a time. The walk is bounded by the folder count.
func (w *Workspace) recomputeChain(ctx context.Context, folderID string) {
	cur := folderID
	for steps := 0; steps <= len(w.folders); steps++ {
		f, ok := w.FindFolder(cur)
		if !ok {
			return
		}
		if f.Type != model.FolderTypeCalc {
			return
		}
		f.CalcNumber = computeCalcValue(f, w.notes, w.folders)
		f.UpdatedAt = w.now()
		// Failures surface as notices; the chain keeps the local values.
		_ = w.wrapPersist("calc folder", w.persist.UpdateFolder(ctx, f))
		cur = f.ParentID
	}
}
