package engine

import (
	"context"
	"testing"

	"notedeck/internal/model"
)

func calcFolder(id, parentID string, m model.CalcMethod) *model.Folder {
	f := folder(id, parentID, model.FolderTypeCalc, fnum(100))
	f.CalcMethod = m
	return f
}

func taggedNote(id, parentID string, value float64, crossedOut bool) *model.Note {
	n := note(id, parentID, fnum(100))
	n.CalcNumber = value
	n.HasCalcNumber = true
	n.CrossedOut = crossedOut
	return n
}

func TestRecompute_SumExcludesCrossedOutAndAddsNestedFolders(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcSum})
	nested := calcFolder("nested", "parent", model.CalcMethod{Kind: model.CalcSum})
	nested.CalcNumber = 3
	w.Load([]*model.Note{
		taggedNote("n1", "parent", 5, false),
		taggedNote("n2", "parent", 10, true), // crossed out: excluded
	}, []*model.Folder{parent, nested})

	got, err := w.Recompute(context.Background(), "parent")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got != 8 {
		t.Fatalf("sum = %v; want 8 (5 + nested 3, crossed-out 10 excluded)", got)
	}
}

func TestRecompute_SumEmptyIsZero(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	w.Load(nil, []*model.Folder{calcFolder("c", model.RootFolderID, model.CalcMethod{Kind: model.CalcSum})})

	got, err := w.Recompute(context.Background(), "c")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got != 0 {
		t.Fatalf("empty sum = %v; want 0", got)
	}
}

func TestRecompute_AverageNotesOnly(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcAverage})
	nested := calcFolder("nested", "parent", model.CalcMethod{Kind: model.CalcSum})
	nested.CalcNumber = 100 // nested folders are not part of averaging
	w.Load([]*model.Note{
		taggedNote("n1", "parent", 2, false),
		taggedNote("n2", "parent", 4, false),
		taggedNote("n3", "parent", 6, false),
	}, []*model.Folder{parent, nested})

	got, err := w.Recompute(context.Background(), "parent")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got != 4 {
		t.Fatalf("average = %v; want 4", got)
	}
}

func TestRecompute_AverageEmptyIsZero(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcAverage})
	w.Load([]*model.Note{
		taggedNote("n1", "parent", 9, true), // crossed out: no eligible notes remain
	}, []*model.Folder{parent})

	got, err := w.Recompute(context.Background(), "parent")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got != 0 {
		t.Fatalf("empty average = %v; want 0", got)
	}
}

func TestRecompute_AverageRoundsToTwoDecimals(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcAverage})
	w.Load([]*model.Note{
		taggedNote("n1", "parent", 1, false),
		taggedNote("n2", "parent", 1, false),
		taggedNote("n3", "parent", 0, false),
	}, []*model.Folder{parent})

	got, err := w.Recompute(context.Background(), "parent")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got != 0.67 {
		t.Fatalf("average = %v; want 0.67", got)
	}
}

func TestRecompute_PercentageWithParameter(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID,
		model.CalcMethod{Kind: model.CalcPercentage, Param: 50, HasParam: true})
	w.Load([]*model.Note{
		taggedNote("n1", "parent", 12, false),
		taggedNote("n2", "parent", 8, false),
	}, []*model.Folder{parent})

	got, err := w.Recompute(context.Background(), "parent")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got != 10 {
		t.Fatalf("percentage(50) over 20 = %v; want 10", got)
	}
}

func TestRecompute_PercentageDefaultsTo100(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcPercentage})
	w.Load([]*model.Note{taggedNote("n1", "parent", 20, false)}, []*model.Folder{parent})

	got, err := w.Recompute(context.Background(), "parent")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got != 20 {
		t.Fatalf("percentage(default) over 20 = %v; want 20", got)
	}
}

func TestGoalProgress(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	goal := calcFolder("goal", model.RootFolderID,
		model.CalcMethod{Kind: model.CalcGoal, Param: 50, HasParam: true})
	w.Load([]*model.Note{
		taggedNote("n1", "goal", 15, false),
		taggedNote("n2", "goal", 10, false),
	}, []*model.Folder{goal})

	if _, err := w.Recompute(context.Background(), "goal"); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	value, target, ok := w.GoalProgress("goal")
	if !ok {
		t.Fatal("expected goal progress")
	}
	if value != 25 || target != 50 {
		t.Fatalf("goal progress = (%v, %v); want (25, 50)", value, target)
	}
}

func TestEditNote_PropagatesThroughNestedCalcFolders(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	outer := calcFolder("outer", model.RootFolderID, model.CalcMethod{Kind: model.CalcSum})
	inner := calcFolder("inner", "outer", model.CalcMethod{Kind: model.CalcSum})
	n := taggedNote("n1", "inner", 5, false)
	w.Load([]*model.Note{n}, []*model.Folder{outer, inner})

	// Seed both levels.
	if _, err := w.Recompute(context.Background(), "inner"); err != nil {
		t.Fatalf("recompute inner: %v", err)
	}
	if _, err := w.Recompute(context.Background(), "outer"); err != nil {
		t.Fatalf("recompute outer: %v", err)
	}
	if inner.CalcNumber != 5 || outer.CalcNumber != 5 {
		t.Fatalf("seed values inner=%v outer=%v", inner.CalcNumber, outer.CalcNumber)
	}

	// Editing the note propagates one level at a time up to the outer sum.
	n.CalcNumber = 9
	if err := w.UpdateNote(context.Background(), n); err != nil {
		t.Fatalf("update note: %v", err)
	}
	if inner.CalcNumber != 9 {
		t.Fatalf("inner = %v; want 9", inner.CalcNumber)
	}
	if outer.CalcNumber != 9 {
		t.Fatalf("outer = %v; want 9 (value change did not propagate)", outer.CalcNumber)
	}
}

func TestCrossOutNote_TriggersRecompute(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcSum})
	n1 := taggedNote("n1", "parent", 5, false)
	n2 := taggedNote("n2", "parent", 10, false)
	w.Load([]*model.Note{n1, n2}, []*model.Folder{parent})

	if _, err := w.Recompute(context.Background(), "parent"); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if parent.CalcNumber != 15 {
		t.Fatalf("seed sum = %v; want 15", parent.CalcNumber)
	}

	n2.CrossedOut = true
	if err := w.UpdateNote(context.Background(), n2); err != nil {
		t.Fatalf("update: %v", err)
	}
	if parent.CalcNumber != 5 {
		t.Fatalf("sum after cross-out = %v; want 5", parent.CalcNumber)
	}
}

func TestSetCalcMethod_ReencodesAndRecomputes(t *testing.T) {
	t.Parallel()

	w, _, _ := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcSum})
	w.Load([]*model.Note{taggedNote("n1", "parent", 40, false)}, []*model.Folder{parent})

	m := model.CalcMethod{Kind: model.CalcPercentage, Param: 25, HasParam: true}
	if err := w.SetCalcMethod(context.Background(), "parent", m); err != nil {
		t.Fatalf("set method: %v", err)
	}
	if parent.CalcNumber != 10 {
		t.Fatalf("value after method change = %v; want 10", parent.CalcNumber)
	}
	if model.EncodeCalcMethod(parent.CalcMethod) != "percentage:25" {
		t.Fatalf("method encodes as %q", model.EncodeCalcMethod(parent.CalcMethod))
	}
}

func TestRecompute_PersistFailureKeepsLocalValue(t *testing.T) {
	t.Parallel()

	w, p, r := newTestWorkspace()
	parent := calcFolder("parent", model.RootFolderID, model.CalcMethod{Kind: model.CalcSum})
	w.Load([]*model.Note{taggedNote("n1", "parent", 5, false)}, []*model.Folder{parent})
	p.err = errBoom

	got, err := w.Recompute(context.Background(), "parent")
	if err == nil {
		t.Fatal("expected persistence failure to be reported")
	}
	if got != 5 || parent.CalcNumber != 5 {
		t.Fatalf("local recomputed value lost: got=%v folder=%v", got, parent.CalcNumber)
	}
	if len(r.notices) == 0 {
		t.Fatal("expected a transient notice")
	}
}
