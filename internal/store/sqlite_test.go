package store

import (
	"context"
	"testing"
	"time"

	"notedeck/internal/engine"
	"notedeck/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_FolderRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	y := 300.0
	f := &model.Folder{
		ID:           "fld-1",
		Name:         "Budget",
		ParentID:     model.RootFolderID,
		Type:         model.FolderTypeCalc,
		Y:            &y,
		Color:        "#aabbcc",
		Checklist:    true,
		PasswordHash: "deadbeef",
		CalcNumber:   42.5,
		CalcMethod:   model.CalcMethod{Kind: model.CalcPercentage, Param: 75, HasParam: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateFolder(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, folders, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("expected 1 folder; got %d", len(folders))
	}
	got := folders[0]
	if got.Name != "Budget" || got.Type != model.FolderTypeCalc || got.PasswordHash != "deadbeef" {
		t.Fatalf("folder fields lost: %+v", got)
	}
	if got.Y == nil || *got.Y != 300 {
		t.Fatalf("y = %v; want 300", got.Y)
	}
	if got.CalcNumber != 42.5 {
		t.Fatalf("calc_number = %v", got.CalcNumber)
	}
	// The method string decodes back into the tagged form.
	if got.CalcMethod.Kind != model.CalcPercentage || got.CalcMethod.Param != 75 {
		t.Fatalf("calc method = %+v", got.CalcMethod)
	}
}

func TestStore_NoteRoundTripWithAttachments(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	n := &model.Note{
		ID:            "note-1",
		ParentID:      model.RootFolderID,
		Title:         "groceries",
		Text:          "- [ ] milk #errands",
		CalcNumber:    9,
		HasCalcNumber: true,
		Attachments: []model.Attachment{
			{ID: "att-1", Kind: model.AttachmentVoice, Name: "memo.ogg"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateNote(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}

	notes, _, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note; got %d", len(notes))
	}
	got := notes[0]
	if got.Y != nil {
		t.Fatalf("expected null y to survive; got %v", *got.Y)
	}
	if !got.HasCalcNumber || got.CalcNumber != 9 {
		t.Fatalf("calc tag lost: %+v", got)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Kind != model.AttachmentVoice {
		t.Fatalf("attachments lost: %+v", got.Attachments)
	}

	// Untagged notes stay untagged after a round trip.
	n2 := &model.Note{ID: "note-2", ParentID: model.RootFolderID, Title: "plain", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateNote(ctx, n2); err != nil {
		t.Fatalf("create: %v", err)
	}
	notes, _, err = s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, got := range notes {
		if got.ID == "note-2" && got.HasCalcNumber {
			t.Fatal("untagged note came back tagged")
		}
	}
}

func TestStore_DeleteFolderCascadesDirectNotes(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	f := &model.Folder{ID: "fld-1", Name: "f", ParentID: model.RootFolderID, Type: model.FolderTypeStandard, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateFolder(ctx, f); err != nil {
		t.Fatalf("create folder: %v", err)
	}
	n := &model.Note{ID: "note-1", ParentID: "fld-1", Title: "inside", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateNote(ctx, n); err != nil {
		t.Fatalf("create note: %v", err)
	}

	if err := s.DeleteFolder(ctx, "fld-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	notes, folders, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(folders) != 0 || len(notes) != 0 {
		t.Fatalf("cascade incomplete: %d folders, %d notes", len(folders), len(notes))
	}
}

func TestStore_SetFolderPasswordAndCollaborators(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	y := 100.0
	f := &model.Folder{ID: "fld-1", Name: "f", ParentID: model.RootFolderID, Type: model.FolderTypeStandard, Y: &y, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateFolder(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.SetFolderPassword(ctx, "fld-1", "cafe01", ""); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := s.SetFolderCollaborators(ctx, "fld-1", []string{"user-2"}); err != nil {
		t.Fatalf("set collaborators: %v", err)
	}

	_, folders, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := folders[0]
	if got.PasswordHash != "cafe01" {
		t.Fatalf("password hash = %q", got.PasswordHash)
	}
	if len(got.CoWorkers) != 1 || got.CoWorkers[0] != "user-2" {
		t.Fatalf("co-workers = %v", got.CoWorkers)
	}
	// Sharing nulls the ordering coordinates at the storage layer too.
	if got.Y != nil || got.X != nil {
		t.Fatalf("shared folder kept coordinates: y=%v x=%v", got.Y, got.X)
	}

	if err := s.SetFolderPassword(ctx, "fld-missing", "x", ""); err == nil {
		t.Fatal("expected error for unknown folder")
	}
}

func TestStore_UnsharedFolderRankSurvivesReload(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	y := 100.0
	f := &model.Folder{ID: "fld-1", Name: "Team", ParentID: model.RootFolderID, Type: model.FolderTypeStandard, Y: &y, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateFolder(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, folders, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := engine.New(s)
	w.Load(nil, folders)

	if err := w.SetCollaborators(ctx, "fld-1", []string{"user-2"}); err != nil {
		t.Fatalf("share: %v", err)
	}
	if err := w.SetCollaborators(ctx, "fld-1", nil); err != nil {
		t.Fatalf("unshare: %v", err)
	}

	// A fresh load must see the rank the unshare assigned, not a null y.
	_, folders, err = s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := folders[0]
	if len(got.CoWorkers) != 0 {
		t.Fatalf("co-workers survived unshare: %v", got.CoWorkers)
	}
	if got.Y == nil || *got.Y != 100 {
		t.Fatalf("rejoined rank lost across reload: y = %v; want 100", got.Y)
	}
}

func TestAttachments_RoundTrip(t *testing.T) {
	t.Parallel()

	a := OpenAttachments(t.TempDir())
	att, err := a.Put(model.AttachmentImage, "photo.png", []byte{0x89, 0x50, 0x4e, 0x47})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if att.ID == "" || att.Kind != model.AttachmentImage || att.Name != "photo.png" {
		t.Fatalf("attachment ref = %+v", att)
	}

	b, err := a.Read(att.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(b) != 4 || b[0] != 0x89 {
		t.Fatalf("blob bytes lost: %v", b)
	}

	if err := a.Delete(att.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := a.Read(att.ID); err == nil {
		t.Fatal("expected read after delete to fail")
	}
}
