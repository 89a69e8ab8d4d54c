package engine

import (
	"context"

	"notedeck/internal/model"
)

// organizerSubfolderName is the name given to the subfolder synthesized when
// a note is dropped onto an Organizer that has no child folders yet.
const organizerSubfolderName = "Unsorted"

// MoveNote reparents a note into targetFolderID (or the root sentinel).
//
// Target-type rules:
//   - Organizer folders never hold notes directly: the note lands in the
//     organizer's first child folder by listing order, or in a freshly
//     synthesized Standard subfolder when none exists. The subfolder is
//     created (and persisted) before the note's reparent is persisted, so no
//     state ever references a nonexistent folder.
//   - Mindmap folders place the note at a random pixel-space canvas position.
//   - Everything else is a direct reparent.
func (w *Workspace) MoveNote(ctx context.Context, noteID, targetFolderID string) error {
	n, ok := w.FindNote(noteID)
	if !ok {
		return errNotFound("note", noteID)
	}

	sourceID := n.ParentID

	if targetFolderID == model.RootFolderID {
		n.ParentID = model.RootFolderID
		y := NextRank(noteRanks(w.Notes(model.RootFolderID)))
		n.Y = &y
		n.X = nil
		return w.finishNoteMove(ctx, n, sourceID)
	}

	target, ok := w.FindFolder(targetFolderID)
	if !ok {
		return errNotFound("folder", targetFolderID)
	}

	switch target.Type {
	case model.FolderTypeOrganizer:
		dest := target
		children := w.Subfolders(target.ID)
		if len(children) > 0 {
			dest = children[0]
		} else {
			sub, err := w.AddFolder(ctx, target.ID, organizerSubfolderName, model.FolderTypeStandard)
			if err != nil {
				// The subfolder may exist only in memory; moving the note
				// into it now could persist a dangling parent reference.
				return err
			}
			dest = sub
		}
		n.ParentID = dest.ID
		y := NextRank(noteRanks(w.Notes(dest.ID)))
		n.Y = &y
		n.X = nil

	case model.FolderTypeMindmap:
		// Canvas coordinates, not ordering keys.
		x, y := w.randCoord()
		n.ParentID = target.ID
		n.X = &x
		n.Y = &y

	default:
		n.ParentID = target.ID
		y := NextRank(noteRanks(w.Notes(target.ID)))
		n.Y = &y
		n.X = nil
	}

	return w.finishNoteMove(ctx, n, sourceID)
}

func (w *Workspace) finishNoteMove(ctx context.Context, n *model.Note, sourceID string) error {
	n.UpdatedAt = w.now()
	err := w.wrapPersist("note", w.persist.UpdateNote(ctx, n))
	// Both ends of the move can sit under a calc folder.
	w.recomputeChain(ctx, sourceID)
	w.recomputeChain(ctx, n.ParentID)
	return err
}

// MoveFolder reparents a folder under targetFolderID (or back to the root).
// Self-moves and moves into the folder's own descendants are rejected as
// InvalidMove; Mindmap folders never accept child folders.
func (w *Workspace) MoveFolder(ctx context.Context, folderID, targetFolderID string) error {
	f, ok := w.FindFolder(folderID)
	if !ok {
		return errNotFound("folder", folderID)
	}

	sourceID := f.ParentID

	if targetFolderID != model.RootFolderID {
		if folderID == targetFolderID {
			return ErrInvalidMove
		}
		target, ok := w.FindFolder(targetFolderID)
		if !ok {
			return errNotFound("folder", targetFolderID)
		}
		if target.Type == model.FolderTypeMindmap {
			return ErrUnsupportedTarget
		}
		if w.isDescendant(targetFolderID, folderID) {
			return ErrInvalidMove
		}
	} else if f.ParentID == model.RootFolderID {
		// Already at the root; nothing to do.
		return nil
	}

	f.ParentID = targetFolderID
	if !f.Shared() {
		y := NextRank(folderRanks(w.Subfolders(targetFolderID)))
		f.Y = &y
	}
	f.UpdatedAt = w.now()
	err := w.wrapPersist("folder", w.persist.UpdateFolder(ctx, f))

	if f.Type == model.FolderTypeCalc {
		w.recomputeChain(ctx, sourceID)
		w.recomputeChain(ctx, targetFolderID)
	}
	return err
}

// isDescendant reports whether id sits somewhere under ancestorID. The walk
// is bounded by the folder count so a corrupted parent chain cannot loop.
func (w *Workspace) isDescendant(id, ancestorID string) bool {
	cur := id
	for steps := 0; steps <= len(w.folders); steps++ {
		f, ok := w.FindFolder(cur)
		if !ok {
			return false
		}
		if f.ParentID == ancestorID {
			return true
		}
		cur = f.ParentID
	}
	return false
}
