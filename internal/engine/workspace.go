package engine

import (
	"context"
	"math/rand"
	"time"

	"notedeck/internal/model"
)

// Persister is the persistence collaborator. The engine treats every call as
// a black box; any error is a recoverable failure and the optimistic
// in-memory state is kept.
type Persister interface {
	CreateNote(ctx context.Context, n *model.Note) error
	UpdateNote(ctx context.Context, n *model.Note) error
	DeleteNote(ctx context.Context, id string) error

	CreateFolder(ctx context.Context, f *model.Folder) error
	UpdateFolder(ctx context.Context, f *model.Folder) error
	DeleteFolder(ctx context.Context, id string) error

	SetFolderPassword(ctx context.Context, folderID, newHash, oldHash string) error
	SetFolderCollaborators(ctx context.Context, folderID string, ids []string) error
}

// Notifier receives transient user-visible notices (persistence failures,
// side-effect warnings). No notice is ever silently swallowed.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Hasher is the one-way password hash collaborator: deterministic and
// collision-resistant for short strings. Hashes, never plaintexts, are
// stored and compared.
type Hasher func(plaintext string) string

// Workspace owns the in-memory note/folder forest and applies every engine
// operation to it. It is driven by a single logical thread: operations run to
// completion before the next one starts, and the collections are never shared
// across goroutines.
type Workspace struct {
	notes   []*model.Note
	folders []*model.Folder

	persist Persister
	notify  Notifier
	hash    Hasher

	gate *gate

	// randCoord seeds mindmap canvas positions; injectable for tests.
	randCoord func() (x, y float64)
	now       func() time.Time
}

type Option func(*Workspace)

func WithNotifier(n Notifier) Option   { return func(w *Workspace) { w.notify = n } }
func WithHasher(h Hasher) Option       { return func(w *Workspace) { w.hash = h } }
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithCanvasSeed overrides the mindmap coordinate source.
func WithCanvasSeed(f func() (x, y float64)) Option {
	return func(w *Workspace) { w.randCoord = f }
}

func New(p Persister, opts ...Option) *Workspace {
	w := &Workspace{
		persist:   p,
		notify:    NotifierFunc(func(string) {}),
		hash:      HashPassword,
		randCoord: randomCanvasCoord,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func randomCanvasCoord() (float64, float64) {
	// Pixel-space seed position inside a comfortable canvas window; distinct
	// from the ordering-key semantics of y everywhere else.
	return 40 + rand.Float64()*800, 40 + rand.Float64()*560
}

// Load replaces the in-memory collections, typically with the result of
// store.LoadAll at startup.
func (w *Workspace) Load(notes []*model.Note, folders []*model.Folder) {
	w.notes = notes
	w.folders = folders
}

func (w *Workspace) FindNote(id string) (*model.Note, bool) {
	for _, n := range w.notes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

func (w *Workspace) FindFolder(id string) (*model.Folder, bool) {
	if id == model.RootFolderID {
		return nil, false
	}
	for _, f := range w.folders {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// Notes returns the display-sorted notes directly inside folderID (or at the
// root when folderID is the root sentinel).
func (w *Workspace) Notes(folderID string) []*model.Note {
	var out []*model.Note
	for _, n := range w.notes {
		if n.ParentID == folderID {
			out = append(out, n)
		}
	}
	SortNotes(out)
	return out
}

// AllNotes returns every note in the workspace regardless of parent, for
// cross-folder scans like hashtag search.
func (w *Workspace) AllNotes() []*model.Note {
	out := make([]*model.Note, len(w.notes))
	copy(out, w.notes)
	return out
}

// Subfolders returns the display-sorted folders directly inside parentID.
// System folders are excluded from every listing; shared folders are excluded
// from the root listing (they are surfaced by SharedFolders instead).
func (w *Workspace) Subfolders(parentID string) []*model.Folder {
	var out []*model.Folder
	for _, f := range w.folders {
		if f.ParentID != parentID || f.Type == model.FolderTypeSystem {
			continue
		}
		if parentID == model.RootFolderID && f.Shared() {
			continue
		}
		out = append(out, f)
	}
	SortFolders(out)
	return out
}

// SharedFolders returns every folder with collaborators, sorted by name
// (shared folders have no ordering key).
func (w *Workspace) SharedFolders() []*model.Folder {
	var out []*model.Folder
	for _, f := range w.folders {
		if f.Shared() && f.Type != model.FolderTypeSystem {
			out = append(out, f)
		}
	}
	SortFolders(out)
	return out
}

// AddNote creates a note at the top of folderID's listing.
func (w *Workspace) AddNote(ctx context.Context, folderID, title, text string) (*model.Note, error) {
	if folderID != model.RootFolderID {
		if _, ok := w.FindFolder(folderID); !ok {
			return nil, errNotFound("folder", folderID)
		}
	}
	y := NextRank(noteRanks(w.Notes(folderID)))
	now := w.now()
	n := &model.Note{
		ID:        model.NewNoteID(),
		ParentID:  folderID,
		Title:     title,
		Text:      text,
		Y:         &y,
		CreatedAt: now,
		UpdatedAt: now,
	}
	w.notes = append(w.notes, n)
	err := w.wrapPersist("note", w.persist.CreateNote(ctx, n))
	w.recomputeChain(ctx, folderID)
	return n, err
}

// AddFolder creates a folder at the top of parentID's listing. Mindmap
// folders never contain child folders, so parenting under one is rejected.
func (w *Workspace) AddFolder(ctx context.Context, parentID, name string, typ model.FolderType) (*model.Folder, error) {
	if parentID != model.RootFolderID {
		parent, ok := w.FindFolder(parentID)
		if !ok {
			return nil, errNotFound("folder", parentID)
		}
		if parent.Type == model.FolderTypeMindmap {
			return nil, ErrUnsupportedTarget
		}
	}
	y := NextRank(folderRanks(w.Subfolders(parentID)))
	now := w.now()
	f := &model.Folder{
		ID:        model.NewFolderID(),
		Name:      name,
		ParentID:  parentID,
		Type:      typ,
		Y:         &y,
		CreatedAt: now,
		UpdatedAt: now,
	}
	w.folders = append(w.folders, f)
	err := w.wrapPersist("folder", w.persist.CreateFolder(ctx, f))
	if typ == model.FolderTypeCalc {
		w.recomputeChain(ctx, parentID)
	}
	return f, err
}

// UpdateNote persists an already-mutated note and recomputes any calc
// ancestors. Callers mutate the note returned by FindNote, then call this.
func (w *Workspace) UpdateNote(ctx context.Context, n *model.Note) error {
	n.UpdatedAt = w.now()
	err := w.wrapPersist("note", w.persist.UpdateNote(ctx, n))
	w.recomputeChain(ctx, n.ParentID)
	return err
}

// UpdateFolder persists an already-mutated folder.
func (w *Workspace) UpdateFolder(ctx context.Context, f *model.Folder) error {
	f.UpdatedAt = w.now()
	err := w.wrapPersist("folder", w.persist.UpdateFolder(ctx, f))
	if f.Type == model.FolderTypeCalc {
		w.recomputeChain(ctx, f.ParentID)
	}
	return err
}

// DeleteNote removes the note from the in-memory set and persistence.
// Cascade semantics beyond the node itself belong to the store.
func (w *Workspace) DeleteNote(ctx context.Context, id string) error {
	n, ok := w.FindNote(id)
	if !ok {
		return errNotFound("note", id)
	}
	parentID := n.ParentID
	w.notes = deleteNoteByID(w.notes, id)
	err := w.wrapPersist("note", w.persist.DeleteNote(ctx, id))
	w.recomputeChain(ctx, parentID)
	return err
}

// DeleteFolder removes the folder node itself; the store owns any cascade.
func (w *Workspace) DeleteFolder(ctx context.Context, id string) error {
	f, ok := w.FindFolder(id)
	if !ok {
		return errNotFound("folder", id)
	}
	parentID := f.ParentID
	wasCalc := f.Type == model.FolderTypeCalc
	w.folders = deleteFolderByID(w.folders, id)
	err := w.wrapPersist("folder", w.persist.DeleteFolder(ctx, id))
	if wasCalc {
		w.recomputeChain(ctx, parentID)
	}
	return err
}

func deleteNoteByID(notes []*model.Note, id string) []*model.Note {
	out := notes[:0]
	for _, n := range notes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func deleteFolderByID(folders []*model.Folder, id string) []*model.Folder {
	out := folders[:0]
	for _, f := range folders {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

// wrapPersist applies the optimistic-update policy: a collaborator failure is
// wrapped, surfaced as a notice, and returned, but the in-memory mutation
// stands and is never retried.
func (w *Workspace) wrapPersist(op string, err error) error {
	if err == nil {
		return nil
	}
	perr := &PersistError{Op: op, Err: err}
	w.notify.Notify(perr.Error())
	return perr
}
