package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notedeck/internal/model"
)

var errBoom = errors.New("storage unavailable")

// fakePersister records collaborator calls and can be made to fail, standing
// in for the remote persistence API.
type fakePersister struct {
	calls []string
	err   error
}

func (p *fakePersister) record(format string, args ...any) error {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
	return p.err
}

func (p *fakePersister) count(prefix string) int {
	n := 0
	for _, c := range p.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (p *fakePersister) CreateNote(_ context.Context, n *model.Note) error {
	return p.record("create-note:%s", n.ID)
}

func (p *fakePersister) UpdateNote(_ context.Context, n *model.Note) error {
	return p.record("update-note:%s", n.ID)
}

func (p *fakePersister) DeleteNote(_ context.Context, id string) error {
	return p.record("delete-note:%s", id)
}

func (p *fakePersister) CreateFolder(_ context.Context, f *model.Folder) error {
	return p.record("create-folder:%s", f.ID)
}

func (p *fakePersister) UpdateFolder(_ context.Context, f *model.Folder) error {
	return p.record("update-folder:%s", f.ID)
}

func (p *fakePersister) DeleteFolder(_ context.Context, id string) error {
	return p.record("delete-folder:%s", id)
}

func (p *fakePersister) SetFolderPassword(_ context.Context, folderID, newHash, oldHash string) error {
	return p.record("set-password:%s:%s", folderID, newHash)
}

func (p *fakePersister) SetFolderCollaborators(_ context.Context, folderID string, ids []string) error {
	return p.record("set-collaborators:%s:%d", folderID, len(ids))
}

type noticeRecorder struct {
	notices []string
}

func (r *noticeRecorder) Notify(msg string) { r.notices = append(r.notices, msg) }

func newTestWorkspace() (*Workspace, *fakePersister, *noticeRecorder) {
	p := &fakePersister{}
	r := &noticeRecorder{}
	w := New(p,
		WithNotifier(r),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
		WithCanvasSeed(func() (float64, float64) { return 120, 240 }),
	)
	return w, p, r
}

func fnum(v float64) *float64 { return &v }

func note(id, parentID string, y *float64) *model.Note {
	return &model.Note{ID: id, ParentID: parentID, Title: id, Y: y}
}

func folder(id, parentID string, typ model.FolderType, y *float64) *model.Folder {
	return &model.Folder{ID: id, Name: id, ParentID: parentID, Type: typ, Y: y}
}
