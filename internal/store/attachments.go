package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"notedeck/internal/model"
)

// Attachments is a blob store for note attachments, keyed by attachment id.
// The engine only tracks the references; the bytes live here.
type Attachments struct {
	d *diskv.Diskv
}

// OpenAttachments opens the attachment tree under dir. Blobs are sharded by
// the first hex pair of the id to keep directories small.
func OpenAttachments(dir string) *Attachments {
	return &Attachments{d: diskv.New(diskv.Options{
		BasePath:          filepath.Join(dir, "attachments"),
		AdvancedTransform: attachmentKeyToPath,
		InverseTransform:  attachmentPathToKey,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func attachmentKeyToPath(key string) *diskv.PathKey {
	shard := "00"
	if raw := strings.TrimPrefix(key, "att-"); len(raw) >= 2 {
		shard = raw[:2]
	}
	return &diskv.PathKey{Path: []string{shard}, FileName: key}
}

func attachmentPathToKey(pk *diskv.PathKey) string {
	return pk.FileName
}

// Put stores blob bytes and returns the reference to hang off a note.
func (a *Attachments) Put(kind model.AttachmentKind, name string, data []byte) (model.Attachment, error) {
	att := model.Attachment{
		ID:   model.NewAttachmentID(),
		Kind: kind,
		Name: name,
	}
	if err := a.d.Write(att.ID, data); err != nil {
		return model.Attachment{}, fmt.Errorf("write attachment: %w", err)
	}
	return att, nil
}

func (a *Attachments) Read(id string) ([]byte, error) {
	b, err := a.d.Read(id)
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", id, err)
	}
	return b, nil
}

func (a *Attachments) Delete(id string) error {
	if err := a.d.Erase(id); err != nil {
		return fmt.Errorf("delete attachment %s: %w", id, err)
	}
	return nil
}
