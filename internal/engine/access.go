package engine

import (
	"context"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Intent records why a folder was locked: the deferred action to run once the
// gate opens.
type Intent int

const (
	IntentView Intent = iota
	IntentEdit
)

func (i Intent) String() string {
	if i == IntentEdit {
		return "edit"
	}
	return "view"
}

// HashPassword is the default Hasher: SHA3-256 hex. The gate compares hash
// strings byte-for-byte, so the hash must be deterministic; salting schemes
// do not fit here.
func HashPassword(plaintext string) string {
	sum := sha3.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// gate is the Locked half of the access state machine. A nil gate on the
// workspace means Unlocked.
type gate struct {
	folderID string
	intent   Intent
	deferred func()
}

// Open attempts to open folderID with the given intent. When the folder is
// unprotected the action runs immediately and locked is false. When a
// password guards it, the action is deferred, the gate transitions to
// Locked(folderID, intent), and locked is true; the caller collects a
// password and calls Unlock.
func (w *Workspace) Open(folderID string, intent Intent, action func()) (locked bool, err error) {
	f, ok := w.FindFolder(folderID)
	if !ok {
		return false, errNotFound("folder", folderID)
	}
	if f.PasswordHash == "" {
		if action != nil {
			action()
		}
		return false, nil
	}
	w.gate = &gate{folderID: folderID, intent: intent, deferred: action}
	return true, nil
}

// Locked reports the current lock, if any.
func (w *Workspace) Locked() (folderID string, intent Intent, ok bool) {
	if w.gate == nil {
		return "", 0, false
	}
	return w.gate.folderID, w.gate.intent, true
}

// Unlock submits a candidate password for the locked folder. On a match the
// gate opens and the deferred action runs exactly once. On a mismatch the
// gate stays locked and the attempt is discarded; nothing about the failed
// candidate is cached.
func (w *Workspace) Unlock(password string) error {
	if w.gate == nil {
		return ErrNotLocked
	}
	folderID := w.gate.folderID
	f, ok := w.FindFolder(folderID)
	if !ok {
		w.gate = nil
		return errNotFound("folder", folderID)
	}
	if !hashEqual(w.hash(password), f.PasswordHash) {
		return ErrIncorrectPassword
	}
	deferred := w.gate.deferred
	w.gate = nil
	if deferred != nil {
		deferred()
	}
	return nil
}

// CancelUnlock abandons the lock without running the deferred action.
func (w *Workspace) CancelUnlock() {
	w.gate = nil
}

func hashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// SetPassword sets or changes a folder's password. The current password must
// match before an update is accepted, except for a first-time set on a folder
// with zero collaborators. Folders with collaborators never carry a password.
func (w *Workspace) SetPassword(ctx context.Context, folderID, oldPassword, newPassword string) error {
	f, ok := w.FindFolder(folderID)
	if !ok {
		return errNotFound("folder", folderID)
	}
	if f.Shared() {
		return ErrPasswordForbidden
	}
	oldHash := ""
	if f.PasswordHash != "" {
		oldHash = w.hash(oldPassword)
		if !hashEqual(oldHash, f.PasswordHash) {
			return ErrPasswordMismatch
		}
	}
	newHash := w.hash(newPassword)
	f.PasswordHash = newHash
	f.UpdatedAt = w.now()
	return w.wrapPersist("folder password", w.persist.SetFolderPassword(ctx, folderID, newHash, oldHash))
}

// ClearPassword removes a folder's password after verifying the current one.
func (w *Workspace) ClearPassword(ctx context.Context, folderID, oldPassword string) error {
	f, ok := w.FindFolder(folderID)
	if !ok {
		return errNotFound("folder", folderID)
	}
	if f.PasswordHash == "" {
		return nil
	}
	oldHash := w.hash(oldPassword)
	if !hashEqual(oldHash, f.PasswordHash) {
		return ErrPasswordMismatch
	}
	f.PasswordHash = ""
	f.UpdatedAt = w.now()
	return w.wrapPersist("folder password", w.persist.SetFolderPassword(ctx, folderID, "", oldHash))
}

// SetCollaborators replaces a folder's collaborator set. Giving a passworded
// folder collaborators clears the password as a side effect (with a warning
// notice), and a newly shared folder drops its ordering coordinates.
func (w *Workspace) SetCollaborators(ctx context.Context, folderID string, ids []string) error {
	f, ok := w.FindFolder(folderID)
	if !ok {
		return errNotFound("folder", folderID)
	}

	if len(ids) > 0 && f.PasswordHash != "" {
		f.PasswordHash = ""
		w.notify.Notify("folder password removed: shared folders cannot be password protected")
		if err := w.wrapPersist("folder password", w.persist.SetFolderPassword(ctx, folderID, "", "")); err != nil {
			return err
		}
	}

	f.CoWorkers = ids
	rejoined := false
	if f.Shared() {
		f.X = nil
		f.Y = nil
	} else if f.Y == nil {
		// Back to private: rejoin the ordered listing at the top.
		y := NextRank(folderRanks(w.Subfolders(f.ParentID)))
		f.Y = &y
		rejoined = true
	}
	f.UpdatedAt = w.now()
	if err := w.wrapPersist("folder collaborators", w.persist.SetFolderCollaborators(ctx, folderID, ids)); err != nil {
		return err
	}
	if rejoined {
		// The collaborator write does not touch coordinates; the reassigned
		// rank needs its own write or it is lost on reload.
		return w.wrapPersist("folder", w.persist.UpdateFolder(ctx, f))
	}
	return nil
}
