// Package store persists the note/folder forest in a local sqlite database
// and attachment blobs in a diskv tree. It implements engine.Persister; the
// engine treats every call here as a black-box collaborator.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"notedeck/internal/model"
)

const dbFileName = "notedeck.sqlite"

// Store is a handle on a data directory. The zero value is unusable; use
// Open.
type Store struct {
	Dir string
	db  *sql.DB
}

// Open opens (creating if needed) the sqlite database under dir and applies
// migrations.
func Open(ctx context.Context, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout avoids "database is
	// locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &Store{Dir: dir, db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			folder_type TEXT NOT NULL,
			y REAL,
			x REAL,
			color TEXT NOT NULL DEFAULT '',
			crossed_out INTEGER NOT NULL DEFAULT 0,
			checklist INTEGER NOT NULL DEFAULT 0,
			password_hash TEXT NOT NULL DEFAULT '',
			co_workers_json TEXT,
			calc_number REAL NOT NULL DEFAULT 0,
			calc_method TEXT NOT NULL DEFAULT '',
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			y REAL,
			x REAL,
			color TEXT NOT NULL DEFAULT '',
			crossed_out INTEGER NOT NULL DEFAULT 0,
			calc_number REAL,
			attachments_json TEXT,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_parent ON notes(parent_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// LoadAll reads the full workspace into memory.
func (s *Store) LoadAll(ctx context.Context) ([]*model.Note, []*model.Folder, error) {
	folders, err := s.loadFolders(ctx)
	if err != nil {
		return nil, nil, err
	}
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, nil, err
	}
	return notes, folders, nil
}

func (s *Store) loadFolders(ctx context.Context) ([]*model.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, parent_id, folder_type, y, x, color,
		crossed_out, checklist, password_hash, co_workers_json, calc_number, calc_method,
		created_at_unixms, updated_at_unixms FROM folders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Folder
	for rows.Next() {
		var f model.Folder
		var typ, coWorkers, method sql.NullString
		var y, x sql.NullFloat64
		var crossed, checklist int
		var createdMS, updatedMS int64
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &typ, &y, &x, &f.Color,
			&crossed, &checklist, &f.PasswordHash, &coWorkers, &f.CalcNumber, &method,
			&createdMS, &updatedMS); err != nil {
			return nil, err
		}
		f.Type = model.FolderType(typ.String)
		f.Y = nullFloat(y)
		f.X = nullFloat(x)
		f.CrossedOut = crossed != 0
		f.Checklist = checklist != 0
		if coWorkers.Valid && coWorkers.String != "" {
			if err := json.Unmarshal([]byte(coWorkers.String), &f.CoWorkers); err != nil {
				return nil, fmt.Errorf("folder %s co_workers: %w", f.ID, err)
			}
		}
		m, err := model.ParseCalcMethod(method.String)
		if err != nil {
			return nil, fmt.Errorf("folder %s calc_method: %w", f.ID, err)
		}
		f.CalcMethod = m
		f.CreatedAt = msToTime(createdMS)
		f.UpdatedAt = msToTime(updatedMS)
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (s *Store) loadNotes(ctx context.Context) ([]*model.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, title, body, y, x, color,
		crossed_out, calc_number, attachments_json, created_at_unixms, updated_at_unixms FROM notes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Note
	for rows.Next() {
		var n model.Note
		var y, x, calc sql.NullFloat64
		var attachments sql.NullString
		var crossed int
		var createdMS, updatedMS int64
		if err := rows.Scan(&n.ID, &n.ParentID, &n.Title, &n.Text, &y, &x, &n.Color,
			&crossed, &calc, &attachments, &createdMS, &updatedMS); err != nil {
			return nil, err
		}
		n.Y = nullFloat(y)
		n.X = nullFloat(x)
		n.CrossedOut = crossed != 0
		if calc.Valid {
			n.CalcNumber = calc.Float64
			n.HasCalcNumber = true
		}
		if attachments.Valid && attachments.String != "" {
			if err := json.Unmarshal([]byte(attachments.String), &n.Attachments); err != nil {
				return nil, fmt.Errorf("note %s attachments: %w", n.ID, err)
			}
		}
		n.CreatedAt = msToTime(createdMS)
		n.UpdatedAt = msToTime(updatedMS)
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *Store) CreateNote(ctx context.Context, n *model.Note) error {
	return s.upsertNote(ctx, n)
}

func (s *Store) UpdateNote(ctx context.Context, n *model.Note) error {
	return s.upsertNote(ctx, n)
}

func (s *Store) upsertNote(ctx context.Context, n *model.Note) error {
	attachments, err := marshalOrNil(n.Attachments, len(n.Attachments) > 0)
	if err != nil {
		return fmt.Errorf("note %s attachments: %w", n.ID, err)
	}
	var calc any
	if n.HasCalcNumber {
		calc = n.CalcNumber
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO notes
		(id, parent_id, title, body, y, x, color, crossed_out, calc_number, attachments_json,
		 created_at_unixms, updated_at_unixms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.ParentID, n.Title, n.Text, floatOrNil(n.Y), floatOrNil(n.X), n.Color,
		boolInt(n.CrossedOut), calc, attachments,
		n.CreatedAt.UnixMilli(), n.UpdatedAt.UnixMilli())
	return err
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	return err
}

func (s *Store) CreateFolder(ctx context.Context, f *model.Folder) error {
	return s.upsertFolder(ctx, f)
}

func (s *Store) UpdateFolder(ctx context.Context, f *model.Folder) error {
	return s.upsertFolder(ctx, f)
}

func (s *Store) upsertFolder(ctx context.Context, f *model.Folder) error {
	coWorkers, err := marshalOrNil(f.CoWorkers, len(f.CoWorkers) > 0)
	if err != nil {
		return fmt.Errorf("folder %s co_workers: %w", f.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO folders
		(id, name, parent_id, folder_type, y, x, color, crossed_out, checklist, password_hash,
		 co_workers_json, calc_number, calc_method, created_at_unixms, updated_at_unixms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.ParentID, string(f.Type), floatOrNil(f.Y), floatOrNil(f.X), f.Color,
		boolInt(f.CrossedOut), boolInt(f.Checklist), f.PasswordHash,
		coWorkers, f.CalcNumber, model.EncodeCalcMethod(f.CalcMethod),
		f.CreatedAt.UnixMilli(), f.UpdatedAt.UnixMilli())
	return err
}

// DeleteFolder removes the folder row and cascades to its direct contents in
// one transaction. Nested subtrees are removed by the engine issuing deletes
// per node.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE parent_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) SetFolderPassword(ctx context.Context, folderID, newHash, oldHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE folders SET password_hash = ? WHERE id = ?`, newHash, folderID)
	if err != nil {
		return err
	}
	return requireRow(res, "folder", folderID)
}

// SetFolderCollaborators replaces the collaborator list. Sharing also nulls
// the ordering coordinates (shared folders carry x = y = null); unsharing
// leaves them alone so the engine can persist a fresh rank afterwards.
func (s *Store) SetFolderCollaborators(ctx context.Context, folderID string, ids []string) error {
	coWorkers, err := marshalOrNil(ids, len(ids) > 0)
	if err != nil {
		return err
	}
	query := `UPDATE folders SET co_workers_json = ? WHERE id = ?`
	if len(ids) > 0 {
		query = `UPDATE folders SET co_workers_json = ?, x = NULL, y = NULL WHERE id = ?`
	}
	res, err := s.db.ExecContext(ctx, query, coWorkers, folderID)
	if err != nil {
		return err
	}
	return requireRow(res, "folder", folderID)
}

func requireRow(res sql.Result, kind, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func marshalOrNil(v any, nonEmpty bool) (any, error) {
	if !nonEmpty {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
