package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RootFolderID is the sentinel parent id meaning "no parent" (top level).
// It never corresponds to a stored folder row.
const RootFolderID = "root"

type FolderType string

const (
	FolderTypeStandard  FolderType = "standard"
	FolderTypeOrganizer FolderType = "organizer"
	FolderTypeMindmap   FolderType = "mindmap"
	FolderTypeCalc      FolderType = "calc"

	// FolderTypeSystem is reserved for internal folders. System folders are
	// excluded from every listing.
	FolderTypeSystem FolderType = "system"
)

func ParseFolderType(s string) (FolderType, bool) {
	switch FolderType(strings.ToLower(strings.TrimSpace(s))) {
	case FolderTypeStandard:
		return FolderTypeStandard, true
	case FolderTypeOrganizer:
		return FolderTypeOrganizer, true
	case FolderTypeMindmap:
		return FolderTypeMindmap, true
	case FolderTypeCalc:
		return FolderTypeCalc, true
	case FolderTypeSystem:
		return FolderTypeSystem, true
	default:
		return "", false
	}
}

// Folder is a container of notes and (except for Mindmap folders) subfolders.
//
// Y is the ordering key: numeric values rank descending, nil means
// "unordered" and sorts after every numeric value. X is only meaningful on a
// Mindmap canvas; shared folders carry X = Y = nil.
type Folder struct {
	ID       string
	Name     string
	ParentID string // folder id, or RootFolderID
	Type     FolderType

	Y *float64
	X *float64

	Color      string
	CrossedOut bool
	Checklist  bool

	// PasswordHash is the one-way hash guarding the folder, empty when the
	// folder is unprotected. The plaintext is never stored.
	PasswordHash string

	// CoWorkers lists collaborator ids. A folder with collaborators is
	// "shared": it is excluded from the root listing and must not carry a
	// password.
	CoWorkers []string

	// CalcNumber and CalcMethod are meaningful for FolderTypeCalc only.
	// CalcMethod is the domain representation; it is encoded to a string at
	// the persistence boundary.
	CalcNumber float64
	CalcMethod CalcMethod

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shared reports whether the folder has at least one collaborator.
func (f *Folder) Shared() bool { return len(f.CoWorkers) > 0 }

// AttachmentKind distinguishes the media slot an attachment fills. The bytes
// themselves are opaque to the engine.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
	AttachmentVoice AttachmentKind = "voice"
)

type Attachment struct {
	ID   string
	Kind AttachmentKind
	Name string
}

// Note is a single entry. Text may embed hashtag and checkbox markup; the
// engine treats it as a substrate (see internal/markup), rendering is a
// presentation concern.
type Note struct {
	ID       string
	ParentID string // folder id, or RootFolderID
	Title    string
	Text     string

	Y *float64
	X *float64

	Color      string
	CrossedOut bool

	// CalcNumber is the optional numeric tag read by calc-folder
	// aggregation. HasCalcNumber distinguishes "tagged with 0" from
	// "untagged".
	CalcNumber    float64
	HasCalcNumber bool

	Attachments []Attachment

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewNoteID() string       { return "note-" + uuid.NewString() }
func NewFolderID() string     { return "fld-" + uuid.NewString() }
func NewAttachmentID() string { return "att-" + uuid.NewString() }
