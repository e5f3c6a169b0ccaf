package model

import (
	"strings"
	"time"
)

// FolderKeyKind discriminates the composite folder identity. Resolution
// order is fixed: explicit metadata key, then security token, then
// (order id, path), then a synthetic per-instance key derived from the
// first upload's id. The instance fallback keeps two separately created
// folders at the same nominal path from collapsing into one.
type FolderKeyKind string

const (
	FolderKeyMeta        FolderKeyKind = "meta"
	FolderKeyToken       FolderKeyKind = "token"
	FolderKeyOrderScoped FolderKeyKind = "order"
	FolderKeyInstance    FolderKeyKind = "inst"
)

type FolderKey struct {
	Kind  FolderKeyKind
	Value string
}

// String renders the canonical form used as a map/lock key and as the
// folder handle callers pass back into the mutation entry points.
func (k FolderKey) String() string { return string(k.Kind) + ":" + k.Value }

// ParseFolderKey is the inverse of String. Unknown or malformed input
// yields a zero key; callers treat that as not found.
func ParseFolderKey(s string) FolderKey {
	kind, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return FolderKey{}
	}
	switch FolderKeyKind(kind) {
	case FolderKeyMeta, FolderKeyToken, FolderKeyOrderScoped, FolderKeyInstance:
		return FolderKey{Kind: FolderKeyKind(kind), Value: value}
	}
	return FolderKey{}
}

// NormalizeFolderPath canonicalizes a folder path for identity matching:
// case-insensitive, no surrounding whitespace or slashes.
func NormalizeFolderPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	return strings.ToLower(p)
}

// UploadFolderKey resolves the identity of the folder an upload belongs
// to, without consulting metadata records (the organizer checks those
// first).
func UploadFolderKey(u *EditorUpload) FolderKey {
	if u.FolderToken != "" {
		return FolderKey{Kind: FolderKeyToken, Value: u.FolderToken}
	}
	if u.OrderID != "" {
		return FolderKey{Kind: FolderKeyOrderScoped, Value: u.OrderID + "|" + NormalizeFolderPath(u.FolderPath)}
	}
	return FolderKey{Kind: FolderKeyInstance, Value: u.ID}
}

// FolderMeta is the explicit folder metadata record. It may exist before
// any file lands in the folder ("add folder" action) and is auto-created
// when a rename/visibility/reorder targets a purely inferred folder.
type FolderMeta struct {
	Key               string // unique, server-assigned
	JobID             string
	FolderPath        string
	FolderToken       string // optional
	OrderID           string // optional
	PartnerFolderName string
	IsVisible         bool
	DisplayOrder      *int // nil = unordered, sorted last
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Matches reports whether an upload populates this folder, by token
// first, then order+path, then bare path for metadata with neither.
func (m *FolderMeta) Matches(u *EditorUpload) bool {
	if m.FolderToken != "" {
		return u.FolderToken == m.FolderToken
	}
	if m.OrderID != "" {
		return u.OrderID == m.OrderID && NormalizeFolderPath(u.FolderPath) == NormalizeFolderPath(m.FolderPath)
	}
	return u.FolderToken == "" && u.OrderID == "" &&
		NormalizeFolderPath(u.FolderPath) == NormalizeFolderPath(m.FolderPath)
}

// Folder is the derived per-job view returned by the organizer: folder
// identity plus the recipient-visible files attached to it.
type Folder struct {
	Key          FolderKey
	JobID        string
	Name         string
	Path         string
	IsVisible    bool
	DisplayOrder *int
	Files        []*EditorUpload
}
