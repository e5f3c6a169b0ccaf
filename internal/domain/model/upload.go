package model

import "time"

type UploadStatus string

const (
	UploadStatusForEditing UploadStatus = "for_editing"
	UploadStatusCompleted  UploadStatus = "completed"
)

// EditorUpload is a deliverable or source file record. The byte transfer
// happens in the external upload pipeline; the engine only persists the
// blob key and a signed URL handed back by the provider.
type EditorUpload struct {
	ID                string
	JobID             string
	OrderID           string // optional
	FolderPath        string
	FolderToken       string // optional
	EditorFolderName  string
	PartnerFolderName string
	Status            UploadStatus
	StorageKey        string
	SignedURL         string
	ExpiresAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
