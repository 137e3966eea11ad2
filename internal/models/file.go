package models

import "time"

// FileRecord is the per-file metadata document, stored independently of
// the folder tree so records can be fetched without loading the owner's
// document. FolderID is a denormalized pointer to the containing folder.
type FileRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Size        int64             `json:"size"`
	Path        string            `json:"path"`
	CreatedAt   time.Time         `json:"createdAt"`
	ModifiedAt  time.Time         `json:"modifiedAt"`
	FolderID    string            `json:"folderId"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags"`
	Notes       string            `json:"notes"`
	Media       map[string]string `json:"media,omitempty"`
}

// Media map keys populated by the enrichment step on upload.
const (
	MediaCaptureDate = "captureDate"
	MediaCamera      = "camera"
	MediaDimensions  = "dimensions"
	MediaFormat      = "format"
	MediaType        = "mediaType"
)
