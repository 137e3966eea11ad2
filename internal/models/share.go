package models

import "time"

// Share grants access to one folder through a link carrying both the
// share id and a capability token; knowing the id alone is not enough.
type Share struct {
	ShareID           string    `json:"shareId"`
	Token             string    `json:"token"`
	URL               string    `json:"url"`
	UserID            string    `json:"userId"`
	FolderID          string    `json:"folderId"`
	ProtectedDownload bool      `json:"protectedDownload"`
	CreatedAt         time.Time `json:"createdAt"`
}
