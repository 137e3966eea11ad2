package models

import "time"

// RootFolderID is the fixed id of the top folder in every user document.
// The root folder has no parent and can never be deleted.
const RootFolderID = "root"

type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Files      []string  `json:"files"`
	Subfolders []string  `json:"subfolders"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

func NewFolder(id, name string, now time.Time) *Folder {
	return &Folder{
		ID:         id,
		Name:       name,
		Files:      []string{},
		Subfolders: []string{},
		CreatedAt:  now,
		ModifiedAt: now,
	}
}
