package models

import "time"

// User is the lightweight directory entry kept in the global user index.
// The full per-user state lives in UserDocument.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Settings struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// UserDocument is the aggregate document owned by a single user. It is
// always read and written whole; Folders must contain RootFolderID and
// every other folder must be reachable from it.
type UserDocument struct {
	ID           string             `json:"id"`
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"passwordHash,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	Folders      map[string]*Folder `json:"folders"`
	Settings     Settings           `json:"settings"`
}

// DirectoryEntry strips the document down to its index representation.
func (d *UserDocument) DirectoryEntry() User {
	return User{
		ID:        d.ID,
		Username:  d.Username,
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
	}
}
