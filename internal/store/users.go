package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mediavault/backend/internal/models"
)

const userIndexKey = "users.json"

// UserDirectory maintains the global user index: one lightweight entry per
// registered user, used for uniqueness checks and login lookup.
type UserDirectory struct {
	docs *DocumentStore
}

func NewUserDirectory(docs *DocumentStore) *UserDirectory {
	return &UserDirectory{docs: docs}
}

func (d *UserDirectory) load() ([]models.User, error) {
	var users []models.User
	if err := d.docs.Read(userIndexKey, &users); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.User{}, nil
		}
		return nil, err
	}
	return users, nil
}

func (d *UserDirectory) FindByUsername(username string) (*models.User, error) {
	users, err := d.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (d *UserDirectory) FindByEmail(email string) (*models.User, error) {
	users, err := d.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// Append adds a user to the index. Uniqueness of username and email is
// re-checked against the full list inside the same locked cycle, so two
// concurrent registrations cannot both succeed.
func (d *UserDirectory) Append(user models.User) error {
	unlock := d.docs.Lock(userIndexKey)
	defer unlock()

	users, err := d.load()
	if err != nil {
		return err
	}

	for _, existing := range users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}

	return d.docs.Write(userIndexKey, append(users, user))
}

// UpdateEmail changes a user's email in the index, enforcing uniqueness
// against every other entry.
func (d *UserDirectory) UpdateEmail(userID, newEmail string) error {
	unlock := d.docs.Lock(userIndexKey)
	defer unlock()

	users, err := d.load()
	if err != nil {
		return err
	}

	found := false
	for i := range users {
		if users[i].ID == userID {
			found = true
			continue
		}
		if strings.EqualFold(users[i].Email, newEmail) {
			return ErrDuplicate
		}
	}
	if !found {
		return ErrNotFound
	}

	for i := range users {
		if users[i].ID == userID {
			users[i].Email = newEmail
		}
	}
	return d.docs.Write(userIndexKey, users)
}

// UserDocuments persists the full per-user documents under users/<id>.json.
type UserDocuments struct {
	docs *DocumentStore
}

func NewUserDocuments(docs *DocumentStore) *UserDocuments {
	return &UserDocuments{docs: docs}
}

func userDocKey(userID string) string {
	return fmt.Sprintf("users/%s.json", userID)
}

func (s *UserDocuments) Get(userID string) (*models.UserDocument, error) {
	var doc models.UserDocument
	if err := s.docs.Read(userDocKey(userID), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *UserDocuments) Put(doc *models.UserDocument) error {
	return s.docs.Write(userDocKey(doc.ID), doc)
}

// Update runs a read-modify-write cycle on one user document under its
// per-document lock. The apply callback mutates the document in place;
// returning an error abandons the cycle without writing.
func (s *UserDocuments) Update(userID string, apply func(*models.UserDocument) error) error {
	key := userDocKey(userID)
	unlock := s.docs.Lock(key)
	defer unlock()

	var doc models.UserDocument
	if err := s.docs.Read(key, &doc); err != nil {
		return err
	}
	if err := apply(&doc); err != nil {
		return err
	}
	return s.docs.Write(key, &doc)
}
