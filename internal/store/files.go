package store

import (
	"fmt"
	"time"

	"github.com/mediavault/backend/internal/models"
)

// FileStore persists one metadata record per uploaded file under
// files/<id>.json, independent of the owning folder tree.
type FileStore struct {
	docs *DocumentStore
}

func NewFileStore(docs *DocumentStore) *FileStore {
	return &FileStore{docs: docs}
}

func fileKey(fileID string) string {
	return fmt.Sprintf("files/%s.json", fileID)
}

// Create persists a new record. The caller must have durably stored the
// physical bytes first; a record must never point at bytes that are not
// on storage yet.
func (s *FileStore) Create(rec *models.FileRecord) error {
	return s.docs.Write(fileKey(rec.ID), rec)
}

func (s *FileStore) Get(fileID string) (*models.FileRecord, error) {
	var rec models.FileRecord
	if err := s.docs.Read(fileKey(fileID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update merges changes onto the stored record under its lock. Fields the
// callback leaves alone are preserved; ModifiedAt is always refreshed.
func (s *FileStore) Update(fileID string, apply func(*models.FileRecord)) (*models.FileRecord, error) {
	key := fileKey(fileID)
	unlock := s.docs.Lock(key)
	defer unlock()

	var rec models.FileRecord
	if err := s.docs.Read(key, &rec); err != nil {
		return nil, err
	}

	apply(&rec)
	rec.ModifiedAt = time.Now().UTC()

	if err := s.docs.Write(key, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the record; deleting an absent record succeeds.
func (s *FileStore) Delete(fileID string) error {
	return s.docs.Delete(fileKey(fileID))
}
