package store

import (
	"errors"
	"sort"

	"github.com/mediavault/backend/internal/models"
)

const shareRegistryKey = "shares.json"

// ShareStore keeps every share descriptor in one global registry document
// keyed by share id.
type ShareStore struct {
	docs *DocumentStore
}

func NewShareStore(docs *DocumentStore) *ShareStore {
	return &ShareStore{docs: docs}
}

func (s *ShareStore) load() (map[string]models.Share, error) {
	shares := make(map[string]models.Share)
	if err := s.docs.Read(shareRegistryKey, &shares); err != nil {
		if errors.Is(err, ErrNotFound) {
			return shares, nil
		}
		return nil, err
	}
	return shares, nil
}

func (s *ShareStore) Get(shareID string) (models.Share, error) {
	shares, err := s.load()
	if err != nil {
		return models.Share{}, err
	}
	share, ok := shares[shareID]
	if !ok {
		return models.Share{}, ErrNotFound
	}
	return share, nil
}

func (s *ShareStore) Put(share models.Share) error {
	unlock := s.docs.Lock(shareRegistryKey)
	defer unlock()

	shares, err := s.load()
	if err != nil {
		return err
	}
	shares[share.ShareID] = share
	return s.docs.Write(shareRegistryKey, shares)
}

func (s *ShareStore) ListByOwner(userID string) ([]models.Share, error) {
	shares, err := s.load()
	if err != nil {
		return nil, err
	}

	owned := []models.Share{}
	for _, share := range shares {
		if share.UserID == userID {
			owned = append(owned, share)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}

// Delete removes one share. Absence is reported as ErrNotFound so callers
// can distinguish it from an ownership failure.
func (s *ShareStore) Delete(shareID string) error {
	unlock := s.docs.Lock(shareRegistryKey)
	defer unlock()

	shares, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := shares[shareID]; !ok {
		return ErrNotFound
	}
	delete(shares, shareID)
	return s.docs.Write(shareRegistryKey, shares)
}

// DeleteByFolders drops every share owned by userID whose target folder is
// in folderIDs. Used to cascade share invalidation when folders die.
func (s *ShareStore) DeleteByFolders(userID string, folderIDs map[string]struct{}) error {
	unlock := s.docs.Lock(shareRegistryKey)
	defer unlock()

	shares, err := s.load()
	if err != nil {
		return err
	}

	changed := false
	for id, share := range shares {
		if share.UserID != userID {
			continue
		}
		if _, dead := folderIDs[share.FolderID]; dead {
			delete(shares, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.docs.Write(shareRegistryKey, shares)
}
