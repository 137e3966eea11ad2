package gallery

import (
	"errors"
	"sort"
	"strings"

	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/internal/store"
)

const (
	SortByName = "name"
	SortByDate = "date"
	SortBySize = "size"
)

type SearchQuery struct {
	// Text matches case-insensitively against name, description, notes
	// and tags.
	Text string
	// MediaType filters on image, video or audio.
	MediaType string
	// Tag requires an exact (case-insensitive) tag.
	Tag string
	// SortBy is one of name, date, size; date is the default.
	SortBy    string
	Ascending bool
}

// SearchFiles scans every file referenced anywhere in the caller's tree
// and returns the matching records. A linear pass over the library is the
// intended scale here; there is no index to maintain.
func (s *Service) SearchFiles(userID string, q SearchQuery) ([]*models.FileRecord, error) {
	doc, err := s.documents.Get(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	seen := make(map[string]struct{})
	matches := []*models.FileRecord{}

	for _, folder := range doc.Folders {
		for _, fileID := range folder.Files {
			if _, dup := seen[fileID]; dup {
				continue
			}
			seen[fileID] = struct{}{}

			rec, err := s.files.Get(fileID)
			if err != nil {
				continue
			}
			if q.matches(rec) {
				matches = append(matches, rec)
			}
		}
	}

	sortRecords(matches, q.SortBy, q.Ascending)
	return matches, nil
}

func (q SearchQuery) matches(rec *models.FileRecord) bool {
	if q.MediaType != "" && !strings.HasPrefix(rec.Type, q.MediaType+"/") {
		return false
	}

	if q.Tag != "" {
		found := false
		for _, tag := range rec.Tags {
			if strings.EqualFold(tag, q.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.Text != "" {
		needle := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(rec.Name), needle) &&
			!strings.Contains(strings.ToLower(rec.Description), needle) &&
			!strings.Contains(strings.ToLower(rec.Notes), needle) &&
			!tagsContain(rec.Tags, needle) {
			return false
		}
	}

	return true
}

func tagsContain(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func sortRecords(records []*models.FileRecord, sortBy string, ascending bool) {
	less := func(i, j int) bool {
		switch sortBy {
		case SortByName:
			return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
		case SortBySize:
			return records[i].Size < records[j].Size
		default:
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if ascending {
			return less(i, j)
		}
		return less(j, i)
	})
}
