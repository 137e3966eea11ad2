package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/backend/internal/models"
)

func testUser(id, username, email string) models.User {
	return models.User{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

func TestUserDirectoryAppendAndLookup(t *testing.T) {
	directory := NewUserDirectory(newTestStore(t))

	require.NoError(t, directory.Append(testUser("u1", "alice", "alice@example.com")))

	byName, err := directory.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	byEmail, err := directory.FindByEmail("ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = directory.FindByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDirectoryRejectsDuplicates(t *testing.T) {
	directory := NewUserDirectory(newTestStore(t))
	require.NoError(t, directory.Append(testUser("u1", "alice", "alice@example.com")))

	err := directory.Append(testUser("u2", "alice", "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicate, "duplicate username must be rejected")

	err = directory.Append(testUser("u3", "bob", "Alice@Example.com"))
	assert.ErrorIs(t, err, ErrDuplicate, "duplicate email must be rejected case-insensitively")
}

func TestUserDirectoryConcurrentAppendKeepsUniqueness(t *testing.T) {
	directory := NewUserDirectory(newTestStore(t))

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = directory.Append(testUser("u", "samename", "same@example.com"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicate)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent registration may win")
}

func TestUserDirectoryUpdateEmail(t *testing.T) {
	directory := NewUserDirectory(newTestStore(t))
	require.NoError(t, directory.Append(testUser("u1", "alice", "alice@example.com")))
	require.NoError(t, directory.Append(testUser("u2", "bob", "bob@example.com")))

	require.NoError(t, directory.UpdateEmail("u1", "new@example.com"))
	byEmail, err := directory.FindByEmail("new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	assert.ErrorIs(t, directory.UpdateEmail("u1", "bob@example.com"), ErrDuplicate)
	assert.ErrorIs(t, directory.UpdateEmail("missing", "x@example.com"), ErrNotFound)
}

func TestFileStoreUpdateMergesAndStampsModifiedAt(t *testing.T) {
	files := NewFileStore(newTestStore(t))

	created := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, files.Create(&models.FileRecord{
		ID:          "f1",
		Name:        "beach.jpg",
		Type:        "image/jpeg",
		Size:        1234,
		Description: "original description",
		Tags:        []string{"summer"},
		CreatedAt:   created,
		ModifiedAt:  created,
	}))

	updated, err := files.Update("f1", func(rec *models.FileRecord) {
		rec.Notes = "some notes"
	})
	require.NoError(t, err)

	assert.Equal(t, "some notes", updated.Notes)
	assert.Equal(t, "original description", updated.Description, "untouched fields are preserved")
	assert.Equal(t, []string{"summer"}, updated.Tags)
	assert.True(t, updated.ModifiedAt.After(created), "modifiedAt must be refreshed")

	_, err = files.Update("missing", func(rec *models.FileRecord) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreDeleteIsIdempotent(t *testing.T) {
	files := NewFileStore(newTestStore(t))
	require.NoError(t, files.Create(&models.FileRecord{ID: "f1", Name: "a.png"}))

	require.NoError(t, files.Delete("f1"))
	require.NoError(t, files.Delete("f1"))

	_, err := files.Get("f1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testShare(shareID, userID, folderID string, created time.Time) models.Share {
	return models.Share{
		ShareID:   shareID,
		Token:     "token-" + shareID,
		UserID:    userID,
		FolderID:  folderID,
		CreatedAt: created,
	}
}

func TestShareStoreListByOwnerOrdersByCreation(t *testing.T) {
	shares := NewShareStore(newTestStore(t))

	base := time.Now().UTC()
	require.NoError(t, shares.Put(testShare("s2", "u1", "f1", base.Add(time.Minute))))
	require.NoError(t, shares.Put(testShare("s1", "u1", "f2", base)))
	require.NoError(t, shares.Put(testShare("s3", "u2", "f3", base)))

	owned, err := shares.ListByOwner("u1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "s1", owned[0].ShareID)
	assert.Equal(t, "s2", owned[1].ShareID)
}

func TestShareStoreDeleteByFolders(t *testing.T) {
	shares := NewShareStore(newTestStore(t))
	base := time.Now().UTC()
	require.NoError(t, shares.Put(testShare("s1", "u1", "f1", base)))
	require.NoError(t, shares.Put(testShare("s2", "u1", "f2", base)))
	require.NoError(t, shares.Put(testShare("s3", "u2", "f1", base)))

	require.NoError(t, shares.DeleteByFolders("u1", map[string]struct{}{"f1": {}}))

	_, err := shares.Get("s1")
	assert.ErrorIs(t, err, ErrNotFound, "u1's share on f1 must be cascaded away")

	_, err = shares.Get("s2")
	assert.NoError(t, err, "shares on other folders stay")

	_, err = shares.Get("s3")
	assert.NoError(t, err, "other owners' shares stay even on the same folder id")
}

func TestShareStoreDeleteMissingIsNotFound(t *testing.T) {
	shares := NewShareStore(newTestStore(t))
	assert.ErrorIs(t, shares.Delete("missing"), ErrNotFound)
}
