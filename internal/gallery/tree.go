package gallery

import (
	"time"

	"github.com/mediavault/backend/internal/models"
)

// Tree operations mutate one loaded user document in memory. Persistence
// is the caller's problem; every function here either completes its change
// or leaves the document untouched.

// NewUserFolders builds the initial folder map containing only root.
func NewUserFolders(now time.Time) map[string]*models.Folder {
	return map[string]*models.Folder{
		models.RootFolderID: models.NewFolder(models.RootFolderID, "My Gallery", now),
	}
}

// CreateFolder adds a folder under parentID. A missing parent is an error;
// folders are never fabricated on the fly.
func CreateFolder(doc *models.UserDocument, folderID, name, parentID string, now time.Time) error {
	parent, ok := doc.Folders[parentID]
	if !ok {
		return ErrNotFound
	}

	doc.Folders[folderID] = models.NewFolder(folderID, name, now)
	parent.Subfolders = append(parent.Subfolders, folderID)
	parent.ModifiedAt = now
	return nil
}

// CollectSubtree returns the folder ids and file ids contained in the
// subtree rooted at folderID, the folder itself included. Traversal uses
// an explicit stack and a visited set, so pathological depth or a
// corrupted cycle cannot blow the call stack or loop forever. An absent
// folder yields empty results.
func CollectSubtree(doc *models.UserDocument, folderID string) (folderIDs []string, fileIDs []string) {
	folderIDs = []string{}
	fileIDs = []string{}

	visited := make(map[string]struct{})
	stack := []string{folderID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		folder, ok := doc.Folders[id]
		if !ok {
			continue
		}

		folderIDs = append(folderIDs, id)
		fileIDs = append(fileIDs, folder.Files...)
		stack = append(stack, folder.Subfolders...)
	}
	return folderIDs, fileIDs
}

// RemoveFolders detaches folderID from its parent and drops every folder
// in folderIDs from the document. Runs after the contained files are gone,
// so a crash before this point leaves the subtree attached and the delete
// retryable. Absent ids are ignored.
func RemoveFolders(doc *models.UserDocument, folderID, parentID string, folderIDs []string, now time.Time) {
	if parent, ok := doc.Folders[parentID]; ok {
		parent.Subfolders = removeString(parent.Subfolders, folderID)
		parent.ModifiedAt = now
	}
	for _, id := range folderIDs {
		delete(doc.Folders, id)
	}
}

// AddFileToFolder appends fileID to the folder's file list if not already
// present, so retried uploads stay idempotent.
func AddFileToFolder(doc *models.UserDocument, folderID, fileID string, now time.Time) error {
	folder, ok := doc.Folders[folderID]
	if !ok {
		return ErrNotFound
	}
	for _, existing := range folder.Files {
		if existing == fileID {
			return nil
		}
	}
	folder.Files = append(folder.Files, fileID)
	folder.ModifiedAt = now
	return nil
}

// RemoveFileFromFolder filters fileID out of the folder's file list,
// preserving the order of the remaining entries. Missing folder or file
// is a no-op.
func RemoveFileFromFolder(doc *models.UserDocument, folderID, fileID string, now time.Time) {
	folder, ok := doc.Folders[folderID]
	if !ok {
		return
	}
	folder.Files = removeString(folder.Files, fileID)
	folder.ModifiedAt = now
}

func removeString(list []string, target string) []string {
	filtered := make([]string, 0, len(list))
	for _, item := range list {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
