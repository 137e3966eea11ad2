// Package gallery implements the media-gallery domain: accounts, the
// per-user folder tree, file metadata and folder shares. The service
// sequences multi-document operations; each underlying store only ever
// commits one whole document at a time.
package gallery

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mediavault/backend/internal/metadata"
	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/internal/storage"
	"github.com/mediavault/backend/internal/store"
	"github.com/mediavault/backend/pkg/ident"
	"github.com/mediavault/backend/pkg/logger"
	"github.com/mediavault/backend/pkg/utils"
)

// allowedExtensions is the fixed upload allow-list. Anything else is
// rejected before a single byte reaches storage.
var allowedExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
	"mp4": {}, "mov": {}, "avi": {}, "mkv": {},
	"mp3": {}, "wav": {}, "ogg": {}, "aac": {}, "m4a": {}, "flac": {},
}

type Service struct {
	directory *store.UserDirectory
	documents *store.UserDocuments
	files     *store.FileStore
	shares    *store.ShareStore
	blobs     storage.BlobStore
	baseURL   string
}

func NewService(
	directory *store.UserDirectory,
	documents *store.UserDocuments,
	files *store.FileStore,
	shares *store.ShareStore,
	blobs storage.BlobStore,
	publicBaseURL string,
) *Service {
	return &Service{
		directory: directory,
		documents: documents,
		files:     files,
		shares:    shares,
		blobs:     blobs,
		baseURL:   strings.TrimRight(publicBaseURL, "/"),
	}
}

// Register creates the directory entry, the user document with its root
// folder, and returns the public user representation.
func (s *Service) Register(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, validationf("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationf("invalid email")
	}
	if len(password) < 8 {
		return nil, validationf("password must be at least 8 characters")
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	doc := &models.UserDocument{
		ID:           ident.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		Folders:      NewUserFolders(now),
		Settings:     models.Settings{Theme: "dark", Language: "en"},
	}

	// The document is written first and the index append commits the
	// registration. A document without an index entry is unreachable
	// garbage, so a failure between the two leaves the name free and the
	// registration retryable.
	if err := s.documents.Put(doc); err != nil {
		logger.Error("user_document_write_failed", err, map[string]interface{}{
			"user_id": doc.ID,
		})
		return nil, err
	}

	entry := doc.DirectoryEntry()
	if err := s.directory.Append(entry); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	logger.InfoWithUser(doc.ID, "user_registered", map[string]interface{}{
		"username": username,
		"email":    email,
	})
	return &entry, nil
}

// Login verifies the credentials against the stored hash. Unknown user and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationf("username and password are required")
	}

	entry, err := s.directory.FindByUsername(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	doc, err := s.documents.Get(entry.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !utils.CheckPassword(password, doc.PasswordHash) {
		logger.WarnWithUser(entry.ID, "login_failed_invalid_password", map[string]interface{}{
			"username": username,
		})
		return nil, ErrInvalidCredentials
	}

	logger.InfoWithUser(entry.ID, "user_login", map[string]interface{}{
		"username": username,
	})
	return entry, nil
}

// GetUserDocument loads the full per-user document with the password hash
// stripped for the response.
func (s *Service) GetUserDocument(userID string) (*models.UserDocument, error) {
	doc, err := s.documents.Get(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	doc.PasswordHash = ""
	return doc, nil
}

// UpdateEmail changes the email in the directory and the user document.
func (s *Service) UpdateEmail(userID, newEmail string) (*models.User, error) {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if _, err := mail.ParseAddress(newEmail); err != nil {
		return nil, validationf("invalid email")
	}

	if err := s.directory.UpdateEmail(userID, newEmail); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, ErrDuplicateUser
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var entry models.User
	err := s.documents.Update(userID, func(doc *models.UserDocument) error {
		doc.Email = newEmail
		entry = doc.DirectoryEntry()
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoWithUser(userID, "email_updated", map[string]interface{}{
		"email": newEmail,
	})
	return &entry, nil
}

type SettingsInput struct {
	Theme    *string `json:"theme"`
	Language *string `json:"language"`
}

func (s *Service) UpdateSettings(userID string, input SettingsInput) (models.Settings, error) {
	if input.Theme == nil && input.Language == nil {
		return models.Settings{}, validationf("no settings fields to update")
	}

	var updated models.Settings
	err := s.documents.Update(userID, func(doc *models.UserDocument) error {
		if input.Theme != nil {
			doc.Settings.Theme = *input.Theme
		}
		if input.Language != nil {
			doc.Settings.Language = *input.Language
		}
		updated = doc.Settings
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Settings{}, ErrUserNotFound
		}
		return models.Settings{}, err
	}
	return updated, nil
}

// CreateFolder adds a folder under parentID in the caller's tree. A
// missing parent is rejected rather than silently created.
func (s *Service) CreateFolder(userID, name, parentID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationf("folder name is required")
	}
	if parentID == "" {
		parentID = models.RootFolderID
	}

	folderID := ident.NewID()
	err := s.documents.Update(userID, func(doc *models.UserDocument) error {
		return CreateFolder(doc, folderID, name, parentID, time.Now().UTC())
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	logger.InfoWithUser(userID, "folder_created", map[string]interface{}{
		"folder_id": folderID,
		"parent_id": parentID,
		"name":      name,
	})
	return folderID, nil
}

// GetFolder returns one folder plus its resolved file records. Records
// missing from the file store are skipped, never nil entries.
func (s *Service) GetFolder(userID, folderID string) (*models.Folder, []*models.FileRecord, error) {
	doc, err := s.documents.Get(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	folder, ok := doc.Folders[folderID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return folder, s.resolveFiles(userID, folder.Files), nil
}

// DeleteFolder removes a folder and everything beneath it: descendant
// folders, contained files (bytes and records) and shares targeting any of
// the deleted folders. Deleting an absent folder succeeds, so retries are
// safe. The file and record deletions happen before the subtree is
// detached from its parent; a crash mid-way leaves the folder attached and
// the whole operation retryable.
func (s *Service) DeleteFolder(ctx context.Context, userID, folderID, parentID string) error {
	if folderID == models.RootFolderID {
		return validationf("root folder cannot be deleted")
	}
	if parentID == "" {
		parentID = models.RootFolderID
	}

	var deleted []string
	err := s.documents.Update(userID, func(doc *models.UserDocument) error {
		folderIDs, fileIDs := CollectSubtree(doc, folderID)

		for _, fileID := range fileIDs {
			if err := s.deletePhysicalAndRecord(ctx, fileID); err != nil {
				return err
			}
		}

		RemoveFolders(doc, folderID, parentID, folderIDs, time.Now().UTC())
		deleted = folderIDs
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if len(deleted) > 0 {
		folderSet := make(map[string]struct{}, len(deleted))
		for _, id := range deleted {
			folderSet[id] = struct{}{}
		}
		if err := s.shares.DeleteByFolders(userID, folderSet); err != nil {
			// The tree change is already committed; surfacing the error
			// lets the client retry the (idempotent) delete.
			return err
		}
	}

	logger.InfoWithUser(userID, "folder_deleted", map[string]interface{}{
		"folder_id":       folderID,
		"parent_id":       parentID,
		"folders_removed": len(deleted),
	})
	return nil
}

// deletePhysicalAndRecord removes the stored bytes (best-effort, absence
// tolerated) and then the metadata record. A crash in between leaves an
// orphaned record pointing at nothing, which is logged, not hidden.
func (s *Service) deletePhysicalAndRecord(ctx context.Context, fileID string) error {
	rec, err := s.files.Get(fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.blobs.Delete(ctx, rec.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("blob_delete_failed", map[string]interface{}{
			"file_id": fileID,
			"path":    rec.Path,
			"error":   err.Error(),
		})
	}

	return s.files.Delete(fileID)
}

type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type UploadResult struct {
	Name   string `json:"name"`
	FileID string `json:"fileId,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Upload stores each file's bytes, then its metadata record, then appends
// every stored id to the target folder in one document write. Failures are
// reported per file; one bad file never masks or aborts the others.
func (s *Service) Upload(ctx context.Context, userID, folderID string, inputs []UploadInput) ([]UploadResult, error) {
	if folderID == "" {
		return nil, validationf("folder id is required")
	}
	if len(inputs) == 0 {
		return nil, validationf("no files provided")
	}

	doc, err := s.documents.Get(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, ok := doc.Folders[folderID]; !ok {
		return nil, ErrNotFound
	}

	results := make([]UploadResult, 0, len(inputs))
	var stored []string

	for _, input := range inputs {
		fileID, err := s.storeOne(ctx, userID, folderID, input)
		result := UploadResult{Name: input.Name, FileID: fileID}
		if err != nil {
			result.FileID = ""
			result.Error = err.Error()
			logger.WarnWithUser(userID, "upload_rejected", map[string]interface{}{
				"name":  input.Name,
				"error": err.Error(),
			})
		} else {
			stored = append(stored, fileID)
		}
		results = append(results, result)
	}

	if len(stored) > 0 {
		err := s.documents.Update(userID, func(doc *models.UserDocument) error {
			now := time.Now().UTC()
			for _, fileID := range stored {
				if err := AddFileToFolder(doc, folderID, fileID, now); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return results, err
		}

		logger.InfoWithUser(userID, "files_uploaded", map[string]interface{}{
			"folder_id": folderID,
			"count":     len(stored),
		})
	}

	return results, nil
}

func (s *Service) storeOne(ctx context.Context, userID, folderID string, input UploadInput) (string, error) {
	name := filepath.Base(strings.TrimSpace(input.Name))
	if name == "" || name == "." {
		return "", validationf("invalid filename")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedType, ext)
	}

	// Multipart clients often send the generic octet-stream type; the
	// extension is more specific in that case.
	contentType := input.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension("." + ext); byExt != "" {
			contentType = byExt
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stream, err := input.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %s: %w", name, err)
	}
	defer stream.Close()

	fileID := ident.NewID()
	blobPath := fmt.Sprintf("%s/%s_%s", userID, fileID, name)

	if err := s.blobs.Put(ctx, blobPath, stream, input.Size, contentType); err != nil {
		return "", fmt.Errorf("storing upload %s: %w", name, err)
	}

	// Bytes are durable now; probe them for enrichment before the record
	// is written.
	media := map[string]string{}
	if probe, err := s.blobs.Get(ctx, blobPath); err == nil {
		media = metadata.Extract(name, contentType, probe)
		probe.Close()
	} else {
		media = metadata.Extract(name, contentType, nil)
	}

	now := time.Now().UTC()
	rec := &models.FileRecord{
		ID:          fileID,
		Name:        name,
		Type:        contentType,
		Size:        input.Size,
		Path:        blobPath,
		CreatedAt:   now,
		ModifiedAt:  now,
		FolderID:    folderID,
		Description: "",
		Tags:        []string{},
		Notes:       "",
		Media:       media,
	}

	if err := s.files.Create(rec); err != nil {
		_ = s.blobs.Delete(ctx, blobPath)
		return "", fmt.Errorf("recording upload %s: %w", name, err)
	}

	return fileID, nil
}

func (s *Service) GetFile(fileID string) (*models.FileRecord, error) {
	rec, err := s.files.Get(fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

type UpdateFileInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Notes       *string   `json:"notes"`
	CaptureDate *string   `json:"captureDate"`
}

// UpdateFile merges the provided fields onto the stored record. Absent
// fields are preserved; tags keep list order but drop duplicates.
func (s *Service) UpdateFile(fileID string, input UpdateFileInput) (*models.FileRecord, error) {
	if input.Name == nil && input.Description == nil && input.Tags == nil &&
		input.Notes == nil && input.CaptureDate == nil {
		return nil, validationf("no metadata fields to update")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, validationf("name cannot be empty")
	}

	rec, err := s.files.Update(fileID, func(rec *models.FileRecord) {
		if input.Name != nil {
			rec.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			rec.Description = *input.Description
		}
		if input.Tags != nil {
			rec.Tags = dedupeTags(*input.Tags)
		}
		if input.Notes != nil {
			rec.Notes = *input.Notes
		}
		if input.CaptureDate != nil {
			if rec.Media == nil {
				rec.Media = map[string]string{}
			}
			rec.Media[models.MediaCaptureDate] = *input.CaptureDate
		}
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// DeleteFile removes the bytes, the record and the folder reference.
// Deleting an already-deleted file succeeds.
func (s *Service) DeleteFile(ctx context.Context, userID, fileID, folderID string) error {
	if err := s.deletePhysicalAndRecord(ctx, fileID); err != nil {
		return err
	}

	err := s.documents.Update(userID, func(doc *models.UserDocument) error {
		RemoveFileFromFolder(doc, folderID, fileID, time.Now().UTC())
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	logger.InfoWithUser(userID, "file_deleted", map[string]interface{}{
		"file_id":   fileID,
		"folder_id": folderID,
	})
	return nil
}

// Download opens the stored bytes for streaming alongside the record.
func (s *Service) Download(ctx context.Context, fileID string) (*models.FileRecord, io.ReadCloser, error) {
	rec, err := s.GetFile(fileID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.blobs.Get(ctx, rec.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return rec, stream, nil
}

// CreateShare issues a share descriptor for one of the caller's folders
// with a fresh id and an independent capability token.
func (s *Service) CreateShare(userID, folderID string, protectedDownload bool) (models.Share, error) {
	if folderID == "" {
		return models.Share{}, validationf("folder id is required")
	}

	doc, err := s.documents.Get(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Share{}, ErrUserNotFound
		}
		return models.Share{}, err
	}
	if _, ok := doc.Folders[folderID]; !ok {
		return models.Share{}, validationf("folder does not exist")
	}

	shareID := ident.NewID()
	token := ident.NewToken()
	share := models.Share{
		ShareID:           shareID,
		Token:             token,
		URL:               fmt.Sprintf("%s/share.html?id=%s&token=%s", s.baseURL, shareID, token),
		UserID:            userID,
		FolderID:          folderID,
		ProtectedDownload: protectedDownload,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.shares.Put(share); err != nil {
		return models.Share{}, err
	}

	logger.InfoWithUser(userID, "share_created", map[string]interface{}{
		"share_id":           shareID,
		"folder_id":          folderID,
		"protected_download": protectedDownload,
	})
	return share, nil
}

// ShareView is what a share link resolves to: the descriptor plus the
// target folder and its file records, ready for the share page.
type ShareView struct {
	Share  models.Share         `json:"share"`
	Folder *models.Folder       `json:"folder"`
	Files  []*models.FileRecord `json:"files"`
}

// ResolveShare requires both the share id and the matching token; a wrong
// value for either yields the same ErrInvalidShare. A share whose target
// folder no longer exists resolves to ErrInvalidShare as well, covering
// registries written before cascade deletion existed.
func (s *Service) ResolveShare(shareID, token string) (*ShareView, error) {
	if shareID == "" || token == "" {
		return nil, validationf("share id and token are required")
	}

	share, err := s.shares.Get(shareID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidShare
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(share.Token), []byte(token)) != 1 {
		return nil, ErrInvalidShare
	}

	doc, err := s.documents.Get(share.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidShare
		}
		return nil, err
	}

	folder, ok := doc.Folders[share.FolderID]
	if !ok {
		return nil, ErrInvalidShare
	}

	return &ShareView{
		Share:  share,
		Folder: folder,
		Files:  s.resolveFiles(share.UserID, folder.Files),
	}, nil
}

func (s *Service) ListShares(userID string) ([]models.Share, error) {
	return s.shares.ListByOwner(userID)
}

// DeleteShare removes a share after checking the requester owns it. A
// missing share is NotFound, an ownership mismatch PermissionDenied, and
// the share stays intact in the latter case.
func (s *Service) DeleteShare(shareID, requesterID string) error {
	share, err := s.shares.Get(shareID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if share.UserID != requesterID {
		logger.WarnWithUser(requesterID, "share_delete_denied", map[string]interface{}{
			"share_id": shareID,
			"owner_id": share.UserID,
		})
		return ErrPermissionDenied
	}

	if err := s.shares.Delete(shareID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	logger.InfoWithUser(requesterID, "share_deleted", map[string]interface{}{
		"share_id": shareID,
	})
	return nil
}

// resolveFiles maps file ids to records, skipping ids whose record is
// gone. The result is never nil.
func (s *Service) resolveFiles(userID string, fileIDs []string) []*models.FileRecord {
	records := []*models.FileRecord{}
	for _, fileID := range fileIDs {
		rec, err := s.files.Get(fileID)
		if err != nil {
			logger.Warn("file_record_missing", map[string]interface{}{
				"user_id": userID,
				"file_id": fileID,
			})
			continue
		}
		records = append(records, rec)
	}
	return records
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := []string{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
