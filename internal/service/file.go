package service

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/inkwell-dev/inkwell/internal/domain"
	internal_errors "github.com/inkwell-dev/inkwell/internal/errors"
	"github.com/inkwell-dev/inkwell/internal/logger"
	"github.com/inkwell-dev/inkwell/internal/validation"
)

// to mock service in tests
type FileService interface {
	Upload(uploader *domain.User, upload *validation.PendingUpload, postId *domain.PostId) (domain.File, error)
	Get(id domain.FileId) (domain.File, error)
	List(postId *domain.PostId, page, limit int) ([]domain.File, int, error)
	UpdatePost(id domain.FileId, postId *domain.PostId) (domain.File, error)
	Delete(id domain.FileId) error
	Download(requester *domain.User, id domain.FileId) (*DownloadResult, error)
}

type FileStorage interface {
	SaveFile(file domain.File) (domain.FileId, error)
	File(id domain.FileId) (domain.File, error)
	Files(postId *domain.PostId, page, limit int) ([]domain.File, int, error)
	UpdateFilePost(id domain.FileId, postId *domain.PostId) error
	DeleteFile(id domain.FileId) error
	IncrementDownloadCount(id domain.FileId) error
}

// RequestLedger is the slice of the download-request storage the download
// path needs. Reads go to storage every time: approval state can change
// between a user's poll and their next attempt, so nothing is cached.
type RequestLedger interface {
	LedgerState(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error)
}

type File struct {
	storage FileStorage
	ledger  RequestLedger
	media   MediaStorage
}

func NewFile(storage FileStorage, ledger RequestLedger, media MediaStorage) *File {
	return &File{storage, ledger, media}
}

// DownloadResult carries the access decision and, when allowed, the open
// binary stream. File is nil only when the registry row itself is missing,
// which lets callers distinguish the two not-found cases.
type DownloadResult struct {
	Decision Decision
	File     *domain.File
	Content  io.ReadCloser
}

// Upload persists the binary first, then the registry row; a failed insert
// rolls the binary back off disk.
func (s *File) Upload(uploader *domain.User, upload *validation.PendingUpload, postId *domain.PostId) (domain.File, error) {
	storedName := uuid.NewString() + filepath.Clean(filepath.Ext(upload.OriginalName))

	storedPath, err := s.media.Save(upload.Data, storedName)
	if err != nil {
		return domain.File{}, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	id, err := s.storage.SaveFile(domain.File{
		Filename:     storedName,
		OriginalName: upload.OriginalName,
		FilePath:     storedPath,
		FileSize:     upload.Size,
		MimeType:     upload.MimeType,
		ImageWidth:   upload.ImageWidth,
		ImageHeight:  upload.ImageHeight,
		PostId:       postId,
		UploadedBy:   uploader.Id,
	})
	if err != nil {
		if cleanupErr := s.media.Delete(storedPath, storedName); cleanupErr != nil {
			logger.Log.Error("failed to clean up binary after insert failure", "filename", storedName, "error", cleanupErr)
		}
		return domain.File{}, err
	}

	return s.storage.File(id)
}

func (s *File) Get(id domain.FileId) (domain.File, error) {
	return s.storage.File(id)
}

func (s *File) List(postId *domain.PostId, page, limit int) ([]domain.File, int, error) {
	page = max(1, page)
	return s.storage.Files(postId, page, limit)
}

func (s *File) UpdatePost(id domain.FileId, postId *domain.PostId) (domain.File, error) {
	if err := s.storage.UpdateFilePost(id, postId); err != nil {
		return domain.File{}, err
	}
	return s.storage.File(id)
}

// Delete removes the binary best-effort, then the registry row. A binary
// already gone from disk must not block the row deletion.
func (s *File) Delete(id domain.FileId) error {
	file, err := s.storage.File(id)
	if err != nil {
		return err
	}

	if err := s.media.Delete(file.FilePath, file.Filename); err != nil {
		logger.Log.Error("failed to delete binary", "file_id", id, "filename", file.Filename, "error", err)
	}

	return s.storage.DeleteFile(id)
}

// Download runs the access decision for one attempt. Side effects are limited
// to the counter increment on an allowed download; it never creates ledger
// rows. The increment is best-effort: losing it must not abort the stream.
func (s *File) Download(requester *domain.User, id domain.FileId) (*DownloadResult, error) {
	file, err := s.storage.File(id)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return &DownloadResult{Decision: DecisionNotFound}, nil
		}
		return nil, err
	}

	binaryExists := s.media.Exists(file.FilePath, file.Filename)

	var ledger domain.LedgerState
	if binaryExists && (requester == nil || !requester.Admin) {
		ledger, err = s.ledger.LedgerState(requesterId(requester), id)
		if err != nil {
			return nil, err
		}
	}

	decision := Decide(requester, true, binaryExists, ledger)
	if decision != DecisionAllowed {
		return &DownloadResult{Decision: decision, File: &file}, nil
	}

	content, err := s.media.Open(file.FilePath, file.Filename)
	if err != nil {
		// Binary disappeared between the existence check and the open.
		return &DownloadResult{Decision: DecisionNotFound, File: &file}, nil
	}

	if err := s.storage.IncrementDownloadCount(id); err != nil {
		logger.Log.Error("failed to increment download count", "file_id", id, "error", err)
	}

	return &DownloadResult{Decision: DecisionAllowed, File: &file, Content: content}, nil
}

func requesterId(requester *domain.User) domain.UserId {
	if requester == nil {
		return 0
	}
	return requester.Id
}
