package service

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/inkwell-dev/inkwell/internal/domain"
	internal_errors "github.com/inkwell-dev/inkwell/internal/errors"
	"github.com/inkwell-dev/inkwell/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileStorage mocks the FileStorage interface.
type MockFileStorage struct {
	saveFileFunc       func(file domain.File) (domain.FileId, error)
	fileFunc           func(id domain.FileId) (domain.File, error)
	filesFunc          func(postId *domain.PostId, page, limit int) ([]domain.File, int, error)
	updateFilePostFunc func(id domain.FileId, postId *domain.PostId) error
	deleteFileFunc     func(id domain.FileId) error
	incrementFunc      func(id domain.FileId) error
}

func (m *MockFileStorage) SaveFile(file domain.File) (domain.FileId, error) {
	if m.saveFileFunc != nil {
		return m.saveFileFunc(file)
	}
	return 1, nil
}

func (m *MockFileStorage) File(id domain.FileId) (domain.File, error) {
	if m.fileFunc != nil {
		return m.fileFunc(id)
	}
	return domain.File{Id: id}, nil
}

func (m *MockFileStorage) Files(postId *domain.PostId, page, limit int) ([]domain.File, int, error) {
	if m.filesFunc != nil {
		return m.filesFunc(postId, page, limit)
	}
	return nil, 0, nil
}

func (m *MockFileStorage) UpdateFilePost(id domain.FileId, postId *domain.PostId) error {
	if m.updateFilePostFunc != nil {
		return m.updateFilePostFunc(id, postId)
	}
	return nil
}

func (m *MockFileStorage) DeleteFile(id domain.FileId) error {
	if m.deleteFileFunc != nil {
		return m.deleteFileFunc(id)
	}
	return nil
}

func (m *MockFileStorage) IncrementDownloadCount(id domain.FileId) error {
	if m.incrementFunc != nil {
		return m.incrementFunc(id)
	}
	return nil
}

// MockRequestLedger mocks the RequestLedger interface.
type MockRequestLedger struct {
	ledgerStateFunc func(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error)
}

func (m *MockRequestLedger) LedgerState(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error) {
	if m.ledgerStateFunc != nil {
		return m.ledgerStateFunc(userId, fileId)
	}
	return domain.LedgerState{}, nil
}

// MockMediaStorage mocks the MediaStorage interface.
type MockMediaStorage struct {
	saveFunc   func(data io.Reader, storedName string) (string, error)
	existsFunc func(storedPath, storedName string) bool
	openFunc   func(storedPath, storedName string) (io.ReadCloser, error)
	deleteFunc func(storedPath, storedName string) error
}

func (m *MockMediaStorage) Save(data io.Reader, storedName string) (string, error) {
	if m.saveFunc != nil {
		return m.saveFunc(data, storedName)
	}
	return storedName, nil
}

func (m *MockMediaStorage) Exists(storedPath, storedName string) bool {
	if m.existsFunc != nil {
		return m.existsFunc(storedPath, storedName)
	}
	return true
}

func (m *MockMediaStorage) Open(storedPath, storedName string) (io.ReadCloser, error) {
	if m.openFunc != nil {
		return m.openFunc(storedPath, storedName)
	}
	return io.NopCloser(strings.NewReader("content")), nil
}

func (m *MockMediaStorage) Delete(storedPath, storedName string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(storedPath, storedName)
	}
	return nil
}

func notFoundErr(message string) error {
	return &internal_errors.ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func TestFileDownload(t *testing.T) {
	user := &domain.User{Id: 10}
	admin := &domain.User{Id: 11, Admin: true}
	storedFile := domain.File{Id: 1, Filename: "abc.png", OriginalName: "cat.png", FilePath: "abc.png"}

	t.Run("missing registry row", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) {
				return domain.File{}, notFoundErr("File not found")
			},
		}
		s := NewFile(storage, &MockRequestLedger{}, &MockMediaStorage{})

		result, err := s.Download(user, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionNotFound, result.Decision)
		assert.Nil(t, result.File)
	})

	t.Run("missing binary", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) { return storedFile, nil },
		}
		media := &MockMediaStorage{
			existsFunc: func(storedPath, storedName string) bool { return false },
		}
		ledger := &MockRequestLedger{
			ledgerStateFunc: func(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error) {
				t.Error("ledger must not be consulted when the binary is missing")
				return domain.LedgerState{}, nil
			},
		}
		s := NewFile(storage, ledger, media)

		result, err := s.Download(user, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionNotFound, result.Decision)
		require.NotNil(t, result.File, "row exists, so the file must be reported")
	})

	t.Run("admin bypasses ledger", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) { return storedFile, nil },
		}
		ledger := &MockRequestLedger{
			ledgerStateFunc: func(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error) {
				t.Error("ledger must not be consulted for admins")
				return domain.LedgerState{}, nil
			},
		}
		s := NewFile(storage, ledger, &MockMediaStorage{})

		result, err := s.Download(admin, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionAllowed, result.Decision)
		require.NotNil(t, result.Content)
		result.Content.Close()
	})

	t.Run("approved user streams and counter increments", func(t *testing.T) {
		incremented := false
		storage := &MockFileStorage{
			fileFunc:      func(id domain.FileId) (domain.File, error) { return storedFile, nil },
			incrementFunc: func(id domain.FileId) error { incremented = true; return nil },
		}
		ledger := &MockRequestLedger{
			ledgerStateFunc: func(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error) {
				assert.Equal(t, user.Id, userId)
				return domain.LedgerState{HasApproved: true}, nil
			},
		}
		s := NewFile(storage, ledger, &MockMediaStorage{})

		result, err := s.Download(user, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionAllowed, result.Decision)
		require.NotNil(t, result.Content)
		content, _ := io.ReadAll(result.Content)
		result.Content.Close()
		assert.Equal(t, "content", string(content))
		assert.True(t, incremented)
	})

	t.Run("failed counter does not abort the stream", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc:      func(id domain.FileId) (domain.File, error) { return storedFile, nil },
			incrementFunc: func(id domain.FileId) error { return errors.New("db down") },
		}
		s := NewFile(storage, &MockRequestLedger{}, &MockMediaStorage{})

		result, err := s.Download(admin, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionAllowed, result.Decision)
		require.NotNil(t, result.Content)
		result.Content.Close()
	})

	t.Run("pending request", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) { return storedFile, nil },
		}
		ledger := &MockRequestLedger{
			ledgerStateFunc: func(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error) {
				return domain.LedgerState{HasPending: true}, nil
			},
		}
		s := NewFile(storage, ledger, &MockMediaStorage{})

		result, err := s.Download(user, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionPendingExists, result.Decision)
		assert.Nil(t, result.Content)
	})

	t.Run("no request yet", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) { return storedFile, nil },
		}
		s := NewFile(storage, &MockRequestLedger{}, &MockMediaStorage{})

		result, err := s.Download(user, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionRequestRequired, result.Decision)
	})

	t.Run("binary vanished between check and open", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) { return storedFile, nil },
		}
		media := &MockMediaStorage{
			openFunc: func(storedPath, storedName string) (io.ReadCloser, error) {
				return nil, errors.New("no such file")
			},
		}
		s := NewFile(storage, &MockRequestLedger{}, media)

		result, err := s.Download(admin, 1)

		require.NoError(t, err)
		assert.Equal(t, DecisionNotFound, result.Decision)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) {
				return domain.File{}, errors.New("connection refused")
			},
		}
		s := NewFile(storage, &MockRequestLedger{}, &MockMediaStorage{})

		_, err := s.Download(user, 1)

		assert.Error(t, err)
	})
}

func TestFileUpload(t *testing.T) {
	uploader := &domain.User{Id: 3, Admin: true}
	upload := &validation.PendingUpload{
		OriginalName: "report.pdf",
		Size:         1024,
		MimeType:     "application/pdf",
		Data:         nil,
	}

	t.Run("stored name is unique, original name preserved", func(t *testing.T) {
		var saved domain.File
		storage := &MockFileStorage{
			saveFileFunc: func(file domain.File) (domain.FileId, error) {
				saved = file
				return 5, nil
			},
			fileFunc: func(id domain.FileId) (domain.File, error) {
				return domain.File{Id: id, OriginalName: saved.OriginalName}, nil
			},
		}
		s := NewFile(storage, &MockRequestLedger{}, &MockMediaStorage{})

		file, err := s.Upload(uploader, upload, nil)

		require.NoError(t, err)
		assert.Equal(t, domain.FileId(5), file.Id)
		assert.Equal(t, "report.pdf", saved.OriginalName)
		assert.NotEqual(t, "report.pdf", saved.Filename)
		assert.True(t, strings.HasSuffix(saved.Filename, ".pdf"))
		assert.Equal(t, uploader.Id, saved.UploadedBy)
	})

	t.Run("insert failure rolls the binary back", func(t *testing.T) {
		deleted := false
		storage := &MockFileStorage{
			saveFileFunc: func(file domain.File) (domain.FileId, error) {
				return 0, errors.New("insert failed")
			},
		}
		media := &MockMediaStorage{
			deleteFunc: func(storedPath, storedName string) error {
				deleted = true
				return nil
			},
		}
		s := NewFile(storage, &MockRequestLedger{}, media)

		_, err := s.Upload(uploader, upload, nil)

		assert.Error(t, err)
		assert.True(t, deleted, "binary must be cleaned up after a failed insert")
	})
}

func TestFileDelete(t *testing.T) {
	t.Run("missing binary does not block row deletion", func(t *testing.T) {
		rowDeleted := false
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) {
				return domain.File{Id: id, Filename: "abc.png", FilePath: "abc.png"}, nil
			},
			deleteFileFunc: func(id domain.FileId) error {
				rowDeleted = true
				return nil
			},
		}
		media := &MockMediaStorage{
			deleteFunc: func(storedPath, storedName string) error {
				return errors.New("disk error")
			},
		}
		s := NewFile(storage, &MockRequestLedger{}, media)

		err := s.Delete(1)

		require.NoError(t, err)
		assert.True(t, rowDeleted)
	})

	t.Run("missing row aborts", func(t *testing.T) {
		storage := &MockFileStorage{
			fileFunc: func(id domain.FileId) (domain.File, error) {
				return domain.File{}, notFoundErr("File not found")
			},
		}
		s := NewFile(storage, &MockRequestLedger{}, &MockMediaStorage{})

		err := s.Delete(1)

		assert.Error(t, err)
	})
}
