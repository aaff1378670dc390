package service

import (
	"strings"
	"time"

	"github.com/inkwell-dev/inkwell/internal/domain"
	"github.com/microcosm-cc/bluemonday"
)

// to mock service in tests
type DownloadRequestService interface {
	Create(requester *domain.User, fileId domain.FileId, notes *string) (domain.DownloadRequest, error)
	Get(id domain.RequestId) (domain.DownloadRequest, error)
	Latest(userId domain.UserId, fileId domain.FileId) (*domain.DownloadRequest, error)
	ListByRequester(userId domain.UserId, status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error)
	ListAll(status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error)
	Transition(id domain.RequestId, to domain.RequestStatus, approver *domain.User, notes *string) (domain.DownloadRequest, error)
	Delete(id domain.RequestId) error
}

type DownloadRequestStorage interface {
	SaveRequest(userId domain.UserId, fileId domain.FileId, notes *string) (domain.RequestId, error)
	Request(id domain.RequestId) (domain.DownloadRequest, error)
	LatestRequest(userId domain.UserId, fileId domain.FileId) (*domain.DownloadRequest, error)
	Requests(userId *domain.UserId, status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error)
	UpdateRequest(req domain.DownloadRequest) error
	DeleteRequest(id domain.RequestId) error
	LedgerState(userId domain.UserId, fileId domain.FileId) (domain.LedgerState, error)
}

type DownloadRequest struct {
	storage   DownloadRequestStorage
	sanitizer *bluemonday.Policy
}

func NewDownloadRequest(storage DownloadRequestStorage) *DownloadRequest {
	// Notes are plain text; strip all markup.
	return &DownloadRequest{storage: storage, sanitizer: bluemonday.StrictPolicy()}
}

// Create inserts a new pending request. The uniqueness of a pending
// (user, file) pair is enforced by the storage layer, so two concurrent
// creates cannot both succeed; the loser surfaces as a conflict.
func (s *DownloadRequest) Create(requester *domain.User, fileId domain.FileId, notes *string) (domain.DownloadRequest, error) {
	id, err := s.storage.SaveRequest(requester.Id, fileId, s.sanitizeNotes(notes))
	if err != nil {
		return domain.DownloadRequest{}, err
	}
	return s.storage.Request(id)
}

func (s *DownloadRequest) Get(id domain.RequestId) (domain.DownloadRequest, error) {
	return s.storage.Request(id)
}

func (s *DownloadRequest) Latest(userId domain.UserId, fileId domain.FileId) (*domain.DownloadRequest, error) {
	return s.storage.LatestRequest(userId, fileId)
}

func (s *DownloadRequest) ListByRequester(userId domain.UserId, status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error) {
	page = max(1, page)
	return s.storage.Requests(&userId, status, page, limit)
}

func (s *DownloadRequest) ListAll(status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error) {
	page = max(1, page)
	return s.storage.Requests(nil, status, page, limit)
}

// Transition applies an admin decision to a request. An absent note keeps
// the existing one; re-finalizing a non-pending request is permitted and
// restamps the approval fields.
func (s *DownloadRequest) Transition(id domain.RequestId, to domain.RequestStatus, approver *domain.User, notes *string) (domain.DownloadRequest, error) {
	req, err := s.storage.Request(id)
	if err != nil {
		return domain.DownloadRequest{}, err
	}

	if err := req.Transition(to, approver.Id, time.Now().UTC()); err != nil {
		return domain.DownloadRequest{}, err
	}
	if notes != nil {
		req.Notes = s.sanitizeNotes(notes)
	}

	if err := s.storage.UpdateRequest(req); err != nil {
		return domain.DownloadRequest{}, err
	}
	return s.storage.Request(id)
}

func (s *DownloadRequest) Delete(id domain.RequestId) error {
	return s.storage.DeleteRequest(id)
}

func (s *DownloadRequest) sanitizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	clean := strings.TrimSpace(s.sanitizer.Sanitize(*notes))
	return &clean
}
