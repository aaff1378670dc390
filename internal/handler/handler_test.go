package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-dev/inkwell/internal/domain"
	internal_errors "github.com/inkwell-dev/inkwell/internal/errors"
	mw "github.com/inkwell-dev/inkwell/internal/middleware"
	"github.com/inkwell-dev/inkwell/internal/service"
	"github.com/inkwell-dev/inkwell/internal/validation"
)

func notFound(message string) error {
	return &internal_errors.ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

// withUser injects a user into the request context using the same key as the
// auth middleware, so handlers under test see an authenticated caller.
func withUser(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user != nil {
				ctx := context.WithValue(r.Context(), mw.UserClaimsKey, user)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(h *Handler, user *domain.User) *chi.Mux {
	router := chi.NewRouter()
	router.Use(withUser(user))

	router.Post("/v1/auth/register", h.Register)
	router.Post("/v1/auth/login", h.Login)
	router.Post("/v1/auth/logout", h.Logout)
	router.Get("/v1/auth/me", h.Me)

	router.Post("/v1/files/upload", h.UploadFile)
	router.Get("/v1/files", h.GetFiles)
	router.Get("/v1/files/{id}", h.GetFile)
	router.Get("/v1/files/{id}/download", h.DownloadFile)
	router.Put("/v1/files/{id}", h.UpdateFile)
	router.Delete("/v1/files/{id}", h.DeleteFile)

	router.Post("/v1/download-requests", h.CreateDownloadRequest)
	router.Get("/v1/download-requests", h.GetAllRequests)
	router.Get("/v1/download-requests/check/{fileId}", h.CheckDownloadRequest)
	router.Get("/v1/download-requests/my-requests", h.GetMyRequests)
	router.Get("/v1/download-requests/{id}", h.GetDownloadRequest)
	router.Put("/v1/download-requests/{id}", h.UpdateDownloadRequest)
	router.Delete("/v1/download-requests/{id}", h.DeleteDownloadRequest)

	return router
}

// MockAuthService mocks service.AuthService.
type MockAuthService struct {
	MockRegister func(email domain.Email, username string, password domain.Password) (domain.User, error)
	MockLogin    func(email domain.Email, password domain.Password) (string, domain.User, error)
	MockUser     func(id domain.UserId) (domain.User, error)
}

func (m *MockAuthService) Register(email domain.Email, username string, password domain.Password) (domain.User, error) {
	if m.MockRegister != nil {
		return m.MockRegister(email, username, password)
	}
	return domain.User{}, nil
}

func (m *MockAuthService) Login(email domain.Email, password domain.Password) (string, domain.User, error) {
	if m.MockLogin != nil {
		return m.MockLogin(email, password)
	}
	return "", domain.User{}, nil
}

func (m *MockAuthService) User(id domain.UserId) (domain.User, error) {
	if m.MockUser != nil {
		return m.MockUser(id)
	}
	return domain.User{Id: id}, nil
}

// MockFileService mocks service.FileService.
type MockFileService struct {
	MockUpload     func(uploader *domain.User, upload *validation.PendingUpload, postId *domain.PostId) (domain.File, error)
	MockGet        func(id domain.FileId) (domain.File, error)
	MockList       func(postId *domain.PostId, page, limit int) ([]domain.File, int, error)
	MockUpdatePost func(id domain.FileId, postId *domain.PostId) (domain.File, error)
	MockDelete     func(id domain.FileId) error
	MockDownload   func(requester *domain.User, id domain.FileId) (*service.DownloadResult, error)
}

func (m *MockFileService) Upload(uploader *domain.User, upload *validation.PendingUpload, postId *domain.PostId) (domain.File, error) {
	if m.MockUpload != nil {
		return m.MockUpload(uploader, upload, postId)
	}
	return domain.File{}, nil
}

func (m *MockFileService) Get(id domain.FileId) (domain.File, error) {
	if m.MockGet != nil {
		return m.MockGet(id)
	}
	return domain.File{Id: id}, nil
}

func (m *MockFileService) List(postId *domain.PostId, page, limit int) ([]domain.File, int, error) {
	if m.MockList != nil {
		return m.MockList(postId, page, limit)
	}
	return nil, 0, nil
}

func (m *MockFileService) UpdatePost(id domain.FileId, postId *domain.PostId) (domain.File, error) {
	if m.MockUpdatePost != nil {
		return m.MockUpdatePost(id, postId)
	}
	return domain.File{Id: id}, nil
}

func (m *MockFileService) Delete(id domain.FileId) error {
	if m.MockDelete != nil {
		return m.MockDelete(id)
	}
	return nil
}

func (m *MockFileService) Download(requester *domain.User, id domain.FileId) (*service.DownloadResult, error) {
	if m.MockDownload != nil {
		return m.MockDownload(requester, id)
	}
	return &service.DownloadResult{Decision: service.DecisionNotFound}, nil
}

// MockDownloadRequestService mocks service.DownloadRequestService.
type MockDownloadRequestService struct {
	MockCreate          func(requester *domain.User, fileId domain.FileId, notes *string) (domain.DownloadRequest, error)
	MockGet             func(id domain.RequestId) (domain.DownloadRequest, error)
	MockLatest          func(userId domain.UserId, fileId domain.FileId) (*domain.DownloadRequest, error)
	MockListByRequester func(userId domain.UserId, status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error)
	MockListAll         func(status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error)
	MockTransition      func(id domain.RequestId, to domain.RequestStatus, approver *domain.User, notes *string) (domain.DownloadRequest, error)
	MockDelete          func(id domain.RequestId) error
}

func (m *MockDownloadRequestService) Create(requester *domain.User, fileId domain.FileId, notes *string) (domain.DownloadRequest, error) {
	if m.MockCreate != nil {
		return m.MockCreate(requester, fileId, notes)
	}
	return domain.DownloadRequest{}, nil
}

func (m *MockDownloadRequestService) Get(id domain.RequestId) (domain.DownloadRequest, error) {
	if m.MockGet != nil {
		return m.MockGet(id)
	}
	return domain.DownloadRequest{Id: id}, nil
}

func (m *MockDownloadRequestService) Latest(userId domain.UserId, fileId domain.FileId) (*domain.DownloadRequest, error) {
	if m.MockLatest != nil {
		return m.MockLatest(userId, fileId)
	}
	return nil, nil
}

func (m *MockDownloadRequestService) ListByRequester(userId domain.UserId, status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error) {
	if m.MockListByRequester != nil {
		return m.MockListByRequester(userId, status, page, limit)
	}
	return nil, 0, nil
}

func (m *MockDownloadRequestService) ListAll(status *domain.RequestStatus, page, limit int) ([]domain.DownloadRequest, int, error) {
	if m.MockListAll != nil {
		return m.MockListAll(status, page, limit)
	}
	return nil, 0, nil
}

func (m *MockDownloadRequestService) Transition(id domain.RequestId, to domain.RequestStatus, approver *domain.User, notes *string) (domain.DownloadRequest, error) {
	if m.MockTransition != nil {
		return m.MockTransition(id, to, approver, notes)
	}
	return domain.DownloadRequest{Id: id, Status: to}, nil
}

func (m *MockDownloadRequestService) Delete(id domain.RequestId) error {
	if m.MockDelete != nil {
		return m.MockDelete(id)
	}
	return nil
}
