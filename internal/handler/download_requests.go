package handler

import (
	"net/http"

	"github.com/inkwell-dev/inkwell/internal/api"
	"github.com/inkwell-dev/inkwell/internal/domain"
	mw "github.com/inkwell-dev/inkwell/internal/middleware"
	"github.com/inkwell-dev/inkwell/internal/utils"
)

// statusFilter parses the optional ?status= query parameter.
func statusFilter(r *http.Request) (*domain.RequestStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status, err := domain.ParseRequestStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func requestRecords(requests []domain.DownloadRequest) []api.DownloadRequestRecord {
	records := make([]api.DownloadRequestRecord, len(requests))
	for i := range requests {
		records[i] = api.NewDownloadRequestRecord(&requests[i])
	}
	return records
}

// CheckDownloadRequest reports the caller's most recent request for a file,
// so the client can poll approval state.
func (h *Handler) CheckDownloadRequest(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteJSONError(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	fileId, err := idParam(r, "fileId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	latest, err := h.requests.Latest(user.Id, fileId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if latest == nil {
		utils.WriteJSON(w, api.CheckDownloadRequestResponse{Requested: false, Status: nil})
		return
	}

	status := string(latest.Status)
	utils.WriteJSON(w, api.CheckDownloadRequestResponse{
		Requested: true,
		Status:    &status,
		RequestId: &latest.Id,
		CreatedAt: &latest.RequestDate,
	})
}

func (h *Handler) CreateDownloadRequest(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteJSONError(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body api.CreateDownloadRequestRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	request, err := h.requests.Create(user, body.FileId, body.Notes)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSONStatus(w, api.CreateDownloadRequestResponse{
		Message: "Download request created successfully",
		Request: api.NewDownloadRequestRecord(&request),
	}, http.StatusCreated)
}

func (h *Handler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteJSONError(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	page, limit, err := utils.ParsePagination(r, 10)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	status, err := statusFilter(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	requests, total, err := h.requests.ListByRequester(user.Id, status, page, limit)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.DownloadRequestsResponse{
		Requests:   requestRecords(requests),
		Pagination: api.NewPagination(page, limit, total),
	})
}

func (h *Handler) GetAllRequests(w http.ResponseWriter, r *http.Request) {
	page, limit, err := utils.ParsePagination(r, 20)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	status, err := statusFilter(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	requests, total, err := h.requests.ListAll(status, page, limit)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.DownloadRequestsResponse{
		Requests:   requestRecords(requests),
		Pagination: api.NewPagination(page, limit, total),
	})
}

// GetDownloadRequest returns one request; readable only by its owner or an
// admin.
func (h *Handler) GetDownloadRequest(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteJSONError(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	request, err := h.requests.Get(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if request.UserId != user.Id && !user.Admin {
		utils.WriteJSONError(w, "Access denied", http.StatusForbidden)
		return
	}

	utils.WriteJSON(w, api.DownloadRequestResponse{Request: api.NewDownloadRequestRecord(&request)})
}

func (h *Handler) UpdateDownloadRequest(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteJSONError(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.UpdateDownloadRequestRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	status, err := domain.ParseRequestStatus(body.Status)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	request, err := h.requests.Transition(id, status, user, body.Notes)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.UpdateDownloadRequestResponse{
		Message: "Download request updated successfully",
		Request: api.NewDownloadRequestRecord(&request),
	})
}

func (h *Handler) DeleteDownloadRequest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.requests.Delete(id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.MessageResponse{Message: "Download request deleted successfully"})
}
