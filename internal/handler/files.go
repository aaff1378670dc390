package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/inkwell-dev/inkwell/internal/api"
	"github.com/inkwell-dev/inkwell/internal/domain"
	"github.com/inkwell-dev/inkwell/internal/logger"
	mw "github.com/inkwell-dev/inkwell/internal/middleware"
	"github.com/inkwell-dev/inkwell/internal/middleware/metrics"
	"github.com/inkwell-dev/inkwell/internal/service"
	"github.com/inkwell-dev/inkwell/internal/utils"
	"github.com/inkwell-dev/inkwell/internal/validation"
)

// multipart overhead on top of the binary itself
const uploadFormOverhead = 1 << 20

func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteJSONError(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	maxRequestSize := h.cfg.Public.MaxUploadSize + uploadFormOverhead
	if err := validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		utils.WriteJSONError(w, fmt.Sprintf("Upload exceeds the limit of %d bytes", h.cfg.Public.MaxUploadSize), http.StatusRequestEntityTooLarge)
		return
	}

	fileHeaders := r.MultipartForm.File["file"]
	if len(fileHeaders) == 0 {
		utils.WriteJSONError(w, "No file uploaded", http.StatusBadRequest)
		return
	}

	upload, err := validation.ValidateUpload(fileHeaders[0], h.cfg.Public.AllowedMimeTypes)
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer upload.Data.Close()

	var postId *domain.PostId
	if raw := r.FormValue("postId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.WriteJSONError(w, "Invalid postId: must be an integer", http.StatusBadRequest)
			return
		}
		postId = &id
	}

	file, err := h.files.Upload(user, upload, postId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSONStatus(w, api.UploadFileResponse{
		Message: "File uploaded successfully",
		File:    api.NewFileRecord(&file),
	}, http.StatusCreated)
}

func (h *Handler) GetFiles(w http.ResponseWriter, r *http.Request) {
	page, limit, err := utils.ParsePagination(r, 20)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var postId *domain.PostId
	if raw := r.URL.Query().Get("postId"); raw != "" {
		id, err := parseIntParam(raw, "postId")
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		postId = &id
	}

	files, total, err := h.files.List(postId, page, limit)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	records := make([]api.FileRecord, len(files))
	for i := range files {
		records[i] = api.NewFileRecord(&files[i])
	}
	utils.WriteJSON(w, api.FilesResponse{Files: records, Pagination: api.NewPagination(page, limit, total)})
}

func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	file, err := h.files.Get(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.FileResponse{File: api.NewFileRecord(&file)})
}

// DownloadFile streams the binary when access is granted, otherwise answers
// with a structured refusal telling the client which action to offer next.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user := mw.GetUserFromContext(r)
	result, err := h.files.Download(user, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	metrics.RecordDownloadDecision(result.Decision.String())

	switch result.Decision {
	case service.DecisionNotFound:
		if result.File != nil {
			utils.WriteJSONError(w, "File not found on server", http.StatusNotFound)
		} else {
			utils.WriteJSONError(w, "File not found", http.StatusNotFound)
		}
		return
	case service.DecisionRequestRequired:
		utils.WriteJSONStatus(w, api.DownloadRefusal{
			Error:        "Access denied. Please request access to this file.",
			NeedsRequest: true,
		}, http.StatusForbidden)
		return
	case service.DecisionPendingExists:
		utils.WriteJSONStatus(w, api.DownloadRefusal{
			Error:             "Your download request is pending approval.",
			HasPendingRequest: true,
		}, http.StatusForbidden)
		return
	}

	defer result.Content.Close()
	file := result.File

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	w.Header().Set("Content-Length", strconv.FormatInt(file.FileSize, 10))

	// Headers are committed once we start copying; a failure here can only
	// be logged and the connection dropped.
	if _, err := io.Copy(w, result.Content); err != nil {
		logger.Log.Warn("download stream aborted", "file_id", file.Id, "error", err)
	}
}

func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.UpdateFileRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	file, err := h.files.UpdatePost(id, body.PostId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.UpdateFileResponse{
		Message: "File updated successfully",
		File:    api.NewFileRecord(&file),
	})
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.files.Delete(id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.MessageResponse{Message: "File deleted successfully"})
}
