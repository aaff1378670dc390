package api

import (
	"time"

	"github.com/inkwell-dev/inkwell/internal/domain"
)

type UpdateFileRequest struct {
	PostId *int64 `json:"postId"`
}

type FileRecord struct {
	Id            int64     `json:"id"`
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"original_name"`
	FilePath      string    `json:"file_path"`
	FileSize      int64     `json:"file_size"`
	MimeType      string    `json:"mime_type"`
	ImageWidth    *int      `json:"image_width,omitempty"`
	ImageHeight   *int      `json:"image_height,omitempty"`
	PostId        *int64    `json:"post_id"`
	UploadedBy    int64     `json:"uploaded_by"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	UploadedByName *string `json:"uploaded_by_name,omitempty"`
	PostTitle      *string `json:"post_title,omitempty"`
	PostSlug       *string `json:"post_slug,omitempty"`
	PostStatus     *string `json:"post_status,omitempty"`
}

func NewFileRecord(f *domain.File) FileRecord {
	return FileRecord{
		Id:             f.Id,
		Filename:       f.Filename,
		OriginalName:   f.OriginalName,
		FilePath:       f.FilePath,
		FileSize:       f.FileSize,
		MimeType:       f.MimeType,
		ImageWidth:     f.ImageWidth,
		ImageHeight:    f.ImageHeight,
		PostId:         f.PostId,
		UploadedBy:     f.UploadedBy,
		DownloadCount:  f.DownloadCount,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		UploadedByName: f.UploadedByName,
		PostTitle:      f.PostTitle,
		PostSlug:       f.PostSlug,
		PostStatus:     f.PostStatus,
	}
}

type UploadFileResponse struct {
	Message string     `json:"message"`
	File    FileRecord `json:"file"`
}

type FileResponse struct {
	File FileRecord `json:"file"`
}

type FilesResponse struct {
	Files      []FileRecord `json:"files"`
	Pagination Pagination   `json:"pagination"`
}

type UpdateFileResponse struct {
	Message string     `json:"message"`
	File    FileRecord `json:"file"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// DownloadRefusal tells the client which call-to-action to render without a
// second round trip: create a request, or wait on the pending one.
type DownloadRefusal struct {
	Error             string `json:"error"`
	NeedsRequest      bool   `json:"needsRequest,omitempty"`
	HasPendingRequest bool   `json:"hasPendingRequest,omitempty"`
}
