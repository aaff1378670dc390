package api

import (
	"time"

	"github.com/inkwell-dev/inkwell/internal/domain"
)

type CreateDownloadRequestRequest struct {
	FileId int64   `json:"fileId" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type UpdateDownloadRequestRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type DownloadRequestRecord struct {
	Id           int64      `json:"id"`
	UserId       int64      `json:"user_id"`
	FileId       int64      `json:"file_id"`
	Status       string     `json:"status"`
	Notes        *string    `json:"notes"`
	RequestDate  time.Time  `json:"request_date"`
	ApprovedDate *time.Time `json:"approved_date"`
	ApprovedBy   *int64     `json:"approved_by"`

	FileName      *string `json:"file_name,omitempty"`
	FileSize      *int64  `json:"file_size,omitempty"`
	MimeType      *string `json:"mime_type,omitempty"`
	PostTitle     *string `json:"post_title,omitempty"`
	PostSlug      *string `json:"post_slug,omitempty"`
	RequesterName *string `json:"requester_name,omitempty"`
	ApproverName  *string `json:"approver_name,omitempty"`
}

func NewDownloadRequestRecord(r *domain.DownloadRequest) DownloadRequestRecord {
	return DownloadRequestRecord{
		Id:            r.Id,
		UserId:        r.UserId,
		FileId:        r.FileId,
		Status:        string(r.Status),
		Notes:         r.Notes,
		RequestDate:   r.RequestDate,
		ApprovedDate:  r.ApprovedDate,
		ApprovedBy:    r.ApprovedBy,
		FileName:      r.FileName,
		FileSize:      r.FileSize,
		MimeType:      r.MimeType,
		PostTitle:     r.PostTitle,
		PostSlug:      r.PostSlug,
		RequesterName: r.RequesterName,
		ApproverName:  r.ApproverName,
	}
}

type CreateDownloadRequestResponse struct {
	Message string                `json:"message"`
	Request DownloadRequestRecord `json:"request"`
}

type DownloadRequestResponse struct {
	Request DownloadRequestRecord `json:"request"`
}

type DownloadRequestsResponse struct {
	Requests   []DownloadRequestRecord `json:"requests"`
	Pagination Pagination              `json:"pagination"`
}

type UpdateDownloadRequestResponse struct {
	Message string                `json:"message"`
	Request DownloadRequestRecord `json:"request"`
}

// CheckDownloadRequestResponse reports the caller's latest request for a file.
type CheckDownloadRequestResponse struct {
	Requested bool       `json:"requested"`
	Status    *string    `json:"status"`
	RequestId *int64     `json:"requestId,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}
