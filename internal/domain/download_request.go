package domain

import (
	"fmt"
	"net/http"
	"time"

	"github.com/inkwell-dev/inkwell/internal/errors"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(s)
	if !status.Valid() {
		return "", &errors.ErrorWithStatusCode{Message: fmt.Sprintf("Invalid status: %q", s), StatusCode: http.StatusBadRequest}
	}
	return status, nil
}

// DownloadRequest is one user's request to download one gated file.
type DownloadRequest struct {
	Id           RequestId
	UserId       UserId
	FileId       FileId
	Status       RequestStatus
	Notes        *string
	RequestDate  time.Time
	ApprovedDate *time.Time
	ApprovedBy   *UserId

	// Populated by joined reads.
	FileName      *string
	FileSize      *int64
	MimeType      *string
	PostTitle     *string
	PostSlug      *string
	RequesterName *string
	ApproverName  *string
}

// Transition applies an admin decision. The approval fields are stamped or
// cleared together so they always agree with the status: non-pending carries
// approver and timestamp, pending carries neither. Re-finalizing an already
// approved or rejected request is allowed and overwrites both fields.
func (r *DownloadRequest) Transition(to RequestStatus, adminId UserId, now time.Time) error {
	if !to.Valid() {
		return &errors.ErrorWithStatusCode{Message: fmt.Sprintf("Invalid status: %q", to), StatusCode: http.StatusBadRequest}
	}
	r.Status = to
	if to == StatusPending {
		r.ApprovedDate = nil
		r.ApprovedBy = nil
	} else {
		r.ApprovedDate = &now
		r.ApprovedBy = &adminId
	}
	return nil
}
