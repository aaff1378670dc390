package domain

import "time"

// File is one uploaded binary and its registry metadata.
// FilePath is what the row stored at upload time; historical rows may hold a
// full path while new rows hold the bare stored filename.
type File struct {
	Id            FileId
	Filename      string // unique stored name on disk
	OriginalName  string // user-facing name, used for content-disposition
	FilePath      string
	FileSize      int64
	MimeType      string
	ImageWidth    *int
	ImageHeight   *int
	PostId        *PostId
	UploadedBy    UserId
	DownloadCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Populated by joined reads, not stored on the files row.
	UploadedByName *string
	PostTitle      *string
	PostSlug       *string
	PostStatus     *string
}

// LedgerState summarizes the requester's download-request history for one
// file. An approved record anywhere in history grants access; a pending one
// blocks creating another.
type LedgerState struct {
	HasApproved bool
	HasPending  bool
}
