package domain

type (
	Email    = string
	Password = string
	UserId   = int64

	PostId = int64

	FileId    = int64
	RequestId = int64
)
