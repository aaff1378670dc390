package domain

import "time"

type User struct {
	Id        UserId
	Email     Email
	Username  string
	PassHash  string
	Admin     bool
	CreatedAt time.Time
}
