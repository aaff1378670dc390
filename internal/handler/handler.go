package handler

import (
	"github.com/inkwell-dev/inkwell/internal/config"
	"github.com/inkwell-dev/inkwell/internal/service"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping() error
}

type Handler struct {
	auth     service.AuthService
	files    service.FileService
	requests service.DownloadRequestService
	health   Pinger
	cfg      *config.Config
}

func New(auth service.AuthService, files service.FileService, requests service.DownloadRequestService, health Pinger, cfg *config.Config) *Handler {
	return &Handler{auth, files, requests, health, cfg}
}
