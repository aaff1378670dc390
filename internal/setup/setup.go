package setup

import (
	"github.com/inkwell-dev/inkwell/internal/config"
	"github.com/inkwell-dev/inkwell/internal/handler"
	"github.com/inkwell-dev/inkwell/internal/jwt"
	"github.com/inkwell-dev/inkwell/internal/middleware"
	"github.com/inkwell-dev/inkwell/internal/service"
	"github.com/inkwell-dev/inkwell/internal/storage/fs"
	"github.com/inkwell-dev/inkwell/internal/storage/pg"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	Media          *fs.Storage
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *middleware.Auth
	Config         *config.Config
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	media, err := fs.New(cfg.Public.UploadsDir)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, jwtService)
	files := service.NewFile(storage, storage, media)
	requests := service.NewDownloadRequest(storage)

	h := handler.New(auth, files, requests, storage, cfg)
	authMw := middleware.NewAuth(jwtService, auth)

	return &Dependencies{
		Storage:        storage,
		Media:          media,
		Handler:        h,
		Jwt:            jwtService,
		AuthMiddleware: authMw,
		Config:         cfg,
	}, nil
}
