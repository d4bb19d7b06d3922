package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cfmconsole/cfm/internal/config"
	"github.com/cfmconsole/cfm/internal/db"
	"github.com/cfmconsole/cfm/internal/middleware"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/service"
	"github.com/cfmconsole/cfm/internal/storage"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	Blobs         storage.Storage
	LoginLimiter  *middleware.RateLimiter
	AuthService   *service.AuthService
	UserService   *service.UserService
	ServerService *service.ServerService
	FileService   *service.FileService
	ShareService  *service.ShareService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	serverRepository := repository.NewServerRepository(database)
	fileRepository := repository.NewFileRepository(database)
	shareRepository := repository.NewShareRepository(database)

	// Storage
	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepository, authService)
	serverService := service.NewServerService(serverRepository)
	fileService := service.NewFileService(fileRepository, shareRepository, blobs, cfg.MaxUploadSize)
	shareService := service.NewShareService(fileRepository, serverRepository, shareRepository)

	return &App{
		Cfg:           cfg,
		DB:            database,
		Blobs:         blobs,
		LoginLimiter:  middleware.NewRateLimiter(5, time.Minute),
		AuthService:   authService,
		UserService:   userService,
		ServerService: serverService,
		FileService:   fileService,
		ShareService:  shareService,
	}, nil
}

// Close releases the blob store and the database pool.
func (a *App) Close() error {
	var errs []error
	if a.LoginLimiter != nil {
		a.LoginLimiter.Stop()
	}
	if a.Blobs != nil {
		if err := a.Blobs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if a.DB != nil {
		if err := db.Close(a.DB); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
