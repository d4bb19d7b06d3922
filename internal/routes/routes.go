package routes

import (
	"net/http"

	"github.com/cfmconsole/cfm/internal/app"
	"github.com/cfmconsole/cfm/internal/handler"
	"github.com/cfmconsole/cfm/internal/middleware"
	"github.com/cfmconsole/cfm/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	files := handler.NewFileHandler(app.FileService, app.Cfg.S3PresignExpiry)
	share := handler.NewShareHandler(app.ShareService)
	auth := handler.NewAuthHandler(app.AuthService)
	users := handler.NewUserHandler(app.UserService)
	servers := handler.NewServerHandler(app.ServerService)
	health := handler.NewHealthHandler(app.DB)

	viewer := middleware.RequireRole(model.RoleViewer)
	editor := middleware.RequireRole(model.RoleEditor)
	admin := middleware.RequireRole(model.RoleAdmin)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Check)

	// Auth (rate limited)
	mux.HandleFunc("POST /auth/login", middleware.RateLimit(app.LoginLimiter)(auth.Login))

	// ============================================================================
	// FILES
	// ============================================================================

	mux.HandleFunc("GET /files", viewer(files.List))
	mux.HandleFunc("GET /files/{id}/download", viewer(files.Download))
	mux.HandleFunc("GET /files/file-access", viewer(share.Servers))

	mux.HandleFunc("POST /files", editor(files.Upload))
	mux.HandleFunc("POST /files/create-directory", editor(files.CreateDirectory))
	mux.HandleFunc("POST /files/file-access", editor(share.Share))

	// ============================================================================
	// ADMINISTRATION
	// ============================================================================

	mux.HandleFunc("GET /servers", viewer(servers.List))
	mux.HandleFunc("POST /servers", admin(servers.Create))
	mux.HandleFunc("GET /users", admin(users.List))
	mux.HandleFunc("POST /users", admin(users.Create))

	// 404
	mux.HandleFunc("/{path...}", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Recover,
		middleware.RequestID,
		middleware.SecurityHeaders,
		middleware.CORS(app.Cfg.CORSOrigin), // Must answer preflights before authentication
		middleware.RequestLogging,
		middleware.Authenticate(app.AuthService),
	)
}
