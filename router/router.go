package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	authHandler "inkwell/internal/auth"
	authRepository "inkwell/internal/auth/repository"
	authService "inkwell/internal/auth/service"
	"inkwell/internal/auth/token"
	docHandler "inkwell/internal/document"
	docRepository "inkwell/internal/document/repository"
	docService "inkwell/internal/document/service"
	suggestHandler "inkwell/internal/suggest"
	suggestService "inkwell/internal/suggest/service"
	"inkwell/internal/template"
	versionHandler "inkwell/internal/version"
	versionRepository "inkwell/internal/version/repository"
	versionService "inkwell/internal/version/service"
	"inkwell/middleware"
	"inkwell/pkg/response"
	"inkwell/socket"
)

// Pinger is anything the health check should probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	DB         *sql.DB
	Hub        *socket.Hub
	Tokens     *token.Manager
	Refresh    authService.RefreshStore
	RefreshTTL time.Duration
	LLM        suggestService.Completer
	CORSOrigin string
	// Checks are probed by /api/health in addition to the database.
	Checks map[string]Pinger
}

func Setup(deps Deps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(deps.Tokens)

	// Auth
	users := authRepository.NewUserRepository(deps.DB)
	authSvc := authService.NewAuthService(users, deps.Refresh, deps.Tokens, deps.Hub, deps.RefreshTTL)
	authH := authHandler.NewAuthHandler(authSvc, deps.Hub)

	mux.HandleFunc("/api/auth/signup", authH.SignUp)
	mux.HandleFunc("/api/auth/signin", authH.SignIn)
	mux.HandleFunc("/api/auth/refresh", authH.Refresh)
	mux.Handle("/api/auth/signout", auth(http.HandlerFunc(authH.SignOut)))
	mux.Handle("/api/auth/session", auth(http.HandlerFunc(authH.Session)))

	// WebSocket
	mux.Handle("/ws/auth", auth(http.HandlerFunc(authH.Events)))

	// Documents
	docRepo := docRepository.NewDocumentRepository(deps.DB)
	docH := docHandler.NewDocumentHandler(docService.NewDocumentService(docRepo))

	mux.Handle("/api/documents", auth(http.HandlerFunc(docH.GetDocuments)))
	mux.Handle("/api/documents/get", auth(http.HandlerFunc(docH.GetDocument)))
	mux.Handle("/api/documents/save", auth(http.HandlerFunc(docH.SaveDocument)))
	mux.Handle("/api/documents/export", auth(http.HandlerFunc(docH.ExportDocument)))

	// Versions
	versionRepo := versionRepository.NewVersionRepository(deps.DB)
	versionH := versionHandler.NewVersionHandler(versionService.NewVersionService(versionRepo, docRepo))

	mux.Handle("/api/documents/versions", auth(http.HandlerFunc(versionH.GetVersions)))
	mux.Handle("/api/documents/versions/save", auth(http.HandlerFunc(versionH.SaveVersion)))
	mux.Handle("/api/documents/versions/get", auth(http.HandlerFunc(versionH.GetVersion)))

	// Suggestions are public.
	suggestH := suggestHandler.NewSuggestHandler(suggestService.NewSuggestService(deps.LLM))
	mux.HandleFunc("/api/suggest", suggestH.Suggest)

	mux.HandleFunc("/api/templates", template.Handler)
	mux.HandleFunc("/api/health", health(deps))

	return middleware.CORS(deps.CORSOrigin)(middleware.Logging(mux))
}

func health(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok"}
		status := http.StatusOK
		if err := deps.DB.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		for name, p := range deps.Checks {
			checks[name] = "ok"
			if err := p.Ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		response.JSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
	}
}
