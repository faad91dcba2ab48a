package router

import (
	"fruit-api/handler"
	"net/http"

	_ "fruit-api/docs"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	User     *handler.UserHandler
	Password *handler.PasswordHandler
	Health   *handler.HealthHandler
	Auth     handler.AccessTokenParser
}

func NewRouter(h Handlers, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	health := h.Health
	if health == nil {
		health = handler.NewHealthHandler(nil)
	}
	mux.HandleFunc("GET /health", health.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	if h.User != nil {
		mux.Handle("POST /users/register", handler.ErrorHandlingMiddleware(h.User.Register))
		mux.Handle("POST /users/login", handler.ErrorHandlingMiddleware(h.User.Login))
		if h.Auth != nil {
			authMiddleware := handler.AuthMiddleware(h.Auth)
			mux.Handle("GET /users/me", authMiddleware(handler.ErrorHandlingMiddleware(h.User.Me)))
		}
	}

	if h.Password != nil {
		mux.Handle("POST /users/forgot-password", handler.ErrorHandlingMiddleware(h.Password.ForgotPassword))
		mux.Handle("POST /users/reset-password", handler.ErrorHandlingMiddleware(h.Password.ResetPassword))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}
