package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/edavydova/shortlink/internal/models"

	httpSwagger "github.com/swaggo/http-swagger"
)

// UserService defines the interface for the account business logic.
type UserService interface {
	// Register creates a new account from a username and plaintext
	// password. It returns the created user or an error if the username
	// is taken.
	Register(ctx context.Context, username, password string) (*models.User, error)

	// Login verifies credentials and returns the identity snapshot to
	// attach to a new session.
	Login(ctx context.Context, username, password string) (models.AuthUser, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ListUsers returns all registered users.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// LinkService defines the interface for the link business logic.
type LinkService interface {
	// ShortenURL creates a shortened link owned by the given user.
	ShortenURL(ctx context.Context, ownerID, originalURL string) (*models.Link, error)

	// Resolve looks up a link by identifier and records the visit.
	Resolve(ctx context.Context, linkID string) (*models.Link, error)

	// ListUserLinks returns all links owned by the given user.
	ListUserLinks(ctx context.Context, userID string) ([]models.Link, error)

	// DeleteLink removes a link on behalf of the requester, enforcing
	// ownership.
	DeleteLink(ctx context.Context, requester models.AuthUser, linkID string) error
}

// SessionStore defines the interface for the session persistence backend.
type SessionStore interface {
	// Create issues a fresh token for the given identity snapshot.
	Create(ctx context.Context, user models.AuthUser) (string, error)

	// Get resolves a token to its identity snapshot.
	Get(ctx context.Context, token string) (models.AuthUser, error)

	// Delete removes a session; absent tokens are ignored.
	Delete(ctx context.Context, token string) error
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, userSvc UserService, linkSvc LinkService, sessions SessionStore) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(loadSession(sessions))

	r.Route("/api", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Post("/users", handleRegisterUser(userSvc, validate))
		r.Post("/login", handleLogin(userSvc, sessions, validate))
		r.Get("/users", handleListUsers(userSvc))
		r.Get("/users/{username}", handleGetUser(userSvc))

		r.With(requireSession).Post("/links", handleShortenLink(linkSvc, validate))

		r.Route("/users/{userID}/links", func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/", handleListUserLinks(linkSvc))
			r.Delete("/{linkID}", handleDeleteLink(linkSvc))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Get("/{linkID}", handleRedirect(linkSvc))

	return r
}
