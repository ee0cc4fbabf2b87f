package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/edavydova/shortlink/internal/database"
	"github.com/edavydova/shortlink/internal/models"
	"github.com/edavydova/shortlink/internal/service"
	"github.com/edavydova/shortlink/pkg/response"
)

// authRequest represents the request payload for registration and login.
type authRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// userResponse represents the response payload for a user. The stored
// credential is never part of it.
type userResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	IsPro     bool      `json:"is_pro"`
	IsAdmin   bool      `json:"is_admin"`
	LinkCount int64     `json:"link_count"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		UserID:    user.ID,
		Username:  user.Username,
		IsPro:     user.IsPro,
		IsAdmin:   user.IsAdmin,
		LinkCount: user.LinkCount,
		CreatedAt: user.CreatedAt,
	}
}

// handleRegisterUser handles POST requests to create a new account.
//
// The request must contain a username and a password. The password is
// hashed by the service layer; the handler returns the created account
// without the credential.
func handleRegisterUser(svc UserService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleRegisterUser"
	const successMsg = "The account has been registered successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req authRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, database.ErrUsernameTaken) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.UsernameTakenResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

// handleLogin handles POST requests to authenticate an account.
//
// On success any previously presented session is cleared, a fresh session
// is created, and its token is set as a cookie. Expiry is enforced by the
// session store. Unknown usernames and wrong passwords are answered
// identically.
func handleLogin(svc UserService, sessions SessionStore, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleLogin"
	const successMsg = "Logged in successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req authRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		user, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.InvalidCredentialsResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		if cookie, err := r.Cookie(sessionCookie); err == nil {
			if err := sessions.Delete(r.Context(), cookie.Value); err != nil {
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
			}
		}

		token, err := sessions.Create(r.Context(), user)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}

// handleGetUser handles GET requests to retrieve a user by username.
func handleGetUser(svc UserService) http.HandlerFunc {
	const op = "api.http.handleGetUser"
	const successMsg = "The user was retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		user, err := svc.GetByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

// handleListUsers handles GET requests to list all registered users.
func handleListUsers(svc UserService) http.HandlerFunc {
	const op = "api.http.handleListUsers"
	const successMsg = "The users were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]userResponse, 0, len(users))
		for i := range users {
			data = append(data, toUserResponse(&users[i]))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}
