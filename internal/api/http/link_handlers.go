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

// linkRequest represents the request payload for creating a shortened link.
// The owner is taken from the session, never from the payload.
type linkRequest struct {
	OriginalURL string `json:"original_url" validate:"required,url"`
}

// linkResponse represents the response payload for a link. The visit
// fields are pointers so the public projection can omit them.
type linkResponse struct {
	LinkID         string     `json:"link_id"`
	OriginalURL    string     `json:"original_url"`
	NumHits        *int64     `json:"num_hits,omitempty"`
	LastAccessedAt *time.Time `json:"last_accessed_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// toLinkResponse converts a link model into a response payload. The full
// projection includes the visit statistics; the public one omits them.
func toLinkResponse(link *models.Link, full bool) linkResponse {
	resp := linkResponse{
		LinkID:      link.ID,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}

	if full {
		numHits := link.NumHits
		lastAccessedAt := link.LastAccessedAt
		resp.NumHits = &numHits
		resp.LastAccessedAt = &lastAccessedAt
	}

	return resp
}

// handleShortenLink handles POST requests to shorten a URL.
//
// The request must contain a valid URL and an authenticated session. The
// handler admits the request against the owner's quota, derives the
// identifier, and returns the created link.
func handleShortenLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenLink"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := authUserFrom(r.Context())

		var req linkRequest

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

		link, err := svc.ShortenURL(r.Context(), user.UserID, req.OriginalURL)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrUserNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
			case errors.Is(err, service.ErrQuotaExceeded):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.QuotaExceededResponse)
			case errors.Is(err, database.ErrLinkExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.LinkConflictResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link, true)))
	}
}

// handleRedirect handles GET requests on a link identifier.
//
// The handler resolves the identifier, records the visit, and redirects
// the client to the original URL.
func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		linkID := chi.URLParam(r, "linkID")

		link, err := svc.Resolve(r.Context(), linkID)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, link.OriginalURL, http.StatusFound)
	}
}

// handleListUserLinks handles GET requests to list a user's links.
//
// Owners and admins get the full projection including visit statistics;
// anyone else gets the public one.
func handleListUserLinks(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleListUserLinks"
	const successMsg = "The links were retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := authUserFrom(r.Context())
		userID := chi.URLParam(r, "userID")

		links, err := svc.ListUserLinks(r.Context(), userID)
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

		full := user.IsAdmin || user.UserID == userID

		data := make([]linkResponse, 0, len(links))
		for i := range links {
			data = append(data, toLinkResponse(&links[i], full))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

// handleDeleteLink handles DELETE requests to remove a link.
//
// Only the link's owner or an admin may delete it.
func handleDeleteLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleDeleteLink"
	const successMsg = "The link was deleted successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := authUserFrom(r.Context())
		linkID := chi.URLParam(r, "linkID")

		err := svc.DeleteLink(r.Context(), user, linkID)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrLinkNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
			case errors.Is(err, service.ErrNotLinkOwner):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.NotResourceOwnerResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}
