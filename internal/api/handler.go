package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"clinicsearch/internal/domain"
	"clinicsearch/internal/usecase"
)

// Handler exposes the suggestion and embedding operations over HTTP.
type Handler struct {
	matcher   *usecase.Matcher
	generator *usecase.Generator
	log       zerolog.Logger
}

func NewHandler(matcher *usecase.Matcher, generator *usecase.Generator, log zerolog.Logger) *Handler {
	return &Handler{
		matcher:   matcher,
		generator: generator,
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/:type/suggestions", h.GetSuggestions)
	api.POST("/:type/embeddings", h.GenerateEmbeddings)
	api.POST("/:type/:id/embeddings", h.RegenerateEmbedding)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type suggestionsResponse struct {
	Success     bool                `json:"success"`
	Suggestions []domain.Suggestion `json:"suggestions"`
}

type generateResponse struct {
	Success bool `json:"success"`
	usecase.GenerateResult
}

// GetSuggestions handles GET /:type/suggestions?keyword=...
// A search with no matches above threshold returns success with zero
// suggestions; a type with no embedded rows at all is a 404 so callers
// can render "indexing in progress" differently from "no matches".
func (h *Handler) GetSuggestions(c echo.Context) error {
	t, err := domain.ParseEntityType(c.Param("type"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid entity type"})
	}

	suggestions, err := h.matcher.Search(c.Request().Context(), t, c.QueryParam("keyword"))
	switch {
	case errors.Is(err, domain.ErrEmptyKeyword):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "keyword is required"})
	case errors.Is(err, domain.ErrNoEmbeddedEntities):
		return c.JSON(http.StatusNotFound, errorResponse{Message: "no data found"})
	case err != nil:
		h.log.Error().Err(err).Str("type", string(t)).Msg("suggestion search failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "suggestion search failed"})
	}

	return c.JSON(http.StatusOK, suggestionsResponse{Success: true, Suggestions: suggestions})
}

// GenerateEmbeddings handles POST /:type/embeddings. It embeds every row
// of the type that has no vector yet. Per-row failures are logged and
// counted; the batch still reports success.
func (h *Handler) GenerateEmbeddings(c echo.Context) error {
	t, err := domain.ParseEntityType(c.Param("type"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid entity type"})
	}

	res, err := h.generator.GenerateAll(c.Request().Context(), t, nil)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(t)).Msg("embedding batch failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "embedding generation failed"})
	}

	return c.JSON(http.StatusOK, generateResponse{Success: true, GenerateResult: res})
}

// RegenerateEmbedding handles POST /:type/:id/embeddings. Regeneration
// runs in the background; callers do not await failures, which are only
// logged. Typically invoked right after a profile update.
func (h *Handler) RegenerateEmbedding(c echo.Context) error {
	t, err := domain.ParseEntityType(c.Param("type"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid entity type"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "entity id is required"})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := h.generator.Regenerate(ctx, t, id); err != nil {
			h.log.Error().Err(err).
				Str("type", string(t)).
				Str("id", id).
				Msg("background re-embedding failed")
		}
	}()

	return c.JSON(http.StatusAccepted, map[string]bool{"success": true})
}
