package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptgen/internal/api/middleware"
	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/service"
)

// PromptGenerationHandler handles prompt generation endpoints.
type PromptGenerationHandler struct {
	generations *service.PromptGenerationService
	limits      domain.PageLimits
}

// NewPromptGenerationHandler creates a new prompt generation handler.
// Parameters:
//   - generations: orchestrator for uploads and listings.
//   - limits: default and maximum page sizes.
//
// Returns:
//   - *PromptGenerationHandler: initialized handler.
func NewPromptGenerationHandler(generations *service.PromptGenerationService, limits domain.PageLimits) *PromptGenerationHandler {
	return &PromptGenerationHandler{
		generations: generations,
		limits:      limits,
	}
}

// List handles GET /api/v1/prompt-generations.
func (h *PromptGenerationHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)
	q := domain.NewListQuery(c.Query("search"), c.Query("sort"), page, perPage, h.limits)

	result, err := h.generations.List(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		respondError(c, err, "Failed to list prompt generations")
		return
	}

	paginated(c, result, h.resource)
}

// Create handles POST /api/v1/prompt-generations.
// The image arrives as the multipart field "image".
func (h *PromptGenerationHandler) Create(c *gin.Context) {
	up, err := h.readUpload(c)
	if err != nil {
		respondError(c, err, "Failed to generate prompt")
		return
	}

	rec, err := h.generations.Generate(c.Request.Context(), middleware.UserID(c), *up)
	if err != nil {
		respondError(c, err, "Failed to generate prompt")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": h.resource(*rec)})
}

func (h *PromptGenerationHandler) readUpload(c *gin.Context) (*service.Upload, error) {
	maxBytes := h.generations.MaxUploadBytes()
	tooLarge := apperr.Validation("image",
		fmt.Sprintf("The image must not be greater than %d kilobytes.", maxBytes/1024))

	fh, err := c.FormFile("image")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, tooLarge
		}
		return nil, apperr.Validation("image", "The image field is required.")
	}
	if fh.Size > maxBytes {
		return nil, tooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, apperr.Internal("failed to read upload", err)
	}

	return &service.Upload{
		Filename:     fh.Filename,
		Data:         data,
		DeclaredSize: fh.Size,
	}, nil
}

func (h *PromptGenerationHandler) resource(rec domain.GenerationRecord) GenerationResource {
	return newGenerationResource(rec, h.generations.ImageURL(rec.StoragePath))
}
