package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptgen/internal/api/middleware"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/service"
)

// PostHandler handles post CRUD endpoints.
type PostHandler struct {
	posts  *service.PostService
	limits domain.PageLimits
}

// NewPostHandler creates a new post handler.
func NewPostHandler(posts *service.PostService, limits domain.PageLimits) *PostHandler {
	return &PostHandler{posts: posts, limits: limits}
}

// PostRequest is the body of POST and PUT /posts. Field rules live in
// service.PostInput so both routes report the same messages.
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List handles GET /api/v1/posts.
func (h *PostHandler) List(c *gin.Context) {
	number, size := pageParams(c)
	result, err := h.posts.List(c.Request.Context(), domain.NewPageRequest(number, size, h.limits))
	if err != nil {
		respondError(c, err, "Failed to list posts")
		return
	}
	paginated(c, result, newPostResource)
}

// Show handles GET /api/v1/posts/:id.
func (h *PostHandler) Show(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newPostResource(*post)})
}

// Create handles POST /api/v1/posts.
func (h *PostHandler) Create(c *gin.Context) {
	in, ok := bindPost(c)
	if !ok {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, err, "Failed to create post")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": newPostResource(*post)})
}

// Update handles PUT /api/v1/posts/:id.
func (h *PostHandler) Update(c *gin.Context) {
	in, ok := bindPost(c)
	if !ok {
		return
	}
	post, err := h.posts.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newPostResource(*post)})
}

// Delete handles DELETE /api/v1/posts/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

func bindPost(c *gin.Context) (service.PostInput, bool) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err), "Invalid post")
		return service.PostInput{}, false
	}
	return service.PostInput{Title: req.Title, Content: req.Content}, true
}
