package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/timmy/promptgen/internal/api/middleware"
	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Server-side failures answer with
// serverMessage and the error's generic message; internals are only logged.
func respondError(c *gin.Context, err error, serverMessage string) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("Server Error", err)
	}

	status := StatusFor(appErr.Kind)
	switch {
	case appErr.Kind == apperr.KindValidation:
		c.JSON(status, gin.H{
			"message": appErr.Message,
			"errors":  appErr.Fields,
		})
	case status < http.StatusInternalServerError:
		c.JSON(status, gin.H{"message": appErr.Message})
	default:
		middleware.GetLogger(c).WithError(err).Error(serverMessage)
		c.JSON(status, gin.H{
			"message": serverMessage,
			"error":   appErr.Message,
		})
	}
}

var bindingMessages = map[string]string{
	"required": "The %s field is required.",
	"email":    "The %s must be a valid email address.",
	"min":      "The %s must be at least %s characters.",
	"max":      "The %s must not be greater than %s characters.",
}

// bindingError converts gin binding failures into a validation error keyed
// by the JSON field names.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("body", "The request body is invalid.")
	}

	fields := map[string][]string{}
	var first string
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		format, ok := bindingMessages[fe.Tag()]
		if !ok {
			format = "The %s field is invalid."
		}
		var msg string
		if strings.Count(format, "%s") == 2 {
			msg = fmt.Sprintf(format, name, fe.Param())
		} else {
			msg = fmt.Sprintf(format, name)
		}
		fields[name] = append(fields[name], msg)
		if first == "" {
			first = msg
		}
	}
	return apperr.ValidationFields(fields, first)
}

// pageParams reads page and per_page from the query string.
func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.Query("page"))
	perPage, _ = strconv.Atoi(c.Query("per_page"))
	return page, perPage
}

// PaginationMeta describes a page of a listing.
type PaginationMeta struct {
	CurrentPage int    `json:"current_page"`
	PerPage     int    `json:"per_page"`
	Total       int64  `json:"total"`
	LastPage    int    `json:"last_page"`
	From        *int   `json:"from"`
	To          *int   `json:"to"`
	Path        string `json:"path"`
}

// PaginationLinks are absolute-path links to neighbouring pages.
type PaginationLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// paginated writes {data, links, meta} for a page of items.
func paginated[T any, R any](c *gin.Context, page domain.Page[T], toResource func(T) R) {
	data := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		data = append(data, toResource(item))
	}

	meta := PaginationMeta{
		CurrentPage: page.Number,
		PerPage:     page.Size,
		Total:       page.Total,
		LastPage:    page.LastPage(),
		Path:        c.Request.URL.Path,
	}
	if len(page.Items) > 0 {
		from, to := page.From(), page.To()
		meta.From, meta.To = &from, &to
	}

	links := PaginationLinks{
		First: pageURL(c, 1),
		Last:  pageURL(c, meta.LastPage),
	}
	if page.Number > 1 {
		prev := pageURL(c, page.Number-1)
		links.Prev = &prev
	}
	if page.Number < meta.LastPage {
		next := pageURL(c, page.Number+1)
		links.Next = &next
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"links": links,
		"meta":  meta,
	})
}

func pageURL(c *gin.Context, n int) string {
	q := url.Values{}
	for k, v := range c.Request.URL.Query() {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return c.Request.URL.Path + "?" + q.Encode()
}
