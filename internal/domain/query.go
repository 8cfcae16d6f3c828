package domain

import "strings"

// SortField is a column generation records may be ordered by.
type SortField string

const (
	SortCreatedAt        SortField = "created_at"
	SortGeneratedPrompt  SortField = "generated_prompt"
	SortOriginalFilename SortField = "original_filename"
	SortFileSize         SortField = "file_size"
)

var sortableFields = map[string]SortField{
	string(SortCreatedAt):        SortCreatedAt,
	string(SortGeneratedPrompt):  SortGeneratedPrompt,
	string(SortOriginalFilename): SortOriginalFilename,
	string(SortFileSize):         SortFileSize,
}

// Sort is an allow-listed ordering.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Field: SortCreatedAt, Desc: true}

// ParseSort turns a sort token such as "-file_size" into a Sort. A leading
// "-" means descending. Empty tokens and fields outside the allow-list yield
// DefaultSort.
func ParseSort(token string) Sort {
	token = strings.TrimSpace(token)
	desc := strings.HasPrefix(token, "-")
	field, ok := sortableFields[strings.TrimPrefix(token, "-")]
	if !ok {
		return DefaultSort
	}
	return Sort{Field: field, Desc: desc}
}

// String renders the sort back into token form.
func (s Sort) String() string {
	if s.Desc {
		return "-" + string(s.Field)
	}
	return string(s.Field)
}

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageLimits bounds client-supplied page sizes.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// NewPageRequest normalizes client input: non-positive numbers become page 1,
// non-positive sizes become the default, oversized requests are capped.
func NewPageRequest(number, size int, limits PageLimits) PageRequest {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = limits.DefaultSize
	}
	if limits.MaxSize > 0 && size > limits.MaxSize {
		size = limits.MaxSize
	}
	return PageRequest{Number: number, Size: size}
}

// ListQuery is the immutable filter/sort/page specification for listing
// generation records. Build one per request; never share or mutate.
type ListQuery struct {
	Search string
	Sort   Sort
	Page   PageRequest
}

// NewListQuery builds a ListQuery from raw request parameters.
func NewListQuery(search, sortToken string, page, perPage int, limits PageLimits) ListQuery {
	return ListQuery{
		Search: strings.TrimSpace(search),
		Sort:   ParseSort(sortToken),
		Page:   NewPageRequest(page, perPage, limits),
	}
}

// Page is one slice of a listing plus the totals needed for pagination meta.
type Page[T any] struct {
	Items  []T
	Total  int64
	Number int
	Size   int
}

// LastPage returns the number of the last page, at least 1.
func (p Page[T]) LastPage() int {
	if p.Size <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// From returns the 1-based position of the first item on this page, 0 if empty.
func (p Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

// To returns the 1-based position of the last item on this page, 0 if empty.
func (p Page[T]) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}
