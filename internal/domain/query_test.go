package domain

import "testing"

func TestParseSort(t *testing.T) {
	tests := []struct {
		token string
		want  Sort
	}{
		{token: "", want: Sort{Field: SortCreatedAt, Desc: true}},
		{token: "-file_size", want: Sort{Field: SortFileSize, Desc: true}},
		{token: "file_size", want: Sort{Field: SortFileSize, Desc: false}},
		{token: "original_filename", want: Sort{Field: SortOriginalFilename}},
		{token: "-generated_prompt", want: Sort{Field: SortGeneratedPrompt, Desc: true}},
		{token: "created_at", want: Sort{Field: SortCreatedAt}},
		{token: "  -created_at ", want: Sort{Field: SortCreatedAt, Desc: true}},
		{token: "password_hash", want: DefaultSort},
		{token: "-user_id", want: DefaultSort},
		{token: "file_size; DROP TABLE users", want: DefaultSort},
		{token: "-", want: DefaultSort},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := ParseSort(tt.token); got != tt.want {
				t.Errorf("ParseSort(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}

func TestNewPageRequest(t *testing.T) {
	limits := PageLimits{DefaultSize: 10, MaxSize: 100}

	tests := []struct {
		name         string
		number, size int
		want         PageRequest
	}{
		{name: "defaults", want: PageRequest{Number: 1, Size: 10}},
		{name: "explicit", number: 3, size: 25, want: PageRequest{Number: 3, Size: 25}},
		{name: "negative", number: -2, size: -5, want: PageRequest{Number: 1, Size: 10}},
		{name: "capped", number: 1, size: 1000, want: PageRequest{Number: 1, Size: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPageRequest(tt.number, tt.size, limits); got != tt.want {
				t.Errorf("NewPageRequest(%d, %d) = %+v, want %+v", tt.number, tt.size, got, tt.want)
			}
		})
	}

	if off := (PageRequest{Number: 3, Size: 10}).Offset(); off != 20 {
		t.Errorf("Offset = %d, want 20", off)
	}
}

func TestPageMeta(t *testing.T) {
	p := Page[int]{Items: []int{1, 2, 3}, Total: 23, Number: 3, Size: 10}
	if p.LastPage() != 3 {
		t.Errorf("LastPage = %d, want 3", p.LastPage())
	}
	if p.From() != 21 || p.To() != 23 {
		t.Errorf("From/To = %d/%d, want 21/23", p.From(), p.To())
	}

	empty := Page[int]{Number: 1, Size: 10}
	if empty.LastPage() != 1 || empty.From() != 0 || empty.To() != 0 {
		t.Errorf("empty page meta = %d %d %d", empty.LastPage(), empty.From(), empty.To())
	}
}

func TestNewListQueryTrimsSearch(t *testing.T) {
	q := NewListQuery("  mountain ", "-file_size", 0, 0, PageLimits{DefaultSize: 10, MaxSize: 100})
	if q.Search != "mountain" {
		t.Errorf("Search = %q", q.Search)
	}
	if q.Sort.String() != "-file_size" {
		t.Errorf("Sort = %s", q.Sort)
	}
	if q.Page != (PageRequest{Number: 1, Size: 10}) {
		t.Errorf("Page = %+v", q.Page)
	}
}
