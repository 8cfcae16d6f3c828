package filename

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9._-]*_[A-Za-z0-9]{10}$`)

func TestSanitize_OnlySafeCharacters(t *testing.T) {
	s := New()

	tests := []struct {
		original string
		wantBase string
		wantExt  string
	}{
		{original: "my photo!.jpg", wantBase: "my_photo_", wantExt: ".jpg"},
		{original: "../../etc/passwd.png", wantBase: "passwd", wantExt: ".png"},
		{original: `..\..\windows\system32.gif`, wantBase: "system32", wantExt: ".gif"},
		{original: "$(rm -rf ~).webp", wantBase: "__rm_-rf___", wantExt: ".webp"},
		{original: "a;b|c&d`e`.jpeg", wantBase: "a_b_c_d_e_", wantExt: ".jpeg"},
		{original: "фото.png", wantBase: "____", wantExt: ".png"},
		{original: "archive.tar.gz", wantBase: "archive.tar", wantExt: ".gz"},
		{original: "noext", wantBase: "noext", wantExt: ""},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			got, err := s.Sanitize(tt.original)
			if err != nil {
				t.Fatalf("Sanitize() error = %v", err)
			}
			if !strings.HasPrefix(got, tt.wantBase+"_") {
				t.Errorf("Sanitize(%q) = %q, want base %q", tt.original, got, tt.wantBase)
			}
			if !strings.HasSuffix(got, tt.wantExt) {
				t.Errorf("Sanitize(%q) = %q, want extension %q", tt.original, got, tt.wantExt)
			}
			stem := strings.TrimSuffix(got, tt.wantExt)
			if !safeName.MatchString(stem) {
				t.Errorf("Sanitize(%q) = %q has unsafe characters or a malformed suffix", tt.original, got)
			}
			if strings.Contains(got, "/") || strings.Contains(got, "\\") {
				t.Errorf("Sanitize(%q) = %q contains a path separator", tt.original, got)
			}
		})
	}
}

func TestSanitize_NoCollisions(t *testing.T) {
	s := New()
	const trials = 10000

	seen := make(map[string]struct{}, trials)
	for i := 0; i < trials; i++ {
		name, err := s.Sanitize("my photo!.jpg")
		if err != nil {
			t.Fatalf("Sanitize() error = %v", err)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("collision after %d trials: %s", i, name)
		}
		seen[name] = struct{}{}
	}
}

func TestSanitize_DeterministicWithInjectedSource(t *testing.T) {
	src := bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 4)

	a, err := NewWithSource(bytes.NewReader(src)).Sanitize("cat.png")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewWithSource(bytes.NewReader(src)).Sanitize("cat.png")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("same source produced %q and %q", a, b)
	}
	if a != "cat_ABCDEFGHIJ.png" {
		t.Fatalf("Sanitize = %q, want cat_ABCDEFGHIJ.png", a)
	}
}

func TestSanitize_SkipsBiasedBytes(t *testing.T) {
	// 248..255 fall outside the largest multiple of 62 and must be rejected.
	src := append(bytes.Repeat([]byte{255}, 20), bytes.Repeat([]byte{1}, 20)...)
	got, err := NewWithSource(bytes.NewReader(src)).Sanitize("x.gif")
	if err != nil {
		t.Fatal(err)
	}
	if got != "x_BBBBBBBBBB.gif" {
		t.Fatalf("Sanitize = %q", got)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestSanitize_RandomSourceFailure(t *testing.T) {
	if _, err := NewWithSource(failingReader{}).Sanitize("a.png"); err == nil {
		t.Fatal("expected error from failing random source")
	}
}
