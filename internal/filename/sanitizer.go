// Package filename turns client-supplied upload names into unique,
// storage-safe object names.
package filename

import (
	"crypto/rand"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	// SuffixLength is the number of random characters appended to every name.
	SuffixLength = 10

	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Sanitizer builds safe names of the form <base>_<random>.<ext>.
// The extension is kept as the client declared it; content type checks
// belong to the caller.
type Sanitizer struct {
	random io.Reader
}

// New returns a Sanitizer drawing randomness from crypto/rand.
func New() *Sanitizer {
	return &Sanitizer{random: rand.Reader}
}

// NewWithSource returns a Sanitizer using the given random source.
func NewWithSource(r io.Reader) *Sanitizer {
	return &Sanitizer{random: r}
}

// Sanitize returns a unique safe name for originalName.
func (s *Sanitizer) Sanitize(originalName string) (string, error) {
	base, ext := Split(originalName)

	suffix, err := s.suffix()
	if err != nil {
		return "", fmt.Errorf("generate filename suffix: %w", err)
	}

	name := CleanBase(base) + "_" + suffix
	if ext != "" {
		name += "." + ext
	}
	return name, nil
}

// Split separates the last path segment of name into its base and its
// extension (without the dot). Both "/" and "\" count as separators.
func Split(name string) (base, ext string) {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	ext = path.Ext(name)
	base = strings.TrimSuffix(name, ext)
	return base, strings.TrimPrefix(ext, ".")
}

// CleanBase replaces every character outside [A-Za-z0-9._-] with '_'.
func CleanBase(base string) string {
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if isSafe(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}

// suffix draws SuffixLength characters with rejection sampling so every
// character of the alphabet is equally likely.
func (s *Sanitizer) suffix() (string, error) {
	const maxByte = 256 - (256 % len(suffixAlphabet))

	out := make([]byte, 0, SuffixLength)
	buf := make([]byte, SuffixLength*2)
	for len(out) < SuffixLength {
		if _, err := io.ReadFull(s.random, buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			if int(c) >= maxByte {
				continue
			}
			out = append(out, suffixAlphabet[int(c)%len(suffixAlphabet)])
			if len(out) == SuffixLength {
				break
			}
		}
	}
	return string(out), nil
}
