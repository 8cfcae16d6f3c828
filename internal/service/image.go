package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/timmy/promptgen/internal/apperr"
	_ "golang.org/x/image/webp"
)

// AllowedImageTypes lists the mime types accepted for upload.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageInfo is what inspection learned about an upload.
type ImageInfo struct {
	MimeType string
	Width    int
	Height   int
}

// InspectImage sniffs the content type of data and checks that it decodes
// as an allowed image. The client-declared type is never consulted.
func InspectImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("image", "The image field is required.")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), AllowedImageTypes...) {
		return nil, apperr.Validation("image", "The image must be a file of type: jpeg, png, gif, webp.")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		verr := apperr.Validation("image", "The image must be an image.")
		if err != nil {
			verr.Err = fmt.Errorf("decode %s header: %w", mtype.String(), err)
		}
		return nil, verr
	}

	return &ImageInfo{
		MimeType: mtype.String(),
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
