// Package filestore keeps uploaded files such as business logos.
package filestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/h2non/filetype"
)

var (
	// ErrNotFound is returned when no file exists under a key or URL.
	ErrNotFound = errors.New("file not found")

	// ErrNotImage is returned by SniffImage for unsupported content.
	ErrNotImage = errors.New("file is not a supported image")
)

// Store saves files and reads them back.
type Store interface {
	// Put stores data under key and returns the URL it is reachable at.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Open returns the contents behind a URL previously returned by Put.
	Open(ctx context.Context, url string) ([]byte, error)
}

// Image describes sniffed image content.
type Image struct {
	MIME      string
	Extension string

	// PDFType is the image type name understood by the PDF renderer.
	PDFType string
}

var supportedImages = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPG",
	"image/gif":  "GIF",
	"image/webp": "",
}

// SniffImage identifies data by its magic bytes. Only PNG, JPEG, GIF and
// WebP are accepted. WebP logos are stored but cannot be printed on PDFs.
func SniffImage(data []byte) (Image, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return Image{}, fmt.Errorf("failed to detect file type: %w", err)
	}
	if !filetype.IsImage(data) {
		return Image{}, ErrNotImage
	}
	pdfType, ok := supportedImages[kind.MIME.Value]
	if !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrNotImage, kind.MIME.Value)
	}
	return Image{MIME: kind.MIME.Value, Extension: kind.Extension, PDFType: pdfType}, nil
}
