// Package storage persists recipe images.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize bounds a decoded recipe image.
const MaxImageSize = 5 << 20

// KeyPrefix is prepended to every stored image key.
const KeyPrefix = "recipes/images/"

var (
	ErrInvalidDataURI  = errors.New("image must be a base64 data URI")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrImageTooLarge   = errors.New("image exceeds the maximum size")
)

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ImageStore saves images and returns the key recorded on the recipe.
type ImageStore interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// DecodeDataURI parses "data:image/<ext>;base64,<payload>".
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURI
	}

	ext := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:image/"), ";base64"))
	contentType, ok := contentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURI
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	if ext == "jpg" {
		ext = "jpeg"
	}
	return &Image{Data: data, ContentType: contentType, Extension: ext}, nil
}

func newKey(ext string) string {
	return KeyPrefix + uuid.NewString() + "." + ext
}
