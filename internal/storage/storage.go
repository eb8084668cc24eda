// Package storage persists uploaded listing images.  Handlers only see the
// ImageStore interface; the backend is chosen at startup.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageStore saves an image and returns the key stored on the listing.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// fallbackName replaces a client name with nothing usable left after
// sanitizing (for example a name written entirely in non-Latin script).
const fallbackName = "image"

// NewImageKey builds a unique key for an uploaded file.  The client name
// is reduced to a safe base name and prefixed with a date path and a
// random id, so two donors uploading "photo.jpg" never collide.
func NewImageKey(filename string, now time.Time) string {
	return fmt.Sprintf("donations/%04d/%02d/%s-%s", now.Year(), int(now.Month()), uuid.NewString(), imageName(filename))
}

// imageName sanitizes stem and extension separately so "照片.jpg" still
// keeps its ".jpg".
func imageName(filename string) string {
	base := baseName(filename)
	ext := path.Ext(base)
	stem := SafeFilename(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = fallbackName
	}
	if ext = SafeFilename(ext); ext == "" {
		return stem
	}
	return stem + "." + ext
}

func baseName(filename string) string {
	return path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
}

// SafeFilename keeps ASCII letters, digits, dot, dash and underscore from
// the base name and replaces spaces with underscores.
func SafeFilename(filename string) string {
	var b strings.Builder
	for _, r := range baseName(filename) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}
