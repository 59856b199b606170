package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidType = errors.New("invalid image type")

// FileTypes maps accepted upload MIME types to file extensions.
var FileTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
	"image/webp": "webp",
}

type File struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// Store persists uploaded binaries under generated names and serves them at
// public URLs. Save returns the public URL of the stored file; Delete removes
// a file by its bare filename.
type Store interface {
	Save(ctx context.Context, f File) (string, error)
	Delete(ctx context.Context, filename string) error
}

// NewFilename builds a collision-resistant filename for an upload. Nothing
// coordinates concurrent uploads, so the name carries a timestamp plus a
// random suffix.
func NewFilename(original, contentType string) (string, error) {
	ext, ok := FileTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidType, contentType)
	}

	base := strings.ReplaceAll(original, " ", "-")
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "file"
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s.%s", base, time.Now().UnixMilli(), suffix, ext), nil
}

// Filename extracts the stored filename from a public URL. Every backend
// keeps its files under an "uploads/" segment, so everything after the last
// occurrence is the name Delete expects.
func Filename(url string) (string, bool) {
	i := strings.LastIndex(url, "uploads/")
	if i < 0 {
		return "", false
	}
	name := url[i+len("uploads/"):]
	if name == "" {
		return "", false
	}
	return name, true
}
