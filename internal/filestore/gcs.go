package filestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsPrefix = "uploads/"

// GCS stores uploads as publicly readable objects in a Cloud Storage bucket.
// The bucket is expected to grant allUsers object-viewer access, so stored
// objects are reachable at https://storage.googleapis.com/<bucket>/uploads/<name>.
type GCS struct {
	Client        *storage.Client
	Bucket        string
	PublicBaseURL string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

func (g *GCS) Save(ctx context.Context, f File) (string, error) {
	name, err := NewFilename(f.Name, f.ContentType)
	if err != nil {
		return "", err
	}

	oh := g.Client.Bucket(g.Bucket).Object(gcsPrefix + name)
	w := oh.NewWriter(ctx)
	w.ContentType = f.ContentType

	if _, err := io.Copy(w, f.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("filestore: gcs write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("filestore: gcs close %s: %w", name, err)
	}

	return fmt.Sprintf("%s/%s/%s%s", g.PublicBaseURL, g.Bucket, gcsPrefix, name), nil
}

func (g *GCS) Delete(ctx context.Context, filename string) error {
	oh := g.Client.Bucket(g.Bucket).Object(gcsPrefix + filename)
	if err := oh.Delete(ctx); err != nil {
		return fmt.Errorf("filestore: gcs delete %s: %w", filename, err)
	}
	return nil
}
