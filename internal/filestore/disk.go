package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores uploads on the local filesystem. Files land in Dir and are
// served under BaseURL (the router exposes Dir as a static route).
type Disk struct {
	Dir     string
	BaseURL string
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create upload dir: %w", err)
	}
	return &Disk{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (d *Disk) Save(ctx context.Context, f File) (string, error) {
	name, err := NewFilename(f.Name, f.ContentType)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(d.Dir, name))
	if err != nil {
		return "", fmt.Errorf("filestore: create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f.Data); err != nil {
		return "", fmt.Errorf("filestore: write %s: %w", name, err)
	}

	return d.BaseURL + "/uploads/" + name, nil
}

func (d *Disk) Delete(ctx context.Context, filename string) error {
	// Uploads live in a flat directory, never below it.
	if filepath.Base(filename) != filename {
		return fmt.Errorf("filestore: invalid filename %q", filename)
	}
	if err := os.Remove(filepath.Join(d.Dir, filename)); err != nil {
		return fmt.Errorf("filestore: remove %s: %w", filename, err)
	}
	return nil
}
