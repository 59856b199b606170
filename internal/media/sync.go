// Package media reconciles a product's stored image references against an
// upload/removal request. Uploads happen before the record is touched, the
// record is persisted in one write, and orphaned files are removed only
// after that write commits. Cleanup is best-effort and never fails the call.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"eshop-backend/internal/filestore"
	"eshop-backend/internal/models"
	"eshop-backend/internal/store"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrUpload         = errors.New("media upload failed")
	ErrProductPersist = errors.New("product cannot be updated")
)

type Upload struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// Request describes one synchronization call. Retained lists the previous
// gallery URLs the caller keeps; anything not retained and not re-uploaded
// is dropped. GallerySupplied distinguishes "replace the gallery with this
// list" from "leave media alone" when no files are attached. Apply, when
// set, mutates the product's non-media fields before it is persisted.
type Request struct {
	ProductID       uint
	Primary         *Upload
	Gallery         []Upload
	Retained        []string
	GallerySupplied bool
	Apply           func(*models.Product)
}

type Synchronizer struct {
	Products store.ProductStore
	Files    filestore.Store
	Log      *slog.Logger
}

func NewSynchronizer(products store.ProductStore, files filestore.Store, log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{Products: products, Files: files, Log: log}
}

// Sync runs one Fetched -> Uploading -> Persisting -> CleaningUp pass.
// Uploading and Persisting fail the call outright; CleaningUp never does.
func (s *Synchronizer) Sync(ctx context.Context, req Request) (*models.Product, error) {
	product, err := s.Products.FindProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Metadata-only update: nothing uploaded, no gallery list supplied, so
	// the stored media references stay untouched.
	if req.Primary == nil && len(req.Gallery) == 0 && !req.GallerySupplied {
		if req.Apply != nil {
			req.Apply(product)
		}
		if err := s.Products.SaveProduct(ctx, product); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProductPersist, err)
		}
		return product, nil
	}

	prevPrimary := product.Image
	prevGallery := product.Images

	newPrimary := prevPrimary
	if req.Primary != nil {
		url, err := s.Files.Save(ctx, filestore.File{
			Name:        req.Primary.Name,
			ContentType: req.Primary.ContentType,
			Data:        req.Primary.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}
		newPrimary = url
	}

	newGallery := make([]string, 0, len(req.Gallery)+len(req.Retained))
	for _, up := range req.Gallery {
		url, err := s.Files.Save(ctx, filestore.File{
			Name:        up.Name,
			ContentType: up.ContentType,
			Data:        up.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}
		newGallery = append(newGallery, url)
	}
	// Clients clear the gallery by sending an empty retained entry.
	for _, url := range req.Retained {
		if url == "" {
			continue
		}
		newGallery = append(newGallery, url)
	}

	orphans := diffURLs(append(append([]string{}, prevGallery...), prevPrimary), append(append([]string{}, newGallery...), newPrimary))

	if req.Apply != nil {
		req.Apply(product)
	}
	product.Image = newPrimary
	product.Images = newGallery
	if err := s.Products.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductPersist, err)
	}

	// The record now references only the new URLs, so the old files can go.
	for _, url := range orphans {
		name, ok := filestore.Filename(url)
		if !ok {
			s.Log.Warn("media: cannot extract filename from orphaned url", "url", url)
			continue
		}
		if err := s.Files.Delete(ctx, name); err != nil {
			s.Log.Warn("media: orphaned file cleanup failed", "file", name, "error", err)
		}
	}

	return product, nil
}

// diffURLs returns the URLs present in prev but absent from next, skipping
// empty entries. Order follows prev.
func diffURLs(prev, next []string) []string {
	keep := make(map[string]struct{}, len(next))
	for _, url := range next {
		keep[url] = struct{}{}
	}

	var orphans []string
	seen := make(map[string]struct{}, len(prev))
	for _, url := range prev {
		if url == "" {
			continue
		}
		if _, ok := keep[url]; ok {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		orphans = append(orphans, url)
	}
	return orphans
}
