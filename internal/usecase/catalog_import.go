package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"

	"github.com/goccy/go-json"
)

// ImageUploader publishes a local image and returns its public URL.
type ImageUploader interface {
	UploadFile(ctx context.Context, path string) (string, error)
}

// CatalogImporter loads a JSON array of product records into the products
// collection. Records are merged, so re-running an import is safe.
type CatalogImporter struct {
	store    domain.DocumentStore
	uploader ImageUploader
}

// NewCatalogImporter accepts a nil uploader; image paths are then stored as given.
func NewCatalogImporter(store domain.DocumentStore, uploader ImageUploader) *CatalogImporter {
	return &CatalogImporter{store: store, uploader: uploader}
}

func (im *CatalogImporter) Import(ctx context.Context, r io.Reader) (int, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode catalog: %w", err)
	}

	log := logger.WithContext(ctx)
	imported := 0
	for i, rec := range records {
		id, _ := rec["id"].(string)
		if err := domain.ValidateKey("id", id); err != nil {
			return imported, fmt.Errorf("record %d: %w", i, err)
		}
		delete(rec, "id")

		p := domain.ProductFromDocument(domain.Document{ID: id, Data: rec})
		if err := im.publishImages(ctx, &p); err != nil {
			return imported, fmt.Errorf("product %s: %w", id, err)
		}
		if err := im.store.UpsertMerge(ctx, domain.CollectionProducts, id, p.ToDocument()); err != nil {
			return imported, fmt.Errorf("product %s: %w", id, err)
		}
		imported++
		log.Debug().Str("product_id", id).Msg("Product imported")
	}
	return imported, nil
}

func (im *CatalogImporter) publishImages(ctx context.Context, p *domain.Product) error {
	if im.uploader == nil {
		return nil
	}
	upload := func(src string) (string, error) {
		if src == "" || isRemote(src) {
			return src, nil
		}
		return im.uploader.UploadFile(ctx, src)
	}

	var err error
	if p.Image1, err = upload(p.Image1); err != nil {
		return err
	}
	if p.Image2, err = upload(p.Image2); err != nil {
		return err
	}
	for i, img := range p.Images {
		if p.Images[i], err = upload(img); err != nil {
			return err
		}
	}
	return nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
