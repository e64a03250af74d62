// Command seed imports a JSON product catalog into the configured document
// store, optionally publishing local images to R2 first.
//
//	seed -file catalog.json
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evalue-storefront/config"
	"evalue-storefront/internal/infrastructure/cache"
	"evalue-storefront/internal/repository"
	"evalue-storefront/internal/usecase"
	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/storage"
)

func main() {
	file := flag.String("file", "catalog.json", "path to a JSON array of products")
	noUpload := flag.Bool("no-upload", false, "store image paths as given even when R2 is configured")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if cfg.Store.Driver == config.DriverMemory {
		log.Fatal().Msg("STORE_DRIVER=memory keeps nothing after exit; use CATALOG_SEED_FILE on the API instead")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := repository.Open(ctx, cfg.Store, cache.NewMemoryCache(time.Minute, time.Minute))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer be.Close()

	var uploader usecase.ImageUploader
	if cfg.Store.R2Enabled() && !*noUpload {
		r2, err := storage.NewR2Storage(ctx, cfg.Store)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		uploader = r2
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to open catalog")
	}
	defer f.Close()

	start := time.Now()
	n, err := usecase.NewCatalogImporter(be.Store, uploader).Import(ctx, f)
	if err != nil {
		log.Error().Err(err).Int("imported", n).Msg("Catalog import stopped")
		return
	}
	log.Info().Int("products", n).Dur("took", time.Since(start)).Bool("images_uploaded", uploader != nil).Msg("Catalog imported")
}
