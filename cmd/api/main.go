package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evalue-storefront/config"
	"evalue-storefront/internal/delivery/http/middleware"
	v1 "evalue-storefront/internal/delivery/http/v1"
	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/infrastructure/authprovider"
	"evalue-storefront/internal/infrastructure/cache"
	"evalue-storefront/internal/infrastructure/facebook"
	"evalue-storefront/internal/repository"
	"evalue-storefront/internal/usecase"
	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

const serviceName = "evalue-storefront"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx := context.Background()

	// Separate caches so each can own its eviction callback
	catalogCache := cache.NewMemoryCache(cfg.CacheCatalogTTL, 2*cfg.CacheCatalogTTL)
	viewCache := cache.NewMemoryCache(cfg.ViewTTL, time.Minute)
	membershipCache := cache.NewMemoryCache(cfg.ViewTTL, time.Minute)
	revokedCache := cache.NewMemoryCache(cfg.AccessTokenExpiry, 10*time.Minute)

	be, err := repository.Open(ctx, cfg.Store, revokedCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}

	if cfg.CatalogSeedFile != "" {
		if err := seedCatalog(ctx, be.Store, cfg.CatalogSeedFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.CatalogSeedFile).Msg("Failed to seed catalog")
		}
	}

	// --- Modules Initialization ---

	hub := usecase.NewSessionHub()
	provider := authprovider.New(be.Store, be.Revoker, hub, cfg.AccessTokenExpiry)

	catalogUC := usecase.NewCatalogUsecase(be.Store, catalogCache, cfg.CacheCatalogTTL)
	viewUC := usecase.NewViewUsecase(catalogUC, viewCache, cfg.ViewTTL)
	membershipUC := usecase.NewMembershipUsecase(be.Store, catalogUC, membershipCache, cfg.ViewTTL, cfg.MembershipFanout)
	capi := facebook.NewCAPIClient(cfg.FacebookPixelID, cfg.FacebookAccessToken, cfg.FacebookAPIVersion, cfg.Currency)
	cartUC := usecase.NewCartUsecase(be.Store, catalogUC)
	if capi != nil {
		cartUC.WithNotifier(capi)
	}
	favoritesUC := usecase.NewFavoritesUsecase(be.Store, catalogUC)
	authUC := usecase.NewAuthUsecase(provider, be.Store)

	// Local views follow the session: signing out drops them
	unsubscribe := provider.Subscribe(func(change domain.AuthChange) {
		if change.SignedIn() {
			log.Debug().Str("user_id", change.UserID).Msg("Session opened")
			return
		}
		membershipUC.Drop(change.UserID)
		log.Debug().Str("user_id", change.UserID).Msg("Session closed, local views dropped")
	})

	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, v1.Handlers{
		Catalog:   v1.NewCatalogHandler(catalogUC, favoritesUC),
		View:      v1.NewViewHandler(viewUC),
		Auth:      v1.NewAuthHandler(authUC, cfg.Env == "production"),
		Cart:      v1.NewCartHandler(cartUC, membershipUC),
		Favorites: v1.NewFavoritesHandler(favoritesUC, membershipUC),
		Health:    v1.NewHealthHandler(be.Probes),
	}, provider)

	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, time.Minute, 3*time.Minute)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart(serviceName, "1.0.0", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	unsubscribe()
	hub.Close()
	be.Close()
	logger.ServiceStop(serviceName)
}

func seedCatalog(ctx context.Context, store domain.DocumentStore, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := usecase.NewCatalogImporter(store, nil).Import(ctx, f)
	if err != nil {
		return err
	}
	logger.Info().Int("products", n).Msg("Catalog seeded")
	return nil
}
