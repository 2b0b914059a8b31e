package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/auth"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// Redis is optional; the cache and limiters degrade without it.
		logging.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		redisClient = nil
	}

	images, err := newImageStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to configure image storage")
	}

	recipeRepo := repository.NewRecipeRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	ingredients := cache.NewIngredientCache(redisClient, referenceRepo, cache.DefaultTTL)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	srv := server.New(cfg, db, api.Dependencies{
		Recipes:       service.NewRecipeService(recipeRepo, service.NewCompositionValidator(ingredients, referenceRepo), images),
		Relations:     service.NewRelationService(repository.NewRelationRepository(db), recipeRepo, userRepo),
		Shopping:      service.NewShoppingListService(repository.NewShoppingRepository(db)),
		Reference:     service.NewReferenceService(referenceRepo, ingredients),
		Auth:          service.NewAuthService(userRepo, tokens),
		Images:        images,
		Tokens:        tokens,
		CreateLimiter: middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit),
		ModifyLimiter: middleware.NewRecipeModificationRateLimiter(redisClient, cfg.RecipeModifyLimit),
	})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("received signal")
	}

	logging.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Fatal().Err(err).Msg("server shutdown error")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logging.Info().Msg("server stopped")
}

func newImageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.ImageStore == "memory" {
		logging.Warn().Msg("using in-memory image store; images are lost on restart")
		return storage.NewMemoryImageStore(cfg.MediaBaseURL), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewS3ImageStore(s3Config), nil
}
