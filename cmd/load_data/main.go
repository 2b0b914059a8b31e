// Command load_data imports the ingredient and tag catalogues from JSON or
// YAML fixture files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"gopkg.in/yaml.v3"
)

type ingredientFixture struct {
	Name            string `json:"name" yaml:"name"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit"`
}

type tagFixture struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Slug  string `json:"slug" yaml:"slug"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "Ingredient fixture file (.json, .yaml or .yml); empty to skip")
	tagsPath := flag.String("tags", "", "Tag fixture file (.json, .yaml or .yml); empty to skip")
	flag.Parse()

	log := logging.Component("load_data")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, ingredient cache will not be invalidated")
		redisClient = nil
	}
	referenceRepo := repository.NewReferenceRepository(db)
	svc := service.NewReferenceService(referenceRepo, cache.NewIngredientCache(redisClient, referenceRepo, cache.DefaultTTL))

	ctx := context.Background()
	if *ingredientsPath != "" {
		ingredients, err := loadIngredients(*ingredientsPath)
		if err != nil {
			log.Fatal().Err(err).Str("file", *ingredientsPath).Msg("failed to read ingredients")
		}
		written, err := svc.ImportIngredients(ctx, ingredients)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to import ingredients")
		}
		log.Info().Int("read", len(ingredients)).Int64("inserted", written).Msg("ingredients imported")
	}
	if *tagsPath != "" {
		tags, err := loadTags(*tagsPath)
		if err != nil {
			log.Fatal().Err(err).Str("file", *tagsPath).Msg("failed to read tags")
		}
		written, err := svc.ImportTags(ctx, tags)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to import tags")
		}
		log.Info().Int("read", len(tags)).Int64("written", written).Msg("tags imported")
	}
}

func loadIngredients(path string) ([]models.Ingredient, error) {
	var fixtures []ingredientFixture
	if err := decodeFile(path, &fixtures); err != nil {
		return nil, err
	}
	ingredients := make([]models.Ingredient, len(fixtures))
	for i, f := range fixtures {
		ingredients[i] = models.Ingredient{Name: f.Name, MeasurementUnit: f.MeasurementUnit}
	}
	return ingredients, nil
}

func loadTags(path string) ([]models.Tag, error) {
	var fixtures []tagFixture
	if err := decodeFile(path, &fixtures); err != nil {
		return nil, err
	}
	tags := make([]models.Tag, len(fixtures))
	for i, f := range fixtures {
		slug := f.Slug
		if slug == "" {
			slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(f.Name), " ", "-"))
		}
		tags[i] = models.Tag{Name: f.Name, Color: f.Color, Slug: slug}
	}
	return tags, nil
}

// decodeFile picks the decoder from the file extension.
func decodeFile(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, dst)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, dst)
	default:
		return fmt.Errorf("unsupported fixture format %q", filepath.Ext(path))
	}
}
