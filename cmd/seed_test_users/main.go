package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/auth"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "testpassword123"

var testUsers = []models.User{
	{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", Username: "johndoe", Role: models.RoleUser},
	{FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", Username: "janesmith", Role: models.RoleUser},
	{FirstName: "Bob", LastName: "Wilson", Email: "bob.wilson@example.com", Username: "bobwilson", Role: models.RoleUser},
	{FirstName: "Admin", LastName: "User", Email: "admin@example.com", Username: "admin", Role: models.RoleAdmin},
}

func main() {
	log := logging.Component("seed_test_users")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.IsProduction() {
		log.Fatal().Msg("refusing to seed test users in production")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	users := repository.NewUserRepository(db)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	ctx := context.Background()

	fmt.Println("Test users (password: " + testPassword + ")")
	for _, seed := range testUsers {
		user, err := users.GetByEmail(ctx, seed.Email)
		switch {
		case err == nil:
			log.Info().Str("email", seed.Email).Msg("user already exists, skipping")
		case errors.Is(err, gorm.ErrRecordNotFound):
			seed.PasswordHash = string(hashedPassword)
			user = &seed
			if err := users.Create(ctx, user); err != nil {
				log.Error().Err(err).Str("email", seed.Email).Msg("failed to create user")
				continue
			}
			log.Info().Str("email", user.Email).Str("role", user.Role).Msg("created user")
		default:
			log.Error().Err(err).Str("email", seed.Email).Msg("failed to look up user")
			continue
		}

		token, err := tokens.GenerateToken(user)
		if err != nil {
			log.Error().Err(err).Str("email", user.Email).Msg("failed to issue token")
			continue
		}
		fmt.Printf("%-26s %-6s %s\n", user.Email, user.Role, token)
	}
}
