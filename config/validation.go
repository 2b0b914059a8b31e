package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration against the requirements of its environment.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{Field: "server_port", Message: "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		for field, value := range map[string]string{
			"db_host": cfg.DBHost,
			"db_port": cfg.DBPort,
			"db_user": cfg.DBUser,
			"db_name": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{Field: field, Message: "is required for the postgres driver"})
			}
		}
		if cfg.DBPassword == "" && cfg.Environment != Development {
			errs = append(errs, ValidationError{Field: "db_password", Message: fmt.Sprintf("is required in %s", cfg.Environment)})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "sqlite_path", Message: "is required for the sqlite driver"})
		}
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "db_driver", Message: "sqlite is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "db_driver", Message: fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" && (cfg.Environment == CI || cfg.Environment == Production) {
		errs = append(errs, ValidationError{Field: "jwt_secret", Message: fmt.Sprintf("is required in %s", cfg.Environment)})
	}

	switch cfg.ImageStore {
	case "s3":
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{Field: "s3_bucket_name", Message: "is required for the s3 image store"})
		}
	case "memory":
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "image_store", Message: "memory is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "image_store", Message: fmt.Sprintf("unknown image store %q", cfg.ImageStore)})
	}

	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{Field: "token_ttl", Message: "must be positive"})
	}

	return errors.Join(errs...)
}
