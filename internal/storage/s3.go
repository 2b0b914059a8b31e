package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/rs/zerolog"
)

const presignTTL = time.Hour

// S3ImageStore keeps recipe images in an S3 bucket.
type S3ImageStore struct {
	s3  *config.S3Config
	log zerolog.Logger
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3: s3Config, log: logging.Component("image_store")}
}

func (s *S3ImageStore) Save(ctx context.Context, img *Image) (string, error) {
	key := newKey(img.Extension)
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.log.Info().Str("key", key).Int("bytes", len(img.Data)).Msg("uploaded recipe image")
	return key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// URL returns a presigned GET URL valid for an hour.
func (s *S3ImageStore) URL(ctx context.Context, key string) (string, error) {
	return s.s3.GeneratePresignedURL(ctx, key, presignTTL)
}
