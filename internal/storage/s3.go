package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// BlobStore is the optional media storage collaborator. The streaming
// protocol works without it; frames are only mirrored to a store when one
// is configured.
type BlobStore interface {
	// Store uploads one blob and returns its public URL
	Store(ctx context.Context, data []byte, contentType string) (string, error)

	// IsEnabled reports whether uploads actually happen
	IsEnabled() bool
}

// S3Store uploads frames to an S3 bucket
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store creates a blob store over the given bucket. An empty bucket
// name yields a disabled no-op store.
func NewS3Store(ctx context.Context, bucket, region string) (BlobStore, error) {
	if bucket == "" {
		log.Println("🪣 Blob store: DISABLED (S3_BUCKET not set)")
		return &NoopStore{}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for S3: %w", err)
	}

	log.Printf("🪣 Blob store: ✅ ENABLED (bucket: %s)", bucket)
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// Store uploads one frame under a random key
func (s *S3Store) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("frames/%s", uuid.New().String())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload frame to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// IsEnabled reports that uploads happen
func (s *S3Store) IsEnabled() bool {
	return true
}

// NoopStore is the disabled blob store
type NoopStore struct{}

// Store does nothing and returns an empty URL
func (n *NoopStore) Store(_ context.Context, _ []byte, _ string) (string, error) {
	return "", nil
}

// IsEnabled reports that uploads are skipped
func (n *NoopStore) IsEnabled() bool {
	return false
}
