package upload

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"conocida/internal/platform/config"
	dErrors "conocida/pkg/domain-errors"
)

// S3Store stores photos in an S3-compatible bucket. Backblaze B2 speaks the
// S3 API; path-style addressing is what its endpoints expect.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store builds a client against the configured endpoint with static
// credentials.
func NewS3Store(cfg config.StorageConfig) *S3Store {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(cfg.Endpoint),
		Region:       cfg.Region,
		Credentials:  awscreds.NewStaticCredentialsProvider(cfg.KeyID, cfg.ApplicationKey, ""),
		UsePathStyle: true,
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(base, "/"),
	}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "photo storage unavailable")
	}
	return s.publicBaseURL + "/" + key, nil
}

// DeletePrefix removes every object under prefix, paging through listings.
func (s *S3Store) DeletePrefix(ctx context.Context, prefix string) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "photo storage unavailable")
		}
		for _, obj := range page.Contents {
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "photo storage unavailable")
			}
		}
	}
	return nil
}
