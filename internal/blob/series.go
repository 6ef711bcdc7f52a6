// Package blob implements the series adapter over S3-compatible storage.
// Series objects are treated as immutable once seeded.
package blob

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"stockflow/apperr"
	appconfig "stockflow/config"
	"stockflow/logger"
	"stockflow/models"
)

// NewS3Client builds the long-lived S3 client from configuration. A custom
// endpoint with path-style addressing supports MinIO-style deployments.
func NewS3Client(ctx context.Context, cfg appconfig.S3Config) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// SeriesStore fetches raw series payloads by symbol and format. It performs
// no retries; transient failures are surfaced to the caller.
type SeriesStore struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logger.Log
}

func NewSeriesStore(client *s3.Client, bucket, prefix string, log *logger.Log) *SeriesStore {
	return &SeriesStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}
}

// Key builds the deterministic object key for a symbol's series file.
func (s *SeriesStore) Key(symbol string, format models.FileFormat) string {
	return path.Join(s.prefix, string(format), symbol+"."+format.Ext())
}

// Fetch downloads the series object for the given symbol and format. A
// missing object is a NotFound failure, distinct from transport errors.
func (s *SeriesStore) Fetch(ctx context.Context, symbol string, format models.FileFormat) ([]byte, error) {
	key := s.Key(symbol, format)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, apperr.Wrap(apperr.NotFound, err, "no series object at %q", key)
		}
		return nil, apperr.Wrap(apperr.Transient, err, "failed to fetch series object %q", key)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, err, "failed to read series object %q", key)
	}

	s.log.WithComponent("series_store").WithFields(logger.Fields{
		"key":   key,
		"bytes": len(raw),
	}).Debug("fetched series object")

	return raw, nil
}
