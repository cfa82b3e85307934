// Package minio fetches vademecum dump files from object storage for the
// ingestion pipeline.
package minio

import (
	"context"
	"io"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// ObjectStore reads dump objects from a MinIO (or S3-compatible) bucket.
type ObjectStore struct {
	client *miniogo.Client
	bucket string
	logger logging.Logger
}

// NewObjectStore constructs an ObjectStore from configuration.
func NewObjectStore(cfg config.MinIOConfig, logger logging.Logger) (*ObjectStore, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "create minio client")
	}
	return &ObjectStore{client: client, bucket: cfg.Bucket, logger: logger.Named("minio")}, nil
}

// Fetch opens the named object for reading. The caller owns the returned
// reader.
func (s *ObjectStore) Fetch(ctx context.Context, object string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, object, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeStoreUnavailable, "fetch object %s", object)
	}
	// GetObject is lazy; a Stat forces the first request so missing objects
	// fail here instead of on first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		resp := miniogo.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, apperrors.Newf(apperrors.ErrCodeNotFound, "object %s not found", object)
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeStoreUnavailable, "stat object %s", object)
	}
	s.logger.Debug("object fetched", logging.String("object", object))
	return obj, nil
}
