package schema

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectReader reads whole objects from a bucket.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ObjectSource reads a bundle from object storage.
type ObjectSource struct {
	Reader ObjectReader
	Bucket string
	Key    string
}

// Fetch downloads the bundle object.
func (s *ObjectSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := s.Reader.ReadObject(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, fmt.Errorf("reading schema bundle %s: %w", s.Name(), err)
	}
	return data, nil
}

// Name returns the s3:// location, keeping the key's extension for decoding.
func (s *ObjectSource) Name() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// ObjectStoreOptions configures the MinIO client.
type ObjectStoreOptions struct {
	Endpoint string
	Region   string
	Secure   bool
}

// MinioReader implements ObjectReader with minio-go. Credentials come from
// the AWS_* or MINIO_* environment variables.
type MinioReader struct {
	client *minio.Client
}

// NewMinioReader creates a client for the given endpoint.
func NewMinioReader(opts ObjectStoreOptions) (*MinioReader, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds: credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
		}),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}
	return &MinioReader{client: client}, nil
}

// ReadObject downloads bucket/key into memory.
func (m *MinioReader) ReadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateObjectError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translateObjectError(err)
	}
	return data, nil
}

// translateObjectError maps missing buckets and keys onto fs.ErrNotExist.
func translateObjectError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %v", iofs.ErrNotExist, err)
	}
	return err
}
