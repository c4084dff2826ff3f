package bucket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
)

const maxDocumentSize = 1 << 20

// Source reads recommendation documents from an S3-compatible bucket (R2, MinIO, S3).
type Source struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// Options describes how to reach the bucket.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// NewSource constructs the bucket adapter.
func NewSource(opts Options, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(opts.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(opts.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       useSSL,
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init bucket client: %w", err)
	}
	return &Source{
		client: client,
		bucket: opts.Bucket,
		prefix: normalizePrefix(opts.Prefix),
		logger: logger.With("component", "source.bucket"),
	}, nil
}

// Fetch downloads <prefix><city>.json.
func (s *Source) Fetch(ctx context.Context, city string) ([]byte, error) {
	key := s.objectKey(city)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(key, err)
	}
	defer obj.Close()
	// GetObject is lazy; Stat surfaces missing keys before we read.
	info, err := obj.Stat()
	if err != nil {
		return nil, classify(key, err)
	}
	if info.Size > maxDocumentSize {
		return nil, fmt.Errorf("object %s is %d bytes, limit %d", key, info.Size, maxDocumentSize)
	}
	data, err := io.ReadAll(io.LimitReader(obj, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	s.logger.Debug("document downloaded", "key", key, "etag", info.ETag, "size", len(data))
	return data, nil
}

func (s *Source) objectKey(city string) string {
	return s.prefix + city + ".json"
}

func classify(key string, err error) error {
	if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NoSuchBucket" {
		return fmt.Errorf("object %s: %w", key, activity.ErrDocumentNotFound)
	}
	return fmt.Errorf("get object %s: %w", key, err)
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		raw = host
	}
	return raw
}

var _ activity.DocumentSource = (*Source)(nil)
