package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/s3utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"userapi/internal/config"
)

// minioStorage implements Storage on top of minio-go, which speaks to AWS S3
// and any S3-compatible backend. It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client     *minio.Client
	bucket     string
	scheme     string
	host       string
	virtual    bool
	publicBase string
}

var _ Storage = (*minioStorage)(nil)

// NewMinIO creates the presigning client. Construction performs no network I/O
// unless cfg.CreateBucket is set, in which case the bucket is created when missing.
func NewMinIO(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	host, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if host == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}

	transport, err := minio.DefaultTransport(secure)
	if err != nil {
		return nil, fmt.Errorf("build storage transport: %w", err)
	}

	cli, err := minio.New(host, &minio.Options{
		Creds:     credentialsFor(cfg),
		Secure:    secure,
		Region:    cfg.Region,
		Transport: otelhttp.NewTransport(transport),
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	ms := &minioStorage{
		client:     cli,
		bucket:     cfg.Bucket,
		scheme:     "http",
		host:       host,
		virtual:    isAmazonHost(host),
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
	if secure {
		ms.scheme = "https"
	}

	if cfg.CreateBucket {
		if err := ms.ensureBucket(ctx, logger); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

// credentialsFor prefers explicit keys and otherwise resolves credentials the
// way the AWS SDKs do: environment, shared credentials file, then instance role.
func credentialsFor(cfg config.StorageConfig) *credentials.Credentials {
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		return credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

func (m *minioStorage) ensureBucket(ctx context.Context, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	logger.Info("storage_bucket_created",
		slog.String("component", "storage"),
		slog.String("bucket", m.bucket),
	)
	return nil
}

// PresignPut signs a PUT request whose Content-Type header is part of the signature.
func (m *minioStorage) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	u, err := m.client.PresignHeader(ctx, http.MethodPut, m.bucket, key, expiry, url.Values{}, headers)
	if err != nil {
		return "", fmt.Errorf("presign put %q: %w", key, err)
	}
	return u.String(), nil
}

func (m *minioStorage) ObjectURL(key string) string {
	path := s3utils.EncodePath(key)
	switch {
	case m.publicBase != "":
		return m.publicBase + "/" + path
	case m.virtual:
		return fmt.Sprintf("%s://%s.%s/%s", m.scheme, m.bucket, m.host, path)
	default:
		return fmt.Sprintf("%s://%s/%s/%s", m.scheme, m.host, m.bucket, path)
	}
}

func (m *minioStorage) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return ErrBucketMissing
	}
	return nil
}

// splitEndpoint accepts either a bare host[:port] or a URL. An explicit scheme
// wins over the UseSSL flag.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimRight(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimRight(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimRight(endpoint, "/"), useSSL
	}
}

func isAmazonHost(host string) bool {
	h := host
	if i := strings.LastIndex(h, ":"); i >= 0 {
		h = h[:i]
	}
	return strings.HasSuffix(h, ".amazonaws.com")
}
