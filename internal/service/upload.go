package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"userapi/internal/config"
	"userapi/internal/model"
	"userapi/internal/storage"
	"userapi/internal/validation"
)

// UploadService issues presigned PUT grants. It never touches the document store.
type UploadService interface {
	// Grant signs an upload for the caller-chosen key.
	Grant(ctx context.Context, req model.UploadGrantRequest) (*model.UploadGrant, error)

	// GrantForFile signs an upload under a server-generated key
	// "<prefix><unix-millis>_<filename>".
	GrantForFile(ctx context.Context, req model.UploadFileRequest) (*model.UploadGrant, error)

	// Ready reports whether the bucket is reachable.
	Ready(ctx context.Context) error
}

// UploadOption customizes an UploadService.
type UploadOption func(*uploadService)

// WithClock replaces the wall clock used for generated keys and expiry times.
func WithClock(now func() time.Time) UploadOption {
	return func(s *uploadService) { s.now = now }
}

type uploadService struct {
	store     storage.Storage
	val       *validation.Validator
	expiry    time.Duration
	keyPrefix string
	now       func() time.Time
}

// NewUploadService constructs a new UploadService.
func NewUploadService(store storage.Storage, val *validation.Validator, cfg config.UploadConfig, opts ...UploadOption) UploadService {
	s := &uploadService{
		store:     store,
		val:       val,
		expiry:    cfg.Expiry,
		keyPrefix: cfg.KeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *uploadService) Grant(ctx context.Context, req model.UploadGrantRequest) (*model.UploadGrant, error) {
	if err := s.val.Struct(req); err != nil {
		return nil, err
	}
	return s.sign(ctx, req.Key, req.ContentType, s.now())
}

func (s *uploadService) GrantForFile(ctx context.Context, req model.UploadFileRequest) (*model.UploadGrant, error) {
	if err := s.val.Struct(req); err != nil {
		return nil, err
	}
	now := s.now()
	key := s.keyPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + req.Filename
	return s.sign(ctx, key, req.Filetype, now)
}

func (s *uploadService) sign(ctx context.Context, key, contentType string, now time.Time) (*model.UploadGrant, error) {
	expiresAt := now.Add(s.expiry).UTC()
	signed, err := s.store.PresignPut(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("sign upload: %w", err)
	}
	return &model.UploadGrant{
		Key:         key,
		ContentType: contentType,
		UploadURL:   signed,
		ObjectURL:   s.store.ObjectURL(key),
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *uploadService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
