package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/latentset/blobstore"
	miniostore "github.com/hupe1980/latentset/blobstore/minio"
	s3store "github.com/hupe1980/latentset/blobstore/s3"
	"github.com/hupe1980/latentset/codec"
	"github.com/hupe1980/latentset/internal/config"
	"github.com/hupe1980/latentset/latentcache"
)

// newCache builds the latent cache and its key function for the configured backend.
// Object store keys are relative to the data root; local entries live next to the videos.
func newCache(ctx context.Context, cfg *config.Config) (latentcache.Cache, latentcache.KeyFunc, error) {
	c, _ := codec.ByName(cfg.Codec)

	var (
		store blobstore.Store
		key   = latentcache.RelativeKey(cfg.DataRoot)
	)
	switch cfg.Backend {
	case config.BackendMinIO:
		s, err := newMinIOStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case config.BackendS3:
		s, err := newS3Store(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store = s
	default:
		store = blobstore.NewLocalStore("")
		key = latentcache.LatentPath
	}

	var cache latentcache.Cache = latentcache.NewBlobCache(store, latentcache.WithCodec(c))
	if cfg.MemoryCache > 0 {
		cache = latentcache.NewMemoryCache(cache, cfg.MemoryCache)
	}
	return cache, key, nil
}

func newMinIOStore(ctx context.Context, cfg *config.Config) (*miniostore.Store, error) {
	client, err := miniogo.New(cfg.MinIOEndpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return miniostore.NewStore(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Store(ctx context.Context, cfg *config.Config) (*s3store.Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return s3store.NewStore(client, cfg.Bucket, cfg.Prefix,
		s3store.WithMultipartThreshold(int(cfg.S3PartThreshold))), nil
}
