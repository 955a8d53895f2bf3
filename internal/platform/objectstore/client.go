// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package objectstore provides a managed client for S3-compatible object storage.

Any endpoint speaking the S3 API works (AWS S3, MinIO, Ceph RGW). The bucket is
created on startup when it does not exist yet.
*/
package objectstore

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const pingTimeout = 3 * time.Second

// Options configures [NewClient].
type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewClient builds a client and ensures the bucket exists.
//
// # Parameters
//   - context: Context for the bucket check.
//   - opts: Endpoint, credentials and bucket.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, opts Options, logger *slog.Logger) (*minio.Client, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: invalid endpoint: %w", err)
	}

	checkCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("objectstore: bucket check failed: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(checkCtx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("objectstore: create bucket %q: %w", opts.Bucket, err)
		}
		logger.Info("objectstore_bucket_created", slog.String("bucket", opts.Bucket))
	}

	logger.Info("objectstore_client_connected",
		slog.String("endpoint", opts.Endpoint),
		slog.String("bucket", opts.Bucket),
	)

	return client, nil
}

// Ping verifies that the bucket is reachable with the configured credentials.
func Ping(context stdctx.Context, client *minio.Client, bucket string) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	exists, err := client.BucketExists(pingCtx, bucket)
	if err != nil {
		return fmt.Errorf("objectstore: ping failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("objectstore: bucket %q missing", bucket)
	}
	return nil
}
