package mirror

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config describes the S3-compatible bucket snapshots are copied to
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Mirror uploads collection snapshots to object storage
type Mirror struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to the endpoint and checks that the bucket exists
func New(ctx context.Context, cfg Config) (*Mirror, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("mirror: endpoint, bucket and credentials are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("mirror: %w", err)
	}
	found, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("mirror: check bucket: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("mirror: bucket '%s' doesn't exist", cfg.Bucket)
	}

	return &Mirror{
		client: mc,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Upload copies the snapshot file to <prefix>/<collection>/<name>
func (m *Mirror) Upload(ctx context.Context, snap csvstore.Snapshot) error {
	opts := minio.PutObjectOptions{
		ContentType: "text/csv",
	}
	_, err := m.client.FPutObject(ctx, m.bucket, ObjectName(m.prefix, snap), snap.Path, opts)
	return err
}

// ObjectName returns the remote key of a snapshot
func ObjectName(prefix string, snap csvstore.Snapshot) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return path.Join(snap.Collection, snap.Name)
	}
	return path.Join(prefix, snap.Collection, snap.Name)
}
