//go:build !no_minio

package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	config "github.com/krau/ocw-saver/config/storage"
	"github.com/krau/ocw-saver/pkg/enums/ctxkey"
	storenum "github.com/krau/ocw-saver/pkg/enums/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Minio struct {
	config config.MinioStorageConfig
	client *minio.Client
	logger *log.Logger
}

func (m *Minio) Init(ctx context.Context, cfg config.StorageConfig) error {
	minioConfig, ok := cfg.(*config.MinioStorageConfig)
	if !ok {
		return fmt.Errorf("failed to cast minio config")
	}
	if err := minioConfig.Validate(); err != nil {
		return err
	}
	m.config = *minioConfig
	m.logger = log.FromContext(ctx).WithPrefix(fmt.Sprintf("minio[%s]", m.config.Name))

	lookup := minio.BucketLookupPath
	if m.config.VirtualHost {
		lookup = minio.BucketLookupDNS
	}
	client, err := minio.New(m.config.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(m.config.AccessKeyID, m.config.SecretAccessKey, ""),
		Secure:       m.config.UseSSL,
		Region:       m.config.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, m.config.BucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.config.BucketName)
	}

	m.client = client
	return nil
}

func (m *Minio) Type() storenum.StorageType {
	return storenum.Minio
}

func (m *Minio) Name() string {
	return m.config.Name
}

func (m *Minio) JoinStoragePath(p string) string {
	return strings.TrimPrefix(path.Join(m.config.BasePath, p), "/")
}

// Save puts the object, replacing any object already stored under the same key.
func (m *Minio) Save(ctx context.Context, r io.Reader, storagePath string) error {
	m.logger.Debugf("Saving file from reader to %s", storagePath)

	size := int64(-1)
	if length, ok := ctx.Value(ctxkey.ContentLength).(int64); ok && length > 0 {
		size = length
	}
	info, err := m.client.PutObject(ctx, m.config.BucketName, storagePath, r, size, minio.PutObjectOptions{
		ContentType: contentType(storagePath),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to minio: %w", err)
	}
	m.logger.Debugf("Uploaded %d bytes to %s", info.Size, storagePath)
	return nil
}

// MkDir has nothing to create: prefixes exist as long as an object lives under them.
// It reports created when the prefix holds no object yet.
func (m *Minio) MkDir(ctx context.Context, dirPath string) (bool, error) {
	prefix := strings.TrimSuffix(dirPath, "/") + "/"
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	for obj := range m.client.ListObjects(listCtx, m.config.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   1,
	}) {
		if obj.Err != nil {
			return false, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		return false, nil
	}
	return true, nil
}

func contentType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
