package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mangashelf/mangashelf/internal/config"
)

const cacheControl = "public, max-age=86400"

// StorageClient uploads catalog images (covers, chapter pages, sliders) to a
// Google Cloud Storage bucket.
type StorageClient struct {
	client        *gcs.Client
	bucket        string
	publicBaseUrl string
}

func NewStorageClient(ctx context.Context, storageConfig config.StorageConfig, jsonCredentialsStr string) (*StorageClient, error) {
	var client *gcs.Client
	var err error
	if jsonCredentialsStr == "" {
		client, err = gcs.NewClient(ctx)
	} else {
		client, err = gcs.NewClient(ctx, option.WithCredentialsJSON([]byte(jsonCredentialsStr)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &StorageClient{
		client:        client,
		bucket:        storageConfig.Bucket,
		publicBaseUrl: publicBaseUrl(storageConfig),
	}, nil
}

func (c *StorageClient) Close() error {
	return c.client.Close()
}

// Upload writes r to objectName and returns the public URL of the object.
func (c *StorageClient) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	writer := c.client.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = cacheControl

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", objectName, err)
	}

	return PublicURL(c.publicBaseUrl, objectName), nil
}

func publicBaseUrl(storageConfig config.StorageConfig) string {
	if storageConfig.PublicBaseUrl != "" {
		return storageConfig.PublicBaseUrl
	}
	return "https://storage.googleapis.com/" + storageConfig.Bucket
}

func PublicURL(baseUrl, objectName string) string {
	return strings.TrimRight(baseUrl, "/") + "/" + strings.TrimLeft(objectName, "/")
}
