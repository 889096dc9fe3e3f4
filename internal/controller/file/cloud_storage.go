package file

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// StorageClient abstracts the bucket operations the file handlers need, so
// tests can run without cloud credentials.
type StorageClient interface {
	UploadFile(objectName string, fileData io.Reader) error
	DownloadFile(objectName string) (io.ReadCloser, int64, error)
	SignedURL(objectName string) (string, error)
}

// CloudStorageClient is the Google Cloud Storage backed StorageClient.
type CloudStorageClient struct {
	BucketName string
	Ctx        context.Context
	Client     *storage.Client
}

// NewCloudStorageClient creates a storage client for the given bucket using
// application default credentials.
func NewCloudStorageClient(bucketName string) (*CloudStorageClient, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %v", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Ctx:        ctx,
		Client:     client,
	}, nil
}

// UploadFile writes fileData to the named object.
func (c *CloudStorageClient) UploadFile(objectName string, fileData io.Reader) error {
	bucket := c.Client.Bucket(c.BucketName)
	obj := bucket.Object(objectName)
	wc := obj.NewWriter(c.Ctx)
	if _, err := io.Copy(wc, fileData); err != nil {
		return fmt.Errorf("failed to write data to object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %v", err)
	}
	return nil
}

// DownloadFile opens the named object for reading and reports its size.
func (c *CloudStorageClient) DownloadFile(objectName string) (io.ReadCloser, int64, error) {
	bucket := c.Client.Bucket(c.BucketName)
	reader, err := bucket.Object(objectName).NewReader(c.Ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open object reader: %v", err)
	}
	return reader, reader.Attrs.Size, nil
}

// ListObjects returns the names of every object under the given prefix.
func (c *CloudStorageClient) ListObjects(prefix string) ([]string, error) {
	bucket := c.Client.Bucket(c.BucketName)
	it := bucket.Objects(c.Ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %v", prefix, err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// DeleteObject removes the named object from the bucket.
func (c *CloudStorageClient) DeleteObject(objectName string) error {
	if err := c.Client.Bucket(c.BucketName).Object(objectName).Delete(c.Ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", objectName, err)
	}
	return nil
}

// SignedURL returns a short-lived GET URL for the named object.
func (c *CloudStorageClient) SignedURL(objectName string) (string, error) {
	url, err := c.Client.Bucket(c.BucketName).SignedURL(objectName, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(15 * time.Minute),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %v", objectName, err)
	}
	return url, nil
}
