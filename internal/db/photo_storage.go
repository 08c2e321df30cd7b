package db

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const (
	photoPrefix = "profile-photos"
	// A non-zero chunk size makes the bucket writer use a resumable upload session.
	uploadChunkSize = 256 * 1024
	// Firebase serves objects carrying this metadata key at tokenized download URLs.
	downloadTokenKey = "firebaseStorageDownloadTokens"
)

// objectBucket is the slice of a storage bucket the photo upload needs.
type objectBucket interface {
	Name() string
	NewWriter(ctx context.Context, object, contentType string, metadata map[string]string) io.WriteCloser
}

type gcsBucket struct {
	handle *gcs.BucketHandle
	name   string
}

func (b gcsBucket) Name() string { return b.name }

func (b gcsBucket) NewWriter(ctx context.Context, object, contentType string, metadata map[string]string) io.WriteCloser {
	w := b.handle.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.ChunkSize = uploadChunkSize
	w.Metadata = metadata
	return w
}

// bucketPhotoStorage uploads profile photos to a storage bucket.
type bucketPhotoStorage struct {
	bucket objectBucket
	newID  func() string
}

// NewBucketPhotoStorage creates a PhotoStorage writing to bucket.
func NewBucketPhotoStorage(bucket objectBucket) PhotoStorage {
	return &bucketPhotoStorage{bucket: bucket, newID: uuid.NewString}
}

// Upload writes content to profile-photos/{uid}/{random}{ext} and returns the
// tokenized download URL of the object.
func (s *bucketPhotoStorage) Upload(ctx context.Context, userID, fileName, contentType string, content io.Reader) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID cannot be empty for photo Upload")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported photo content type %q", contentType)
	}

	object := path.Join(photoPrefix, userID, s.newID()+strings.ToLower(path.Ext(fileName)))
	token := s.newID()

	w := s.bucket.NewWriter(ctx, object, contentType, map[string]string{downloadTokenKey: token})
	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload photo for user '%s': %w", userID, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize photo upload for user '%s': %w", userID, err)
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.bucket.Name(), url.QueryEscape(object), token), nil
}
