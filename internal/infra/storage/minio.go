package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/medicare-ai/aidoctor-backend/internal/domain/media"
)

// MinioStore is the S3-compatible media backend. Objects are uploaded
// under uploads/ and temp/ prefixes; a local spool copy is kept so the
// transcription and vision adapters can read the raw bytes by path.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	region     string
	spoolDir   string
}

func NewMinioStore(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	spool, err := os.MkdirTemp("", "aidoctor-media-")
	if err != nil {
		return nil, err
	}

	return &MinioStore{client: cli, bucketName: bucket, region: region, spoolDir: spool}, nil
}

func (s *MinioStore) SaveUpload(ctx context.Context, filename string, r io.Reader) (media.Stored, error) {
	name := freshName(filename)
	local := filepath.Join(s.spoolDir, name)

	f, err := os.OpenFile(local, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return media.Stored{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(local)
		return media.Stored{}, err
	}
	if err := f.Close(); err != nil {
		return media.Stored{}, err
	}

	url, err := s.put(ctx, local, "uploads/"+name)
	if err != nil {
		return media.Stored{}, err
	}
	return media.Stored{URL: url, Path: local}, nil
}

func (s *MinioStore) SaveArtifact(ctx context.Context, filename string, data []byte) (media.Stored, error) {
	name := freshName(filename)
	key := "temp/" + name

	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentTypeFor(name)})
	if err != nil {
		return media.Stored{}, err
	}

	local := filepath.Join(s.spoolDir, name)
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return media.Stored{}, err
	}
	return media.Stored{URL: s.objectURL(key), Path: local}, nil
}

func (s *MinioStore) put(ctx context.Context, localPath, key string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucketName, key, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(localPath),
	})
	if err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}

// objectURL assumes a public bucket; private buckets would need
// presigned URLs instead.
func (s *MinioStore) objectURL(key string) string {
	return fmt.Sprintf("http://%s/%s/%s", s.client.EndpointURL().Host, s.bucketName, key)
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}
