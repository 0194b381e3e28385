package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Directory string
	Region    string
	UseSSL    bool
}

const defaultMinioRegion = "us-east-1"

type minioStore struct {
	client    *minio.Client
	baseURL   string
	bucket    string
	directory string
}

func NewMinioStore(ctx context.Context, config MinioConfig) (BlobStore, error) {
	if config.Bucket == "" {
		return nil, ErrEmptyBucketName
	}
	if config.Region == "" {
		config.Region = defaultMinioRegion
	}
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot initialize minio client: %w", err)
	}

	s := &minioStore{
		client:    client,
		baseURL:   strings.TrimSuffix(client.EndpointURL().String(), "/"),
		bucket:    config.Bucket,
		directory: config.Directory,
	}
	if err = s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *minioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("cannot check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("cannot create bucket %s: %w", s.bucket, err)
	}
	log.Infof("bucket created | bucket: %v", s.bucket)
	return nil
}

func (s *minioStore) key(filename string) string {
	if s.directory != "" {
		return fmt.Sprintf("%s/%s", s.directory, filename)
	}
	return filename
}

func (s *minioStore) Put(ctx context.Context, obj Object) (string, error) {
	key := s.key(obj.Filename)
	size := obj.Size
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, obj.Body, size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return "", err
	}
	return objectURL(s.baseURL, s.bucket, key), nil
}

func objectURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key)
}
