package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Region    string
	Bucket    string
	Directory string
}

var (
	ErrEmptyS3BucketName = errors.New("empty S3 bucket name")
	ErrEmptyBucketName   = errors.New("empty bucket name")
)

type s3API interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Store struct {
	bucket    string
	directory string
	service   s3API
}

func NewS3Store(ctx context.Context, config S3Config) (BlobStore, error) {
	if config.Bucket == "" {
		return nil, ErrEmptyS3BucketName
	}

	// Load S3 config
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, err
	}

	// Create service
	service := s3.NewFromConfig(cfg)
	uploader := manager.NewUploader(service)

	return &s3Store{config.Bucket, config.Directory, uploader}, nil
}

func (s *s3Store) key(filename string) string {
	// Append directory if it's not empty
	if s.directory != "" {
		return fmt.Sprintf("%s/%s", s.directory, filename)
	}
	return filename
}

func (s *s3Store) Put(ctx context.Context, obj Object) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(obj.Filename)),
		Body:   obj.Body,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.Private {
		input.ACL = types.ObjectCannedACLPrivate
	}

	out, err := s.service.Upload(ctx, input)
	if err != nil {
		return "", err
	}
	return out.Location, nil
}
