package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store serves objects from an Amazon S3 bucket. Credentials come
// from the SDK default chain; the bucket name from the AWS_BUCKET
// environment variable.
type S3Store struct {
	client *s3.S3
	bucket string
}

func NewS3Store() (*S3Store, error) {
	bucket := os.Getenv("AWS_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET environment variable must be set")
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		client: s3.New(sess),
		bucket: bucket,
	}, nil
}

func (s *S3Store) Get(ctx context.Context, path string) ([]byte, error) {
	object, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(CanonicalKey(path)),
	})
	if isAWSNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer object.Body.Close()

	data, err := io.ReadAll(object.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}

	return data, nil
}

func (s *S3Store) Put(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(CanonicalKey(path)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}

	return nil
}

func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(CanonicalKey(path)),
	})
	if isAWSNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to head object %s: %w", path, err)
	}

	return true, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := CanonicalKey(prefix)
	if keyPrefix != "" {
		keyPrefix += "/"
	}

	var paths []string
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(keyPrefix),
		Delimiter: aws.String("/"),
	}

	err := s.client.ListObjectsV2PagesWithContext(
		ctx,
		input,
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, object := range page.Contents {
				paths = append(paths, aws.StringValue(object.Key))
			}

			return true
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}

	return paths, nil
}

func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(CanonicalKey(path)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}

	return nil
}

func isAWSNotFound(err error) bool {
	var awsErr awserr.Error
	if !errors.As(err, &awsErr) {
		return false
	}

	switch awsErr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	default:
		return false
	}
}
