// Package storage wraps the object store that holds the deduplication
// ledger and the raw batch artifacts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrPreconditionFailed is returned by Put when an IfMatch or
	// IfNoneMatch condition does not hold.
	ErrPreconditionFailed = errors.New("object precondition failed")
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and fall back to the standard AWS config/credential
// chain.
type S3Config struct {
	// Bucket every key is resolved against.
	Bucket string
	// Region to use for requests, e.g. "eu-central-1".
	Region string
	// Profile selects a named shared config/credentials profile.
	Profile string
	// Endpoint overrides the service endpoint (S3-compatible providers,
	// local emulators).
	Endpoint string
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool
}

// Object is the body and version tag of a stored object.
type Object struct {
	Body []byte
	ETag string
}

// PutOptions are the optional headers for Put.
type PutOptions struct {
	ContentType string
	// IfMatch makes the write conditional on the current ETag.
	IfMatch string
	// IfNoneMatch set to "*" makes the write succeed only if the key does
	// not exist yet.
	IfNoneMatch string
}

// S3 is a bucket-scoped wrapper around the AWS SDK for Go v2 S3 client.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 creates a new S3 wrapper using the default AWS configuration chain,
// with optional overrides from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3FromClient(c, cfg.Bucket), nil
}

// NewS3FromClient wraps an already configured client.
func NewS3FromClient(client *s3.Client, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Bucket returns the bucket the wrapper is scoped to.
func (s *S3) Bucket() string { return s.bucket }

// Get fetches the full object at key. A missing key yields ErrNotFound.
func (s *S3) Get(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}

	return &Object{Body: body, ETag: aws.ToString(out.ETag)}, nil
}

// Put uploads body to key. A failed IfMatch/IfNoneMatch condition yields
// ErrPreconditionFailed.
func (s *S3) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.IfMatch != "" {
		in.IfMatch = aws.String(opts.IfMatch)
	}
	if opts.IfNoneMatch != "" {
		in.IfNoneMatch = aws.String(opts.IfNoneMatch)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrPreconditionFailed)
		}
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return httpStatus(err) == http.StatusNotFound
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}

	switch httpStatus(err) {
	case http.StatusPreconditionFailed, http.StatusConflict:
		return true
	}
	return false
}

func httpStatus(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
