package blobs

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/google/uuid"
)

// S3Config describes an S3-compatible bucket (AWS, MinIO, ...).
type S3Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// Endpoint overrides the AWS endpoint, e.g. "http://127.0.0.1:9000/".
	Endpoint string
	// PublicBaseURL is where objects are served from. When empty the URL is
	// built as Endpoint/Bucket/key.
	PublicBaseURL string
	// PublicRead grants public-read on every uploaded object.
	PublicRead bool
	// ThumbnailPrefix, when set, is inserted between the base URL and the
	// object key of returned URLs so they hit a resizing front end.
	ThumbnailPrefix string
}

// s3API is the part of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Store keeps images as objects named "<namespace>/<uuid>".
type S3Store struct {
	client s3API
	cfg    S3Config
}

// NewS3Store builds an S3 client with static credentials.
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w: %w", common.ErrAuth, err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, cfg: c}, nil
}

func newS3StoreWithClient(client s3API, c S3Config) *S3Store {
	return &S3Store{client: client, cfg: c}
}

func (s *S3Store) Upload(ctx context.Context, data []byte, namespace string) (string, error) {
	key := objectKey(namespace, uuid.NewString())

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(data)),
	}
	if s.cfg.PublicRead {
		in.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *S3Store) Destroy(ctx context.Context, objectID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", objectID, err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
	}
	if p := strings.Trim(s.cfg.ThumbnailPrefix, "/"); p != "" {
		base += "/" + p
	}
	return base + "/" + key
}
