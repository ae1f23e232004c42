package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// PutObjectAPI is the subset of the S3 client the archive needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes each completion as an object in a bucket.
type S3Archive struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Archive creates an S3Archive using the default AWS credential chain.
func NewS3Archive(ctx context.Context, bucket, prefix, region string) (*S3Archive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithDefaultRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewS3ArchiveWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3ArchiveWithClient creates an S3Archive around an existing client.
func NewS3ArchiveWithClient(client PutObjectAPI, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Store implements Archive.
func (a *S3Archive) Store(ctx context.Context, businessName, text string) (string, error) {
	key := objectName(businessName, a.now())
	if a.prefix != "" {
		key = path.Join(a.prefix, key)
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(text),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, a.bucket, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
