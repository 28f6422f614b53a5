package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// DefaultS3Timeout bounds a single artifact fetch
const DefaultS3Timeout = 30 * time.Second

// objectGetter is the part of the S3 client the provider uses
type objectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// S3Provider is a koanf provider that reads a reference artifact from an S3 object
type S3Provider struct {
	client  objectGetter
	bucket  string
	key     string
	timeout time.Duration
}

// NewS3Provider creates a provider for s3://bucket/key in the given AWS region
func NewS3Provider(awsRegion, bucket, key string) (*S3Provider, error) {
	if bucket == "" || key == "" {
		return nil, errors.New("reference bucket and key are required")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(awsRegion),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Provider{
		client:  s3.New(sess),
		bucket:  bucket,
		key:     key,
		timeout: DefaultS3Timeout,
	}, nil
}

// ReadBytes fetches the object body
func (p *S3Provider) ReadBytes() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	out, err := p.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", p.bucket, p.key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", p.bucket, p.key, err)
	}
	return body, nil
}

// Read is not supported; the object must be parsed with a koanf parser
func (p *S3Provider) Read() (map[string]interface{}, error) {
	return nil, errors.New("s3 provider does not support this method")
}
