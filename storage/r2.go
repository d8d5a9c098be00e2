package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type R2Config struct {
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // https://<account-id>.r2.cloudflarestorage.com
	PublicDomain    string // custom domain or r2.dev URL serving the bucket
}

// R2 stores objects in Cloudflare R2 through its S3 API.
type R2 struct {
	client *s3.Client
	bucket string
	domain string
}

func NewR2(ctx context.Context, c R2Config) (*R2, error) {
	if c.Bucket == "" || c.AccessKeyID == "" || c.SecretAccessKey == "" || c.Endpoint == "" {
		return nil, fmt.Errorf("missing R2 settings (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2{
		client: client,
		bucket: c.Bucket,
		domain: strings.TrimRight(c.PublicDomain, "/"),
	}, nil
}

func (r *R2) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.bucket),
		Key:          aws.String(name),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return fmt.Sprintf("%s/%s/%s", r.domain, r.bucket, name), nil
}

func (r *R2) Delete(ctx context.Context, name string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(name),
	})
	return err
}
