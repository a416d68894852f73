// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	appconfig "airdrop-rewards-system/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Sink uploads objects to a Cloudflare R2 bucket through the S3 API.
type R2Sink struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

func NewR2Sink(ctx context.Context, cfg appconfig.R2) (*R2Sink, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("R2 is not configured")
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	cdn := strings.TrimRight(cfg.CDNBaseURL, "/")
	if cdn == "" {
		cdn = endpoint + "/" + cfg.Bucket
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &R2Sink{client: client, bucket: cfg.Bucket, cdnBaseURL: cdn}, nil
}

// Put stores body under key and returns the public URL.
func (r *R2Sink) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", r.cdnBaseURL, key), nil
}
