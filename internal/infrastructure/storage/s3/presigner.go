// Package s3 issues presigned upload URLs for request attachments.
package s3

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

const defaultPresignTTL = 15 * time.Minute

type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for S3-compatible stores such as MinIO
	TTL      time.Duration
}

// Presigner implements ports.AttachmentStore on S3.
type Presigner struct {
	client *s3.PresignClient
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

// New loads AWS credentials from the default chain and builds a Presigner.
func New(ctx context.Context, cfg Config) (*Presigner, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing S3 client.
func NewWithClient(client *s3.Client, cfg Config) *Presigner {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.Bucket,
		ttl:    ttl,
		now:    time.Now,
	}
}

// PresignUpload returns a PUT URL for a new object under the client's prefix.
func (p *Presigner) PresignUpload(ctx context.Context, clientID, filename, contentType string) (*ports.UploadTicket, error) {
	key := ObjectKey(clientID, filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := p.client.PresignPutObject(ctx, input, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("s3: presign put: %w", err)
	}

	return &ports.UploadTicket{
		Key:       key,
		URL:       req.URL,
		Method:    http.MethodPut,
		ExpiresAt: p.now().Add(p.ttl).UTC(),
	}, nil
}

// ObjectKey builds requests/<clientID>/<uuid><ext>. Only the extension of the
// caller's filename survives, lower-cased.
func ObjectKey(clientID, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 || strings.ContainsAny(ext, " /?#") {
		ext = ""
	}
	return fmt.Sprintf("requests/%s/%s%s", clientID, uuid.NewString(), ext)
}
