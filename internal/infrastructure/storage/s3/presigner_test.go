package s3

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("c1", "Brief.PDF")
	if !strings.HasPrefix(key, "requests/c1/") || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if ObjectKey("c1", "a.pdf") == ObjectKey("c1", "a.pdf") {
		t.Fatalf("keys must be unique per upload")
	}
}

func TestObjectKey_StripsPathsAndOddExtensions(t *testing.T) {
	key := ObjectKey("c1", `..\..\etc\passwd`)
	if strings.Contains(key, "..") || strings.Contains(key, "etc") {
		t.Fatalf("caller path leaked into key %q", key)
	}
	if k := ObjectKey("c1", "noext"); strings.Count(k, ".") != 0 {
		t.Fatalf("unexpected extension in %q", k)
	}
	if k := ObjectKey("c1", "x.averyveryverylongext"); strings.HasSuffix(k, "longext") {
		t.Fatalf("overlong extension kept in %q", k)
	}
}

func TestPresigner_PresignUpload(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	p := NewWithClient(client, Config{Bucket: "attachments", TTL: 5 * time.Minute})

	ticket, err := p.PresignUpload(context.Background(), "c1", "logo.png", "image/png")
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if ticket.Method != http.MethodPut {
		t.Fatalf("expected PUT, got %s", ticket.Method)
	}
	if !strings.HasPrefix(ticket.Key, "requests/c1/") {
		t.Fatalf("unexpected key %q", ticket.Key)
	}
	if !strings.Contains(ticket.URL, "/attachments/"+ticket.Key) {
		t.Fatalf("url %q does not address the object", ticket.URL)
	}
	if !strings.Contains(ticket.URL, "X-Amz-Signature=") {
		t.Fatalf("url %q is not signed", ticket.URL)
	}
	if time.Until(ticket.ExpiresAt) > 5*time.Minute {
		t.Fatalf("expiry beyond configured ttl")
	}
}
