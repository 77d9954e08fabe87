package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func testStore() *Store {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	return NewWithClient(s3.NewFromConfig(cfg), "bucket", "uploads/", "")
}

func TestPresignPutSignedHeadersExcludeContentLength(t *testing.T) {
	raw, err := testStore().PresignPut(context.Background(), "user/cert.pdf", 15*time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.Contains(parsed.Path, "uploads/user/cert.pdf") {
		t.Fatalf("expected prefixed key in path, got %s", parsed.Path)
	}

	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if signed == "" {
		t.Fatalf("expected X-Amz-SignedHeaders")
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "host") {
		t.Fatalf("expected host in signed headers: %s", signed)
	}
}

func TestPresignGetHonoursTTL(t *testing.T) {
	raw, err := testStore().PresignGet(context.Background(), "user/avatar.png", 5*time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if got := parsed.Query().Get("X-Amz-Expires"); got != "300" {
		t.Fatalf("expected X-Amz-Expires=300, got %q", got)
	}
}
