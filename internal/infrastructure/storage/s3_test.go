package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"dojo-admin/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		data, _ := io.ReadAll(params.Body)
		f.body = string(data)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3StoreWithoutBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), config.StorageConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestPutReturnsObjectURL(t *testing.T) {
	fake := &fakePutter{}
	store := &S3Store{client: fake, bucket: "dojo-docs", region: "us-east-1"}

	url, err := store.Put(context.Background(), "renade/abc/foto_1_mi foto.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://dojo-docs.s3.us-east-1.amazonaws.com/renade/abc/foto_1_mi%20foto.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
	if aws.ToString(fake.input.Bucket) != "dojo-docs" || aws.ToString(fake.input.ContentType) != "image/jpeg" {
		t.Fatalf("unexpected input %+v", fake.input)
	}
	if aws.ToInt64(fake.input.ContentLength) != 4 || fake.body != "jpeg" {
		t.Fatalf("unexpected body %q (%d)", fake.body, aws.ToInt64(fake.input.ContentLength))
	}
}

func TestPutWithCustomEndpoint(t *testing.T) {
	store := &S3Store{client: &fakePutter{}, bucket: "dojo-docs", endpoint: "http://minio:9000"}

	url, err := store.Put(context.Background(), "renade/x/curp.pdf", strings.NewReader("%PDF"), -1, "")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://minio:9000/dojo-docs/renade/x/curp.pdf" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestPutWrapsClientError(t *testing.T) {
	boom := errors.New("access denied")
	store := &S3Store{client: &fakePutter{err: boom}, bucket: "dojo-docs", region: "us-east-1"}

	if _, err := store.Put(context.Background(), "k", strings.NewReader(""), 0, ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}
