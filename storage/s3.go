package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the part of the S3 API used to fetch scripts.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ScriptState implements ScriptState backed by S3
type S3ScriptState struct {
	bucket string
	key    string
	s3     ObjectGetter
}

func NewS3ScriptState(s3Client ObjectGetter, bucket, key string) *S3ScriptState {
	return &S3ScriptState{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3ScriptState) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get script object s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// ParseS3URI splits "s3://bucket/key" into bucket and key. ok is false for
// anything that is not an s3 URI.
func ParseS3URI(uri string) (bucket, key string, ok bool, err error) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false, nil
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("invalid S3 location %q: want s3://bucket/key", uri)
	}
	return bucket, key, true, nil
}

// S3Loader builds the S3 client on first use.
type S3Loader func(ctx context.Context) (ObjectGetter, error)

// DefaultS3Loader uses the shared AWS configuration chain.
func DefaultS3Loader(ctx context.Context) (ObjectGetter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Opener resolves script locations to states. S3 locations share one
// lazily created client; a failed load is retried on the next Open.
type Opener struct {
	load S3Loader

	mu     sync.Mutex
	client ObjectGetter
}

func NewOpener(load S3Loader) *Opener {
	if load == nil {
		load = DefaultS3Loader
	}
	return &Opener{load: load}
}

// Open returns the state for a local path or an s3://bucket/key URI.
func (o *Opener) Open(ctx context.Context, location string) (ScriptState, error) {
	bucket, key, isS3, err := ParseS3URI(location)
	if err != nil {
		return nil, err
	}
	if !isS3 {
		return NewFileScriptState(location), nil
	}

	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	return NewS3ScriptState(client, bucket, key), nil
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client != nil {
		return o.client, nil
	}
	client, err := o.load(ctx)
	if err != nil {
		return nil, err
	}
	o.client = client
	return client, nil
}
