// Package sink opens the destination a rendered document is written to:
// standard output, a local file, or an S3-compatible object store.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Environment variables read for object store targets.
const (
	EnvS3Endpoint  = "ZEDI_GEN_S3_ENDPOINT"
	EnvS3AccessKey = "ZEDI_GEN_S3_ACCESS_KEY"
	EnvS3SecretKey = "ZEDI_GEN_S3_SECRET_KEY"
	EnvS3UseSSL    = "ZEDI_GEN_S3_USE_SSL"
	EnvS3Region    = "ZEDI_GEN_S3_REGION"
)

type Kind int

const (
	Stdout Kind = iota
	File
	Object
)

// Target is a parsed output location.
type Target struct {
	Kind   Kind
	Path   string // File
	Bucket string // Object
	Key    string // Object
}

// Parse interprets target: "" or "-" is stdout, s3://bucket/key is an object,
// anything else a file path.
func Parse(target string) (Target, error) {
	switch {
	case target == "" || target == "-":
		return Target{Kind: Stdout}, nil
	case strings.HasPrefix(target, "s3://"):
		bucket, key, _ := strings.Cut(strings.TrimPrefix(target, "s3://"), "/")
		if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
			return Target{}, fmt.Errorf("object target %q needs s3://bucket/key", target)
		}
		return Target{Kind: Object, Bucket: bucket, Key: key}, nil
	default:
		return Target{Kind: File, Path: target}, nil
	}
}

func (t Target) String() string {
	switch t.Kind {
	case Stdout:
		return "stdout"
	case Object:
		return "s3://" + t.Bucket + "/" + t.Key
	default:
		return t.Path
	}
}

// S3Config holds object store connection settings.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// S3ConfigFromEnv reads S3Config from the environment. TLS is on unless
// ZEDI_GEN_S3_USE_SSL is "false" or "0".
func S3ConfigFromEnv() S3Config {
	ssl := strings.ToLower(os.Getenv(EnvS3UseSSL))
	return S3Config{
		Endpoint:  os.Getenv(EnvS3Endpoint),
		AccessKey: os.Getenv(EnvS3AccessKey),
		SecretKey: os.Getenv(EnvS3SecretKey),
		UseSSL:    ssl != "false" && ssl != "0",
		Region:    os.Getenv(EnvS3Region),
	}
}

// NewClient builds a minio client for cfg.
func NewClient(cfg S3Config) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%s is not set", EnvS3Endpoint)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return client, nil
}

// Open returns a writer for target. Object targets use S3ConfigFromEnv.
func Open(ctx context.Context, target string) (io.WriteCloser, error) {
	t, err := Parse(target)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case Stdout:
		return nopCloser{os.Stdout}, nil
	case File:
		f, err := os.Create(t.Path)
		if err != nil {
			return nil, fmt.Errorf("create output file: %w", err)
		}
		return f, nil
	default:
		client, err := NewClient(S3ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		return NewObjectWriter(ctx, client, t.Bucket, t.Key), nil
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// ObjectWriter buffers everything written and uploads it as one object on
// Close.
type ObjectWriter struct {
	ctx    context.Context
	client *minio.Client
	bucket string
	key    string
	buf    bytes.Buffer
	closed bool
}

func NewObjectWriter(ctx context.Context, client *minio.Client, bucket, key string) *ObjectWriter {
	return &ObjectWriter{ctx: ctx, client: client, bucket: bucket, key: key}
}

func (w *ObjectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed object writer")
	}
	return w.buf.Write(p)
}

// Close uploads the buffered document.
func (w *ObjectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.client.PutObject(w.ctx, w.bucket, w.key,
		bytes.NewReader(w.buf.Bytes()), int64(w.buf.Len()),
		minio.PutObjectOptions{ContentType: ContentType(w.key)})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

// ContentType guesses a MIME type from the object key's extension.
func ContentType(key string) string {
	switch ext := strings.ToLower(path.Ext(key)); ext {
	case ".x12", ".edi", ".835":
		return "application/edi-x12"
	case ".parquet":
		return "application/vnd.apache.parquet"
	case ".json":
		return "application/json"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
