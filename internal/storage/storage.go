// Package storage keeps lawyer verification documents in object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Document struct {
	LawyerID    uint
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentStore returns the URL of the stored object.
type DocumentStore interface {
	PutVerificationDocument(ctx context.Context, doc Document) (string, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type MinioStore struct {
	cfg    Config
	client *minio.Client
}

func NewMinioStore(cfg Config) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	cfg.Endpoint = endpoint
	return &MinioStore{cfg: cfg, client: cl}, nil
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *MinioStore) PutVerificationDocument(ctx context.Context, doc Document) (string, error) {
	key := ObjectKey(doc.LawyerID, doc.Filename, uuid.New())
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, doc.Body, doc.Size, minio.PutObjectOptions{
		ContentType: doc.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return ObjectURL(s.cfg.UseSSL, s.cfg.Endpoint, s.cfg.Bucket, key), nil
}

// ObjectKey groups documents by lawyer and keeps only the original extension.
func ObjectKey(lawyerID uint, filename string, id uuid.UUID) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("lawyers/%d/%s%s", lawyerID, id, ext)
}

func ObjectURL(useSSL bool, endpoint, bucket, key string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: endpoint, Path: "/" + path.Join(bucket, key)}
	return u.String()
}

// MemoryStore keeps uploads in memory. It backs local runs without MinIO.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (s *MemoryStore) PutVerificationDocument(_ context.Context, doc Document) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, doc.Body); err != nil {
		return "", err
	}
	key := ObjectKey(doc.LawyerID, doc.Filename, uuid.New())
	s.mu.Lock()
	s.objects[key] = buf.Bytes()
	s.mu.Unlock()
	return "memory://" + key, nil
}

func (s *MemoryStore) Object(rawURL string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[strings.TrimPrefix(rawURL, "memory://")]
	return b, ok
}
