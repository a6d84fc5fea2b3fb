package metasnv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Storage reads and writes project files on the local filesystem or S3.
// Paths are relative to the project directory.
type Storage interface {
	// ReadFile reads a whole file
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces a file. A failed write never leaves a partial file.
	WriteFile(ctx context.Context, path string, data []byte) error

	// List lists the files under a prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if a file exists
	Exists(ctx context.Context, path string) (bool, error)

	// MkdirAll creates a directory and its parents
	MkdirAll(path string) error

	// GetBasePath returns the project directory
	GetBasePath() string

	// IsS3 returns true if this is S3 storage
	IsS3() bool
}

// NewStorage creates the storage backend for a project directory,
// S3 for s3:// URIs and the local filesystem otherwise.
func NewStorage(ctx context.Context, base string) (Storage, error) {
	if IsS3URI(base) {
		return NewS3Storage(ctx, base, "")
	}
	return NewLocalStorage(base), nil
}

// LocalStorage implements Storage for the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage backend
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

func (s *LocalStorage) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.basePath, path))
}

// WriteFile writes to a temporary file in the target directory and renames
// it into place.
func (s *LocalStorage) WriteFile(_ context.Context, path string, data []byte) error {
	fullPath := filepath.Join(s.basePath, path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move %s into place: %w", fullPath, err)
	}
	return nil
}

func (s *LocalStorage) List(_ context.Context, prefix string) ([]string, error) {
	fullPath := filepath.Join(s.basePath, prefix)
	var files []string

	err := filepath.Walk(fullPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		relPath, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(relPath))
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	sort.Strings(files)
	return files, err
}

func (s *LocalStorage) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.basePath, path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *LocalStorage) MkdirAll(path string) error {
	return os.MkdirAll(filepath.Join(s.basePath, path), 0755)
}

func (s *LocalStorage) GetBasePath() string {
	return s.basePath
}

func (s *LocalStorage) IsS3() bool {
	return false
}

// S3URI represents a parsed S3 URI
type S3URI struct {
	Bucket string
	Prefix string
}

// IsS3URI checks if a path is an S3 URI
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ParseS3URI parses an S3 URI like s3://bucket/path/to/project
func ParseS3URI(uri string) (*S3URI, error) {
	if !IsS3URI(uri) {
		return nil, fmt.Errorf("invalid S3 URI: %s (must start with s3://)", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "s3://"), "/", 2)
	if parts[0] == "" {
		return nil, fmt.Errorf("invalid S3 URI: %s (missing bucket name)", uri)
	}

	parsed := &S3URI{Bucket: parts[0]}
	if len(parts) == 2 {
		parsed.Prefix = strings.Trim(parts[1], "/")
	}
	return parsed, nil
}

// S3Storage implements Storage for AWS S3. Objects are uploaded whole, so a
// failed upload leaves any previous object in place.
type S3Storage struct {
	bucket     string
	prefix     string
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader

	uploadedBytes int64
	uploadMutex   sync.Mutex
}

// NewS3Storage creates a new S3 storage backend. An empty region falls back
// to the default AWS configuration chain.
func NewS3Storage(ctx context.Context, uri string, region string) (*S3Storage, error) {
	parsed, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &S3Storage{
		bucket: parsed.Bucket,
		prefix: parsed.Prefix,
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = 10 * MB
			u.Concurrency = 3
		}),
		downloader: manager.NewDownloader(client),
	}, nil
}

func (s *S3Storage) key(p string) string {
	p = filepath.ToSlash(p)
	if s.prefix == "" {
		return p
	}
	return path.Join(s.prefix, p)
}

func (s *S3Storage) ReadFile(ctx context.Context, p string) ([]byte, error) {
	key := s.key(p)

	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	return buf.Bytes(), nil
}

func (s *S3Storage) WriteFile(ctx context.Context, p string, data []byte) error {
	key := s.key(p)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", s.bucket, key, err)
	}

	s.uploadMutex.Lock()
	s.uploadedBytes += int64(len(data))
	s.uploadMutex.Unlock()
	return nil
}

func (s *S3Storage) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)

	var files []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.prefix != "" {
				key = strings.TrimPrefix(key, s.prefix+"/")
			}
			files = append(files, key)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (s *S3Storage) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MkdirAll is a no-op: S3 has no directories.
func (s *S3Storage) MkdirAll(string) error {
	return nil
}

func (s *S3Storage) GetBasePath() string {
	if s.prefix == "" {
		return fmt.Sprintf("s3://%s", s.bucket)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

func (s *S3Storage) IsS3() bool {
	return true
}

// UploadedBytes returns the total bytes uploaded so far.
func (s *S3Storage) UploadedBytes() int64 {
	s.uploadMutex.Lock()
	defer s.uploadMutex.Unlock()
	return s.uploadedBytes
}
