package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/progress-api/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when an object does not exist
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that escape the storage root
	ErrInvalidKey = errors.New("invalid object key")
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key  string
	Size int64
}

// SignedURL is a time-limited URL granting direct access to one object
type SignedURL struct {
	URL     string
	Method  string
	Headers map[string]string
}

// Storage defines the object storage capability used for photos, documents and reports
type Storage interface {
	Put(ctx context.Context, key, contentType string, data io.Reader) (int64, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	UploadURL(ctx context.Context, key, contentType string, expiresAt time.Time) (SignedURL, error)
	DownloadURL(ctx context.Context, key string, expiresAt time.Time) (string, error)
}

// TokenVerifier is implemented by stores that serve uploads and downloads
// themselves through signed tokens
type TokenVerifier interface {
	VerifyUploadToken(token string) (string, error)
	VerifyDownloadToken(token string) (string, error)
}

// NewStorage creates a new storage instance based on configuration.
// For local mode, files are stored on the local filesystem and served by the API.
// For cloud/azure mode, files are stored in Azure Blob Storage and accessed through SAS URLs.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath, cfg.PublicBaseURL, NewSigner(cfg.SigningSecret))
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// NewObjectKey builds a unique key under folder that keeps the original file extension
func NewObjectKey(folder, filename string) string {
	fileID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(folder, fileID[:2], fileID+ext)
}

// LocalStorage implements Storage for the local filesystem
type LocalStorage struct {
	basePath      string
	publicBaseURL string
	signer        *Signer
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath, publicBaseURL string, signer *Signer) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath:      basePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		signer:        signer,
	}, nil
}

func (s *LocalStorage) fullPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || clean[1:] != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}

// Put writes data under key, replacing any existing object
func (s *LocalStorage) Put(ctx context.Context, key, contentType string, data io.Reader) (int64, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return size, nil
}

// Download opens a file from local storage
func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete deletes a file from local storage
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (s *LocalStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return ObjectInfo{}, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return ObjectInfo{}, fmt.Errorf("failed to stat file: %w", err)
	}

	return ObjectInfo{Key: key, Size: info.Size()}, nil
}

// UploadURL returns an API URL accepting a single PUT of the object body
func (s *LocalStorage) UploadURL(ctx context.Context, key, contentType string, expiresAt time.Time) (SignedURL, error) {
	if _, err := s.fullPath(key); err != nil {
		return SignedURL{}, err
	}
	token, err := s.signer.Sign(key, PurposeUpload, expiresAt)
	if err != nil {
		return SignedURL{}, err
	}
	return SignedURL{
		URL:     s.publicBaseURL + "/api/v1/uploads/" + token,
		Method:  "PUT",
		Headers: map[string]string{"Content-Type": contentType},
	}, nil
}

// DownloadURL returns an API URL serving the object until expiresAt
func (s *LocalStorage) DownloadURL(ctx context.Context, key string, expiresAt time.Time) (string, error) {
	if _, err := s.fullPath(key); err != nil {
		return "", err
	}
	token, err := s.signer.Sign(key, PurposeDownload, expiresAt)
	if err != nil {
		return "", err
	}
	return s.publicBaseURL + "/api/v1/files?token=" + token, nil
}

func (s *LocalStorage) VerifyUploadToken(token string) (string, error) {
	return s.signer.Verify(token, PurposeUpload)
}

func (s *LocalStorage) VerifyDownloadToken(token string) (string, error) {
	return s.signer.Verify(token, PurposeDownload)
}
