package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studenthub/backend/internal/pkg/logger"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// uploadGrantTTL bounds how long an issued upload key stays writable.
const uploadGrantTTL = 15 * time.Minute

// LocalStorage stores blobs on the local filesystem. Keys are slash-separated
// relative paths under the base directory; the HTTP layer serves them back at
// baseURL. PresignUpload hands out a PUT target routed through the same
// server, standing in for a remote presigned URL: like its remote
// counterpart, the grant is single-use and expires, so a download URL never
// doubles as a write capability.
type LocalStorage struct {
	basePath string
	baseURL  string

	mu     sync.Mutex
	grants map[string]time.Time
}

// NewLocalStorage creates a LocalStorage rooted at basePath. baseURL is the
// public URL prefix under which stored keys are served.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		grants:   make(map[string]time.Time),
	}, nil
}

// GenerateKey builds an opaque key: prefix/<unix-ms>-<rand>-<safe-name>.
func GenerateKey(prefix, filename string) string {
	if prefix == "" {
		prefix = "files"
	}
	safe := unsafeKeyChars.ReplaceAllString(filename, "_")
	if safe == "" {
		safe = "file"
	}
	rand := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	return path.Join(prefix, fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), rand, safe))
}

// resolve maps a key to a filesystem path, rejecting traversal outside the
// base directory.
func (ls *LocalStorage) resolve(key string) (string, error) {
	full := filepath.Join(ls.basePath, filepath.FromSlash(key))
	base, err := filepath.Abs(ls.basePath)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if abs != base && !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file key: %s", key)
	}
	return abs, nil
}

// Save persists a blob and returns its opaque retrieval key.
func (ls *LocalStorage) Save(_ context.Context, data []byte, contentType, keyPrefix string) (string, error) {
	key := GenerateKey(keyPrefix, extFor(contentType))
	if err := ls.write(key, data); err != nil {
		return "", err
	}
	logger.Info().Str("key", key).Int("bytes", len(data)).Msg("Blob saved")
	return key, nil
}

// Put writes raw bytes under a key issued by PresignUpload. The grant is
// consumed even when the write fails; a fresh presign is cheap.
func (ls *LocalStorage) Put(_ context.Context, key string, data []byte) error {
	if !ls.consumeGrant(key) {
		logger.Warn().Str("key", key).Msg("Rejected write to unissued key")
		return ErrUploadNotAuthorized
	}
	return ls.write(key, data)
}

func (ls *LocalStorage) write(key string, data []byte) error {
	full, err := ls.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to write blob")
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

// PresignUpload issues a key and a server-routed PUT target for it.
func (ls *LocalStorage) PresignUpload(_ context.Context, meta UploadMeta) (string, string, error) {
	key := GenerateKey(meta.KeyPrefix, meta.Filename)

	ls.mu.Lock()
	now := time.Now()
	for k, issued := range ls.grants {
		if now.Sub(issued) > uploadGrantTTL {
			delete(ls.grants, k)
		}
	}
	ls.grants[key] = now
	ls.mu.Unlock()

	return ls.baseURL + "/" + key, key, nil
}

// consumeGrant removes the grant for key and reports whether it was live.
func (ls *LocalStorage) consumeGrant(key string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	issued, ok := ls.grants[key]
	if !ok {
		return false
	}
	delete(ls.grants, key)
	return time.Since(issued) <= uploadGrantTTL
}

// PresignDownload returns the URL a stored key is served at.
func (ls *LocalStorage) PresignDownload(_ context.Context, key string) (string, error) {
	if _, err := ls.resolve(key); err != nil {
		return "", err
	}
	return ls.baseURL + "/" + key, nil
}

// Open returns a reader over the stored blob.
func (ls *LocalStorage) Open(key string) (io.ReadCloser, error) {
	full, err := ls.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return f, nil
}

// Delete removes a blob. Missing blobs are treated as already deleted.
func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	full, err := ls.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("key", key).Msg("Failed to delete blob")
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// extFor picks a filename for Save based on content type; proof uploads keep
// their type in the activity record, the key only needs uniqueness.
func extFor(contentType string) string {
	switch contentType {
	case "application/pdf":
		return "proof.pdf"
	case "image/png":
		return "proof.png"
	case "image/jpeg":
		return "proof.jpg"
	default:
		return "proof.bin"
	}
}
