package uploads

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// Store persists uploads through a storage backend and names them by URL
// under Prefix. A stored file's key is category/<unixmillis>-<name>; its
// public path is Prefix + "/" + key.
type Store struct {
	backend storage.Store
	prefix  string
	root    string
	log     *zap.Logger
	now     func() time.Time
}

// New wraps backend. Files are addressed as prefix + "/" + key.
func New(backend storage.Store, prefix string, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		prefix:  "/" + strings.Trim(prefix, "/"),
		log:     logger,
		now:     time.Now,
	}
}

// NewLocal returns a Store backed by the local filesystem rooted at dir.
func NewLocal(dir, prefix string, logger *zap.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	local, err := storage.NewLocal(storage.LocalConfig{BasePath: abs, BaseURL: prefix})
	if err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	s := New(local, prefix, logger)
	s.root = abs
	return s, nil
}

// Prefix is the public URL prefix, e.g. "/uploads".
func (s *Store) Prefix() string { return s.prefix }

// Backend is the underlying storage.
func (s *Store) Backend() storage.Store { return s.backend }

// Save writes files under category and returns their public paths. If any
// write fails, files written by this call are deleted.
func (s *Store) Save(ctx context.Context, category string, files []File) ([]string, error) {
	category = sanitizeFilename(category)
	stamp := s.now().UnixMilli()
	taken := make(map[string]bool, len(files))

	paths := make([]string, 0, len(files))
	for _, f := range files {
		key := uniqueKey(category, stamp, sanitizeFilename(f.Name), taken)
		opts := &storage.PutOptions{ContentType: f.ContentType}
		if err := s.backend.Put(ctx, key, bytes.NewReader(f.Data), opts); err != nil {
			s.Remove(ctx, paths)
			return nil, fmt.Errorf("store %s: %w", key, err)
		}
		paths = append(paths, s.prefix+"/"+key)
	}
	return paths, nil
}

func uniqueKey(category string, stamp int64, name string, taken map[string]bool) string {
	base := fmt.Sprintf("%d-%s", stamp, name)
	key := path.Join(category, base)
	for i := 1; taken[key]; i++ {
		ext := path.Ext(base)
		key = path.Join(category, fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), i, ext))
	}
	taken[key] = true
	return key
}

// Remove deletes stored files by public path. Paths outside the store are
// ignored. Failures are logged.
func (s *Store) Remove(ctx context.Context, paths []string) {
	for _, p := range paths {
		key, ok := s.key(p)
		if !ok {
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			s.log.Warn("failed to remove upload", zap.String("path", p), zap.Error(err))
		}
	}
}

// key maps a public path to a storage key. Keys never escape the store.
func (s *Store) key(p string) (string, bool) {
	if strings.Contains(p, "..") {
		return "", false
	}
	key, ok := strings.CutPrefix(path.Clean(p), s.prefix+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// sanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == ".." || filename == "/" {
		return "file"
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
