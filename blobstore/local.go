package blobstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/time/rate"
)

// LocalStore implements Store on the local filesystem. Blob names map
// to file paths under the root directory; puts are atomic via a temp
// file and rename.
type LocalStore struct {
	root    string
	limiter *rate.Limiter
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithPutRateLimit throttles Put to roughly bytesPerSec across all
// callers. Useful when bulk-publishing encoded sets next to a
// latency-sensitive workload.
func WithPutRateLimit(bytesPerSec int) LocalOption {
	return func(s *LocalStore) {
		burst := bytesPerSec
		if burst < 1<<20 {
			burst = 1 << 20
		}
		s.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
	}
}

// NewLocalStore creates a Store rooted at the given directory, which
// is created if missing.
func NewLocalStore(root string, opts ...LocalOption) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	s := &LocalStore{root: root}
	for _, fn := range opts {
		fn(s)
	}
	return s, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Put writes a blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if s.limiter != nil {
		// Wait in burst-sized chunks so large blobs still honor ctx.
		for waited := 0; waited < len(data); {
			chunk := len(data) - waited
			if chunk > s.limiter.Burst() {
				chunk = s.limiter.Burst()
			}
			if err := s.limiter.WaitN(ctx, chunk); err != nil {
				return err
			}
			waited += chunk
		}
	}

	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""
	return nil
}

// Get returns the blob's content.
func (s *LocalStore) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// List returns all blob names matching the prefix.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
