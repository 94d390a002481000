// Package sink is where generated files go: a directory on disk, or memory
// for dry runs and tests.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// OutputSink receives generated files. Paths are slash-separated and
// relative to the sink. Implementations are safe for concurrent use.
type OutputSink interface {
	WriteFile(ctx context.Context, rel string, content []byte) error
}

// ErrExists is returned by a FilesystemSink that may not overwrite.
var ErrExists = errors.New("file already exists")

// FilesystemSink writes below Root, creating parent directories as needed.
// Each file is written to a temp file and renamed into place.
type FilesystemSink struct {
	Root string
	// Mode defaults to 0644.
	Mode os.FileMode
	// Overwrite replaces existing files; otherwise they are an error.
	Overwrite bool
}

// NewFilesystemSink returns a sink rooted at root that overwrites files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644, Overwrite: true}
}

func (s *FilesystemSink) WriteFile(ctx context.Context, rel string, content []byte) error {
	if err := ValidatePath(rel); err != nil {
		return fmt.Errorf("invalid path %q: %w", rel, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if !s.Overwrite {
		if _, err := os.Stat(full); err == nil {
			return fmt.Errorf("%s: %w", rel, ErrExists)
		}
	}

	tmp, err := os.CreateTemp(dir, ".swagger2hooks-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", rel, err)
	}
	tmpPath := tmp.Name()
	_, werr := tmp.Write(content)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp %s: %w", rel, err)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", rel, err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", rel, err)
	}
	return nil
}

// MemorySink keeps written files in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) WriteFile(ctx context.Context, rel string, content []byte) error {
	if err := ValidatePath(rel); err != nil {
		return fmt.Errorf("invalid path %q: %w", rel, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rel] = append([]byte(nil), content...)
	return nil
}

// Get returns a copy of the file at rel, or nil.
func (s *MemorySink) Get(rel string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[rel]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Paths returns every written path, sorted.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ValidatePath accepts clean, relative, slash-separated paths that stay
// inside the sink.
func ValidatePath(rel string) error {
	if rel == "" {
		return errors.New("path is empty")
	}
	if strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return errors.New("absolute paths not allowed")
	}
	if len(rel) >= 2 && rel[1] == ':' {
		return errors.New("absolute paths not allowed")
	}
	if strings.Contains(rel, `\`) {
		return errors.New("use / as separator")
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := path.Clean(rel); cleaned != rel {
		return fmt.Errorf("path is not clean (expected %q)", cleaned)
	}
	return nil
}
