package auth

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/keepnote/internal/apperr"
)

// KeySource holds the process-wide token signing key. The key is injected
// at startup, either inline from configuration or from a key file that can
// be rewritten at runtime to rotate the key without a restart.
type KeySource struct {
	mu   sync.RWMutex
	key  []byte
	path string
}

// NewStaticKey returns a KeySource with a fixed key.
func NewStaticKey(secret string) *KeySource {
	return &KeySource{key: []byte(secret)}
}

// NewFileKey returns a KeySource that reads its key from path.
func NewFileKey(path string) (*KeySource, error) {
	k := &KeySource{path: path}
	if err := k.Reload(); err != nil {
		return nil, err
	}
	return k, nil
}

// Key returns the current signing key, or ErrConfiguration when none is set.
func (k *KeySource) Key() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if len(k.key) == 0 {
		return nil, fmt.Errorf("%w: no signing key configured", apperr.ErrConfiguration)
	}
	return k.key, nil
}

// Reload re-reads the key file. A no-op for static keys.
func (k *KeySource) Reload() error {
	if k.path == "" {
		return nil
	}
	data, err := os.ReadFile(k.path)
	if err != nil {
		return fmt.Errorf("%w: read key file: %v", apperr.ErrConfiguration, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: key file %s is empty", apperr.ErrConfiguration, k.path)
	}
	k.mu.Lock()
	k.key = data
	k.mu.Unlock()
	return nil
}

// Watch reloads the key whenever the key file is rewritten, until ctx is
// cancelled. The parent directory is watched rather than the file itself so
// atomic rename-into-place rotations are picked up too.
func (k *KeySource) Watch(ctx context.Context, logger *slog.Logger) error {
	if k.path == "" {
		<-ctx.Done()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("key watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(k.path)); err != nil {
		return fmt.Errorf("key watcher: %w", err)
	}
	logger.Info("key watcher: started", slog.String("path", k.path))

	target, _ := filepath.Abs(k.path)
	for {
		select {
		case <-ctx.Done():
			logger.Info("key watcher: stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, _ := filepath.Abs(ev.Name)
			if abs != target {
				continue
			}
			if err := k.Reload(); err != nil {
				logger.Warn("key watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("key watcher: signing key rotated")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("key watcher: error", slog.String("error", err.Error()))
		}
	}
}
