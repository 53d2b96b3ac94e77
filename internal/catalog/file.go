package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML catalog document
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	cat.Normalize()
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog %s: %w", path, err)
	}

	return &cat, nil
}

// FileProvider serves a catalog loaded from a YAML file and can reload it
// when the file changes. A failed reload keeps the previous snapshot.
type FileProvider struct {
	path   string
	logger *zap.Logger

	mu  sync.RWMutex
	cat *Catalog
}

// NewFileProvider loads path and returns a provider serving it
func NewFileProvider(path string, logger *zap.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	p := &FileProvider{path: abs, logger: logger}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Catalog returns the most recently loaded snapshot
func (p *FileProvider) Catalog(ctx context.Context) (*Catalog, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cat, nil
}

// Reload re-reads the catalog file
func (p *FileProvider) Reload() error {
	cat, err := LoadFile(p.path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.cat = cat
	p.mu.Unlock()

	p.logger.Debug("Loaded catalog",
		zap.String("path", p.path),
		zap.Int("species", len(cat.Species)),
		zap.Int("rescue_orgs", len(cat.RescueOrgs)))
	return nil
}

// Watch reloads the catalog whenever the file is written or replaced.
// It blocks until ctx is cancelled.
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := p.Reload(); err != nil {
				p.logger.Warn("Catalog reload failed, keeping previous snapshot",
					zap.String("path", p.path), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("Catalog watcher error", zap.Error(err))
		}
	}
}
