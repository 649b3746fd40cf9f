package contextbuilder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// manifest maps context block names to text files, relative to the manifest
// location.
type manifest struct {
	Blocks map[string]string `yaml:"blocks"`
}

// StaticLoader is a read-through cache over the static context files named in
// a YAML manifest. Blocks load lazily and stay cached for the process
// lifetime; Invalidate clears the cache (development use only).
type StaticLoader struct {
	manifestPath string

	mu       sync.Mutex
	manifest *manifest
	cache    map[string]string
}

// NewStaticLoader creates a loader for the given manifest path. The manifest
// itself is read on first use.
func NewStaticLoader(manifestPath string) *StaticLoader {
	return &StaticLoader{
		manifestPath: manifestPath,
		cache:        make(map[string]string),
	}
}

// Load returns the named block, reading it from disk on first access.
func (l *StaticLoader) Load(name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(name)
}

// LoadBundle returns all named blocks keyed by name.
func (l *StaticLoader) LoadBundle(names []string) (map[string]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bundle := make(map[string]string, len(names))
	for _, name := range names {
		content, err := l.loadLocked(name)
		if err != nil {
			return nil, err
		}
		bundle[name] = content
	}
	return bundle, nil
}

// LoadAll returns every block the manifest names.
func (l *StaticLoader) LoadAll() (map[string]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureManifestLocked(); err != nil {
		return nil, err
	}
	bundle := make(map[string]string, len(l.manifest.Blocks))
	for name := range l.manifest.Blocks {
		content, err := l.loadLocked(name)
		if err != nil {
			return nil, err
		}
		bundle[name] = content
	}
	return bundle, nil
}

// Invalidate drops the cached manifest and all cached blocks.
func (l *StaticLoader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.manifest = nil
	l.cache = make(map[string]string)
}

func (l *StaticLoader) loadLocked(name string) (string, error) {
	if content, ok := l.cache[name]; ok {
		return content, nil
	}
	if err := l.ensureManifestLocked(); err != nil {
		return "", err
	}

	relPath, ok := l.manifest.Blocks[name]
	if !ok {
		return "", fmt.Errorf("context block %q not in manifest %s", name, l.manifestPath)
	}
	path := relPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(l.manifestPath), relPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read context block %q: %w", name, err)
	}

	l.cache[name] = string(data)
	return string(data), nil
}

func (l *StaticLoader) ensureManifestLocked() error {
	if l.manifest != nil {
		return nil
	}
	data, err := os.ReadFile(l.manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read context manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse context manifest: %w", err)
	}
	if m.Blocks == nil {
		m.Blocks = make(map[string]string)
	}
	l.manifest = &m
	return nil
}
