package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	estimator "github.com/okian/valora/internal/domain/estimator"
	scale "github.com/okian/valora/internal/domain/scale"
	"github.com/okian/valora/pkg/metrics"
)

// Filesystem-backed Store implementation.
//
// Layout under the root directory:
//
//	sets/<version>/scaler.json
//	sets/<version>/value.json
//	sets/<version>/churn.json
//	sets/<version>/manifest.json
//	latest.json
//
// A set directory is written completely before latest.json is swapped
// to point at it, so readers never observe a half-written set. The
// loaded set is also cached in memory behind a RWMutex so the hot path
// never touches the filesystem.

const (
	scalerFile   = "scaler.json"
	valueFile    = "value.json"
	churnFile    = "churn.json"
	manifestFile = "manifest.json"
	latestFile   = "latest.json"
	setsDir      = "sets"
)

type manifest struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
}

type latestPointer struct {
	Version string `json:"version"`
}

// FSStore persists artifact sets as JSON files under a root directory.
type FSStore struct {
	root     string
	keepSets int

	mu     sync.RWMutex
	cached *ArtifactSet
}

// NewFSStore creates a filesystem store rooted at dir, creating the
// directory tree if needed.
func NewFSStore(dir string, opts ...FSOption) (*FSStore, error) {
	s := &FSStore{root: dir}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(filepath.Join(s.root, setsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return s, nil
}

// Save persists the set under its version and atomically marks it as
// the latest.
func (s *FSStore) Save(_ context.Context, set *ArtifactSet) error {
	start := time.Now()
	if err := s.save(set); err != nil {
		metrics.RecordStoreError("save")
		return err
	}
	metrics.RecordStoreSaveLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

func (s *FSStore) save(set *ArtifactSet) error {
	if set == nil || set.Scaler == nil || set.Value == nil || set.Churn == nil {
		return ErrInvalidSet
	}

	setDir := filepath.Join(s.root, setsDir, set.Version)
	tmpDir := setDir + ".tmp"
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return fmt.Errorf("create set dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	files := map[string]any{
		scalerFile:   set.Scaler,
		valueFile:    set.Value,
		churnFile:    set.Churn,
		manifestFile: manifest{Version: set.Version, TrainedAt: set.TrainedAt},
	}
	for name, v := range files {
		if err := writeJSONFile(filepath.Join(tmpDir, name), v); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(setDir); err != nil {
		return fmt.Errorf("clear stale set dir: %w", err)
	}
	if err := os.Rename(tmpDir, setDir); err != nil {
		return fmt.Errorf("publish set dir: %w", err)
	}

	if err := s.swapLatest(set.Version); err != nil {
		return err
	}

	s.mu.Lock()
	s.cached = set
	s.mu.Unlock()

	metrics.RecordArtifactSwap()
	s.prune(set.Version)
	return nil
}

// prune removes historical set directories beyond the keepSets bound,
// never touching the just-published version. Pruning failures are not
// fatal to a save.
func (s *FSStore) prune(current string) {
	if s.keepSets <= 0 {
		return
	}
	entries, err := os.ReadDir(filepath.Join(s.root, setsDir))
	if err != nil {
		return
	}

	type aged struct {
		name string
		mod  time.Time
	}
	var sets []aged
	for _, e := range entries {
		if !e.IsDir() || e.Name() == current {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sets = append(sets, aged{name: e.Name(), mod: info.ModTime()})
	}
	// Oldest first; the current set occupies one keep slot.
	sort.Slice(sets, func(i, j int) bool { return sets[i].mod.Before(sets[j].mod) })
	excess := len(sets) - (s.keepSets - 1)
	for i := 0; i < excess; i++ {
		os.RemoveAll(filepath.Join(s.root, setsDir, sets[i].name))
	}
}

// swapLatest updates latest.json via a temp file rename.
func (s *FSStore) swapLatest(version string) error {
	tmp := filepath.Join(s.root, latestFile+".tmp")
	if err := writeJSONFile(tmp, latestPointer{Version: version}); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(s.root, latestFile)); err != nil {
		return fmt.Errorf("publish latest pointer: %w", err)
	}
	return nil
}

// Load returns the latest artifact set, preferring the in-memory cache
// and falling back to disk after a restart.
func (s *FSStore) Load(_ context.Context) (*ArtifactSet, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	start := time.Now()
	set, err := s.loadFromDisk()
	if err != nil {
		metrics.RecordStoreError("load")
		return nil, err
	}
	metrics.RecordStoreLoadLatency(float64(time.Since(start).Milliseconds()))

	s.mu.Lock()
	s.cached = set
	s.mu.Unlock()
	return set, nil
}

func (s *FSStore) loadFromDisk() (*ArtifactSet, error) {
	var ptr latestPointer
	if err := readJSONFile(filepath.Join(s.root, latestFile), &ptr); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	setDir := filepath.Join(s.root, setsDir, ptr.Version)

	var m manifest
	set := &ArtifactSet{
		Scaler: scale.New(),
		Value:  &estimator.Linear{},
		Churn:  &estimator.Logistic{},
	}
	files := map[string]any{
		manifestFile: &m,
		scalerFile:   set.Scaler,
		valueFile:    set.Value,
		churnFile:    set.Churn,
	}
	for name, v := range files {
		if err := readJSONFile(filepath.Join(setDir, name), v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
		}
	}
	set.Version = m.Version
	set.TrainedAt = m.TrainedAt
	return set, nil
}

// Exists reports whether a trained artifact set is available.
func (s *FSStore) Exists(ctx context.Context) bool {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return true
	}
	_, err := os.Stat(filepath.Join(s.root, latestFile))
	return err == nil
}

func writeJSONFile(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
