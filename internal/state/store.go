// Package state reads and writes the externally persisted workflow inputs:
// batch state, topology manifests, and claim briefs. Guidance stages never
// touch the filesystem themselves; the CLI loads context through this store
// at each stage boundary.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opsverity/verity/internal/cache"
	"github.com/opsverity/verity/internal/model"
	"gopkg.in/yaml.v3"
)

// Store provides cached access to one state directory
type Store struct {
	dir   string
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a store over the given state directory. Reads within
// the TTL are served from memory; writes invalidate.
func NewStore(dir string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Store{
		dir:   dir,
		cache: cache.NewMemoryCache(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// BatchPath returns the batch file path for a phase
func (s *Store) BatchPath(phase string) string {
	return filepath.Join(s.dir, fmt.Sprintf("qr-%s.json", phase))
}

// TopologyPath returns the manifest path (JSON form)
func (s *Store) TopologyPath() string {
	return filepath.Join(s.dir, "manifest.json")
}

// BriefPath returns the claim brief path
func (s *Store) BriefPath() string {
	return filepath.Join(s.dir, "brief.json")
}

// read loads a file through the cache. A missing file returns (nil, false)
// rather than an error: absence is a defined degraded mode for optional
// inputs, and the stage decides whether it is fatal.
func (s *Store) read(path string) ([]byte, bool, error) {
	key := cache.Key(path)
	if data, found := s.cache.Get(key); found {
		return data, true, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	_ = s.cache.Set(key, data, s.ttl)
	return data, true, nil
}

// ReloadBatch bypasses the read cache and loads the batch fresh from disk.
// External executors write the batch file directly, so callers aggregating
// after a dispatch must reload rather than trust cached bytes.
func (s *Store) ReloadBatch(phase string) (*model.Batch, error) {
	_ = s.cache.Delete(cache.Key(s.BatchPath(phase)))
	return s.LoadBatch(phase)
}

// LoadBatch loads the persisted batch for a phase. Returns (nil, nil) when
// no batch exists yet.
func (s *Store) LoadBatch(phase string) (*model.Batch, error) {
	data, found, err := s.read(s.BatchPath(phase))
	if err != nil || !found {
		return nil, err
	}

	var batch model.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", s.BatchPath(phase), err)
	}
	if batch.Schema != "" && batch.Schema != model.BatchSchema {
		return nil, fmt.Errorf("unexpected batch schema %q (want %s)", batch.Schema, model.BatchSchema)
	}
	return &batch, nil
}

// SaveBatch writes the batch for its phase and invalidates the cache
func (s *Store) SaveBatch(batch *model.Batch) error {
	if batch.Phase == "" {
		return fmt.Errorf("batch has no phase")
	}
	if batch.Schema == "" {
		batch.Schema = model.BatchSchema
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	path := s.BatchPath(batch.Phase)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write batch %s: %w", path, err)
	}

	_ = s.cache.Delete(cache.Key(path))
	return nil
}

// LoadTopology loads the manifest. Returns (nil, nil) when absent, which
// callers treat as the degraded no-topology mode. Both manifest.json and
// manifest.yaml are accepted.
func (s *Store) LoadTopology() (*model.Topology, error) {
	data, found, err := s.read(s.TopologyPath())
	if err != nil {
		return nil, err
	}
	if found {
		var topo model.Topology
		if err := json.Unmarshal(data, &topo); err != nil {
			return nil, fmt.Errorf("parse %s: %w", s.TopologyPath(), err)
		}
		return &topo, nil
	}

	yamlPath := filepath.Join(s.dir, "manifest.yaml")
	data, found, err = s.read(yamlPath)
	if err != nil || !found {
		return nil, err
	}
	var topo model.Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
	}
	return &topo, nil
}

// LoadBrief loads the claim specification. Returns (nil, nil) when absent.
// A brief with the wrong schema tag is an error, not a degraded mode.
func (s *Store) LoadBrief() (*model.Brief, error) {
	data, found, err := s.read(s.BriefPath())
	if err != nil || !found {
		return nil, err
	}

	var brief model.Brief
	if err := json.Unmarshal(data, &brief); err != nil {
		return nil, fmt.Errorf("parse brief %s: %w", s.BriefPath(), err)
	}
	if brief.Schema != model.BriefSchema {
		return nil, fmt.Errorf("unexpected brief schema %q (want %s)", brief.Schema, model.BriefSchema)
	}
	for i, claim := range brief.Claims {
		if err := claim.Validate(); err != nil {
			return nil, fmt.Errorf("invalid brief %s: claim %d: %w", s.BriefPath(), i+1, err)
		}
	}
	return &brief, nil
}

// RecordOutcome applies one worker outcome to a batch item and persists
// the batch. Items transition exactly once: recording over a terminal
// status is rejected.
func (s *Store) RecordOutcome(phase, itemID string, status model.Status, note string) error {
	if !status.Terminal() {
		return fmt.Errorf("status %s is not a recordable outcome", status)
	}

	batch, err := s.LoadBatch(phase)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("no batch for phase %s", phase)
	}

	item := batch.Find(itemID)
	if item == nil {
		return fmt.Errorf("item not found in batch: %s", itemID)
	}
	if item.Status != model.StatusTodo {
		return fmt.Errorf("item %s already %s; outcomes are recorded exactly once", itemID, item.Status)
	}

	item.Status = status
	item.Note = note
	return s.SaveBatch(batch)
}
