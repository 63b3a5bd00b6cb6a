package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/facette/natsort"
	"github.com/google/renameio"

	"github.com/facegate/backend/models"
	"github.com/facegate/backend/vision"
)

// identityRecord is the on-disk shape of one identity. Unknown fields from
// older or newer writers are captured in extra and written back verbatim,
// keeping the document schema stable across versions.
type identityRecord struct {
	Name       string      `json:"name"`
	Signatures [][]float32 `json:"signatures"`
	CreatedAt  int64       `json:"created_at"`

	extra map[string]json.RawMessage
}

var knownRecordKeys = map[string]bool{
	"name":       true,
	"signatures": true,
	"created_at": true,
}

func (r *identityRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &r.Name); err != nil {
			return fmt.Errorf("invalid name field: %w", err)
		}
	}
	if v, ok := raw["signatures"]; ok {
		if err := json.Unmarshal(v, &r.Signatures); err != nil {
			return fmt.Errorf("invalid signatures field: %w", err)
		}
	}
	if v, ok := raw["created_at"]; ok {
		if err := json.Unmarshal(v, &r.CreatedAt); err != nil {
			return fmt.Errorf("invalid created_at field: %w", err)
		}
	}
	for key, v := range raw {
		if knownRecordKeys[key] {
			continue
		}
		if r.extra == nil {
			r.extra = make(map[string]json.RawMessage)
		}
		r.extra[key] = v
	}
	return nil
}

func (r identityRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.extra)+3)
	for key, v := range r.extra {
		out[key] = v
	}
	name, err := json.Marshal(r.Name)
	if err != nil {
		return nil, err
	}
	sigs, err := json.Marshal(r.Signatures)
	if err != nil {
		return nil, err
	}
	created, err := json.Marshal(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	out["name"] = name
	out["signatures"] = sigs
	out["created_at"] = created
	return json.Marshal(out)
}

func (r *identityRecord) toIdentity() models.Identity {
	sigs := make([]models.Signature, len(r.Signatures))
	for i, s := range r.Signatures {
		sigs[i] = models.Signature(s).Clone()
	}
	return models.Identity{Name: r.Name, Signatures: sigs, CreatedAt: r.CreatedAt}
}

// FileIdentityRepository persists the full identity set as a single JSON
// document. It is the single source of truth: mutations reload the document,
// apply the change and flush the complete result via an atomic rename, so a
// crash mid-write never leaves a half-written store and concurrent readers
// see either the pre-write or post-write snapshot.
type FileIdentityRepository struct {
	path string

	mu      sync.RWMutex
	records []identityRecord
}

// NewFileIdentityRepository loads (or initializes) the store document at path
func NewFileIdentityRepository(path string) (*FileIdentityRepository, error) {
	repo := &FileIdentityRepository{path: path}
	if err := repo.reload(); err != nil {
		return nil, fmt.Errorf("failed to load identity store %s: %w", path, err)
	}
	log.Printf("store: loaded %d identit(ies) from %s", len(repo.records), path)
	return repo, nil
}

// reload replaces the in-memory snapshot with the on-disk document. A
// missing file is an empty store. Caller must hold the write lock (or be
// the constructor).
func (repo *FileIdentityRepository) reload() error {
	data, err := os.ReadFile(repo.path)
	if errors.Is(err, os.ErrNotExist) {
		repo.records = nil
		return nil
	}
	if err != nil {
		return err
	}

	var records []identityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("corrupt identity store document: %w", err)
	}
	repo.records = records
	return nil
}

// flush stages the full document to a temp file and atomically promotes it.
// Caller must hold the write lock.
func (repo *FileIdentityRepository) flush() error {
	records := repo.records
	if records == nil {
		records = []identityRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode identity store: %w", err)
	}
	if err := renameio.WriteFile(repo.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write identity store %s: %w", repo.path, err)
	}
	return nil
}

func (repo *FileIdentityRepository) indexOf(name string) int {
	key := models.NormalizeName(name)
	for i := range repo.records {
		if models.NormalizeName(repo.records[i].Name) == key {
			return i
		}
	}
	return -1
}

// List returns all identities ordered by name (natural sort, so "Person 2"
// sorts before "Person 10")
func (repo *FileIdentityRepository) List() ([]models.Identity, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	identities := make([]models.Identity, len(repo.records))
	names := make([]string, len(repo.records))
	byName := make(map[string]int, len(repo.records))
	for i := range repo.records {
		names[i] = repo.records[i].Name
		byName[repo.records[i].Name] = i
	}
	natsort.Sort(names)
	for i, name := range names {
		identities[i] = repo.records[byName[name]].toIdentity()
	}
	return identities, nil
}

// Get returns a single identity by case-normalized name
func (repo *FileIdentityRepository) Get(name string) (*models.Identity, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	idx := repo.indexOf(name)
	if idx < 0 {
		return nil, models.ErrNotFound
	}
	identity := repo.records[idx].toIdentity()
	return &identity, nil
}

// Add appends a new identity and flushes the full document before returning
func (repo *FileIdentityRepository) Add(identity *models.Identity) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.reload(); err != nil {
		return fmt.Errorf("failed to reload identity store before add: %w", err)
	}
	if repo.indexOf(identity.Name) >= 0 {
		return fmt.Errorf("%w: %q", models.ErrDuplicateName, identity.Name)
	}

	sigs := make([][]float32, len(identity.Signatures))
	for i, s := range identity.Signatures {
		sigs[i] = []float32(s.Clone())
	}
	repo.records = append(repo.records, identityRecord{
		Name:       identity.Name,
		Signatures: sigs,
		CreatedAt:  identity.CreatedAt,
	})

	if err := repo.flush(); err != nil {
		// roll the snapshot back so memory matches disk
		repo.records = repo.records[:len(repo.records)-1]
		return err
	}
	log.Printf("store: added identity %q (%d signature(s))", identity.Name, len(identity.Signatures))
	return nil
}

// Remove deletes an identity and all its signatures, flushing atomically
func (repo *FileIdentityRepository) Remove(name string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.reload(); err != nil {
		return fmt.Errorf("failed to reload identity store before remove: %w", err)
	}
	idx := repo.indexOf(name)
	if idx < 0 {
		return fmt.Errorf("%w: %q", models.ErrNotFound, name)
	}

	removed := repo.records[idx]
	repo.records = append(repo.records[:idx:idx], repo.records[idx+1:]...)

	if err := repo.flush(); err != nil {
		repo.records = append(repo.records[:idx:idx], append([]identityRecord{removed}, repo.records[idx:]...)...)
		return err
	}
	log.Printf("store: removed identity %q", removed.Name)
	return nil
}

// FindDuplicateByFace scans every enrolled signature for one scoring at or
// above the threshold against the probe
func (repo *FileIdentityRepository) FindDuplicateByFace(probe models.Signature, threshold float64) (*models.Identity, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for i := range repo.records {
		for _, sig := range repo.records[i].Signatures {
			if score := vision.Score(probe, models.Signature(sig)); score >= threshold {
				identity := repo.records[i].toIdentity()
				log.Printf("store: probe matches enrolled identity %q (score %.3f >= %.2f)", identity.Name, score, threshold)
				return &identity, nil
			}
		}
	}
	return nil, nil
}
