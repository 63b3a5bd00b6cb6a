package repository

import "github.com/facegate/backend/models"

// IdentityRepositoryInterface defines the persistence contract for enrolled
// identities. Mutating operations are atomic: either the full store is
// durably rewritten or nothing changes.
type IdentityRepositoryInterface interface {
	// List returns every identity, ordered by name for stable display
	List() ([]models.Identity, error)
	// Get returns the identity with the given name (case-normalized match)
	// or models.ErrNotFound
	Get(name string) (*models.Identity, error)
	// Add persists a new identity; fails with models.ErrDuplicateName when a
	// case-normalized name match already exists
	Add(identity *models.Identity) error
	// Remove deletes an identity and all its signatures atomically; fails
	// with models.ErrNotFound when absent
	Remove(name string) error
	// FindDuplicateByFace returns the first identity whose signatures score
	// at or above the threshold against the probe, or nil when none do. Used
	// at enrollment time to keep one physical person from registering twice.
	FindDuplicateByFace(probe models.Signature, threshold float64) (*models.Identity, error)
}
