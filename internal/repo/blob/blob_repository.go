package blob

import (
	"context"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// Repository defines the interface for blob storage operations.
type Repository interface {
	// Lock acquires a lock on the blob with the given ID.
	// If exclusive is true, acquires a write lock, otherwise a read lock.
	// Returns a function to release the lock, and any error encountered.
	Lock(ctx context.Context, id domain.BlobID, exclusive bool) (func(), error)

	// Exists checks if a blob with the given ID exists.
	Exists(ctx context.Context, id domain.BlobID) bool

	// Store persists a blob in the repository.
	// Returns an error if the operation fails.
	Store(ctx context.Context, blob *domain.Blob) error

	// Fetch retrieves a blob by its ID.
	// Returns the blob if found, or an error if not found or if retrieval fails.
	Fetch(ctx context.Context, id domain.BlobID) (*domain.Blob, error)

	// Delete removes a blob with the given ID.
	// Returns an error if the blob doesn't exist or if deletion fails.
	Delete(ctx context.Context, id domain.BlobID) error

	// DeleteAll removes all blobs whose ID starts with the given ID followed by pattern
	// (a filepath.Match pattern, e.g. "*"). Matching nothing is not an error.
	DeleteAll(ctx context.Context, id domain.BlobID, pattern string) error

	// Sweep removes blobs last written before cutoff and reports how many.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// RepositoryFactory creates a Repository storing files with extension ext
// under the subdirectory name.
type RepositoryFactory func(
	ctx context.Context,
	name string,
	ext string,
) (Repository, error)
