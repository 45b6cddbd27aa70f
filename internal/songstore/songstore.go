// Package songstore wraps the remote document collection holding song
// metadata. Records are created by uploads and never updated or deleted
// by this application.
package songstore

import (
	"context"

	"fermata/pkg/models"
)

// Store is the metadata-store port over the songs collection.
type Store interface {
	// Add appends a new song record to the collection.
	Add(ctx context.Context, song models.Song) error
	// All scans the entire collection.
	All(ctx context.Context) ([]models.Song, error)
	// ByFilename returns the first record whose filename equals filename,
	// or a not-found error.
	ByFilename(ctx context.Context, filename string) (*models.Song, error)
	// Ping verifies the collection is reachable.
	Ping(ctx context.Context) error
}
