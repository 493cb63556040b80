package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that the requested entity does not exist in the
// underlying storage.
var ErrNotFound = errors.New("storage: not found")

// ErrConflict indicates that a uniqueness constraint rejected the write.
var ErrConflict = errors.New("storage: conflict")

// Store exposes the persistence primitives required by the application. It is
// expected to be safe for concurrent use.
type Store interface {
	Locations() Locations
	Photos() Photos
	Ping(ctx context.Context) error
	Close() error
}

// Location is a user placed point of interest that photos are fetched for.
type Location struct {
	ID        int64
	Latitude  float64
	Longitude float64
	Title     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationCreate captures the data required to create a new location.
type LocationCreate struct {
	Latitude  float64
	Longitude float64
	Title     string
	Address   string
}

// LocationUpdate describes the mutable fields for a location. A nil field
// indicates that no update should be applied for that attribute.
type LocationUpdate struct {
	Title   *string
	Address *string
}

// Locations defines the operations supported for managing locations.
type Locations interface {
	Create(ctx context.Context, input LocationCreate) (Location, error)
	GetByID(ctx context.Context, id int64) (Location, error)
	List(ctx context.Context) ([]Location, error)
	Update(ctx context.Context, id int64, input LocationUpdate) (Location, error)
	Delete(ctx context.Context, id int64) error
}

// Photo is the metadata of one remote photo. LocationID is a weak back
// reference: it is nil once the photo has been detached from its location.
type Photo struct {
	ID         int64
	LocationID *int64
	RemoteID   string
	Title      string
	ImagePath  string
	CreatedAt  time.Time
}

// PhotoCreate contains the data required to insert a new photo.
type PhotoCreate struct {
	LocationID int64
	RemoteID   string
	Title      string
	ImagePath  string
}

// Photos defines the operations supported for managing photos.
type Photos interface {
	Create(ctx context.Context, input PhotoCreate) (Photo, error)
	GetByID(ctx context.Context, id int64) (Photo, error)
	ListByLocation(ctx context.Context, locationID int64) ([]Photo, error)
	// Detach clears the photo's back reference to its location.
	Detach(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
