// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Oxyrus/virtualtourist/internal/storage"
)

// Store keeps locations and photos in maps guarded by a single mutex. It
// mirrors the sqlite semantics the engine relies on: unique remote ids per
// location, ErrNotFound on missing rows and nulled back references when a
// location is deleted.
type Store struct {
	mu        sync.Mutex
	nextID    int64
	locations map[int64]storage.Location
	photos    map[int64]storage.Photo

	// Calls records repository calls in order, e.g. "photos.Detach".
	Calls []string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		locations: make(map[int64]storage.Location),
		photos:    make(map[int64]storage.Photo),
	}
}

func (s *Store) Locations() storage.Locations { return locationRepo{s} }
func (s *Store) Photos() storage.Photos       { return photoRepo{s} }
func (s *Store) Ping(context.Context) error   { return nil }
func (s *Store) Close() error                 { return nil }

// CallCount returns how many times the named call was recorded.
func (s *Store) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// PhotoCount returns the number of stored photos, attached or not.
func (s *Store) PhotoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}

func (s *Store) record(name string) {
	s.Calls = append(s.Calls, name)
}

type locationRepo struct{ s *Store }

func (r locationRepo) Create(_ context.Context, input storage.LocationCreate) (storage.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("locations.Create")

	r.s.nextID++
	now := time.Now().UTC()
	loc := storage.Location{
		ID:        r.s.nextID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Title:     input.Title,
		Address:   input.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.locations[loc.ID] = loc
	return loc, nil
}

func (r locationRepo) GetByID(_ context.Context, id int64) (storage.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	loc, ok := r.s.locations[id]
	if !ok {
		return storage.Location{}, storage.ErrNotFound
	}
	return loc, nil
}

func (r locationRepo) List(context.Context) ([]storage.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]storage.Location, 0, len(r.s.locations))
	for _, loc := range r.s.locations {
		result = append(result, loc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r locationRepo) Update(_ context.Context, id int64, input storage.LocationUpdate) (storage.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("locations.Update")

	loc, ok := r.s.locations[id]
	if !ok {
		return storage.Location{}, storage.ErrNotFound
	}
	if input.Title != nil {
		loc.Title = *input.Title
	}
	if input.Address != nil {
		loc.Address = *input.Address
	}
	loc.UpdatedAt = time.Now().UTC()
	r.s.locations[id] = loc
	return loc, nil
}

func (r locationRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("locations.Delete")

	if _, ok := r.s.locations[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.s.locations, id)

	for pid, p := range r.s.photos {
		if p.LocationID != nil && *p.LocationID == id {
			p.LocationID = nil
			r.s.photos[pid] = p
		}
	}
	return nil
}

type photoRepo struct{ s *Store }

func (r photoRepo) Create(_ context.Context, input storage.PhotoCreate) (storage.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("photos.Create")

	for _, p := range r.s.photos {
		if p.LocationID != nil && *p.LocationID == input.LocationID && p.RemoteID == input.RemoteID {
			return storage.Photo{}, storage.ErrConflict
		}
	}

	r.s.nextID++
	locationID := input.LocationID
	photo := storage.Photo{
		ID:         r.s.nextID,
		LocationID: &locationID,
		RemoteID:   input.RemoteID,
		Title:      input.Title,
		ImagePath:  input.ImagePath,
		CreatedAt:  time.Now().UTC(),
	}
	r.s.photos[photo.ID] = photo
	return photo, nil
}

func (r photoRepo) GetByID(_ context.Context, id int64) (storage.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.photos[id]
	if !ok {
		return storage.Photo{}, storage.ErrNotFound
	}
	return p, nil
}

func (r photoRepo) ListByLocation(_ context.Context, locationID int64) ([]storage.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []storage.Photo
	for _, p := range r.s.photos {
		if p.LocationID != nil && *p.LocationID == locationID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r photoRepo) Detach(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("photos.Detach")

	p, ok := r.s.photos[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.LocationID = nil
	r.s.photos[id] = p
	return nil
}

func (r photoRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.record("photos.Delete")

	if _, ok := r.s.photos[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.s.photos, id)
	return nil
}

var _ storage.Store = (*Store)(nil)
