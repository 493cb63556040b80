package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Oxyrus/virtualtourist/internal/storage"
	"github.com/Oxyrus/virtualtourist/internal/storage/sqlite"
)

func TestOpenCreatesSchema(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)

	ctx := context.Background()

	locations, err := store.Locations().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(locations) != 0 {
		t.Fatalf("expected no locations, got %d", len(locations))
	}

	photos, err := store.Photos().ListByLocation(ctx, 1)
	if err != nil {
		t.Fatalf("ListByLocation returned error: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected no photos, got %d", len(photos))
	}
}

func TestLocationLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	created, err := store.Locations().Create(ctx, storage.LocationCreate{
		Latitude:  39.5,
		Longitude: -98.35,
		Title:     "Kansas",
		Address:   "Lebanon, KS  United States",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID == 0 {
		t.Fatalf("expected location ID to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be populated")
	}
	if created.Latitude != 39.5 || created.Longitude != -98.35 {
		t.Fatalf("unexpected coordinates %v,%v", created.Latitude, created.Longitude)
	}

	items, err := store.Locations().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 location, got %d", len(items))
	}

	newTitle := "KS"
	updated, err := store.Locations().Update(ctx, created.ID, storage.LocationUpdate{
		Title: &newTitle,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != newTitle {
		t.Fatalf("expected updated title %q, got %q", newTitle, updated.Title)
	}
	if updated.Address != created.Address {
		t.Fatalf("expected address to be untouched, got %q", updated.Address)
	}

	if err := store.Locations().Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := store.Locations().GetByID(ctx, created.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Locations().Delete(ctx, created.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestLocationListIsInCreationOrder(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	for _, lon := range []float64{120, -70, 10} {
		if _, err := store.Locations().Create(ctx, storage.LocationCreate{Latitude: 5, Longitude: lon}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	items, err := store.Locations().List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 locations, got %d", len(items))
	}
	for i, want := range []float64{120, -70, 10} {
		if items[i].Longitude != want {
			t.Fatalf("expected location %d at longitude %v, got %v", i, want, items[i].Longitude)
		}
		if i > 0 && items[i].ID <= items[i-1].ID {
			t.Fatalf("expected ascending ids, got %d after %d", items[i].ID, items[i-1].ID)
		}
	}
}

func TestLocationRejectsInvalidCoordinates(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)

	_, err := store.Locations().Create(context.Background(), storage.LocationCreate{
		Latitude:  91,
		Longitude: 0,
	})
	if err == nil {
		t.Fatalf("expected check constraint to reject latitude 91")
	}
}

func TestPhotosLifecycle(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	location := createLocation(t, store)

	first, err := store.Photos().Create(ctx, storage.PhotoCreate{
		LocationID: location.ID,
		RemoteID:   "4567",
		Title:      "Observation deck",
		ImagePath:  "live.staticflickr.com/65535/4567_abc_m.jpg",
	})
	if err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	second, err := store.Photos().Create(ctx, storage.PhotoCreate{
		LocationID: location.ID,
		RemoteID:   "4568",
		Title:      "Downtown at night",
		ImagePath:  "live.staticflickr.com/65535/4568_def_m.jpg",
	})
	if err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	photos, err := store.Photos().ListByLocation(ctx, location.ID)
	if err != nil {
		t.Fatalf("ListByLocation returned error: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if photos[0].ID != first.ID || photos[1].ID != second.ID {
		t.Fatalf("expected ordered photos [%d %d], got [%d %d]", first.ID, second.ID, photos[0].ID, photos[1].ID)
	}
	if photos[0].LocationID == nil || *photos[0].LocationID != location.ID {
		t.Fatalf("expected back reference to location %d", location.ID)
	}

	if err := store.Photos().Detach(ctx, first.ID); err != nil {
		t.Fatalf("Detach returned error: %v", err)
	}

	detached, err := store.Photos().GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if detached.LocationID != nil {
		t.Fatalf("expected nil back reference after detach, got %d", *detached.LocationID)
	}

	remaining, err := store.Photos().ListByLocation(ctx, location.ID)
	if err != nil {
		t.Fatalf("ListByLocation returned error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected detached photo to leave the location, got %d photos", len(remaining))
	}

	if err := store.Photos().Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := store.Photos().GetByID(ctx, first.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Photos().Detach(ctx, first.ID); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound when detaching a deleted photo, got %v", err)
	}
}

func TestPhotoDuplicateRemoteID(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	location := createLocation(t, store)
	input := storage.PhotoCreate{
		LocationID: location.ID,
		RemoteID:   "4567",
		ImagePath:  "live.staticflickr.com/65535/4567_abc_m.jpg",
	}

	if _, err := store.Photos().Create(ctx, input); err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	if _, err := store.Photos().Create(ctx, input); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate remote id, got %v", err)
	}
}

func TestDeletingLocationNullsBackReference(t *testing.T) {
	store := newStore(t)
	defer closeStore(t, store)
	ctx := context.Background()

	location := createLocation(t, store)
	photo, err := store.Photos().Create(ctx, storage.PhotoCreate{
		LocationID: location.ID,
		RemoteID:   "4567",
		ImagePath:  "live.staticflickr.com/65535/4567_abc_m.jpg",
	})
	if err != nil {
		t.Fatalf("Create photo returned error: %v", err)
	}

	if err := store.Locations().Delete(ctx, location.ID); err != nil {
		t.Fatalf("Delete location returned error: %v", err)
	}

	orphan, err := store.Photos().GetByID(ctx, photo.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if orphan.LocationID != nil {
		t.Fatalf("expected back reference to be cleared, got %d", *orphan.LocationID)
	}
}

func createLocation(t *testing.T, store storage.Store) storage.Location {
	t.Helper()

	location, err := store.Locations().Create(context.Background(), storage.LocationCreate{
		Latitude:  40.7128,
		Longitude: -74.006,
		Title:     "New York",
	})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	return location
}

func newStore(t *testing.T) storage.Store {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "virtualtourist.db")

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	return store
}

func closeStore(t *testing.T, store storage.Store) {
	t.Helper()
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
