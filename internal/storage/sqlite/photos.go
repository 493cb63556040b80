package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Oxyrus/virtualtourist/internal/storage"
)

type photoRepository struct {
	db *sql.DB
}

func (r *photoRepository) Create(ctx context.Context, input storage.PhotoCreate) (storage.Photo, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO photos (location_id, remote_id, title, image_path, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		input.LocationID,
		input.RemoteID,
		input.Title,
		input.ImagePath,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Photo{}, storage.ErrConflict
		}
		return storage.Photo{}, fmt.Errorf("sqlite: create photo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Photo{}, fmt.Errorf("sqlite: create photo: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (storage.Photo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, location_id, remote_id, title, image_path, created_at
		FROM photos
		WHERE id = ?`,
		id,
	)
	return scanPhoto(row)
}

func (r *photoRepository) ListByLocation(ctx context.Context, locationID int64) ([]storage.Photo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, location_id, remote_id, title, image_path, created_at
		FROM photos
		WHERE location_id = ?
		ORDER BY id`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list photos: %w", err)
	}
	defer rows.Close()

	var result []storage.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list photos: %w", err)
	}

	return result, nil
}

func (r *photoRepository) Detach(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE photos SET location_id = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: detach photo: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: detach photo: %w", err)
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete photo: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete photo: %w", err)
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

type photoScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(s photoScanner) (storage.Photo, error) {
	var (
		photo        storage.Photo
		locationID   sql.NullInt64
		createdAtRaw time.Time
	)

	err := s.Scan(
		&photo.ID,
		&locationID,
		&photo.RemoteID,
		&photo.Title,
		&photo.ImagePath,
		&createdAtRaw,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.Photo{}, storage.ErrNotFound
		}
		return storage.Photo{}, fmt.Errorf("sqlite: scan photo: %w", err)
	}

	if locationID.Valid {
		v := locationID.Int64
		photo.LocationID = &v
	}

	photo.CreatedAt = createdAtRaw.UTC()

	return photo, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
