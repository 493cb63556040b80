package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Oxyrus/virtualtourist/internal/storage"
)

type locationRepository struct {
	db *sql.DB
}

func (r *locationRepository) Create(ctx context.Context, input storage.LocationCreate) (storage.Location, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (latitude, longitude, title, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.Latitude,
		input.Longitude,
		input.Title,
		input.Address,
		now,
		now,
	)
	if err != nil {
		return storage.Location{}, fmt.Errorf("sqlite: create location: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.Location{}, fmt.Errorf("sqlite: create location: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (storage.Location, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, latitude, longitude, title, address, created_at, updated_at
		FROM locations
		WHERE id = ?`,
		id,
	)
	return scanLocation(row)
}

func (r *locationRepository) List(ctx context.Context) ([]storage.Location, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, latitude, longitude, title, address, created_at, updated_at
		FROM locations
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list locations: %w", err)
	}
	defer rows.Close()

	var result []storage.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, location)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list locations: %w", err)
	}

	return result, nil
}

func (r *locationRepository) Update(ctx context.Context, id int64, input storage.LocationUpdate) (storage.Location, error) {
	setClauses := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if input.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *input.Title)
	}

	if input.Address != nil {
		setClauses = append(setClauses, "address = ?")
		args = append(args, *input.Address)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE locations SET %s WHERE id = ?", strings.Join(setClauses, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Location{}, fmt.Errorf("sqlite: update location: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return storage.Location{}, fmt.Errorf("sqlite: update location: %w", err)
	}

	if rowsAffected == 0 {
		return storage.Location{}, storage.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete location: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete location: %w", err)
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

type locationScanner interface {
	Scan(dest ...any) error
}

func scanLocation(s locationScanner) (storage.Location, error) {
	var (
		location     storage.Location
		createdAtRaw time.Time
		updatedAtRaw time.Time
	)

	err := s.Scan(
		&location.ID,
		&location.Latitude,
		&location.Longitude,
		&location.Title,
		&location.Address,
		&createdAtRaw,
		&updatedAtRaw,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.Location{}, storage.ErrNotFound
		}
		return storage.Location{}, fmt.Errorf("sqlite: scan location: %w", err)
	}

	location.CreatedAt = createdAtRaw.UTC()
	location.UpdatedAt = updatedAtRaw.UTC()

	return location, nil
}
