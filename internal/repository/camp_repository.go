// Package repository contains data access logic separated from HTTP handlers.
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

// CampRepo provides read access to camps.  The public booking flow only
// needs lookups and listings; camp administration happens outside this
// service.
type CampRepo struct {
    db *sql.DB
}

// NewCampRepo returns a new CampRepo bound to the given database.
func NewCampRepo(db *sql.DB) *CampRepo { return &CampRepo{db: db} }

// GetByID fetches a single camp.  ErrNotFound is returned when the camp
// does not exist.
func (r *CampRepo) GetByID(ctx context.Context, id uint64) (*model.Camp, error) {
    const q = `SELECT id, name, is_active, created_at, updated_at FROM camps WHERE id = ?`
    var c model.Camp
    err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &c, nil
}

// ListActive returns every camp currently open for booking, ordered by
// name for stable output.
func (r *CampRepo) ListActive(ctx context.Context) ([]model.Camp, error) {
    const q = `SELECT id, name, is_active, created_at, updated_at FROM camps WHERE is_active = 1 ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    camps := make([]model.Camp, 0)
    for rows.Next() {
        var c model.Camp
        if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
            return nil, err
        }
        camps = append(camps, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return camps, nil
}
