package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

// PropertyRepo provides read access to camp properties (turnusy).  A
// property is always addressed together with its camp so a stale or
// forged camp/property pair cannot resolve to another camp's edition.
type PropertyRepo struct {
    db *sql.DB
}

// NewPropertyRepo returns a new PropertyRepo bound to the given database.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

const propertyCols = `id, camp_id, name, location, starts_at, ends_at, base_price_cents, deposit_cents, is_active, created_at, updated_at`

func scanProperty(row *sql.Row) (*model.Property, error) {
    var p model.Property
    err := row.Scan(&p.ID, &p.CampID, &p.Name, &p.Location, &p.StartsAt, &p.EndsAt,
        &p.BasePriceCents, &p.DepositCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &p, nil
}

// GetByID fetches one property scoped to its camp.  ErrNotFound is
// returned when the pair does not match any row.
func (r *PropertyRepo) GetByID(ctx context.Context, campID, propertyID uint64) (*model.Property, error) {
    const q = `SELECT ` + propertyCols + ` FROM properties WHERE id = ? AND camp_id = ?`
    return scanProperty(r.db.QueryRowContext(ctx, q, propertyID, campID))
}

// ListByCamp returns the active properties of a camp ordered by start
// date, soonest first.
func (r *PropertyRepo) ListByCamp(ctx context.Context, campID uint64) ([]model.Property, error) {
    const q = `SELECT ` + propertyCols + ` FROM properties WHERE camp_id = ? AND is_active = 1 ORDER BY starts_at`
    rows, err := r.db.QueryContext(ctx, q, campID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    props := make([]model.Property, 0)
    for rows.Next() {
        var p model.Property
        if err := rows.Scan(&p.ID, &p.CampID, &p.Name, &p.Location, &p.StartsAt, &p.EndsAt,
            &p.BasePriceCents, &p.DepositCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
            return nil, err
        }
        props = append(props, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return props, nil
}
