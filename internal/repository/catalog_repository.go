package repository

import (
    "context"
    "database/sql"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

// CatalogRepo provides read access to priced catalog entries: the
// protections, diets, add-ons and promotions offered in step 2 of the
// wizard.  Property-scoped and general entries live in the same table;
// general entries have a NULL property_id.
type CatalogRepo struct {
    db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

const catalogCols = `id, property_id, kind, name, price_cents, is_active, created_at, updated_at`

func (r *CatalogRepo) list(ctx context.Context, q string, args ...any) ([]model.CatalogEntry, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    entries := make([]model.CatalogEntry, 0)
    for rows.Next() {
        var e model.CatalogEntry
        var propID sql.NullInt64
        if err := rows.Scan(&e.ID, &propID, &e.Kind, &e.Name, &e.PriceCents,
            &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
            return nil, err
        }
        if propID.Valid {
            pid := uint64(propID.Int64)
            e.PropertyID = &pid
        }
        entries = append(entries, e)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return entries, nil
}

// ListForProperty returns the active entries of one kind scoped to a
// property.  An empty slice is a valid result; the catalog service
// decides whether to fall back to the general catalog.
func (r *CatalogRepo) ListForProperty(ctx context.Context, propertyID uint64, kind string) ([]model.CatalogEntry, error) {
    const q = `SELECT ` + catalogCols + ` FROM catalog_entries
               WHERE property_id = ? AND kind = ? AND is_active = 1
               ORDER BY name`
    return r.list(ctx, q, propertyID, kind)
}

// ListGeneral returns the active general-catalog entries of one kind
// (property_id IS NULL).
func (r *CatalogRepo) ListGeneral(ctx context.Context, kind string) ([]model.CatalogEntry, error) {
    const q = `SELECT ` + catalogCols + ` FROM catalog_entries
               WHERE property_id IS NULL AND kind = ? AND is_active = 1
               ORDER BY name`
    return r.list(ctx, q, kind)
}
