package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

// DocumentRepo provides access to reservation documents: contracts,
// invoices, qualification cards and payment attachments.  Content blobs
// are fetched separately from the metadata so listings stay cheap.
type DocumentRepo struct {
    db *sql.DB
}

// NewDocumentRepo returns a new DocumentRepo bound to the given database.
func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

const documentCols = `id, reservation_id, kind, filename, content_type, size_bytes, created_at`

// ListByReservation returns the document metadata of one reservation,
// newest first.
func (r *DocumentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Document, error) {
    const q = `SELECT ` + documentCols + ` FROM documents WHERE reservation_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, reservationID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    docs := make([]model.Document, 0)
    for rows.Next() {
        var d model.Document
        if err := rows.Scan(&d.ID, &d.ReservationID, &d.Kind, &d.Filename,
            &d.ContentType, &d.SizeBytes, &d.CreatedAt); err != nil {
            return nil, err
        }
        docs = append(docs, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return docs, nil
}

// GetWithContent fetches one document with its blob.  ErrNotFound is
// returned when the document does not exist.
func (r *DocumentRepo) GetWithContent(ctx context.Context, id uint64) (*model.Document, []byte, error) {
    const q = `SELECT ` + documentCols + `, content FROM documents WHERE id = ?`
    var d model.Document
    var content []byte
    err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.ReservationID, &d.Kind,
        &d.Filename, &d.ContentType, &d.SizeBytes, &d.CreatedAt, &content)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil, ErrNotFound
    }
    if err != nil {
        return nil, nil, err
    }
    return &d, content, nil
}

// Upload stores a new document blob and returns its metadata.
func (r *DocumentRepo) Upload(ctx context.Context, reservationID uint64, kind, filename, contentType string, content []byte) (*model.Document, error) {
    const ins = `INSERT INTO documents (reservation_id, kind, filename, content_type, size_bytes, content)
                 VALUES (?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, ins, reservationID, kind, filename, contentType, len(content), content)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    const sel = `SELECT ` + documentCols + ` FROM documents WHERE id = ?`
    var d model.Document
    if err := r.db.QueryRowContext(ctx, sel, id).Scan(&d.ID, &d.ReservationID, &d.Kind,
        &d.Filename, &d.ContentType, &d.SizeBytes, &d.CreatedAt); err != nil {
        return nil, err
    }
    return &d, nil
}
