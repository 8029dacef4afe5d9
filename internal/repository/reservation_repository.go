package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/mzawadzki/camp-reservation/internal/draft"
    "github.com/mzawadzki/camp-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// line items.  A reservation stores the denormalized JSON snapshot of
// every wizard step plus the derived items in reservation_items; both
// are always written in the same transaction so a reservation can never
// exist half-priced.  All timestamp fields are assumed to be stored in
// UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ItemRecord mirrors the reservation_items table for insertion.
type ItemRecord struct {
    ReservationID uint64
    ItemID        string
    Name          string
    Kind          string
    PriceCents    int64
}

// Create persists a validated create request and its derived items in a
// single transaction and returns the stored reservation, including the
// generated id and reservation number.  The caller is expected to have
// run the full validation already; this method only guarantees
// atomicity and number assignment.
func (r *ReservationRepo) Create(ctx context.Context, req draft.ReservationCreateRequest, items []draft.Item, userID *uint64) (*model.Reservation, error) {
    s1, err := json.Marshal(req.Step1)
    if err != nil {
        return nil, err
    }
    s2, err := json.Marshal(req.Step2)
    if err != nil {
        return nil, err
    }
    s3, err := json.Marshal(req.Step3)
    if err != nil {
        return nil, err
    }
    s4, err := json.Marshal(req.Step4)
    if err != nil {
        return nil, err
    }

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const ins = `INSERT INTO reservations
        (user_id, camp_id, property_id, reservation_number, status, total_cents, deposit_cents,
         step1_json, step2_json, step3_json, step4_json)
        VALUES (?, ?, ?, '', 'CONFIRMED', ?, ?, ?, ?, ?, ?)`
    var uid any
    if userID != nil {
        uid = *userID
    }
    result, err := tx.ExecContext(ctx, ins, uid, req.CampID, req.PropertyID,
        req.TotalCents, req.DepositCents, s1, s2, s3, s4)
    if err != nil {
        return nil, err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return nil, err
    }
    // Assign the human-facing number once the id is known.
    number := fmt.Sprintf("%d/%d", id, time.Now().UTC().Year())
    if _, err := tx.ExecContext(ctx,
        `UPDATE reservations SET reservation_number = ? WHERE id = ?`, number, id); err != nil {
        return nil, err
    }
    if err := insertItemsTx(ctx, tx, itemRecords(uint64(id), items)); err != nil {
        return nil, err
    }

    // Query back the full row to populate timestamps and defaults.
    res, err := scanReservationTx(ctx, tx, uint64(id))
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return res, nil
}

func itemRecords(reservationID uint64, items []draft.Item) []ItemRecord {
    recs := make([]ItemRecord, 0, len(items))
    for _, it := range items {
        recs = append(recs, ItemRecord{
            ReservationID: reservationID,
            ItemID:        it.ID,
            Name:          it.Name,
            Kind:          it.Kind,
            PriceCents:    it.PriceCents,
        })
    }
    return recs
}

// insertItemsTx bulk-inserts reservation_items rows in a single
// statement.  Passing an empty slice has no effect and returns nil.
func insertItemsTx(ctx context.Context, tx *sql.Tx, items []ItemRecord) error {
    if len(items) == 0 {
        return nil
    }
    query := `INSERT INTO reservation_items (reservation_id, item_id, name, kind, price_cents) VALUES `
    args := make([]interface{}, 0, len(items)*5)
    for i, it := range items {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?)"
        args = append(args, it.ReservationID, it.ItemID, it.Name, it.Kind, it.PriceCents)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

const reservationCols = `id, user_id, camp_id, property_id, reservation_number, status,
       total_cents, deposit_cents, step1_json, step2_json, step3_json, step4_json,
       created_at, updated_at`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
    var res model.Reservation
    var uid sql.NullInt64
    err := row.Scan(&res.ID, &uid, &res.CampID, &res.PropertyID, &res.ReservationNumber,
        &res.Status, &res.TotalCents, &res.DepositCents,
        &res.Step1, &res.Step2, &res.Step3, &res.Step4,
        &res.CreatedAt, &res.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if uid.Valid {
        u := uint64(uid.Int64)
        res.UserID = &u
    }
    return &res, nil
}

func scanReservationTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
    return scanReservation(tx.QueryRowContext(ctx, q, id))
}

// GetByID fetches a reservation without ownership checks.  Intended for
// admin access; customer paths must use GetByIDForUser.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
    return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUser fetches a reservation and enforces ownership.  It
// returns ErrNotFound when the reservation does not exist and
// ErrForbidden when it belongs to a different user (or to no user at
// all, as with guest bookings).
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Reservation, error) {
    res, err := r.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if res.UserID == nil || *res.UserID != userID {
        return nil, ErrForbidden
    }
    return res, nil
}

// ItemsByReservation returns the line items of one reservation in
// insertion order.
func (r *ReservationRepo) ItemsByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationItem, error) {
    const q = `SELECT id, reservation_id, item_id, name, kind, price_cents, created_at
               FROM reservation_items WHERE reservation_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, reservationID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]model.ReservationItem, 0)
    for rows.Next() {
        var it model.ReservationItem
        if err := rows.Scan(&it.ID, &it.ReservationID, &it.ItemID, &it.Name, &it.Kind,
            &it.PriceCents, &it.CreatedAt); err != nil {
            return nil, err
        }
        items = append(items, it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}

// ItemDetail is the line-item shape embedded in reservation listings.
type ItemDetail struct {
    ItemID     string `json:"id"`
    Name       string `json:"name"`
    Kind       string `json:"type"`
    PriceCents int64  `json:"price"`
}

// ReservationDetail encapsulates a reservation along with camp and
// property information and the derived line items.  It is returned by
// ListByUser for display in the customer profile.
type ReservationDetail struct {
    ID                uint64       `json:"id"`
    ReservationNumber string       `json:"reservation_number"`
    Status            string       `json:"status"`
    CampID            uint64       `json:"camp_id"`
    CampName          string       `json:"camp_name"`
    PropertyID        uint64       `json:"property_id"`
    PropertyName      string       `json:"property_name"`
    StartsAt          *string      `json:"starts_at"`
    EndsAt            *string      `json:"ends_at"`
    TotalCents        int64        `json:"total_price"`
    DepositCents      int64        `json:"deposit_amount"`
    Items             []ItemDetail `json:"items"`
}

// ListByUser returns all reservations for the given user along with
// camp, property and item details.  Reservations are ordered by creation
// time descending (newest first).  When no reservations exist, an empty
// slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
    const q = `SELECT r.id, r.reservation_number, r.status, r.total_cents, r.deposit_cents,
                      c.id, c.name, p.id, p.name, p.starts_at, p.ends_at
               FROM reservations r
               JOIN camps c ON c.id = r.camp_id
               JOIN properties p ON p.id = r.property_id
               WHERE r.user_id = ?
               ORDER BY r.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]ReservationDetail, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var d ReservationDetail
        var startsAt, endsAt time.Time
        if err := rows.Scan(&d.ID, &d.ReservationNumber, &d.Status, &d.TotalCents, &d.DepositCents,
            &d.CampID, &d.CampName, &d.PropertyID, &d.PropertyName, &startsAt, &endsAt); err != nil {
            return nil, err
        }
        s := startsAt.UTC().Format(time.RFC3339)
        e := endsAt.UTC().Format(time.RFC3339)
        d.StartsAt = &s
        d.EndsAt = &e
        d.Items = []ItemDetail{}
        index[d.ID] = len(details)
        details = append(details, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(details) == 0 {
        return details, nil
    }
    // Populate items for all reservations in a single query.
    ids := make([]interface{}, 0, len(details))
    placeholders := make([]string, 0, len(details))
    for _, d := range details {
        ids = append(ids, d.ID)
        placeholders = append(placeholders, "?")
    }
    itemQ := `SELECT reservation_id, item_id, name, kind, price_cents
              FROM reservation_items
              WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY reservation_id, id`
    irows, err := r.db.QueryContext(ctx, itemQ, ids...)
    if err != nil {
        return nil, err
    }
    defer irows.Close()
    for irows.Next() {
        var rid uint64
        var it ItemDetail
        if err := irows.Scan(&rid, &it.ItemID, &it.Name, &it.Kind, &it.PriceCents); err != nil {
            return nil, err
        }
        idx, ok := index[rid]
        if !ok {
            continue
        }
        details[idx].Items = append(details[idx].Items, it)
    }
    if err := irows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}

// StepUpdate describes a partial reservation update: any subset of the
// four step snapshots, optionally new amounts and a full item
// replacement.  Nil fields are left unchanged.
type StepUpdate struct {
    Step1        []byte
    Step2        []byte
    Step3        []byte
    Step4        []byte
    TotalCents   *int64
    DepositCents *int64
    Items        []ItemRecord // non-nil replaces all items
}

// UpdateSteps applies a partial update inside one transaction.  The same
// method backs the public edit flow and the admin back office.  Patching
// a cancelled reservation returns ErrConflict.
func (r *ReservationRepo) UpdateSteps(ctx context.Context, id uint64, upd StepUpdate) (*model.Reservation, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var status string
    err = tx.QueryRowContext(ctx, `SELECT status FROM reservations WHERE id = ?`, id).Scan(&status)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if status == "CANCELLED" {
        return nil, ErrConflict
    }

    sets := make([]string, 0, 6)
    args := make([]interface{}, 0, 7)
    for _, f := range []struct {
        col string
        val []byte
    }{
        {"step1_json", upd.Step1}, {"step2_json", upd.Step2},
        {"step3_json", upd.Step3}, {"step4_json", upd.Step4},
    } {
        if f.val != nil {
            sets = append(sets, f.col+" = ?")
            args = append(args, f.val)
        }
    }
    if upd.TotalCents != nil {
        sets = append(sets, "total_cents = ?")
        args = append(args, *upd.TotalCents)
    }
    if upd.DepositCents != nil {
        sets = append(sets, "deposit_cents = ?")
        args = append(args, *upd.DepositCents)
    }
    if len(sets) > 0 {
        args = append(args, id)
        if _, err := tx.ExecContext(ctx,
            `UPDATE reservations SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
            return nil, err
        }
    }
    if upd.Items != nil {
        if _, err := tx.ExecContext(ctx,
            `DELETE FROM reservation_items WHERE reservation_id = ?`, id); err != nil {
            return nil, err
        }
        if err := insertItemsTx(ctx, tx, upd.Items); err != nil {
            return nil, err
        }
    }

    res, err := scanReservationTx(ctx, tx, id)
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return res, nil
}
