package model

import "time"

// Reservation records a confirmed booking of a camp property.  Beyond the
// identifiers and amounts it carries a denormalized JSON snapshot of every
// wizard step so that later admin/profile views can render the reservation
// without reassembling it from normalized tables.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – account that owns the reservation (nil for guest bookings).
//  CampID            – camp being booked.
//  PropertyID        – property (turnus) being booked.
//  ReservationNumber – human-facing number assigned at creation.
//  Status            – state of the reservation (PENDING, CONFIRMED, CANCELLED).
//  TotalCents        – total price in grosz for the whole reservation.
//  DepositCents      – deposit amount in grosz.
//  Step1..Step4      – raw JSON snapshots of the four wizard step slices.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Reservation struct {
    ID                uint64    // reservations.id
    UserID            *uint64   // reservations.user_id (nullable)
    CampID            uint64    // reservations.camp_id
    PropertyID        uint64    // reservations.property_id
    ReservationNumber string    // reservations.reservation_number
    Status            string    // reservations.status
    TotalCents        int64     // reservations.total_cents
    DepositCents      int64     // reservations.deposit_cents
    Step1             []byte    // reservations.step1_json
    Step2             []byte    // reservations.step2_json
    Step3             []byte    // reservations.step3_json
    Step4             []byte    // reservations.step4_json
    CreatedAt         time.Time // reservations.created_at
    UpdatedAt         time.Time // reservations.updated_at
}

// ReservationItem is a priced line item attached to a reservation: the
// persisted form of the items derived by the wizard's selection
// reconciler.  The ItemID is the stable composite id ("protection-7")
// so that the same logical selection always maps to the same row.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation.
//  ItemID        – stable composite id ("{kind}-{catalogEntryID}").
//  Name          – display name at booking time.
//  Kind          – catalog kind the item was derived from.
//  PriceCents    – price in grosz; negative for promotions.
//  CreatedAt     – creation timestamp.
type ReservationItem struct {
    ID            uint64    // reservation_items.id
    ReservationID uint64    // reservation_items.reservation_id
    ItemID        string    // reservation_items.item_id
    Name          string    // reservation_items.name
    Kind          string    // reservation_items.kind
    PriceCents    int64     // reservation_items.price_cents
    CreatedAt     time.Time // reservation_items.created_at
}
