package model

import "time"

// Camp represents a summer camp offering.  A camp is the marketing
// umbrella under which one or more properties (turnusy) are sold.
// This struct corresponds to a row in the `camps` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique name of the camp.
//  IsActive  – whether the camp is open for booking.
//  CreatedAt – timestamp when the camp was created.
//  UpdatedAt – timestamp of last update.
type Camp struct {
    ID        uint64    // camps.id
    Name      string    // camps.name
    IsActive  bool      // camps.is_active
    CreatedAt time.Time // camps.created_at
    UpdatedAt time.Time // camps.updated_at
}

// Property represents a single scheduled edition of a camp (a turnus):
// fixed dates, a location and base pricing.  Reservations are always
// made against a property, never against the bare camp.
//
// Fields:
//  ID             – primary key identifier.
//  CampID         – camp this edition belongs to.
//  Name           – display name of the edition (e.g. "Turnus II – Mazury").
//  Location       – venue/city of the edition.
//  StartsAt       – first day of the edition.
//  EndsAt         – last day of the edition (must be after StartsAt).
//  BasePriceCents – base price of a stay before add-ons, in grosz.
//  DepositCents   – deposit due at booking time, in grosz.
//  IsActive       – whether the edition is open for booking.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Property struct {
    ID             uint64    // properties.id
    CampID         uint64    // properties.camp_id
    Name           string    // properties.name
    Location       string    // properties.location
    StartsAt       time.Time // properties.starts_at
    EndsAt         time.Time // properties.ends_at
    BasePriceCents int64     // properties.base_price_cents
    DepositCents   int64     // properties.deposit_cents
    IsActive       bool      // properties.is_active
    CreatedAt      time.Time // properties.created_at
    UpdatedAt      time.Time // properties.updated_at
}
