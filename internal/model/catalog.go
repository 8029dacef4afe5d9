package model

import "time"

// Catalog entry kinds.  Every selectable priced add-on offered during the
// booking wizard belongs to exactly one of these kinds.  The kind is also
// used as the prefix of derived reservation item IDs ("protection-7").
const (
    KindProtection = "protection" // optional insurance-like add-on
    KindDiet       = "diet"       // special diet surcharge
    KindAddon      = "addon"      // generic extra (trips, equipment, ...)
    KindPromotion  = "promotion"  // discount; its price reduces the total
)

// CatalogEntry is a selectable priced entity offered to the customer in
// step 2 of the wizard: a protection, diet, add-on or promotion.  Entries
// either belong to a specific property (turnus) or to the general catalog
// used as a fallback when a property has no priced entries of a kind.
//
// Fields:
//  ID         – primary key identifier.
//  PropertyID – owning property; nil for general catalog entries.
//  Kind       – one of KindProtection, KindDiet, KindAddon, KindPromotion.
//  Name       – display name shown in the wizard.
//  PriceCents – price in grosz; for promotions this is the discount value.
//  IsActive   – whether the entry is currently offered.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type CatalogEntry struct {
    ID         uint64    // catalog_entries.id
    PropertyID *uint64   // catalog_entries.property_id (nullable)
    Kind       string    // catalog_entries.kind
    Name       string    // catalog_entries.name
    PriceCents int64     // catalog_entries.price_cents
    IsActive   bool      // catalog_entries.is_active
    CreatedAt  time.Time // catalog_entries.created_at
    UpdatedAt  time.Time // catalog_entries.updated_at
}

// Placeholder reports whether the entry is an empty stub rather than a
// genuinely offered product.  Property catalogs that contain only
// placeholders are treated as empty and trigger the general-catalog
// fallback.
func (e CatalogEntry) Placeholder() bool {
    return e.Name == "" || e.PriceCents <= 0
}
