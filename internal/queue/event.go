// Package queue defines message payloads exchanged over the message broker.
package queue

// EventItem is one priced line item carried inside a confirmation event.
type EventItem struct {
    ItemID     string `json:"id"`
    Name       string `json:"name"`
    Kind       string `json:"type"`
    PriceCents int64  `json:"price"`
}

// ReservationConfirmedEvent is published when a reservation is successfully
// created.  It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type ReservationConfirmedEvent struct {
    ReservationID     uint64      `json:"reservation_id"`
    ReservationNumber string      `json:"reservation_number"`
    UserID            *uint64     `json:"user_id,omitempty"`
    CampID            uint64      `json:"camp_id"`
    PropertyID        uint64      `json:"property_id"`
    ParticipantName   string      `json:"participant_name"`
    Items             []EventItem `json:"items"`
    TotalCents        int64       `json:"total_cents"`
    DepositCents      int64       `json:"deposit_cents"`
    ConfirmedAt       string      `json:"confirmed_at"`
}
