package model

import "time"

// Document kinds attached to a reservation.
const (
    DocContract          = "contract"
    DocInvoice           = "invoice"
    DocQualificationCard = "qualification_card"
    DocPaymentAttachment = "payment_attachment"
)

// Document is a binary file attached to a reservation: a contract,
// invoice, qualification card or payment attachment.  The content is
// stored as an opaque blob and served for download with its original
// filename; the platform never generates or interprets the bytes.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation this document belongs to.
//  Kind          – one of the Doc* constants.
//  Filename      – original filename used in Content-Disposition.
//  ContentType   – MIME type of the blob (usually application/pdf).
//  SizeBytes     – length of the stored content.
//  CreatedAt     – upload timestamp.
type Document struct {
    ID            uint64    // documents.id
    ReservationID uint64    // documents.reservation_id
    Kind          string    // documents.kind
    Filename      string    // documents.filename
    ContentType   string    // documents.content_type
    SizeBytes     int64     // documents.size_bytes
    CreatedAt     time.Time // documents.created_at
}
