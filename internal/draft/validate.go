package draft

import (
    "fmt"
    "regexp"
    "strings"
)

// Validation messages surfaced next to form fields.  The booking flow is
// Polish-facing, so the messages are the exact strings the UI renders.
const (
    MsgRequired     = "Pole obowiązkowe"
    MsgInvalidEmail = "Nieprawidłowy adres e-mail"
    MsgOnePrimary   = "Tylko jeden opiekun może być opiekunem głównym"
    MsgTooMany      = "Dozwolonych jest maksymalnie dwóch opiekunów"
    MsgBadAmount    = "Nieprawidłowa kwota"
)

// FieldError points one validation message at one input, using the same
// dotted field path convention on the wire and in error responses
// (e.g. "step1.parents.0.email").
type FieldError struct {
    Field   string `json:"field"`
    Message string `json:"message"`
}

// ValidationError aggregates per-field errors for one request.  Handlers
// translate it into a 422 response with a detail.details list.
type ValidationError struct {
    Details []FieldError
}

func (e *ValidationError) Error() string {
    if len(e.Details) == 0 {
        return "validation failed"
    }
    return fmt.Sprintf("validation failed: %s: %s (and %d more)",
        e.Details[0].Field, e.Details[0].Message, len(e.Details)-1)
}

// emailRe is intentionally loose; the mailbox provider is the real
// arbiter of deliverability.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ValidateStep1 checks the guardian and participant slice.  Field paths
// are emitted with the "step1." prefix so they can be returned from both
// the per-step gate and the full submit validation unchanged.
func ValidateStep1(s Step1) []FieldError {
    var errs []FieldError
    switch {
    case len(s.Parents) == 0:
        errs = append(errs, FieldError{"step1.parents", MsgRequired})
    case len(s.Parents) > 2:
        errs = append(errs, FieldError{"step1.parents", MsgTooMany})
    }
    primaries := 0
    for i, p := range s.Parents {
        prefix := fmt.Sprintf("step1.parents.%d.", i)
        if p.IsPrimary {
            primaries++
        }
        if blank(p.FirstName) {
            errs = append(errs, FieldError{prefix + "first_name", MsgRequired})
        }
        if blank(p.LastName) {
            errs = append(errs, FieldError{prefix + "last_name", MsgRequired})
        }
        if blank(p.Phone) {
            errs = append(errs, FieldError{prefix + "phone", MsgRequired})
        }
        switch {
        case blank(p.Email):
            errs = append(errs, FieldError{prefix + "email", MsgRequired})
        case !emailRe.MatchString(strings.TrimSpace(p.Email)):
            errs = append(errs, FieldError{prefix + "email", MsgInvalidEmail})
        }
    }
    if primaries > 1 {
        errs = append(errs, FieldError{"step1.parents", MsgOnePrimary})
    }
    if blank(s.Participant.FirstName) {
        errs = append(errs, FieldError{"step1.participant.first_name", MsgRequired})
    }
    if blank(s.Participant.LastName) {
        errs = append(errs, FieldError{"step1.participant.last_name", MsgRequired})
    }
    if s.Participant.Age <= 0 {
        errs = append(errs, FieldError{"step1.participant.age", MsgRequired})
    }
    if blank(s.Participant.Gender) {
        errs = append(errs, FieldError{"step1.participant.gender", MsgRequired})
    }
    if blank(s.Participant.City) {
        errs = append(errs, FieldError{"step1.participant.city", MsgRequired})
    }
    return errs
}

// ValidateStep2 checks the selections slice.  A collective transport leg
// requires its boarding city; the "other" lead source and a selected
// promotion each require their free-text justification.
func ValidateStep2(s Step2) []FieldError {
    var errs []FieldError
    if s.Transport.Departure.Type == TransportCollective && blank(s.Transport.Departure.City) {
        errs = append(errs, FieldError{"step2.transport.departure.city", MsgRequired})
    }
    if s.Transport.Return.Type == TransportCollective && blank(s.Transport.Return.City) {
        errs = append(errs, FieldError{"step2.transport.return.city", MsgRequired})
    }
    if s.SelectedSource == "other" && blank(s.SourceOther) {
        errs = append(errs, FieldError{"step2.source_other", MsgRequired})
    }
    if s.SelectedPromotion != 0 && blank(s.PromotionJustification) {
        errs = append(errs, FieldError{"step2.promotion_justification", MsgRequired})
    }
    return errs
}

// ValidateStep3 checks the invoicing slice.  Private invoices require the
// person fields, company invoices the company fields.  The delivery
// address is validated only for paper delivery to a different address;
// in every other case it is explicitly skipped.
func ValidateStep3(s Step3) []FieldError {
    var errs []FieldError
    switch s.Invoice.Type {
    case InvoicePrivate:
        if blank(s.Invoice.FirstName) {
            errs = append(errs, FieldError{"step3.invoice.first_name", MsgRequired})
        }
        if blank(s.Invoice.LastName) {
            errs = append(errs, FieldError{"step3.invoice.last_name", MsgRequired})
        }
    case InvoiceCompany:
        if blank(s.Invoice.CompanyName) {
            errs = append(errs, FieldError{"step3.invoice.company_name", MsgRequired})
        }
        if blank(s.Invoice.NIP) {
            errs = append(errs, FieldError{"step3.invoice.nip", MsgRequired})
        }
    default:
        errs = append(errs, FieldError{"step3.invoice.type", MsgRequired})
    }
    if blank(s.Invoice.Address.Street) {
        errs = append(errs, FieldError{"step3.invoice.address.street", MsgRequired})
    }
    if blank(s.Invoice.Address.PostalCode) {
        errs = append(errs, FieldError{"step3.invoice.address.postal_code", MsgRequired})
    }
    if blank(s.Invoice.Address.City) {
        errs = append(errs, FieldError{"step3.invoice.address.city", MsgRequired})
    }
    switch s.Delivery.Type {
    case DeliveryElectronic:
        // nothing further to check
    case DeliveryPaper:
        if s.Delivery.DifferentAddress {
            if s.Delivery.Address == nil {
                errs = append(errs, FieldError{"step3.delivery.address", MsgRequired})
                break
            }
            if blank(s.Delivery.Address.Street) {
                errs = append(errs, FieldError{"step3.delivery.address.street", MsgRequired})
            }
            if blank(s.Delivery.Address.PostalCode) {
                errs = append(errs, FieldError{"step3.delivery.address.postal_code", MsgRequired})
            }
            if blank(s.Delivery.Address.City) {
                errs = append(errs, FieldError{"step3.delivery.address.city", MsgRequired})
            }
        }
    default:
        errs = append(errs, FieldError{"step3.delivery.type", MsgRequired})
    }
    return errs
}

// ValidateStep4 checks the consent slice.  Only consent1 is contractually
// mandatory; consents 2–4 are recorded as given.
func ValidateStep4(s Step4) []FieldError {
    if !s.Consent1 {
        return []FieldError{{"step4.consent1", MsgRequired}}
    }
    return nil
}

// ValidateAll runs every step's rules against an assembled request.  The
// same rule set backs the per-step navigation gate and the authoritative
// submit validation, so the two can never disagree.
func ValidateAll(req ReservationCreateRequest) []FieldError {
    var errs []FieldError
    if req.CampID == 0 {
        errs = append(errs, FieldError{"camp_id", MsgRequired})
    }
    if req.PropertyID == 0 {
        errs = append(errs, FieldError{"property_id", MsgRequired})
    }
    errs = append(errs, ValidateStep1(req.Step1)...)
    errs = append(errs, ValidateStep2(req.Step2)...)
    errs = append(errs, ValidateStep3(req.Step3)...)
    errs = append(errs, ValidateStep4(req.Step4)...)
    return errs
}
