// Package draft implements the reservation wizard pipeline: typed step
// slices, per-step validation, the selection-to-item reconciler, the
// submission assembler and the session-scoped draft store backing the
// whole flow.  The package is deliberately free of HTTP concerns so the
// same logic serves the public booking flow and the admin edit flow.
package draft

// Step keys under which slices are persisted in the draft store.
const (
    StepKey1 = "step1"
    StepKey2 = "step2"
    StepKey3 = "step3"
    StepKey4 = "step4"
    metaKey  = "meta"
)

// Parent is a guardian contact record.  A reservation carries one or two
// guardians; at most one of them may be marked primary.
type Parent struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Email     string `json:"email"`
    Phone     string `json:"phone"`
    Address   string `json:"address"`
    IsPrimary bool   `json:"is_primary"`
}

// Participant describes the child attending the camp.
type Participant struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Age       int    `json:"age"`
    Gender    string `json:"gender"`
    City      string `json:"city"`
}

// Step1 is the participant/guardian slice of the draft: who is going,
// who signs, any special diet and the health questionnaire.
type Step1 struct {
    Parents         []Parent       `json:"parents"`
    Participant     Participant    `json:"participant"`
    SelectedDietID  uint64         `json:"selected_diet_id"`
    HealthAnswers   []HealthAnswer `json:"health_questions"`
    AdditionalNotes string         `json:"additional_notes"`
}

// Transport leg types.  A "collective" leg uses the organizer's bus and
// requires a boarding city; an "own" leg means the guardians handle the
// trip themselves.
const (
    TransportCollective = "collective"
    TransportOwn        = "own"
)

// TransportLeg describes one direction of travel.
type TransportLeg struct {
    Type string `json:"type"`
    City string `json:"city"`
}

// Transport groups the two legs of the journey.
type Transport struct {
    Departure TransportLeg `json:"departure"`
    Return    TransportLeg `json:"return"`
}

// Step2 is the selections slice: priced add-ons, protections, an optional
// promotion with its justification, transport legs and the lead source.
type Step2 struct {
    SelectedAddons         []uint64  `json:"selected_addons"`
    SelectedProtections    []uint64  `json:"selected_protections"`
    SelectedPromotion      uint64    `json:"selected_promotion"`
    PromotionJustification string    `json:"promotion_justification"`
    Transport              Transport `json:"transport"`
    SelectedSource         string    `json:"selected_source"`
    SourceOther            string    `json:"source_other"`
}

// Invoice and delivery type enumerations.
const (
    InvoicePrivate     = "private"
    InvoiceCompany     = "company"
    DeliveryElectronic = "electronic"
    DeliveryPaper      = "paper"
)

// Address is a postal address used for invoicing and paper delivery.
type Address struct {
    Street     string `json:"street"`
    PostalCode string `json:"postal_code"`
    City       string `json:"city"`
}

// Invoice carries the invoicing identity.  For a private invoice the
// person fields apply; for a company invoice the company name and NIP
// apply instead.
type Invoice struct {
    Type        string  `json:"type"`
    FirstName   string  `json:"first_name"`
    LastName    string  `json:"last_name"`
    CompanyName string  `json:"company_name"`
    NIP         string  `json:"nip"`
    Address     Address `json:"address"`
}

// Delivery describes how the invoice is delivered.  The Address is only
// meaningful (and only validated) for paper delivery to a different
// address; otherwise it stays nil and is serialized as null.
type Delivery struct {
    Type             string   `json:"type"`
    DifferentAddress bool     `json:"different_address"`
    Address          *Address `json:"address"`
}

// Step3 is the invoicing slice.
type Step3 struct {
    Invoice  Invoice  `json:"invoice"`
    Delivery Delivery `json:"delivery"`
}

// Step4 is the consent slice.  Consent1 is contractually mandatory; the
// remaining consents are recorded but not enforced.
type Step4 struct {
    Consent1 bool `json:"consent1"`
    Consent2 bool `json:"consent2"`
    Consent3 bool `json:"consent3"`
    Consent4 bool `json:"consent4"`
}
