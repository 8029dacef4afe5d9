package draft

// ReservationCreateRequest is the full submission payload: the four step
// slices plus the identifiers and amounts the backend treats as
// top-level.  Field names are the wire contract of POST /api/reservations.
type ReservationCreateRequest struct {
    CampID       uint64 `json:"camp_id"`
    PropertyID   uint64 `json:"property_id"`
    Step1        Step1  `json:"step1"`
    Step2        Step2  `json:"step2"`
    Step3        Step3  `json:"step3"`
    Step4        Step4  `json:"step4"`
    TotalCents   int64  `json:"total_price"`
    DepositCents int64  `json:"deposit_amount"`
}

// Assemble merges the four step slices into one create request.  It is a
// pure transformation: no network, no store access.  The schema on the
// receiving end is strict, so optional collections that were never
// touched are normalized to empty slices (serialized as []) rather than
// left nil, and a delivery address is carried only for paper delivery to
// a different address; in every other case it is forced to null.
func Assemble(s1 Step1, s2 Step2, s3 Step3, s4 Step4, campID, propertyID uint64, totalCents, depositCents int64) ReservationCreateRequest {
    if s1.Parents == nil {
        s1.Parents = []Parent{}
    }
    if s1.HealthAnswers == nil {
        s1.HealthAnswers = []HealthAnswer{}
    }
    if s2.SelectedAddons == nil {
        s2.SelectedAddons = []uint64{}
    }
    if s2.SelectedProtections == nil {
        s2.SelectedProtections = []uint64{}
    }
    if !(s3.Delivery.Type == DeliveryPaper && s3.Delivery.DifferentAddress) {
        s3.Delivery.Address = nil
    }
    return ReservationCreateRequest{
        CampID:       campID,
        PropertyID:   propertyID,
        Step1:        s1,
        Step2:        s2,
        Step3:        s3,
        Step4:        s4,
        TotalCents:   totalCents,
        DepositCents: depositCents,
    }
}
