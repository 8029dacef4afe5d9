package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mzawadzki/camp-reservation/internal/draft"
    "github.com/mzawadzki/camp-reservation/internal/model"
    "github.com/mzawadzki/camp-reservation/internal/repository"
)

type pricingStub struct {
    prop       *model.Property
    entries    map[string][]model.CatalogEntry
    entryCalls int
}

func (s *pricingStub) PropertyByID(context.Context, uint64, uint64) (*model.Property, error) {
    return s.prop, nil
}

func (s *pricingStub) Entries(_ context.Context, _, _ uint64, kind string) ([]model.CatalogEntry, error) {
    s.entryCalls++
    return s.entries[kind], nil
}

type resStoreStub struct {
    stored    *model.Reservation
    created   *draft.ReservationCreateRequest
    items     []draft.Item
    createdBy *uint64
    update    *repository.StepUpdate
}

func (s *resStoreStub) Create(_ context.Context, req draft.ReservationCreateRequest, items []draft.Item, userID *uint64) (*model.Reservation, error) {
    s.created = &req
    s.items = items
    s.createdBy = userID
    return &model.Reservation{
        ID: 9, ReservationNumber: "9/2026", Status: "CONFIRMED",
        CampID: req.CampID, PropertyID: req.PropertyID,
        TotalCents: req.TotalCents, DepositCents: req.DepositCents, UserID: userID,
    }, nil
}

func (s *resStoreStub) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
    if s.stored == nil || s.stored.ID != id {
        return nil, repository.ErrNotFound
    }
    return s.stored, nil
}

func (s *resStoreStub) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Reservation, error) {
    res, err := s.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if res.UserID == nil || *res.UserID != userID {
        return nil, repository.ErrForbidden
    }
    return res, nil
}

func (s *resStoreStub) ItemsByReservation(context.Context, uint64) ([]model.ReservationItem, error) {
    return nil, nil
}

func (s *resStoreStub) ListByUser(context.Context, uint64) ([]repository.ReservationDetail, error) {
    return []repository.ReservationDetail{}, nil
}

func (s *resStoreStub) UpdateSteps(_ context.Context, _ uint64, upd repository.StepUpdate) (*model.Reservation, error) {
    s.update = &upd
    return s.stored, nil
}

func validSteps() (draft.Step1, draft.Step2, draft.Step3, draft.Step4) {
    s1 := draft.Step1{
        Parents: []draft.Parent{{
            FirstName: "Anna", LastName: "Kowalska", Email: "anna@example.com",
            Phone: "600700800", IsPrimary: true,
        }},
        Participant: draft.Participant{
            FirstName: "Jan", LastName: "Kowalski", Age: 10, Gender: "M", City: "Warszawa",
        },
    }
    s2 := draft.Step2{
        Transport: draft.Transport{
            Departure: draft.TransportLeg{Type: draft.TransportOwn},
            Return:    draft.TransportLeg{Type: draft.TransportOwn},
        },
        SelectedSource: "internet",
    }
    s3 := draft.Step3{
        Invoice: draft.Invoice{
            Type: draft.InvoicePrivate, FirstName: "Anna", LastName: "Kowalska",
            Address: draft.Address{Street: "Polna 1", PostalCode: "00-001", City: "Warszawa"},
        },
        Delivery: draft.Delivery{Type: draft.DeliveryElectronic},
    }
    s4 := draft.Step4{Consent1: true}
    return s1, s2, s3, s4
}

func validCreateBody(t *testing.T, totalCents, depositCents int64) string {
    t.Helper()
    s1, s2, s3, s4 := validSteps()
    req := draft.Assemble(s1, s2, s3, s4, 3, 7, totalCents, depositCents)
    b, err := json.Marshal(req)
    require.NoError(t, err)
    return string(b)
}

func newTestPricing() *pricingStub {
    return &pricingStub{
        prop:    &model.Property{ID: 7, CampID: 3, BasePriceCents: 200000, DepositCents: 20000},
        entries: map[string][]model.CatalogEntry{},
    }
}

func storedReservation(t *testing.T) *model.Reservation {
    t.Helper()
    s1, s2, s3, s4 := validSteps()
    mk := func(v any) []byte {
        b, err := json.Marshal(v)
        require.NoError(t, err)
        return b
    }
    owner := uint64(5)
    return &model.Reservation{
        ID: 9, UserID: &owner, CampID: 3, PropertyID: 7,
        ReservationNumber: "9/2026", Status: "CONFIRMED",
        TotalCents: 200000, DepositCents: 20000,
        Step1: mk(s1), Step2: mk(s2), Step3: mk(s3), Step4: mk(s4),
    }
}

func newReservationEcho(h *ReservationHandler, uid uint64, role string) *echo.Echo {
    e := echo.New()
    ident := identify(uid, role)
    e.POST("/api/reservations", h.Create, ident)
    e.GET("/api/reservations/:id", h.Get, ident)
    e.PATCH("/api/reservations/:id", h.Patch, ident)
    return e
}

// decode422 pulls the field/message pairs out of a validation response.
func decode422(t *testing.T, body []byte) map[string]string {
    t.Helper()
    var resp struct {
        Detail struct {
            Details []struct {
                Field   string `json:"field"`
                Message string `json:"message"`
            } `json:"details"`
        } `json:"detail"`
    }
    require.NoError(t, json.Unmarshal(body, &resp))
    out := make(map[string]string, len(resp.Detail.Details))
    for _, d := range resp.Detail.Details {
        out[d.Field] = d.Message
    }
    return out
}

func TestReservationHandler_CreateAmountMismatch(t *testing.T) {
    store := &resStoreStub{}
    h := NewReservationHandler(store, newTestPricing())
    e := newReservationEcho(h, 0, "")

    // client claims a stale price and a wrong deposit
    rec := doRequest(t, e, http.MethodPost, "/api/reservations", validCreateBody(t, 199000, 10000))
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

    fields := decode422(t, rec.Body.Bytes())
    assert.Equal(t, draft.MsgBadAmount, fields["total_price"])
    assert.Equal(t, draft.MsgBadAmount, fields["deposit_amount"])
    assert.Nil(t, store.created, "a mispriced request must not be persisted")
}

func TestReservationHandler_CreateReprices(t *testing.T) {
    store := &resStoreStub{}
    pricing := newTestPricing()
    pricing.entries[model.KindProtection] = []model.CatalogEntry{
        {ID: 1, Kind: model.KindProtection, Name: "NNW", PriceCents: 20000},
    }
    h := NewReservationHandler(store, pricing)
    e := newReservationEcho(h, 0, "")

    s1, s2, s3, s4 := validSteps()
    s2.SelectedProtections = []uint64{1}
    // base 2000.00 + protection 200.00
    req := draft.Assemble(s1, s2, s3, s4, 3, 7, 220000, 20000)
    b, err := json.Marshal(req)
    require.NoError(t, err)

    rec := doRequest(t, e, http.MethodPost, "/api/reservations", string(b))
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

    require.NotNil(t, store.created)
    assert.Equal(t, int64(220000), store.created.TotalCents)
    require.Len(t, store.items, 1)
    assert.Equal(t, "protection-1", store.items[0].ID)
    assert.Nil(t, store.createdBy, "no token means a guest booking")

    var body struct {
        ReservationNumber string `json:"reservation_number"`
        Status            string `json:"status"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, "9/2026", body.ReservationNumber)
    assert.Equal(t, "CONFIRMED", body.Status)
}

func TestReservationHandler_CreateRejectsUnknownFields(t *testing.T) {
    store := &resStoreStub{}
    h := NewReservationHandler(store, newTestPricing())
    e := newReservationEcho(h, 0, "")

    rec := doRequest(t, e, http.MethodPost, "/api/reservations", `{"camp_id":3,"oops":true}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Nil(t, store.created)
}

func TestReservationHandler_PatchSingleSlice(t *testing.T) {
    store := &resStoreStub{stored: storedReservation(t)}
    pricing := newTestPricing()
    h := NewReservationHandler(store, pricing)
    e := newReservationEcho(h, 5, "CUSTOMER")

    _, _, s3, _ := validSteps()
    s3.Invoice.FirstName = "Maria"
    b, err := json.Marshal(s3)
    require.NoError(t, err)

    rec := doRequest(t, e, http.MethodPatch, "/api/reservations/9", `{"step3":`+string(b)+`}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

    require.NotNil(t, store.update)
    assert.NotNil(t, store.update.Step3)
    assert.Nil(t, store.update.Step1)
    assert.Nil(t, store.update.TotalCents, "invoicing changes must not touch the price")
    assert.Nil(t, store.update.Items)
    assert.Zero(t, pricing.entryCalls, "no selection change, no catalog fetch")
}

func TestReservationHandler_PatchSelectionsReprices(t *testing.T) {
    store := &resStoreStub{stored: storedReservation(t)}
    pricing := newTestPricing()
    pricing.entries[model.KindProtection] = []model.CatalogEntry{
        {ID: 1, Kind: model.KindProtection, Name: "NNW", PriceCents: 20000},
    }
    h := NewReservationHandler(store, pricing)
    e := newReservationEcho(h, 5, "CUSTOMER")

    _, s2, _, _ := validSteps()
    s2.SelectedProtections = []uint64{1}
    b, err := json.Marshal(s2)
    require.NoError(t, err)

    rec := doRequest(t, e, http.MethodPatch, "/api/reservations/9", `{"step2":`+string(b)+`}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

    require.NotNil(t, store.update)
    require.NotNil(t, store.update.TotalCents)
    assert.Equal(t, int64(220000), *store.update.TotalCents)
    require.NotNil(t, store.update.DepositCents)
    assert.Equal(t, int64(20000), *store.update.DepositCents)
    require.Len(t, store.update.Items, 1)
    assert.Equal(t, "protection-1", store.update.Items[0].ItemID)
}

func TestReservationHandler_PatchInvalidSlice(t *testing.T) {
    store := &resStoreStub{stored: storedReservation(t)}
    h := NewReservationHandler(store, newTestPricing())
    e := newReservationEcho(h, 5, "CUSTOMER")

    _, _, s3, _ := validSteps()
    s3.Invoice.Type = draft.InvoiceCompany
    s3.Invoice.CompanyName = ""
    b, err := json.Marshal(s3)
    require.NoError(t, err)

    rec := doRequest(t, e, http.MethodPatch, "/api/reservations/9", `{"step3":`+string(b)+`}`)
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

    fields := decode422(t, rec.Body.Bytes())
    assert.Contains(t, fields, "step3.invoice.company_name")
    assert.Nil(t, store.update, "an invalid slice must not be persisted")
}

func TestReservationHandler_PatchOwnership(t *testing.T) {
    store := &resStoreStub{stored: storedReservation(t)}
    h := NewReservationHandler(store, newTestPricing())

    _, _, s3, _ := validSteps()
    b, err := json.Marshal(s3)
    require.NoError(t, err)
    body := `{"step3":` + string(b) + `}`

    // another customer is rejected
    e := newReservationEcho(h, 6, "CUSTOMER")
    rec := doRequest(t, e, http.MethodPatch, "/api/reservations/9", body)
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Nil(t, store.update)

    // an admin may patch any reservation
    e = newReservationEcho(h, 6, "ADMIN")
    rec = doRequest(t, e, http.MethodPatch, "/api/reservations/9", body)
    assert.Equal(t, http.StatusOK, rec.Code)
    require.NotNil(t, store.update)
}
