package draft

import (
    "context"
    "encoding/json"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

type fakeCatalog struct {
    entries map[string][]model.CatalogEntry
    fail    map[string]bool
    calls   map[string]int
}

func newFakeCatalog() *fakeCatalog {
    return &fakeCatalog{
        entries: map[string][]model.CatalogEntry{},
        fail:    map[string]bool{},
        calls:   map[string]int{},
    }
}

func (f *fakeCatalog) Entries(_ context.Context, _, _ uint64, kind string) ([]model.CatalogEntry, error) {
    f.calls[kind]++
    if f.fail[kind] {
        return nil, errors.New("catalog down")
    }
    return f.entries[kind], nil
}

type fakeProps struct {
    prop *model.Property
    err  error
}

func (f *fakeProps) PropertyByID(context.Context, uint64, uint64) (*model.Property, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.prop, nil
}

type fakeCreator struct {
    err     error
    lastReq *ReservationCreateRequest
    items   []Item
    userID  *uint64
}

func (f *fakeCreator) Create(_ context.Context, req ReservationCreateRequest, items []Item, userID *uint64) (*model.Reservation, error) {
    if f.err != nil {
        return nil, f.err
    }
    f.lastReq = &req
    f.items = items
    f.userID = userID
    return &model.Reservation{
        ID:                41,
        ReservationNumber: "41/2026",
        Status:            "CONFIRMED",
        CampID:            req.CampID,
        PropertyID:        req.PropertyID,
        TotalCents:        req.TotalCents,
        DepositCents:      req.DepositCents,
        UserID:            userID,
    }, nil
}

func newTestWizard(t *testing.T) (*Wizard, *fakeCatalog, *fakeCreator) {
    t.Helper()
    cat := newFakeCatalog()
    creator := &fakeCreator{}
    props := &fakeProps{prop: &model.Property{
        ID: 7, CampID: 3, BasePriceCents: 200000, DepositCents: 20000,
    }}
    return NewWizard(NewMemoryStore(), cat, props, creator), cat, creator
}

func mustJSON(t *testing.T, v any) []byte {
    t.Helper()
    b, err := json.Marshal(v)
    require.NoError(t, err)
    return b
}

func startSession(t *testing.T, w *Wizard) string {
    t.Helper()
    session, err := w.Start(context.Background(), 3, 7)
    require.NoError(t, err)
    return session
}

func saveValidSteps(t *testing.T, w *Wizard, session string, steps ...int) {
    t.Helper()
    payloads := map[int]any{
        1: validStep1(), 2: validStep2(), 3: validStep3(), 4: validStep4(),
    }
    for _, n := range steps {
        details, err := w.SaveStep(context.Background(), session, n, mustJSON(t, payloads[n]))
        require.NoError(t, err)
        require.Empty(t, details, "step %d should validate", n)
    }
}

func TestWizard_StartUnknownProperty(t *testing.T) {
    notFound := errors.New("not found")
    w := NewWizard(NewMemoryStore(), newFakeCatalog(), &fakeProps{err: notFound}, &fakeCreator{})

    _, err := w.Start(context.Background(), 3, 99)
    assert.ErrorIs(t, err, notFound)
}

func TestWizard_SaveStepUnknownSession(t *testing.T) {
    w, _, _ := newTestWizard(t)
    _, err := w.SaveStep(context.Background(), "ghost", 1, mustJSON(t, validStep1()))
    assert.ErrorIs(t, err, ErrNoSession)
}

func TestWizard_StepGate(t *testing.T) {
    w, _, _ := newTestWizard(t)
    session := startSession(t, w)

    // step 2 is locked until step 1 passes its gate
    _, err := w.SaveStep(context.Background(), session, 2, mustJSON(t, validStep2()))
    assert.ErrorIs(t, err, ErrStepLocked)

    saveValidSteps(t, w, session, 1)
    _, err = w.SaveStep(context.Background(), session, 2, mustJSON(t, validStep2()))
    assert.NoError(t, err)
}

func TestWizard_GateBlocksOnValidationFailure(t *testing.T) {
    w, _, _ := newTestWizard(t)
    session := startSession(t, w)
    saveValidSteps(t, w, session, 1, 2)

    // a company invoice without company data fails the step 3 gate
    s3 := validStep3()
    s3.Invoice.Type = InvoiceCompany
    s3.Invoice.CompanyName = ""
    details, err := w.SaveStep(context.Background(), session, 3, mustJSON(t, s3))
    require.NoError(t, err)
    require.NotEmpty(t, details)
    assert.Contains(t, fieldsOf(details), "step3.invoice.company_name")

    // the failed slice was not persisted and step 4 stays unreachable
    state, err := w.Get(context.Background(), session)
    require.NoError(t, err)
    assert.Nil(t, state.Step3)
    _, err = w.SaveStep(context.Background(), session, 4, mustJSON(t, validStep4()))
    assert.ErrorIs(t, err, ErrStepLocked)
}

func TestWizard_SaveStepRejectsUnknownFields(t *testing.T) {
    w, _, _ := newTestWizard(t)
    session := startSession(t, w)

    _, err := w.SaveStep(context.Background(), session, 1, []byte(`{"parents":[],"oops":1}`))
    require.Error(t, err)
    assert.NotErrorIs(t, err, ErrStepLocked)
}

func TestWizard_GetDerivesItemsAndTotal(t *testing.T) {
    w, cat, _ := newTestWizard(t)
    cat.entries[model.KindProtection] = []model.CatalogEntry{
        {ID: 1, Kind: model.KindProtection, Name: "NNW", PriceCents: 20000},
    }
    cat.entries[model.KindDiet] = []model.CatalogEntry{
        {ID: 2, Kind: model.KindDiet, Name: "Bezglutenowa", PriceCents: 5000},
    }
    session := startSession(t, w)

    s1 := validStep1()
    s1.SelectedDietID = 2
    details, err := w.SaveStep(context.Background(), session, 1, mustJSON(t, s1))
    require.NoError(t, err)
    require.Empty(t, details)

    s2 := validStep2()
    s2.SelectedProtections = []uint64{1}
    details, err = w.SaveStep(context.Background(), session, 2, mustJSON(t, s2))
    require.NoError(t, err)
    require.Empty(t, details)

    state, err := w.Get(context.Background(), session)
    require.NoError(t, err)
    require.Len(t, state.Items, 2)
    // 2000.00 base + 200.00 protection + 50.00 diet = 2250.00
    assert.Equal(t, int64(225000), state.TotalCents)
    assert.Equal(t, int64(20000), state.DepositCents)
    assert.Empty(t, state.CatalogErrors)
}

func TestWizard_GetDegradesOnCatalogFailure(t *testing.T) {
    w, cat, _ := newTestWizard(t)
    cat.entries[model.KindProtection] = []model.CatalogEntry{
        {ID: 1, Kind: model.KindProtection, Name: "NNW", PriceCents: 20000},
    }
    cat.fail[model.KindDiet] = true
    session := startSession(t, w)

    s1 := validStep1()
    s1.SelectedDietID = 2
    _, err := w.SaveStep(context.Background(), session, 1, mustJSON(t, s1))
    require.NoError(t, err)
    s2 := validStep2()
    s2.SelectedProtections = []uint64{1}
    _, err = w.SaveStep(context.Background(), session, 2, mustJSON(t, s2))
    require.NoError(t, err)

    state, err := w.Get(context.Background(), session)
    require.NoError(t, err)
    // the failed kind degrades; the healthy kind keeps its item
    require.Len(t, state.Items, 1)
    assert.Equal(t, "protection-1", state.Items[0].ID)
    assert.Equal(t, []string{model.KindDiet}, state.CatalogErrors)
}

func TestWizard_SubmitMissingSteps(t *testing.T) {
    w, _, _ := newTestWizard(t)
    session := startSession(t, w)
    saveValidSteps(t, w, session, 1)

    _, err := w.Submit(context.Background(), session, nil)
    var verr *ValidationError
    require.ErrorAs(t, err, &verr)
    fields := fieldsOf(verr.Details)
    assert.NotContains(t, fields, StepKey1)
    assert.Contains(t, fields, StepKey2)
    assert.Contains(t, fields, StepKey3)
    assert.Contains(t, fields, StepKey4)
}

func TestWizard_SubmitSuccess(t *testing.T) {
    w, cat, creator := newTestWizard(t)
    cat.entries[model.KindProtection] = []model.CatalogEntry{
        {ID: 1, Kind: model.KindProtection, Name: "NNW", PriceCents: 20000},
    }
    cat.entries[model.KindDiet] = []model.CatalogEntry{
        {ID: 2, Kind: model.KindDiet, Name: "Bezglutenowa", PriceCents: 5000},
    }
    var hooked *model.Reservation
    w.OnConfirmed(func(_ context.Context, res *model.Reservation, _ []Item) { hooked = res })

    session := startSession(t, w)
    s1 := validStep1()
    s1.SelectedDietID = 2
    _, err := w.SaveStep(context.Background(), session, 1, mustJSON(t, s1))
    require.NoError(t, err)
    s2 := validStep2()
    s2.SelectedProtections = []uint64{1}
    _, err = w.SaveStep(context.Background(), session, 2, mustJSON(t, s2))
    require.NoError(t, err)
    saveValidSteps(t, w, session, 3, 4)

    uid := uint64(5)
    res, err := w.Submit(context.Background(), session, &uid)
    require.NoError(t, err)
    assert.Equal(t, "41/2026", res.ReservationNumber)
    assert.Equal(t, "CONFIRMED", res.Status)

    require.NotNil(t, creator.lastReq)
    assert.Equal(t, int64(225000), creator.lastReq.TotalCents)
    assert.Equal(t, int64(20000), creator.lastReq.DepositCents)
    assert.Len(t, creator.items, 2)
    require.NotNil(t, creator.userID)
    assert.Equal(t, uid, *creator.userID)
    require.NotNil(t, hooked)
    assert.Equal(t, res.ID, hooked.ID)

    // the draft is gone after a successful submit
    _, err = w.Get(context.Background(), session)
    assert.ErrorIs(t, err, ErrNoSession)
}

func TestWizard_SubmitKeepsDraftOnCreateFailure(t *testing.T) {
    w, _, creator := newTestWizard(t)
    creator.err = errors.New("db down")
    session := startSession(t, w)
    saveValidSteps(t, w, session, 1, 2, 3, 4)

    _, err := w.Submit(context.Background(), session, nil)
    require.Error(t, err)

    // every slice survives for a retry
    state, err := w.Get(context.Background(), session)
    require.NoError(t, err)
    assert.NotNil(t, state.Step1)
    assert.NotNil(t, state.Step4)
}

func TestWizard_SubmitFailsOnCatalogOutage(t *testing.T) {
    w, cat, creator := newTestWizard(t)
    cat.fail[model.KindProtection] = true
    session := startSession(t, w)

    saveValidSteps(t, w, session, 1)
    s2 := validStep2()
    s2.SelectedProtections = []uint64{1}
    _, err := w.SaveStep(context.Background(), session, 2, mustJSON(t, s2))
    require.NoError(t, err)
    saveValidSteps(t, w, session, 3, 4)

    _, err = w.Submit(context.Background(), session, nil)
    require.Error(t, err)
    var verr *ValidationError
    assert.False(t, errors.As(err, &verr), "catalog outage is an infrastructure error, not a validation one")
    assert.Nil(t, creator.lastReq)

    // draft intact
    _, err = w.Get(context.Background(), session)
    assert.NoError(t, err)
}

func TestWizard_Abandon(t *testing.T) {
    w, _, _ := newTestWizard(t)
    session := startSession(t, w)
    saveValidSteps(t, w, session, 1)

    require.NoError(t, w.Abandon(context.Background(), session))
    _, err := w.Get(context.Background(), session)
    assert.ErrorIs(t, err, ErrNoSession)

    assert.ErrorIs(t, w.Abandon(context.Background(), "ghost"), ErrNoSession)
}

func TestDeriveItems_NoSelectionsSkipsCatalog(t *testing.T) {
    cat := newFakeCatalog()
    set, failed := DeriveItems(context.Background(), cat, 3, 7, nil, nil)
    assert.Empty(t, set.Items())
    assert.Empty(t, failed)
    assert.Empty(t, cat.calls, "no selection means no catalog fetch")
}
