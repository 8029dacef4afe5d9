package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mzawadzki/camp-reservation/internal/draft"
    "github.com/mzawadzki/camp-reservation/internal/model"
)

type stubCatalog struct{ entries map[string][]model.CatalogEntry }

func (s *stubCatalog) Entries(_ context.Context, _, _ uint64, kind string) ([]model.CatalogEntry, error) {
    return s.entries[kind], nil
}

type stubProps struct{ prop *model.Property }

func (s *stubProps) PropertyByID(context.Context, uint64, uint64) (*model.Property, error) {
    return s.prop, nil
}

type stubCreator struct{}

func (s *stubCreator) Create(_ context.Context, req draft.ReservationCreateRequest, _ []draft.Item, userID *uint64) (*model.Reservation, error) {
    return &model.Reservation{
        ID: 1, ReservationNumber: "1/2026", Status: "CONFIRMED",
        TotalCents: req.TotalCents, DepositCents: req.DepositCents, UserID: userID,
    }, nil
}

func newTestWizardHandler() *WizardHandler {
    w := draft.NewWizard(
        draft.NewMemoryStore(),
        &stubCatalog{entries: map[string][]model.CatalogEntry{}},
        &stubProps{prop: &model.Property{ID: 7, CampID: 3, BasePriceCents: 200000, DepositCents: 20000}},
        &stubCreator{},
    )
    return NewWizardHandler(w)
}

func doRequest(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
    t.Helper()
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func newWizardEcho(h *WizardHandler) *echo.Echo {
    e := echo.New()
    e.POST("/v1/wizard/session", h.StartSession)
    e.PUT("/v1/wizard/:session/steps/:step", h.SaveStep)
    e.GET("/v1/wizard/:session", h.GetState)
    e.POST("/v1/wizard/:session/submit", h.Submit)
    e.DELETE("/v1/wizard/:session", h.Abandon)
    return e
}

func startWizardSession(t *testing.T, e *echo.Echo) string {
    t.Helper()
    rec := doRequest(t, e, http.MethodPost, "/v1/wizard/session", `{"camp_id":3,"property_id":7}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    var body struct {
        SessionID string `json:"session_id"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    require.NotEmpty(t, body.SessionID)
    return body.SessionID
}

func TestWizardHandler_StartSession(t *testing.T) {
    e := newWizardEcho(newTestWizardHandler())
    session := startWizardSession(t, e)
    assert.NotEmpty(t, session)

    rec := doRequest(t, e, http.MethodPost, "/v1/wizard/session", `{"camp_id":3}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardHandler_SaveStepValidationContract(t *testing.T) {
    e := newWizardEcho(newTestWizardHandler())
    session := startWizardSession(t, e)

    // an empty step 1 fails the gate with the documented 422 shape
    rec := doRequest(t, e, http.MethodPut, "/v1/wizard/"+session+"/steps/1", `{}`)
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

    var body struct {
        Detail struct {
            Details []struct {
                Field   string `json:"field"`
                Message string `json:"message"`
            } `json:"details"`
        } `json:"detail"`
        Step int `json:"step"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    require.NotEmpty(t, body.Detail.Details)
    assert.Equal(t, 1, body.Step)
    assert.Equal(t, "step1.parents", body.Detail.Details[0].Field)
    assert.Equal(t, "Pole obowiązkowe", body.Detail.Details[0].Message)
}

func TestWizardHandler_StepLockReturnsConflict(t *testing.T) {
    e := newWizardEcho(newTestWizardHandler())
    session := startWizardSession(t, e)

    rec := doRequest(t, e, http.MethodPut, "/v1/wizard/"+session+"/steps/3", `{}`)
    assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWizardHandler_UnknownSession(t *testing.T) {
    e := newWizardEcho(newTestWizardHandler())

    rec := doRequest(t, e, http.MethodGet, "/v1/wizard/ghost", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)

    rec = doRequest(t, e, http.MethodPost, "/v1/wizard/ghost/submit", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardHandler_FullFlow(t *testing.T) {
    e := newWizardEcho(newTestWizardHandler())
    session := startWizardSession(t, e)

    steps := map[int]string{
        1: `{"parents":[{"first_name":"Anna","last_name":"Kowalska","email":"anna@example.com","phone":"600100200","address":"","is_primary":true}],
            "participant":{"first_name":"Jan","last_name":"Kowalski","age":11,"gender":"M","city":"Warszawa"},
            "selected_diet_id":0,"health_questions":[],"additional_notes":""}`,
        2: `{"selected_addons":[],"selected_protections":[],"selected_promotion":0,"promotion_justification":"",
            "transport":{"departure":{"type":"own","city":""},"return":{"type":"own","city":""}},
            "selected_source":"internet","source_other":""}`,
        3: `{"invoice":{"type":"private","first_name":"Anna","last_name":"Kowalska","company_name":"","nip":"",
            "address":{"street":"Prosta 1","postal_code":"00-001","city":"Warszawa"}},
            "delivery":{"type":"electronic","different_address":false,"address":null}}`,
        4: `{"consent1":true,"consent2":false,"consent3":false,"consent4":false}`,
    }
    for n := 1; n <= 4; n++ {
        rec := doRequest(t, e, http.MethodPut, "/v1/wizard/"+session+"/steps/"+string(rune('0'+n)), steps[n])
        require.Equal(t, http.StatusOK, rec.Code, "step %d: %s", n, rec.Body.String())
    }

    rec := doRequest(t, e, http.MethodGet, "/v1/wizard/"+session, "")
    require.Equal(t, http.StatusOK, rec.Code)
    var state struct {
        TotalCents   int64 `json:"total_price"`
        DepositCents int64 `json:"deposit_amount"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
    assert.Equal(t, int64(200000), state.TotalCents)
    assert.Equal(t, int64(20000), state.DepositCents)

    rec = doRequest(t, e, http.MethodPost, "/v1/wizard/"+session+"/submit", "")
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    var created struct {
        Number string `json:"reservation_number"`
        Status string `json:"status"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
    assert.Equal(t, "1/2026", created.Number)
    assert.Equal(t, "CONFIRMED", created.Status)

    // session is gone afterwards
    rec = doRequest(t, e, http.MethodGet, "/v1/wizard/"+session, "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWizardHandler_SubmitIncomplete(t *testing.T) {
    e := newWizardEcho(newTestWizardHandler())
    session := startWizardSession(t, e)

    rec := doRequest(t, e, http.MethodPost, "/v1/wizard/"+session+"/submit", "")
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    assert.Contains(t, rec.Body.String(), "step1")
}

func TestWizardHandler_Abandon(t *testing.T) {
    e := newWizardEcho(newTestWizardHandler())
    session := startWizardSession(t, e)

    rec := doRequest(t, e, http.MethodDelete, "/v1/wizard/"+session, "")
    assert.Equal(t, http.StatusNoContent, rec.Code)

    rec = doRequest(t, e, http.MethodGet, "/v1/wizard/"+session, "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}
