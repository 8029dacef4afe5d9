package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mzawadzki/camp-reservation/internal/draft"
    "github.com/mzawadzki/camp-reservation/internal/model"
    "github.com/mzawadzki/camp-reservation/internal/repository"
)

// reservationStore is the persistence surface the reservation endpoints
// need.  *repository.ReservationRepo satisfies it.
type reservationStore interface {
    Create(ctx context.Context, req draft.ReservationCreateRequest, items []draft.Item, userID *uint64) (*model.Reservation, error)
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
    GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Reservation, error)
    ItemsByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationItem, error)
    ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
    UpdateSteps(ctx context.Context, id uint64, upd repository.StepUpdate) (*model.Reservation, error)
}

// catalogSource resolves the property and the priced catalogs used to
// reprice a reservation.  *catalog.Service satisfies it.
type catalogSource interface {
    PropertyByID(ctx context.Context, campID, propertyID uint64) (*model.Property, error)
    Entries(ctx context.Context, campID, propertyID uint64, kind string) ([]model.CatalogEntry, error)
}

// ReservationHandler serves the reservation endpoints outside the
// wizard: direct create, detail, profile listing and partial edits.
// Direct create accepts the same assembled payload the wizard submits,
// runs the same validation and reprices it server-side, so a client
// bypassing the wizard cannot invent its own total.
type ReservationHandler struct {
    Res     reservationStore
    Catalog catalogSource
    Steps   draft.StepMap
}

// NewReservationHandler constructs a ReservationHandler and panics when
// a dependency is nil.
func NewReservationHandler(res reservationStore, cat catalogSource) *ReservationHandler {
    if res == nil || cat == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Res: res, Catalog: cat, Steps: draft.DefaultStepMap()}
}

// reservationView is the JSON shape of a single reservation.  The step
// snapshots are replayed verbatim as raw JSON.
type reservationView struct {
    ID                uint64                   `json:"id"`
    UserID            *uint64                  `json:"user_id,omitempty"`
    CampID            uint64                   `json:"camp_id"`
    PropertyID        uint64                   `json:"property_id"`
    ReservationNumber string                   `json:"reservation_number"`
    Status            string                   `json:"status"`
    TotalCents        int64                    `json:"total_price"`
    DepositCents      int64                    `json:"deposit_amount"`
    Step1             json.RawMessage          `json:"step1"`
    Step2             json.RawMessage          `json:"step2"`
    Step3             json.RawMessage          `json:"step3"`
    Step4             json.RawMessage          `json:"step4"`
    Items             []repository.ItemDetail  `json:"items"`
    CreatedAt         time.Time                `json:"created_at"`
    UpdatedAt         time.Time                `json:"updated_at"`
}

func viewOf(res *model.Reservation, items []model.ReservationItem) reservationView {
    v := reservationView{
        ID:                res.ID,
        UserID:            res.UserID,
        CampID:            res.CampID,
        PropertyID:        res.PropertyID,
        ReservationNumber: res.ReservationNumber,
        Status:            res.Status,
        TotalCents:        res.TotalCents,
        DepositCents:      res.DepositCents,
        Step1:             json.RawMessage(res.Step1),
        Step2:             json.RawMessage(res.Step2),
        Step3:             json.RawMessage(res.Step3),
        Step4:             json.RawMessage(res.Step4),
        Items:             []repository.ItemDetail{},
        CreatedAt:         res.CreatedAt,
        UpdatedAt:         res.UpdatedAt,
    }
    for _, it := range items {
        v.Items = append(v.Items, repository.ItemDetail{
            ItemID: it.ItemID, Name: it.Name, Kind: it.Kind, PriceCents: it.PriceCents,
        })
    }
    return v
}

func (h *ReservationHandler) errorBody(details []draft.FieldError) echo.Map {
    return echo.Map{
        "detail": echo.Map{"details": details},
        "step":   h.Steps.FirstFailingStep(details),
    }
}

// Create handles the direct POST of a fully assembled payload.  The
// request schema is strict: unknown fields are rejected rather than
// silently dropped.
func (h *ReservationHandler) Create(c echo.Context) error {
    body, err := io.ReadAll(c.Request().Body)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    dec := json.NewDecoder(bytes.NewReader(body))
    dec.DisallowUnknownFields()
    var req draft.ReservationCreateRequest
    if err := dec.Decode(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    if details := draft.ValidateAll(req); len(details) > 0 {
        return c.JSON(http.StatusUnprocessableEntity, h.errorBody(details))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    prop, err := h.Catalog.PropertyByID(ctx, req.CampID, req.PropertyID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "camp property not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load property failed"})
    }
    set, failed := draft.DeriveItems(ctx, h.Catalog, req.CampID, req.PropertyID, &req.Step1, &req.Step2)
    if len(failed) > 0 {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "catalog unavailable"})
    }

    // The submitted amounts must match the server-side pricing exactly.
    total := prop.BasePriceCents + set.TotalCents()
    var amountErrs []draft.FieldError
    if req.TotalCents != total {
        amountErrs = append(amountErrs, draft.FieldError{Field: "total_price", Message: draft.MsgBadAmount})
    }
    if req.DepositCents != prop.DepositCents {
        amountErrs = append(amountErrs, draft.FieldError{Field: "deposit_amount", Message: draft.MsgBadAmount})
    }
    if len(amountErrs) > 0 {
        return c.JSON(http.StatusUnprocessableEntity, h.errorBody(amountErrs))
    }

    var userID *uint64
    if uid, err := getUserID(c); err == nil {
        userID = &uid
    }
    res, err := h.Res.Create(ctx, req, set.Items(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
    }
    items, err := h.Res.ItemsByReservation(ctx, res.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load items failed"})
    }
    return c.JSON(http.StatusCreated, viewOf(res, items))
}

// Get returns one reservation.  Customers can only see their own;
// admins see any.
func (h *ReservationHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, err := h.loadForCaller(ctx, c, id)
    if err != nil {
        return respondRepoErr(c, err)
    }
    items, err := h.Res.ItemsByReservation(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load items failed"})
    }
    return c.JSON(http.StatusOK, viewOf(res, items))
}

// loadForCaller applies the ownership rule shared by Get and Patch.
func (h *ReservationHandler) loadForCaller(ctx context.Context, c echo.Context, id uint64) (*model.Reservation, error) {
    if isAdmin(c) {
        return h.Res.GetByID(ctx, id)
    }
    uid, err := getUserID(c)
    if err != nil {
        return nil, repository.ErrForbidden
    }
    return h.Res.GetByIDForUser(ctx, id, uid)
}

func respondRepoErr(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is cancelled"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}

// ListMine returns every reservation of the authenticated user, newest
// first, with camp and property details for the profile view.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    details, err := h.Res.ListByUser(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// patchReq carries the editable subset of a reservation.  Each field is
// a full replacement of that step slice; absent fields stay untouched.
type patchReq struct {
    Step1 json.RawMessage `json:"step1"`
    Step2 json.RawMessage `json:"step2"`
    Step3 json.RawMessage `json:"step3"`
    Step4 json.RawMessage `json:"step4"`
}

// Patch applies a partial edit.  Every supplied slice is revalidated
// with the same rules that guard creation, and when step 1 or 2 changes
// the line items and total are repriced from the catalogs.
func (h *ReservationHandler) Patch(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    body, err := io.ReadAll(c.Request().Body)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    dec := json.NewDecoder(bytes.NewReader(body))
    dec.DisallowUnknownFields()
    var req patchReq
    if err := dec.Decode(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if req.Step1 == nil && req.Step2 == nil && req.Step3 == nil && req.Step4 == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.loadForCaller(ctx, c, id)
    if err != nil {
        return respondRepoErr(c, err)
    }

    // Merge: patched slices override, the stored snapshots fill the rest.
    pick := func(patched json.RawMessage, stored []byte) []byte {
        if patched != nil {
            return patched
        }
        return stored
    }
    var s1 draft.Step1
    var s2 draft.Step2
    var s3 draft.Step3
    var s4 draft.Step4
    for _, p := range []struct {
        raw []byte
        dst any
    }{
        {pick(req.Step1, res.Step1), &s1},
        {pick(req.Step2, res.Step2), &s2},
        {pick(req.Step3, res.Step3), &s3},
        {pick(req.Step4, res.Step4), &s4},
    } {
        d := json.NewDecoder(bytes.NewReader(p.raw))
        d.DisallowUnknownFields()
        if err := d.Decode(p.dst); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
    }
    var details []draft.FieldError
    details = append(details, draft.ValidateStep1(s1)...)
    details = append(details, draft.ValidateStep2(s2)...)
    details = append(details, draft.ValidateStep3(s3)...)
    details = append(details, draft.ValidateStep4(s4)...)
    if len(details) > 0 {
        return c.JSON(http.StatusUnprocessableEntity, h.errorBody(details))
    }

    upd := repository.StepUpdate{}
    marshal := func(v any) ([]byte, error) { return json.Marshal(v) }
    if req.Step1 != nil {
        if upd.Step1, err = marshal(s1); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode failed"})
        }
    }
    if req.Step2 != nil {
        if upd.Step2, err = marshal(s2); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode failed"})
        }
    }
    if req.Step3 != nil {
        if upd.Step3, err = marshal(s3); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode failed"})
        }
    }
    if req.Step4 != nil {
        if upd.Step4, err = marshal(s4); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode failed"})
        }
    }

    if req.Step1 != nil || req.Step2 != nil {
        prop, err := h.Catalog.PropertyByID(ctx, res.CampID, res.PropertyID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load property failed"})
        }
        set, failed := draft.DeriveItems(ctx, h.Catalog, res.CampID, res.PropertyID, &s1, &s2)
        if len(failed) > 0 {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "catalog unavailable"})
        }
        total := prop.BasePriceCents + set.TotalCents()
        upd.TotalCents = &total
        upd.DepositCents = &prop.DepositCents
        recs := make([]repository.ItemRecord, 0, len(set.Items()))
        for _, it := range set.Items() {
            recs = append(recs, repository.ItemRecord{
                ReservationID: id, ItemID: it.ID, Name: it.Name, Kind: it.Kind, PriceCents: it.PriceCents,
            })
        }
        upd.Items = recs
    }

    updated, err := h.Res.UpdateSteps(ctx, id, upd)
    if err != nil {
        return respondRepoErr(c, err)
    }
    items, err := h.Res.ItemsByReservation(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load items failed"})
    }
    return c.JSON(http.StatusOK, viewOf(updated, items))
}
