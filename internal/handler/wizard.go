package handler

import (
    "context"
    "errors"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mzawadzki/camp-reservation/internal/draft"
    "github.com/mzawadzki/camp-reservation/internal/repository"
)

// WizardHandler exposes the multi-step booking flow over HTTP.  A draft
// session is addressed by the opaque token returned from StartSession;
// no authentication is required until submit, and even then only
// optionally (guest bookings carry no user id).
type WizardHandler struct {
    Wizard *draft.Wizard
}

// NewWizardHandler constructs a WizardHandler and panics when the wizard
// is nil.
func NewWizardHandler(w *draft.Wizard) *WizardHandler {
    if w == nil {
        panic("nil wizard passed to NewWizardHandler")
    }
    return &WizardHandler{Wizard: w}
}

type startSessionReq struct {
    CampID     uint64 `json:"camp_id"`
    PropertyID uint64 `json:"property_id"`
}

// validationBody is the 422 payload: every failed field with its message
// plus the step the client should return to.
func validationBody(steps draft.StepMap, details []draft.FieldError) echo.Map {
    return echo.Map{
        "detail": echo.Map{"details": details},
        "step":   steps.FirstFailingStep(details),
    }
}

// StartSession opens a draft for the given camp property and returns the
// session token the client uses for every subsequent wizard call.
func (h *WizardHandler) StartSession(c echo.Context) error {
    var req startSessionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.CampID == 0 || req.PropertyID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "camp_id and property_id required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    session, err := h.Wizard.Start(ctx, req.CampID, req.PropertyID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "camp property not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "start session failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"session_id": session, "step": 1})
}

// SaveStep validates and stores one step slice.  Validation failures are
// returned as 422 with the per-field details; the draft is not touched.
func (h *WizardHandler) SaveStep(c echo.Context) error {
    session := c.Param("session")
    step, err := strconv.Atoi(c.Param("step"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid step number"})
    }
    body, err := io.ReadAll(c.Request().Body)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    details, err := h.Wizard.SaveStep(ctx, session, step, body)
    switch {
    case errors.Is(err, draft.ErrStepOutOfRange):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid step number"})
    case errors.Is(err, draft.ErrNoSession):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown session"})
    case errors.Is(err, draft.ErrStepLocked):
        return c.JSON(http.StatusConflict, echo.Map{"error": "previous steps not completed"})
    case err != nil:
        // malformed JSON payloads land here as well
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if len(details) > 0 {
        return c.JSON(http.StatusUnprocessableEntity, validationBody(h.Wizard.Steps(), details))
    }
    return c.JSON(http.StatusOK, echo.Map{"saved": step})
}

// GetState returns the accumulated draft: every saved slice plus the
// derived line items and the running total.
func (h *WizardHandler) GetState(c echo.Context) error {
    session := c.Param("session")
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    state, err := h.Wizard.Get(ctx, session)
    switch {
    case errors.Is(err, draft.ErrNoSession):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown session"})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "camp property not found"})
    case err != nil:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
    }
    return c.JSON(http.StatusOK, state)
}

// Submit runs the full validation over the accumulated draft and creates
// the reservation.  When a JWT is present the reservation is tied to the
// user; otherwise it is stored as a guest booking.
func (h *WizardHandler) Submit(c echo.Context) error {
    session := c.Param("session")
    var userID *uint64
    if uid, err := getUserID(c); err == nil {
        userID = &uid
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Wizard.Submit(ctx, session, userID)
    var verr *draft.ValidationError
    switch {
    case errors.Is(err, draft.ErrNoSession):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown session"})
    case errors.As(err, &verr):
        return c.JSON(http.StatusUnprocessableEntity, validationBody(h.Wizard.Steps(), verr.Details))
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "camp property not found"})
    case err != nil:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":                 res.ID,
        "reservation_number": res.ReservationNumber,
        "status":             res.Status,
        "total_price":        res.TotalCents,
        "deposit_amount":     res.DepositCents,
    })
}

// Abandon discards a draft session.
func (h *WizardHandler) Abandon(c echo.Context) error {
    session := c.Param("session")
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Wizard.Abandon(ctx, session); err != nil {
        if errors.Is(err, draft.ErrNoSession) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown session"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "abandon failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
