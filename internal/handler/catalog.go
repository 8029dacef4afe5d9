package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mzawadzki/camp-reservation/internal/catalog"
    "github.com/mzawadzki/camp-reservation/internal/model"
    "github.com/mzawadzki/camp-reservation/internal/repository"
)

// CatalogHandler serves the public browse endpoints: camps, their
// properties and the priced catalogs the wizard renders in step 2.
// Everything here is unauthenticated and cacheable.
type CatalogHandler struct {
    Camps   *repository.CampRepo
    Props   *repository.PropertyRepo
    Catalog *catalog.Service
}

// NewCatalogHandler constructs a CatalogHandler and panics when a
// dependency is nil.
func NewCatalogHandler(camps *repository.CampRepo, props *repository.PropertyRepo, cat *catalog.Service) *CatalogHandler {
    if camps == nil || props == nil || cat == nil {
        panic("nil dependency passed to NewCatalogHandler")
    }
    return &CatalogHandler{Camps: camps, Props: props, Catalog: cat}
}

type campView struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
}

type propertyView struct {
    ID           uint64    `json:"id"`
    CampID       uint64    `json:"camp_id"`
    Name         string    `json:"name"`
    Location     string    `json:"location"`
    StartsAt     time.Time `json:"starts_at"`
    EndsAt       time.Time `json:"ends_at"`
    BasePrice    int64     `json:"base_price"`
    Deposit      int64     `json:"deposit_amount"`
}

type entryView struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Kind  string `json:"type"`
    Price int64  `json:"price"`
}

func entryViews(entries []model.CatalogEntry) []entryView {
    out := make([]entryView, 0, len(entries))
    for _, e := range entries {
        out = append(out, entryView{ID: e.ID, Name: e.Name, Kind: e.Kind, Price: e.PriceCents})
    }
    return out
}

// ListCamps returns every camp open for booking.
func (h *CatalogHandler) ListCamps(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    camps, err := h.Camps.ListActive(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]campView, 0, len(camps))
    for _, cm := range camps {
        out = append(out, campView{ID: cm.ID, Name: cm.Name})
    }
    return c.JSON(http.StatusOK, echo.Map{"camps": out})
}

// ListProperties returns the bookable properties (turnusy) of one camp.
func (h *CatalogHandler) ListProperties(c echo.Context) error {
    campID, err := strconv.ParseUint(c.Param("campId"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid camp id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Camps.GetByID(ctx, campID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "camp not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    props, err := h.Props.ListByCamp(ctx, campID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]propertyView, 0, len(props))
    for _, p := range props {
        out = append(out, propertyView{
            ID: p.ID, CampID: p.CampID, Name: p.Name, Location: p.Location,
            StartsAt: p.StartsAt, EndsAt: p.EndsAt,
            BasePrice: p.BasePriceCents, Deposit: p.DepositCents,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"properties": out})
}

// Entries serves the property-scoped catalog of one kind with the
// general-catalog fallback already applied.  The kind is fixed per
// route, so a handler is registered per catalog kind.
func (h *CatalogHandler) Entries(kind string) echo.HandlerFunc {
    return func(c echo.Context) error {
        campID, err := strconv.ParseUint(c.Param("campId"), 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid camp id"})
        }
        propertyID, err := strconv.ParseUint(c.Param("propertyId"), 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
        }
        ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
        defer cancel()

        entries, err := h.Catalog.Entries(ctx, campID, propertyID, kind)
        if err != nil {
            if errors.Is(err, repository.ErrNotFound) {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "camp property not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        return c.JSON(http.StatusOK, entryViews(entries))
    }
}

// General serves the unscoped general catalog of one kind.
func (h *CatalogHandler) General(kind string) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
        defer cancel()

        entries, err := h.Catalog.General(ctx, kind)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        return c.JSON(http.StatusOK, entryViews(entries))
    }
}
