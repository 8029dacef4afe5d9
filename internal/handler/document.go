package handler

import (
    "context"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mzawadzki/camp-reservation/internal/model"
    "github.com/mzawadzki/camp-reservation/internal/repository"
)

// documentStore is the persistence surface for reservation documents.
// *repository.DocumentRepo satisfies it.
type documentStore interface {
    ListByReservation(ctx context.Context, reservationID uint64) ([]model.Document, error)
    GetWithContent(ctx context.Context, id uint64) (*model.Document, []byte, error)
    Upload(ctx context.Context, reservationID uint64, kind, filename, contentType string, content []byte) (*model.Document, error)
}

// reservationLoader resolves a reservation for the ownership check.
// *repository.ReservationRepo satisfies it.
type reservationLoader interface {
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
    GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Reservation, error)
}

// DocumentHandler serves reservation documents: listing the metadata of
// contracts, invoices, qualification cards and payment attachments,
// accepting new uploads and streaming stored blobs back under their
// original filename.  Access follows the reservation's ownership rule.
type DocumentHandler struct {
    Docs        documentStore
    Res         reservationLoader
    DownloadTTL time.Duration
}

// NewDocumentHandler constructs a DocumentHandler and panics when a
// dependency is nil.
func NewDocumentHandler(docs documentStore, res reservationLoader, downloadTTL time.Duration) *DocumentHandler {
    if docs == nil || res == nil {
        panic("nil dependency passed to NewDocumentHandler")
    }
    if downloadTTL <= 0 {
        downloadTTL = 60 * time.Second
    }
    return &DocumentHandler{Docs: docs, Res: res, DownloadTTL: downloadTTL}
}

type documentView struct {
    ID          uint64    `json:"id"`
    Kind        string    `json:"kind"`
    Filename    string    `json:"filename"`
    ContentType string    `json:"content_type"`
    SizeBytes   int64     `json:"size_bytes"`
    CreatedAt   time.Time `json:"created_at"`
}

func docViews(docs []model.Document) []documentView {
    out := make([]documentView, 0, len(docs))
    for _, d := range docs {
        out = append(out, documentView{
            ID: d.ID, Kind: d.Kind, Filename: d.Filename,
            ContentType: d.ContentType, SizeBytes: d.SizeBytes, CreatedAt: d.CreatedAt,
        })
    }
    return out
}

// authorize loads the reservation applying the caller's ownership rule.
func (h *DocumentHandler) authorize(ctx context.Context, c echo.Context, reservationID uint64) error {
    if isAdmin(c) {
        _, err := h.Res.GetByID(ctx, reservationID)
        return err
    }
    uid, err := getUserID(c)
    if err != nil {
        return repository.ErrForbidden
    }
    _, err = h.Res.GetByIDForUser(ctx, reservationID, uid)
    return err
}

// List returns the document metadata of one reservation.
func (h *DocumentHandler) List(c echo.Context) error {
    reservationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.authorize(ctx, c, reservationID); err != nil {
        return respondRepoErr(c, err)
    }
    docs, err := h.Docs.ListByReservation(ctx, reservationID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"documents": docViews(docs)})
}

// Download streams one document blob with its original filename.  Blob
// reads get their own deadline so a slow fetch cannot hold the request
// open indefinitely.
func (h *DocumentHandler) Download(c echo.Context) error {
    docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), h.DownloadTTL)
    defer cancel()

    doc, content, err := h.Docs.GetWithContent(ctx, docID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := h.authorize(ctx, c, doc.ReservationID); err != nil {
        return respondRepoErr(c, err)
    }

    contentType := doc.ContentType
    if contentType == "" {
        contentType = "application/octet-stream"
    }
    c.Response().Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf(`attachment; filename=%q`, doc.Filename))
    return c.Blob(http.StatusOK, contentType, content)
}

// maxUploadBytes caps one document upload at 10 MiB.
const maxUploadBytes = 10 << 20

var documentKinds = map[string]bool{
    model.DocContract:          true,
    model.DocInvoice:           true,
    model.DocQualificationCard: true,
    model.DocPaymentAttachment: true,
}

// Upload attaches a document to a reservation.  The request is multipart
// form data: a "kind" field naming one of the document kinds and the
// blob under "file".  Customers may attach to their own reservations
// (payment confirmations, signed contracts), admins to any.
func (h *DocumentHandler) Upload(c echo.Context) error {
    reservationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    kind := c.FormValue("kind")
    if !documentKinds[kind] {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown document kind"})
    }
    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
    }
    if fh.Size > maxUploadBytes {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
    }
    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid file"})
    }
    defer src.Close()
    content, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid file"})
    }
    if int64(len(content)) > maxUploadBytes {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    if err := h.authorize(ctx, c, reservationID); err != nil {
        return respondRepoErr(c, err)
    }
    contentType := fh.Header.Get("Content-Type")
    if contentType == "" {
        contentType = "application/octet-stream"
    }
    doc, err := h.Docs.Upload(ctx, reservationID, kind, fh.Filename, contentType, content)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store document failed"})
    }
    return c.JSON(http.StatusCreated, documentView{
        ID: doc.ID, Kind: doc.Kind, Filename: doc.Filename,
        ContentType: doc.ContentType, SizeBytes: doc.SizeBytes, CreatedAt: doc.CreatedAt,
    })
}
