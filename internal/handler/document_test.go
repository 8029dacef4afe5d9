package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mzawadzki/camp-reservation/internal/model"
    "github.com/mzawadzki/camp-reservation/internal/repository"
)

type uploadedDoc struct {
    reservationID uint64
    kind          string
    filename      string
    contentType   string
    content       []byte
}

type docStoreStub struct {
    docs     []model.Document
    blob     []byte
    uploaded *uploadedDoc
}

func (s *docStoreStub) ListByReservation(context.Context, uint64) ([]model.Document, error) {
    return s.docs, nil
}

func (s *docStoreStub) GetWithContent(_ context.Context, id uint64) (*model.Document, []byte, error) {
    for i := range s.docs {
        if s.docs[i].ID == id {
            return &s.docs[i], s.blob, nil
        }
    }
    return nil, nil, repository.ErrNotFound
}

func (s *docStoreStub) Upload(_ context.Context, reservationID uint64, kind, filename, contentType string, content []byte) (*model.Document, error) {
    s.uploaded = &uploadedDoc{reservationID, kind, filename, contentType, content}
    return &model.Document{
        ID: 31, ReservationID: reservationID, Kind: kind, Filename: filename,
        ContentType: contentType, SizeBytes: int64(len(content)), CreatedAt: time.Now().UTC(),
    }, nil
}

// resLoaderStub owns reservation 10 on behalf of user 5.
type resLoaderStub struct{ owner uint64 }

func (s *resLoaderStub) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
    if id != 10 {
        return nil, repository.ErrNotFound
    }
    owner := s.owner
    return &model.Reservation{ID: id, UserID: &owner}, nil
}

func (s *resLoaderStub) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Reservation, error) {
    res, err := s.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if *res.UserID != userID {
        return nil, repository.ErrForbidden
    }
    return res, nil
}

func identify(uid uint64, role string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if uid != 0 {
                c.Set("user_id", uid)
                c.Set("role", role)
            }
            return next(c)
        }
    }
}

func newDocumentEcho(h *DocumentHandler, uid uint64, role string) *echo.Echo {
    e := echo.New()
    ident := identify(uid, role)
    e.GET("/api/reservations/:id/documents", h.List, ident)
    e.POST("/api/reservations/:id/documents", h.Upload, ident)
    e.GET("/v1/documents/:id/download", h.Download, ident)
    return e
}

func multipartUpload(t *testing.T, kind, filename, content string) (*bytes.Buffer, string) {
    t.Helper()
    var buf bytes.Buffer
    w := multipart.NewWriter(&buf)
    require.NoError(t, w.WriteField("kind", kind))
    fw, err := w.CreateFormFile("file", filename)
    require.NoError(t, err)
    _, err = fw.Write([]byte(content))
    require.NoError(t, err)
    require.NoError(t, w.Close())
    return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, e *echo.Echo, path, kind, filename, content string) *httptest.ResponseRecorder {
    t.Helper()
    body, contentType := multipartUpload(t, kind, filename, content)
    req := httptest.NewRequest(http.MethodPost, path, body)
    req.Header.Set(echo.HeaderContentType, contentType)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestDocumentHandler_Upload(t *testing.T) {
    store := &docStoreStub{}
    h := NewDocumentHandler(store, &resLoaderStub{owner: 5}, 0)
    e := newDocumentEcho(h, 5, "CUSTOMER")

    rec := doUpload(t, e, "/api/reservations/10/documents",
        model.DocPaymentAttachment, "przelew.pdf", "pdf-bytes")
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

    require.NotNil(t, store.uploaded)
    assert.Equal(t, uint64(10), store.uploaded.reservationID)
    assert.Equal(t, model.DocPaymentAttachment, store.uploaded.kind)
    assert.Equal(t, "przelew.pdf", store.uploaded.filename)
    assert.Equal(t, []byte("pdf-bytes"), store.uploaded.content)

    var body struct {
        ID       uint64 `json:"id"`
        Filename string `json:"filename"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, uint64(31), body.ID)
    assert.Equal(t, "przelew.pdf", body.Filename)
}

func TestDocumentHandler_UploadUnknownKind(t *testing.T) {
    store := &docStoreStub{}
    h := NewDocumentHandler(store, &resLoaderStub{owner: 5}, 0)
    e := newDocumentEcho(h, 5, "CUSTOMER")

    rec := doUpload(t, e, "/api/reservations/10/documents", "selfie", "x.jpg", "jpg")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Nil(t, store.uploaded)
}

func TestDocumentHandler_UploadMissingFile(t *testing.T) {
    store := &docStoreStub{}
    h := NewDocumentHandler(store, &resLoaderStub{owner: 5}, 0)
    e := newDocumentEcho(h, 5, "CUSTOMER")

    var buf bytes.Buffer
    w := multipart.NewWriter(&buf)
    require.NoError(t, w.WriteField("kind", model.DocContract))
    require.NoError(t, w.Close())
    req := httptest.NewRequest(http.MethodPost, "/api/reservations/10/documents", &buf)
    req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Nil(t, store.uploaded)
}

func TestDocumentHandler_UploadOwnership(t *testing.T) {
    store := &docStoreStub{}
    h := NewDocumentHandler(store, &resLoaderStub{owner: 5}, 0)

    // a different customer is rejected, nothing is stored
    e := newDocumentEcho(h, 6, "CUSTOMER")
    rec := doUpload(t, e, "/api/reservations/10/documents", model.DocContract, "umowa.pdf", "pdf")
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Nil(t, store.uploaded)

    // an admin may attach to any reservation
    e = newDocumentEcho(h, 6, "ADMIN")
    rec = doUpload(t, e, "/api/reservations/10/documents", model.DocContract, "umowa.pdf", "pdf")
    assert.Equal(t, http.StatusCreated, rec.Code)
    require.NotNil(t, store.uploaded)
}

func TestDocumentHandler_DownloadFilename(t *testing.T) {
    store := &docStoreStub{
        docs: []model.Document{{
            ID: 31, ReservationID: 10, Kind: model.DocInvoice,
            Filename: "faktura 2026.pdf", ContentType: "application/pdf", SizeBytes: 3,
        }},
        blob: []byte("pdf"),
    }
    h := NewDocumentHandler(store, &resLoaderStub{owner: 5}, 0)
    e := newDocumentEcho(h, 5, "CUSTOMER")

    req := httptest.NewRequest(http.MethodGet, "/v1/documents/31/download", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, `attachment; filename="faktura 2026.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
    assert.Equal(t, "pdf", rec.Body.String())
}
