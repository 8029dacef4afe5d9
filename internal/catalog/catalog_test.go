package catalog

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

type stubProps struct {
    prop *model.Property
    err  error
}

func (s *stubProps) GetByID(context.Context, uint64, uint64) (*model.Property, error) {
    if s.err != nil {
        return nil, s.err
    }
    return s.prop, nil
}

type stubEntries struct {
    scoped       []model.CatalogEntry
    general      []model.CatalogEntry
    scopedErr    error
    generalErr   error
    generalCalls int
}

func (s *stubEntries) ListForProperty(context.Context, uint64, string) ([]model.CatalogEntry, error) {
    return s.scoped, s.scopedErr
}

func (s *stubEntries) ListGeneral(context.Context, string) ([]model.CatalogEntry, error) {
    s.generalCalls++
    return s.general, s.generalErr
}

func entry(id uint64, name string, price int64) model.CatalogEntry {
    return model.CatalogEntry{ID: id, Kind: model.KindProtection, Name: name, PriceCents: price}
}

func newTestService(entries *stubEntries) *Service {
    return NewService(&stubProps{prop: &model.Property{ID: 7, CampID: 3}}, entries)
}

func TestEntries_PropertyCatalogWins(t *testing.T) {
    st := &stubEntries{
        scoped:  []model.CatalogEntry{entry(1, "NNW turnusowe", 20000)},
        general: []model.CatalogEntry{entry(2, "NNW ogólne", 15000)},
    }
    svc := newTestService(st)

    got, err := svc.Entries(context.Background(), 3, 7, model.KindProtection)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "NNW turnusowe", got[0].Name)
    // a usable property catalog must never touch the general one
    assert.Zero(t, st.generalCalls)
}

func TestEntries_EmptyPropertyCatalogFallsBack(t *testing.T) {
    st := &stubEntries{
        general: []model.CatalogEntry{entry(2, "NNW ogólne", 15000)},
    }
    svc := newTestService(st)

    got, err := svc.Entries(context.Background(), 3, 7, model.KindProtection)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "NNW ogólne", got[0].Name)
}

func TestEntries_PlaceholderOnlyFallsBack(t *testing.T) {
    st := &stubEntries{
        scoped: []model.CatalogEntry{
            entry(1, "", 20000),      // unnamed
            entry(3, "Zapowiedź", 0), // unpriced
        },
        general: []model.CatalogEntry{entry(2, "NNW ogólne", 15000)},
    }
    svc := newTestService(st)

    got, err := svc.Entries(context.Background(), 3, 7, model.KindProtection)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "NNW ogólne", got[0].Name)
}

func TestEntries_NeverMixed(t *testing.T) {
    st := &stubEntries{
        scoped: []model.CatalogEntry{
            entry(1, "NNW turnusowe", 20000),
            entry(3, "", 5000), // placeholder dropped, but scoped list still wins
        },
        general: []model.CatalogEntry{entry(2, "NNW ogólne", 15000)},
    }
    svc := newTestService(st)

    got, err := svc.Entries(context.Background(), 3, 7, model.KindProtection)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, uint64(1), got[0].ID)
    assert.Zero(t, st.generalCalls)
}

func TestEntries_GeneralPlaceholdersDropped(t *testing.T) {
    st := &stubEntries{
        general: []model.CatalogEntry{
            entry(2, "NNW ogólne", 15000),
            entry(4, "", 1000),
        },
    }
    svc := newTestService(st)

    got, err := svc.Entries(context.Background(), 3, 7, model.KindProtection)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, uint64(2), got[0].ID)
}

func TestEntries_UnknownPropertyPair(t *testing.T) {
    notFound := errors.New("not found")
    svc := NewService(&stubProps{err: notFound}, &stubEntries{})

    _, err := svc.Entries(context.Background(), 3, 99, model.KindProtection)
    assert.ErrorIs(t, err, notFound)
}

func TestEntries_ScopedError(t *testing.T) {
    broken := errors.New("query failed")
    svc := newTestService(&stubEntries{scopedErr: broken})

    _, err := svc.Entries(context.Background(), 3, 7, model.KindProtection)
    assert.ErrorIs(t, err, broken)
}

func TestGeneral(t *testing.T) {
    st := &stubEntries{
        general: []model.CatalogEntry{
            entry(2, "NNW ogólne", 15000),
            entry(4, "", 0),
        },
    }
    svc := newTestService(st)

    got, err := svc.General(context.Background(), model.KindProtection)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, uint64(2), got[0].ID)
}
