// Package catalog resolves the priced entries offered for a camp
// property, applying the turnus-specific to general-catalog fallback
// policy the booking wizard depends on.
package catalog

import (
    "context"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

// propertyGetter resolves a property scoped to its camp.
type propertyGetter interface {
    GetByID(ctx context.Context, campID, propertyID uint64) (*model.Property, error)
}

// entryLister lists catalog entries, property-scoped or general.
type entryLister interface {
    ListForProperty(ctx context.Context, propertyID uint64, kind string) ([]model.CatalogEntry, error)
    ListGeneral(ctx context.Context, kind string) ([]model.CatalogEntry, error)
}

// Service answers "what can be bought for this turnus" with a
// deterministic fallback: the property-specific list wins whenever it
// holds at least one real (non-placeholder) entry; only an empty or
// placeholder-only property list falls back to the general catalog, and
// the two are never mixed.
type Service struct {
    props   propertyGetter
    entries entryLister
}

// NewService wires the service to its repositories.
func NewService(props propertyGetter, entries entryLister) *Service {
    if props == nil || entries == nil {
        panic("nil repository passed to catalog.NewService")
    }
    return &Service{props: props, entries: entries}
}

// PropertyByID resolves the property being booked.  It exists so the
// wizard can treat the service as its single read-model dependency.
func (s *Service) PropertyByID(ctx context.Context, campID, propertyID uint64) (*model.Property, error) {
    return s.props.GetByID(ctx, campID, propertyID)
}

// Entries returns the purchasable entries of one kind for a camp
// property.  The camp/property pair is verified first so a forged pair
// surfaces as not-found rather than leaking another camp's prices.
func (s *Service) Entries(ctx context.Context, campID, propertyID uint64, kind string) ([]model.CatalogEntry, error) {
    if _, err := s.props.GetByID(ctx, campID, propertyID); err != nil {
        return nil, err
    }
    scoped, err := s.entries.ListForProperty(ctx, propertyID, kind)
    if err != nil {
        return nil, err
    }
    if usable := dropPlaceholders(scoped); len(usable) > 0 {
        return usable, nil
    }
    general, err := s.entries.ListGeneral(ctx, kind)
    if err != nil {
        return nil, err
    }
    return dropPlaceholders(general), nil
}

// General returns the purchasable general-catalog entries of one kind,
// independent of any property.  Backs the public catalog endpoints.
func (s *Service) General(ctx context.Context, kind string) ([]model.CatalogEntry, error) {
    general, err := s.entries.ListGeneral(ctx, kind)
    if err != nil {
        return nil, err
    }
    return dropPlaceholders(general), nil
}

func dropPlaceholders(entries []model.CatalogEntry) []model.CatalogEntry {
    usable := make([]model.CatalogEntry, 0, len(entries))
    for _, e := range entries {
        if !e.Placeholder() {
            usable = append(usable, e)
        }
    }
    return usable
}
