package draft

import (
    "fmt"
    "sync"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

// Item is a derived reservation line item.  Items are never persisted
// directly by the wizard; they exist to drive the running total shown to
// the customer and to populate the submission payload.  The ID is the
// stable composite "{kind}-{entityID}" so the same logical selection
// always maps to the same item across repeated reconciliations.
type Item struct {
    ID         string `json:"id"`
    Name       string `json:"name"`
    Kind       string `json:"type"`
    PriceCents int64  `json:"price"`
}

// ItemID builds the composite identifier for a catalog entry.
func ItemID(kind string, entityID uint64) string {
    return fmt.Sprintf("%s-%d", kind, entityID)
}

// ItemSet holds the derived line items of one wizard session.  Mutation
// happens through a typed action pair (add and remove-by-kind) and the
// reconciler only ever wipes a whole kind before re-adding it, which
// keeps repeated reconciliation idempotent: toggling a selection on, off
// and on again yields exactly one item per selected id, never
// duplicates.
type ItemSet struct {
    mu    sync.Mutex
    items []Item
}

// NewItemSet returns an empty item set.
func NewItemSet() *ItemSet { return &ItemSet{} }

// Add appends one item.
func (s *ItemSet) Add(it Item) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.items = append(s.items, it)
}

// ReplaceKind atomically wipes a kind and installs the new items of that
// kind.  Passing nil items removes the kind entirely.  This is the only
// mutation the reconciler performs.
func (s *ItemSet) ReplaceKind(kind string, items []Item) {
    s.mu.Lock()
    defer s.mu.Unlock()
    kept := s.items[:0]
    for _, it := range s.items {
        if it.Kind != kind {
            kept = append(kept, it)
        }
    }
    s.items = append(kept, items...)
}

// Items returns a copy of the current items in insertion order.
func (s *ItemSet) Items() []Item {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]Item, len(s.items))
    copy(out, s.items)
    return out
}

// TotalCents sums all item prices.  Promotions carry negative prices, so
// the sum is the full add-on delta on top of the property base price.
func (s *ItemSet) TotalCents() int64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    var total int64
    for _, it := range s.items {
        total += it.PriceCents
    }
    return total
}

// Reconcile turns the currently selected catalog entry ids of one kind
// into items and installs them in the set, wipe-and-rebuild.  Selected
// ids with no matching catalog entry are dropped silently: the catalog
// is the source of truth for what is purchasable.  Promotions are
// installed with a negated price so that the set total stays a plain
// sum.  Running Reconcile again with the same inputs is a no-op in
// effect, which makes it safe to re-run on every state change.
func Reconcile(set *ItemSet, kind string, selected []uint64, catalog []model.CatalogEntry) {
    byID := make(map[uint64]model.CatalogEntry, len(catalog))
    for _, e := range catalog {
        if e.Kind == kind {
            byID[e.ID] = e
        }
    }
    items := make([]Item, 0, len(selected))
    seen := make(map[uint64]struct{}, len(selected))
    for _, id := range selected {
        if _, dup := seen[id]; dup {
            continue
        }
        seen[id] = struct{}{}
        e, ok := byID[id]
        if !ok {
            continue
        }
        price := e.PriceCents
        if kind == model.KindPromotion {
            price = -price
        }
        items = append(items, Item{
            ID:         ItemID(kind, e.ID),
            Name:       e.Name,
            Kind:       kind,
            PriceCents: price,
        })
    }
    set.ReplaceKind(kind, items)
}
