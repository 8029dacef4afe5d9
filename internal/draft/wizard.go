package draft

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/mzawadzki/camp-reservation/internal/model"
)

// Sentinel errors of the wizard flow.
var (
    // ErrStepOutOfRange is returned for step numbers outside 1..4.
    ErrStepOutOfRange = errors.New("wizard step out of range")
    // ErrStepLocked is returned when a step is saved before every step
    // ahead of it has passed its gate.
    ErrStepLocked = errors.New("wizard step not yet reachable")
)

// Meta is the per-session bookkeeping record stored alongside the step
// slices.  Step is the highest step the customer may currently edit;
// forward navigation is granted only by passing the previous step's
// validation gate.
type Meta struct {
    CampID     uint64    `json:"camp_id"`
    PropertyID uint64    `json:"property_id"`
    Step       int       `json:"step"`
    CreatedAt  time.Time `json:"created_at"`
}

// CatalogSource yields the priced catalog entries offered for a
// camp/property and kind.  Implementations own the turnus-specific to
// general-catalog fallback; the wizard only consumes the final list.
type CatalogSource interface {
    Entries(ctx context.Context, campID, propertyID uint64, kind string) ([]model.CatalogEntry, error)
}

// PropertySource resolves the property being booked, for base price and
// deposit lookups.
type PropertySource interface {
    PropertyByID(ctx context.Context, campID, propertyID uint64) (*model.Property, error)
}

// ReservationCreator persists a validated create request together with
// its derived line items, atomically.
type ReservationCreator interface {
    Create(ctx context.Context, req ReservationCreateRequest, items []Item, userID *uint64) (*model.Reservation, error)
}

// StepMap maps field-path prefixes to the wizard step that owns the
// field.  The mapping is data, not code, so deployments can extend it
// when the backend grows new field paths; unknown fields map to step 0,
// which callers render as a generic top-of-form banner.
type StepMap map[string]int

// DefaultStepMap covers the four standard step prefixes.
func DefaultStepMap() StepMap {
    return StepMap{"step1": 1, "step2": 2, "step3": 3, "step4": 4}
}

// StepFor returns the owning step for a dotted field path, or 0 when no
// prefix matches.
func (m StepMap) StepFor(field string) int {
    best, bestLen := 0, -1
    for prefix, step := range m {
        if (field == prefix || strings.HasPrefix(field, prefix+".")) && len(prefix) > bestLen {
            best, bestLen = step, len(prefix)
        }
    }
    return best
}

// FirstFailingStep returns the lowest owning step among the given field
// errors, or 0 when none can be mapped.  Validation failure hands
// control back to this step.
func (m StepMap) FirstFailingStep(details []FieldError) int {
    first := 0
    for _, d := range details {
        s := m.StepFor(d.Field)
        if s == 0 {
            continue
        }
        if first == 0 || s < first {
            first = s
        }
    }
    return first
}

// Wizard drives one reservation draft through the flow
// Step1 → Step2 → Step3 → Step4 → Submitting → {Success |
// ValidationFailed(step) | infrastructure error}.  Drafts live in the
// Store under a session token; nothing touches the reservations table
// until Submit succeeds, and an infrastructure failure during Submit
// leaves the draft intact for retry.
type Wizard struct {
    store       Store
    catalog     CatalogSource
    props       PropertySource
    creator     ReservationCreator
    steps       StepMap
    onConfirmed func(ctx context.Context, res *model.Reservation, items []Item)
}

// NewWizard wires the wizard to its collaborators.  All dependencies
// must be non-nil.
func NewWizard(store Store, catalog CatalogSource, props PropertySource, creator ReservationCreator) *Wizard {
    if store == nil || catalog == nil || props == nil || creator == nil {
        panic("nil dependency passed to NewWizard")
    }
    return &Wizard{store: store, catalog: catalog, props: props, creator: creator, steps: DefaultStepMap()}
}

// OnConfirmed registers a hook fired after a successful submit, outside
// the persistence transaction.  Hook failures must not affect the
// customer-facing outcome, so the hook returns nothing.
func (w *Wizard) OnConfirmed(fn func(ctx context.Context, res *model.Reservation, items []Item)) {
    w.onConfirmed = fn
}

// Steps exposes the field-to-step mapping for error surfacing.
func (w *Wizard) Steps() StepMap { return w.steps }

// Start opens a new draft session for the given camp property and
// returns its session token.  The property is resolved up front so a
// dead link fails here rather than four steps later.
func (w *Wizard) Start(ctx context.Context, campID, propertyID uint64) (string, error) {
    if _, err := w.props.PropertyByID(ctx, campID, propertyID); err != nil {
        return "", err
    }
    session := uuid.NewString()
    meta := Meta{CampID: campID, PropertyID: propertyID, Step: 1, CreatedAt: time.Now().UTC()}
    if err := w.saveMeta(ctx, session, meta); err != nil {
        return "", err
    }
    return session, nil
}

func (w *Wizard) saveMeta(ctx context.Context, session string, meta Meta) error {
    b, err := json.Marshal(meta)
    if err != nil {
        return err
    }
    return w.store.Save(ctx, session, metaKey, b)
}

func (w *Wizard) loadMeta(ctx context.Context, session string) (Meta, error) {
    b, err := w.store.Load(ctx, session, metaKey)
    if err != nil {
        return Meta{}, err
    }
    if b == nil {
        return Meta{}, ErrNoSession
    }
    var meta Meta
    if err := json.Unmarshal(b, &meta); err != nil {
        return Meta{}, err
    }
    return meta, nil
}

// stepKeyFor maps a step number to its store key.
func stepKeyFor(n int) (string, error) {
    switch n {
    case 1:
        return StepKey1, nil
    case 2:
        return StepKey2, nil
    case 3:
        return StepKey3, nil
    case 4:
        return StepKey4, nil
    }
    return "", ErrStepOutOfRange
}

// decodeStep strictly decodes a raw payload into the slice type owned by
// step n.  Unknown fields are rejected; the submission schema is strict
// and accepting junk here would only defer the failure to submit time.
func decodeStep(n int, payload []byte) (any, error) {
    dec := json.NewDecoder(bytes.NewReader(payload))
    dec.DisallowUnknownFields()
    var v any
    switch n {
    case 1:
        v = &Step1{}
    case 2:
        v = &Step2{}
    case 3:
        v = &Step3{}
    case 4:
        v = &Step4{}
    default:
        return nil, ErrStepOutOfRange
    }
    if err := dec.Decode(v); err != nil {
        return nil, err
    }
    return v, nil
}

func validateStep(n int, v any) []FieldError {
    switch s := v.(type) {
    case *Step1:
        return ValidateStep1(*s)
    case *Step2:
        return ValidateStep2(*s)
    case *Step3:
        return ValidateStep3(*s)
    case *Step4:
        return ValidateStep4(*s)
    }
    return nil
}

// SaveStep validates and persists one step slice.  On validation failure
// it returns the field errors and persists nothing, which is the
// navigation gate: the customer stays on the step until the slice
// passes.  On success the next step becomes reachable.  Saving a step
// ahead of the furthest reachable one returns ErrStepLocked.
func (w *Wizard) SaveStep(ctx context.Context, session string, n int, payload []byte) ([]FieldError, error) {
    key, err := stepKeyFor(n)
    if err != nil {
        return nil, err
    }
    meta, err := w.loadMeta(ctx, session)
    if err != nil {
        return nil, err
    }
    if n > meta.Step {
        return nil, ErrStepLocked
    }
    v, err := decodeStep(n, payload)
    if err != nil {
        return nil, fmt.Errorf("malformed step %d payload: %w", n, err)
    }
    if errs := validateStep(n, v); len(errs) > 0 {
        return errs, nil
    }
    canonical, err := json.Marshal(v)
    if err != nil {
        return nil, err
    }
    if err := w.store.Save(ctx, session, key, canonical); err != nil {
        return nil, err
    }
    if next := n + 1; next <= 4 && next > meta.Step {
        meta.Step = next
        if err := w.saveMeta(ctx, session, meta); err != nil {
            return nil, err
        }
    }
    return nil, nil
}

// State is the accumulated view of a draft session: every saved slice,
// the derived line items and the running total.  CatalogErrors lists the
// catalog kinds that could not be fetched; those kinds degrade to an
// empty selectable set instead of failing the whole view.
type State struct {
    SessionID     string   `json:"session_id"`
    Meta          Meta     `json:"meta"`
    Step1         *Step1   `json:"step1,omitempty"`
    Step2         *Step2   `json:"step2,omitempty"`
    Step3         *Step3   `json:"step3,omitempty"`
    Step4         *Step4   `json:"step4,omitempty"`
    Items         []Item   `json:"items"`
    TotalCents    int64    `json:"total_price"`
    DepositCents  int64    `json:"deposit_amount"`
    CatalogErrors []string `json:"catalog_errors,omitempty"`
}

func loadSlice[T any](ctx context.Context, store Store, session, key string) (*T, error) {
    b, err := store.Load(ctx, session, key)
    if err != nil {
        return nil, err
    }
    if b == nil {
        return nil, nil
    }
    var v T
    if err := json.Unmarshal(b, &v); err != nil {
        return nil, err
    }
    return &v, nil
}

// DeriveItems reconciles step selections against the catalogs and
// returns the item set plus the kinds whose catalog fetch failed.  Both
// the catalog entries and the saved selections are fully loaded before
// any kind is reconciled, so a failed fetch can never wipe items derived
// from a kind that did load.  It backs both the wizard flow and the
// direct create/edit endpoints, which must price identically.
func DeriveItems(ctx context.Context, catalog CatalogSource, campID, propertyID uint64, s1 *Step1, s2 *Step2) (*ItemSet, []string) {
    set := NewItemSet()
    var failed []string

    selections := []struct {
        kind string
        ids  []uint64
    }{
        {model.KindDiet, nil},
        {model.KindAddon, nil},
        {model.KindProtection, nil},
        {model.KindPromotion, nil},
    }
    if s1 != nil && s1.SelectedDietID != 0 {
        selections[0].ids = []uint64{s1.SelectedDietID}
    }
    if s2 != nil {
        selections[1].ids = s2.SelectedAddons
        selections[2].ids = s2.SelectedProtections
        if s2.SelectedPromotion != 0 {
            selections[3].ids = []uint64{s2.SelectedPromotion}
        }
    }
    for _, sel := range selections {
        if len(sel.ids) == 0 {
            set.ReplaceKind(sel.kind, nil)
            continue
        }
        entries, err := catalog.Entries(ctx, campID, propertyID, sel.kind)
        if err != nil {
            // degrade to an empty selectable set; no stale items survive
            set.ReplaceKind(sel.kind, nil)
            failed = append(failed, sel.kind)
            continue
        }
        Reconcile(set, sel.kind, sel.ids, entries)
    }
    return set, failed
}

// Get returns the current state of a draft session, including the items
// and running total derived from the saved selections.
func (w *Wizard) Get(ctx context.Context, session string) (*State, error) {
    meta, err := w.loadMeta(ctx, session)
    if err != nil {
        return nil, err
    }
    s1, err := loadSlice[Step1](ctx, w.store, session, StepKey1)
    if err != nil {
        return nil, err
    }
    s2, err := loadSlice[Step2](ctx, w.store, session, StepKey2)
    if err != nil {
        return nil, err
    }
    s3, err := loadSlice[Step3](ctx, w.store, session, StepKey3)
    if err != nil {
        return nil, err
    }
    s4, err := loadSlice[Step4](ctx, w.store, session, StepKey4)
    if err != nil {
        return nil, err
    }
    prop, err := w.props.PropertyByID(ctx, meta.CampID, meta.PropertyID)
    if err != nil {
        return nil, err
    }
    set, failed := DeriveItems(ctx, w.catalog, meta.CampID, meta.PropertyID, s1, s2)
    return &State{
        SessionID:     session,
        Meta:          meta,
        Step1:         s1,
        Step2:         s2,
        Step3:         s3,
        Step4:         s4,
        Items:         set.Items(),
        TotalCents:    prop.BasePriceCents + set.TotalCents(),
        DepositCents:  prop.DepositCents,
        CatalogErrors: failed,
    }, nil
}

// Submit assembles the saved slices into a create request, runs the full
// authoritative validation, recomputes the total from catalog prices and
// persists the reservation.  The draft is cleared only after the
// reservation is durably created; any infrastructure failure before that
// point leaves every slice in place so the customer can retry without
// re-entering data.
func (w *Wizard) Submit(ctx context.Context, session string, userID *uint64) (*model.Reservation, error) {
    meta, err := w.loadMeta(ctx, session)
    if err != nil {
        return nil, err
    }
    s1, err := loadSlice[Step1](ctx, w.store, session, StepKey1)
    if err != nil {
        return nil, err
    }
    s2, err := loadSlice[Step2](ctx, w.store, session, StepKey2)
    if err != nil {
        return nil, err
    }
    s3, err := loadSlice[Step3](ctx, w.store, session, StepKey3)
    if err != nil {
        return nil, err
    }
    s4, err := loadSlice[Step4](ctx, w.store, session, StepKey4)
    if err != nil {
        return nil, err
    }
    var missing []FieldError
    for _, p := range []struct {
        key     string
        present bool
    }{
        {StepKey1, s1 != nil}, {StepKey2, s2 != nil}, {StepKey3, s3 != nil}, {StepKey4, s4 != nil},
    } {
        if !p.present {
            missing = append(missing, FieldError{p.key, MsgRequired})
        }
    }
    if len(missing) > 0 {
        return nil, &ValidationError{Details: missing}
    }

    prop, err := w.props.PropertyByID(ctx, meta.CampID, meta.PropertyID)
    if err != nil {
        return nil, err
    }
    set, failed := DeriveItems(ctx, w.catalog, meta.CampID, meta.PropertyID, s1, s2)
    if len(failed) > 0 {
        // pricing is impossible without the catalogs; infra error, draft kept
        return nil, fmt.Errorf("catalog unavailable for: %s", strings.Join(failed, ", "))
    }
    total := prop.BasePriceCents + set.TotalCents()
    req := Assemble(*s1, *s2, *s3, *s4, meta.CampID, meta.PropertyID, total, prop.DepositCents)
    if errs := ValidateAll(req); len(errs) > 0 {
        return nil, &ValidationError{Details: errs}
    }

    res, err := w.creator.Create(ctx, req, set.Items(), userID)
    if err != nil {
        return nil, err
    }
    // best effort; an orphaned draft only costs its TTL
    _ = w.store.Clear(ctx, session)
    if w.onConfirmed != nil {
        w.onConfirmed(ctx, res, set.Items())
    }
    return res, nil
}

// Abandon discards the draft session.
func (w *Wizard) Abandon(ctx context.Context, session string) error {
    if _, err := w.loadMeta(ctx, session); err != nil {
        return err
    }
    return w.store.Clear(ctx, session)
}
