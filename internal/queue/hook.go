package queue

import (
    "context"
    "encoding/json"
    "strings"
    "time"

    "github.com/mzawadzki/camp-reservation/internal/draft"
    "github.com/mzawadzki/camp-reservation/internal/model"
)

// ConfirmationHook adapts a publisher function to the wizard's
// OnConfirmed signature.  The event is built from the stored
// reservation; publish failures are swallowed because the reservation
// is already durable and the event stream is best effort.
func ConfirmationHook(publish func(ctx context.Context, ev ReservationConfirmedEvent) error) func(ctx context.Context, res *model.Reservation, items []draft.Item) {
    return func(ctx context.Context, res *model.Reservation, items []draft.Item) {
        ev := ReservationConfirmedEvent{
            ReservationID:     res.ID,
            ReservationNumber: res.ReservationNumber,
            UserID:            res.UserID,
            CampID:            res.CampID,
            PropertyID:        res.PropertyID,
            ParticipantName:   participantName(res.Step1),
            Items:             make([]EventItem, 0, len(items)),
            TotalCents:        res.TotalCents,
            DepositCents:      res.DepositCents,
            ConfirmedAt:       res.CreatedAt.UTC().Format(time.RFC3339),
        }
        for _, it := range items {
            ev.Items = append(ev.Items, EventItem{
                ItemID: it.ID, Name: it.Name, Kind: it.Kind, PriceCents: it.PriceCents,
            })
        }
        _ = publish(ctx, ev)
    }
}

func participantName(step1JSON []byte) string {
    var s1 draft.Step1
    if err := json.Unmarshal(step1JSON, &s1); err != nil {
        return ""
    }
    return strings.TrimSpace(s1.Participant.FirstName + " " + s1.Participant.LastName)
}
