package draft

import (
    "bytes"
    "encoding/json"
    "strings"
)

// HealthAnswerKind discriminates the known shapes of a health
// questionnaire answer.  Historic clients sent booleans, strings in two
// languages and free-form objects for the same field, so anything that
// does not match a known shape is preserved verbatim as a legacy answer
// instead of being rejected or silently dropped.
type HealthAnswerKind string

const (
    HealthYes    HealthAnswerKind = "yes"
    HealthNo     HealthAnswerKind = "no"
    HealthLegacy HealthAnswerKind = "legacy"
)

// HealthAnswer is one per-category entry of the health questionnaire.
// Known answers carry a yes/no kind plus optional free-text details.
// Legacy answers keep the original JSON in Raw and round-trip unchanged.
type HealthAnswer struct {
    Category string
    Kind     HealthAnswerKind
    Details  string
    Raw      json.RawMessage // original payload, set only for legacy answers
}

type healthAnswerWire struct {
    Category string          `json:"category"`
    Answer   json.RawMessage `json:"answer"`
    Details  string          `json:"details,omitempty"`
}

// UnmarshalJSON accepts boolean, "yes"/"no" (and Polish "tak"/"nie")
// answers; everything else becomes a legacy answer with the raw payload
// retained for forward compatibility.
func (a *HealthAnswer) UnmarshalJSON(b []byte) error {
    var w healthAnswerWire
    if err := json.Unmarshal(b, &w); err != nil {
        return err
    }
    a.Category = w.Category
    a.Details = w.Details
    a.Raw = nil

    switch {
    case bytes.Equal(w.Answer, []byte("true")):
        a.Kind = HealthYes
        return nil
    case bytes.Equal(w.Answer, []byte("false")):
        a.Kind = HealthNo
        return nil
    }
    var s string
    if err := json.Unmarshal(w.Answer, &s); err == nil {
        switch strings.ToLower(strings.TrimSpace(s)) {
        case "yes", "tak", "true":
            a.Kind = HealthYes
            return nil
        case "no", "nie", "false", "":
            a.Kind = HealthNo
            return nil
        }
    }
    a.Kind = HealthLegacy
    a.Raw = append(json.RawMessage(nil), b...)
    return nil
}

// MarshalJSON writes known answers in the canonical {category, answer,
// details} shape and replays legacy answers byte for byte.
func (a HealthAnswer) MarshalJSON() ([]byte, error) {
    if a.Kind == HealthLegacy && len(a.Raw) > 0 {
        return a.Raw, nil
    }
    answer := "no"
    if a.Kind == HealthYes {
        answer = "yes"
    }
    return json.Marshal(struct {
        Category string `json:"category"`
        Answer   string `json:"answer"`
        Details  string `json:"details,omitempty"`
    }{Category: a.Category, Answer: answer, Details: a.Details})
}
