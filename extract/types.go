// Package extract turns an opening free-text request into a structured guess
// about the user's intent and any entities they already named. Guesses are
// raw fragments; resolution against reference data happens downstream and is
// never bypassed.
package extract

import "context"

// Intent classifies what the opening message asks for.
type Intent string

const (
	IntentCreateOrder Intent = "create_order"
	IntentQuestion    Intent = "question"
	IntentOther       Intent = "other"
)

// Guess is the structured extraction result. Every field may be empty; an
// all-zero Guess means nothing could be extracted.
type Guess struct {
	Intent    Intent  `json:"intent" jsonschema:"enum=create_order,enum=question,enum=other,description=What the user is asking for"`
	Supplier  string  `json:"supplier" jsonschema:"description=Supplier name fragment if the user named one"`
	Plant     string  `json:"plant" jsonschema:"description=Plant name fragment if the user named one"`
	Material  string  `json:"material" jsonschema:"description=Material or service name fragment if the user named one"`
	OrderType string  `json:"order_type" jsonschema:"description=Order type if the user named one"`
	Quantity  float64 `json:"quantity" jsonschema:"description=Quantity if the user stated one, 0 otherwise"`
}

// IsZero reports whether nothing was extracted.
func (g Guess) IsZero() bool {
	return g == Guess{}
}

// Extractor produces a Guess from free text. Implementations return an error
// on internal failure; callers treat errors as an empty guess so extraction
// problems never surface to the user.
type Extractor interface {
	Extract(ctx context.Context, text string) (Guess, error)
}

// Failback tries extractors in order and returns the first success.
type Failback struct {
	extractors []Extractor
}

func NewFailback(extractors ...Extractor) *Failback {
	return &Failback{extractors: extractors}
}

func (f *Failback) Extract(ctx context.Context, text string) (Guess, error) {
	var lastErr error
	for _, e := range f.extractors {
		guess, err := e.Extract(ctx, text)
		if err == nil {
			return guess, nil
		}
		lastErr = err
	}
	return Guess{}, lastErr
}
