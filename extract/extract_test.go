package extract

import (
	"context"
	"errors"
	"testing"
)

func TestLocalExtractor_Intent(t *testing.T) {
	cases := []struct {
		input string
		want  Intent
	}{
		{"create a PO for MS Pipe", IntentCreateOrder},
		{"Create PO", IntentCreateOrder},
		{"I need a new order for cement", IntentCreateOrder},
		{"how many suppliers do we have?", IntentQuestion},
		{"hello there", IntentOther},
	}
	for _, tc := range cases {
		guess, err := LocalExtractor{}.Extract(context.Background(), tc.input)
		if err != nil {
			t.Fatalf("Extract(%q): %v", tc.input, err)
		}
		if guess.Intent != tc.want {
			t.Errorf("Extract(%q).Intent = %s, want %s", tc.input, guess.Intent, tc.want)
		}
	}
}

func TestLocalExtractor_Quantity(t *testing.T) {
	guess, err := LocalExtractor{}.Extract(context.Background(), "create po for 100 units of steel")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if guess.Quantity != 100 {
		t.Errorf("got quantity %v, want 100", guess.Quantity)
	}
}

func TestApplyOps(t *testing.T) {
	guess, err := applyOps([]Operation{
		{Op: "replace", Path: "/intent", Value: "create_order"},
		{Op: "replace", Path: "/supplier", Value: "Acme"},
		{Op: "replace", Path: "/quantity", Value: 50},
	})
	if err != nil {
		t.Fatalf("applyOps: %v", err)
	}
	if guess.Intent != IntentCreateOrder {
		t.Errorf("got intent %s, want create_order", guess.Intent)
	}
	if guess.Supplier != "Acme" {
		t.Errorf("got supplier %q, want Acme", guess.Supplier)
	}
	if guess.Quantity != 50 {
		t.Errorf("got quantity %v, want 50", guess.Quantity)
	}
}

func TestApplyOps_RejectsUnknownPath(t *testing.T) {
	_, err := applyOps([]Operation{{Op: "add", Path: "/password", Value: "x"}})
	if err == nil {
		t.Fatal("expected error for path outside the extraction document")
	}
}

func TestApplyOps_Empty(t *testing.T) {
	guess, err := applyOps(nil)
	if err != nil {
		t.Fatalf("applyOps(nil): %v", err)
	}
	if !guess.IsZero() {
		t.Errorf("got %+v, want zero guess", guess)
	}
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string) (Guess, error) {
	return Guess{}, errors.New("model unavailable")
}

func TestFailback_FallsThrough(t *testing.T) {
	fb := NewFailback(failingExtractor{}, LocalExtractor{})
	guess, err := fb.Extract(context.Background(), "create po for cement")
	if err != nil {
		t.Fatalf("failback: %v", err)
	}
	if guess.Intent != IntentCreateOrder {
		t.Errorf("got intent %s, want create_order", guess.Intent)
	}
}
