package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

var quantityPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:units?|pcs?|pieces?|nos?)\b`)

// LocalExtractor is the deterministic fallback used when no chat model is
// configured or the model call fails. It only classifies intent and picks up
// an explicit "<n> units" quantity; entity fragments are left for the
// step-by-step pipeline to collect.
type LocalExtractor struct{}

func (LocalExtractor) Extract(_ context.Context, text string) (Guess, error) {
	lower := strings.ToLower(text)
	guess := Guess{Intent: IntentOther}

	switch {
	case strings.Contains(lower, "create") || strings.Contains(lower, "new po") ||
		strings.Contains(lower, "new order") || strings.Contains(lower, "raise a po"):
		guess.Intent = IntentCreateOrder
	case strings.Contains(lower, "?"):
		guess.Intent = IntentQuestion
	}

	if m := quantityPattern.FindStringSubmatch(lower); m != nil {
		if qty, err := strconv.ParseFloat(m[1], 64); err == nil {
			guess.Quantity = qty
		}
	}
	return guess, nil
}
