package answer

import (
	"context"
	"regexp"
	"strings"
)

var orderNumberPattern = regexp.MustCompile(`(?i)\bIND-PO-\d{3,}\b`)

// RenderOrderFunc renders a persisted order as displayable text. It reports
// an error when the number is unknown.
type RenderOrderFunc func(ctx context.Context, number string) (string, error)

// OrderLookup answers questions that mention an order number directly,
// without going through query generation. Questions without a number yield
// the sentinel so a fallback answerer can take over.
type OrderLookup struct {
	render RenderOrderFunc
}

func NewOrderLookup(render RenderOrderFunc) *OrderLookup {
	return &OrderLookup{render: render}
}

func (l *OrderLookup) Answer(ctx context.Context, question string) (string, error) {
	number := orderNumberPattern.FindString(question)
	if number == "" {
		return Sentinel + ". Please try asking differently.", nil
	}
	text, err := l.render(ctx, strings.ToUpper(number))
	if err != nil {
		return "", err
	}
	return text, nil
}
