// Package answer handles ad-hoc data questions asked mid-conversation. It is
// consumed as a black box: text in, displayable answer out, with a designated
// sentinel marking "no answer could be produced".
package answer

import (
	"context"
	"strings"
)

// Sentinel is the substring that marks a failed answer. Callers seeing it
// fall back to treating the input as pipeline input.
const Sentinel = "I couldn't generate a query for that"

// IsSentinel reports whether text is a failure answer rather than a
// substantive one.
func IsSentinel(text string) bool {
	return strings.Contains(text, Sentinel)
}

// Answerer answers a free-text data question. A returned error and a sentinel
// answer are equivalent to the caller; implementations prefer the sentinel so
// the failure reads as conversation, not as a fault.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Static always returns the sentinel, used when no query backend is
// configured.
type Static struct{}

func (Static) Answer(context.Context, string) (string, error) {
	return Sentinel + ". Please try asking differently.", nil
}

// Failback tries answerers in order and returns the first substantive,
// non-sentinel answer.
type Failback struct {
	answerers []Answerer
}

func NewFailback(answerers ...Answerer) *Failback {
	return &Failback{answerers: answerers}
}

func (f *Failback) Answer(ctx context.Context, question string) (string, error) {
	var lastErr error
	for _, a := range f.answerers {
		text, err := a.Answer(ctx, question)
		if err == nil && !IsSentinel(text) {
			return text, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return "", lastErr
	}
	return Sentinel + ". Please try asking differently.", nil
}
