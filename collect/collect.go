// Package collect implements the generic field-collection protocol shared by
// every reference-backed step: resolve free text against a category, or,
// while candidates are pending, interpret input as a 1-based index selection.
package collect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/supplierx/poagent/resolve"
	"github.com/supplierx/poagent/types"
)

// Status classifies a collection attempt.
type Status int

const (
	// StatusResolved means exactly one record was chosen; the caller stores
	// it and advances.
	StatusResolved Status = iota
	// StatusAmbiguous means the caller must store Candidates as pending
	// options and ask for an index selection.
	StatusAmbiguous
	// StatusRejected means the input could not be used; the caller re-prompts
	// the same step without touching state.
	StatusRejected
)

// Result is the outcome of one collection attempt. Prompt carries the
// user-visible reason for ambiguous and rejected outcomes.
type Result struct {
	Status     Status
	Record     types.ReferenceRecord
	Candidates []types.ReferenceRecord
	Prompt     string
}

// Collector drives the two-state sub-machine
// {awaiting_free_text, awaiting_index_selection} for a single field.
type Collector struct {
	resolver *resolve.Resolver
}

func New(resolver *resolve.Resolver) *Collector {
	return &Collector{resolver: resolver}
}

// Collect processes one turn of field collection. When pending is non-empty
// the field is awaiting an index selection and input is interpreted as a
// 1-based index into pending; otherwise input is resolved against category.
func (c *Collector) Collect(ctx context.Context, input string, category types.Category, pending []types.ReferenceRecord) Result {
	if len(pending) > 0 {
		return selectIndex(input, pending)
	}

	outcome, err := c.resolver.Resolve(ctx, input, category)
	if err != nil {
		return Result{
			Status: StatusRejected,
			Prompt: "I'm having trouble reaching the reference data right now. Please try again.",
		}
	}
	switch outcome.Kind {
	case resolve.KindResolved:
		return Result{Status: StatusResolved, Record: outcome.Record}
	case resolve.KindAmbiguous:
		return Result{
			Status:     StatusAmbiguous,
			Candidates: outcome.Candidates,
			Prompt: fmt.Sprintf("I found multiple matches for %q. Please choose one by number:\n%s",
				strings.TrimSpace(input), types.FormatCandidateList(outcome.Candidates)),
		}
	default:
		return Result{
			Status: StatusRejected,
			Prompt: fmt.Sprintf("I couldn't find a %s matching %q. Please check the name and try again.",
				category.DisplayName(), strings.TrimSpace(input)),
		}
	}
}

// selectIndex validates a 1-based selection. Index 0, out-of-range, and
// non-numeric input are rejected with the pending list untouched.
func selectIndex(input string, pending []types.ReferenceRecord) Result {
	idx, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || idx < 1 || idx > len(pending) {
		return Result{
			Status:     StatusRejected,
			Candidates: pending,
			Prompt:     fmt.Sprintf("Invalid selection. Please enter a number between 1 and %d.", len(pending)),
		}
	}
	return Result{Status: StatusResolved, Record: pending[idx-1]}
}
