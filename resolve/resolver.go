// Package resolve maps free-text fragments to reference records. The
// three-way Outcome (resolved / ambiguous / not found) is the contract every
// field-collection step is built on.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/supplierx/poagent/types"
)

// Directory is the reference datastore the resolver queries. Search returns
// records whose primary name field matches query (substring, case
// insensitive), in stable dataset order, capped at limit. An empty query
// returns a default browse list for the category.
type Directory interface {
	Search(ctx context.Context, category types.Category, query string, limit int) ([]types.ReferenceRecord, error)
}

// Kind tags an Outcome.
type Kind int

const (
	KindNotFound Kind = iota
	KindResolved
	KindAmbiguous
)

func (k Kind) String() string {
	switch k {
	case KindResolved:
		return "resolved"
	case KindAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Outcome is the result of a resolution attempt. Exactly one of Record or
// Candidates is meaningful, depending on Kind.
type Outcome struct {
	Kind       Kind
	Record     types.ReferenceRecord
	Candidates []types.ReferenceRecord
}

// Resolver applies the deterministic selection policy over a Directory.
type Resolver struct {
	dir Directory
}

func New(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Browse fetches the default candidate list for a category (empty query),
// used to offer menu selection before any text is typed.
func (r *Resolver) Browse(ctx context.Context, category types.Category) ([]types.ReferenceRecord, error) {
	records, err := r.dir.Search(ctx, category, "", category.SearchLimit())
	if err != nil {
		return nil, fmt.Errorf("browse %s: %w", category, err)
	}
	return records, nil
}

// Resolve fetches candidates for query within category and collapses
// ambiguity where the policy allows. Rules, first match wins:
//
//  1. exact case-insensitive name match
//  2. exactly one substring match among the candidates
//  3. exactly one candidate overall
//  4. multiple candidates: ambiguous
//  5. no candidates: not found
func (r *Resolver) Resolve(ctx context.Context, query string, category types.Category) (Outcome, error) {
	query = strings.TrimSpace(query)
	records, err := r.dir.Search(ctx, category, query, category.SearchLimit())
	if err != nil {
		return Outcome{}, fmt.Errorf("search %s %q: %w", category, query, err)
	}
	return Select(query, records), nil
}

// Select applies the selection policy to an already-fetched candidate set.
// It is deterministic for a fixed candidate order.
func Select(query string, candidates []types.ReferenceRecord) Outcome {
	if len(candidates) == 0 {
		return Outcome{Kind: KindNotFound}
	}

	lower := strings.ToLower(strings.TrimSpace(query))
	if lower != "" {
		for _, c := range candidates {
			if strings.ToLower(c.Name) == lower {
				return Outcome{Kind: KindResolved, Record: c}
			}
		}
		var sub []types.ReferenceRecord
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c.Name), lower) {
				sub = append(sub, c)
			}
		}
		if len(sub) == 1 {
			return Outcome{Kind: KindResolved, Record: sub[0]}
		}
	}

	if len(candidates) == 1 {
		return Outcome{Kind: KindResolved, Record: candidates[0]}
	}
	return Outcome{Kind: KindAmbiguous, Candidates: candidates}
}
