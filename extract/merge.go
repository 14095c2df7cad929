package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Operation is a single RFC6902 patch op emitted by the model against the
// Guess document.
type Operation struct {
	Op    string `json:"op" jsonschema:"enum=add,enum=replace,description=Patch operation"`
	Path  string `json:"path" jsonschema:"description=JSON pointer into the extraction document"`
	Value any    `json:"value,omitempty" jsonschema:"description=New value for the field"`
}

var allowedPaths = map[string]bool{
	"/intent":     true,
	"/supplier":   true,
	"/plant":      true,
	"/material":   true,
	"/order_type": true,
	"/quantity":   true,
}

// applyOps applies model-emitted ops to a zero Guess. Ops outside the
// extraction document are rejected; "replace" on a missing path is downgraded
// to "add" so sloppy model output still applies cleanly.
func applyOps(ops []Operation) (Guess, error) {
	if len(ops) == 0 {
		return Guess{}, nil
	}
	for i, op := range ops {
		if !allowedPaths[op.Path] {
			return Guess{}, fmt.Errorf("operation %d: path %q is not an extraction field", i, op.Path)
		}
		if op.Op != "add" && op.Op != "replace" {
			return Guess{}, fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
	}

	var seed Guess
	currentJSON, err := json.Marshal(seed)
	if err != nil {
		return Guess{}, fmt.Errorf("marshal seed: %w", err)
	}
	ops = fixOps(currentJSON, ops)

	patchJSON, err := json.Marshal(ops)
	if err != nil {
		return Guess{}, fmt.Errorf("marshal operations: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return Guess{}, fmt.Errorf("decode patch: %w", err)
	}
	modified, err := patch.Apply(currentJSON)
	if err != nil {
		return Guess{}, fmt.Errorf("apply patch: %w", err)
	}

	var result Guess
	if err := json.Unmarshal(modified, &result); err != nil {
		return Guess{}, fmt.Errorf("patched document is not a valid extraction: %w", err)
	}
	return result, nil
}

func fixOps(currentJSON []byte, ops []Operation) []Operation {
	var doc map[string]any
	if err := json.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if op.Op == "replace" {
			key := strings.TrimPrefix(op.Path, "/")
			if _, ok := doc[key]; !ok {
				op.Op = "add"
			}
		}
		fixed = append(fixed, op)
	}
	return fixed
}
