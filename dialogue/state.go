package dialogue

import (
	"github.com/supplierx/poagent/types"
)

// StepID is the current position in the ordered field-collection pipeline.
type StepID string

const (
	StepStart            StepID = "start"
	StepHeaderSupplier   StepID = "header_supplier"
	StepHeaderType       StepID = "header_type"
	StepHeaderCurrency   StepID = "header_currency"
	StepOrgPlant         StepID = "org_plant"
	StepOrgPurchaseOrg   StepID = "org_purch_org"
	StepOrgPurchaseGroup StepID = "org_purch_group"
	StepOptionalGate     StepID = "optional_fields"
	StepOptionalProject  StepID = "optional_project"
	StepOptionalPayment  StepID = "optional_payment"
	StepOptionalInco     StepID = "optional_inco"
	StepItemMaterial     StepID = "item_material"
	StepItemQty          StepID = "item_qty"
	StepItemPrice        StepID = "item_price"
	StepAddMore          StepID = "add_more_check"
	StepRemarks          StepID = "remarks"
	StepConfirm          StepID = "confirm"
)

// fieldCategory maps resolver-backed steps to their reference category.
var fieldCategory = map[StepID]types.Category{
	StepHeaderSupplier:   types.CategorySupplier,
	StepOrgPlant:         types.CategoryPlant,
	StepOrgPurchaseOrg:   types.CategoryPurchaseOrg,
	StepOrgPurchaseGroup: types.CategoryPurchaseGroup,
	StepItemMaterial:     types.CategoryMaterial,
}

// ConversationState is everything one session accumulates. Exactly one
// instance exists per active session; it is mutated in place by each turn and
// replaced by a fresh instance after finalization or restart.
//
// PendingOptions doubles as the disambiguation sub-state: while non-nil the
// current step is awaiting a 1-based index selection instead of free text.
type ConversationState struct {
	Step           StepID                  `json:"step"`
	Draft          DraftOrder              `json:"draft"`
	PendingOptions []types.ReferenceRecord `json:"pending_options,omitempty"`

	// Seed fields hold extraction pre-fills that belong to steps deeper in
	// the pipeline; they are consumed when their step is reached.
	SeedMaterial *types.ReferenceRecord `json:"seed_material,omitempty"`
	SeedQuantity float64                `json:"seed_quantity,omitempty"`
}

// NewConversationState returns a fresh state positioned at the start step.
func NewConversationState() *ConversationState {
	return &ConversationState{Step: StepStart}
}

// Reset returns the state to a fresh instance in place.
func (s *ConversationState) Reset() {
	*s = *NewConversationState()
}

// selecting reports whether the current step is in the index-selection
// sub-state.
func (s *ConversationState) selecting() bool {
	return len(s.PendingOptions) > 0
}
