package dialogue

import (
	"context"
	"errors"
	"time"

	"github.com/supplierx/poagent/types"
)

// StatusCreated is the status a freshly persisted order carries. Later
// transitions are an external concern.
const StatusCreated = "Created"

// Order is the finalized, immutable payload handed to the persistence
// collaborator. Created once at confirmation, never mutated afterwards.
type Order struct {
	Number        string                `json:"po_number"`
	OrderDate     time.Time             `json:"po_date"`
	ValidityDate  time.Time             `json:"validity_date"`
	OrderType     string                `json:"po_type"`
	Supplier      types.ReferenceRecord `json:"supplier"`
	Currency      string                `json:"currency"`
	Plant         types.ReferenceRecord `json:"plant"`
	PurchaseOrg   types.ReferenceRecord `json:"purchase_org"`
	PurchaseGroup types.ReferenceRecord `json:"purchase_group"`
	Project       string                `json:"project,omitempty"`
	PaymentTerm   string                `json:"payment_term,omitempty"`
	IncoTerm      string                `json:"inco_term,omitempty"`
	Remarks       string                `json:"remarks,omitempty"`
	LineItems     []LineItem            `json:"line_items"`
	GrandTotal    float64               `json:"total_amount"`
	Status        string                `json:"status"`
}

// OrderCreator persists an assembled order and returns the generated order
// number. Number format and uniqueness are the collaborator's concern.
type OrderCreator interface {
	Create(ctx context.Context, order *Order) (string, error)
}

var (
	errIncompleteDraft = errors.New("draft is missing required fields")
	errNoLineItems     = errors.New("draft has no line items")
)

// Assemble builds the canonical order payload from a completed draft. It
// fails when a required field is unresolved or no line item was captured.
func Assemble(draft *DraftOrder) (*Order, error) {
	h, org := draft.Header, draft.Org
	if h.Supplier == nil || h.OrderType == "" || h.Currency == "" ||
		org.Plant == nil || org.PurchaseOrg == nil || org.PurchaseGroup == nil {
		return nil, errIncompleteDraft
	}
	if len(draft.LineItems) == 0 {
		return nil, errNoLineItems
	}

	items := make([]LineItem, len(draft.LineItems))
	copy(items, draft.LineItems)

	return &Order{
		OrderDate:     h.OrderDate,
		ValidityDate:  h.ValidityDate,
		OrderType:     h.OrderType,
		Supplier:      *h.Supplier,
		Currency:      h.Currency,
		Plant:         *org.Plant,
		PurchaseOrg:   *org.PurchaseOrg,
		PurchaseGroup: *org.PurchaseGroup,
		Project:       draft.Optional.Project,
		PaymentTerm:   draft.Optional.PaymentTerm,
		IncoTerm:      draft.Optional.IncoTerm,
		Remarks:       draft.Remarks,
		LineItems:     items,
		GrandTotal:    draft.GrandTotal(),
		Status:        StatusCreated,
	}, nil
}
