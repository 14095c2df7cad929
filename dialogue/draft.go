// Package dialogue implements the order-intake conversation: the draft being
// accumulated, the ordered step pipeline that fills it, and the finalization
// into a persistable order.
package dialogue

import (
	"time"

	"github.com/supplierx/poagent/types"
)

// ValidityPeriod is how long a new order stays valid, measured from the
// order date. Derived when the currency is set.
const ValidityPeriod = 30 * 24 * time.Hour

// Header holds the order-level fields collected first.
type Header struct {
	OrderDate    time.Time              `json:"order_date"`
	ValidityDate time.Time              `json:"validity_date"`
	OrderType    string                 `json:"order_type"`
	Supplier     *types.ReferenceRecord `json:"supplier,omitempty"`
	Currency     string                 `json:"currency"`
}

// OrgData holds the organizational assignment fields.
type OrgData struct {
	Plant         *types.ReferenceRecord `json:"plant,omitempty"`
	PurchaseOrg   *types.ReferenceRecord `json:"purchase_org,omitempty"`
	PurchaseGroup *types.ReferenceRecord `json:"purchase_group,omitempty"`
}

// OptionalFields are sparse; an empty string means "not set", never a
// silent default.
type OptionalFields struct {
	Project     string `json:"project,omitempty"`
	PaymentTerm string `json:"payment_term,omitempty"`
	IncoTerm    string `json:"inco_term,omitempty"`
}

// LineItem is one priced position on the order. Total is always recomputed
// from quantity and price, never user supplied.
type LineItem struct {
	Material types.ReferenceRecord `json:"material"`
	Quantity float64               `json:"quantity"`
	Price    float64               `json:"price"`
	Total    float64               `json:"total"`
}

// DraftOrder is the mutable accumulator for one in-progress conversation.
// CurrentItem exists only between material selection and price entry.
type DraftOrder struct {
	Header      Header         `json:"header"`
	Org         OrgData        `json:"org_data"`
	Optional    OptionalFields `json:"optional"`
	LineItems   []LineItem     `json:"line_items"`
	CurrentItem *LineItem      `json:"current_item,omitempty"`
	Remarks     string         `json:"remarks,omitempty"`
}

// CloseCurrentItem prices the item under construction, computes its total,
// and moves it onto LineItems in one step.
func (d *DraftOrder) CloseCurrentItem(price float64) {
	item := *d.CurrentItem
	item.Price = price
	item.Total = item.Quantity * price
	d.LineItems = append(d.LineItems, item)
	d.CurrentItem = nil
}

// GrandTotal recomputes the order total from the line items.
func (d *DraftOrder) GrandTotal() float64 {
	var sum float64
	for _, item := range d.LineItems {
		sum += item.Total
	}
	return sum
}
