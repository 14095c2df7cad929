package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/supplierx/poagent/dialogue"
	"github.com/supplierx/poagent/types"
)

// seedData mirrors the demo reference datasets so the agent is usable without
// a database.
var seedData = map[types.Category][]types.ReferenceRecord{
	types.CategorySupplier: {
		{ID: "1", Name: "Acme Industries", Code: "SUP-001", Attrs: map[string]string{"city": "Delhi"}},
		{ID: "2", Name: "Global Metals", Code: "SUP-002", Attrs: map[string]string{"city": "Mumbai"}},
		{ID: "3", Name: "Shree Traders", Code: "SUP-003", Attrs: map[string]string{"city": "Noida"}},
	},
	types.CategoryPlant: {
		{ID: "1", Name: "Noida Plant", Code: "PLT-NOI", Attrs: map[string]string{"city": "Noida"}},
		{ID: "2", Name: "Delhi Plant", Code: "PLT-DEL", Attrs: map[string]string{"city": "Delhi"}},
		{ID: "3", Name: "Mumbai Plant", Code: "PLT-MUM", Attrs: map[string]string{"city": "Mumbai"}},
	},
	types.CategoryMaterial: {
		{ID: "1", Name: "MS Pipe", Code: "MAT-001", Attrs: map[string]string{"unit": "EA"}},
		{ID: "2", Name: "Steel Rod", Code: "MAT-002", Attrs: map[string]string{"unit": "EA"}},
		{ID: "3", Name: "Cement", Code: "MAT-003", Attrs: map[string]string{"unit": "BAG"}},
	},
	types.CategoryPurchaseOrg: {
		{ID: "1", Name: "North Purchasing", Code: "ORG-N"},
		{ID: "2", Name: "West Purchasing", Code: "ORG-W"},
	},
	types.CategoryPurchaseGroup: {
		{ID: "1", Name: "Raw Materials", Code: "GRP-RM"},
		{ID: "2", Name: "Services", Code: "GRP-SV"},
	},
	types.CategoryCurrency: {
		{ID: "1", Name: "Indian Rupee", Code: "INR"},
		{ID: "2", Name: "US Dollar", Code: "USD"},
		{ID: "3", Name: "Euro", Code: "EUR"},
	},
}

// Memory is an in-memory Store counterpart for local runs and tests. It
// serves the seed datasets and keeps created orders in a slice.
type Memory struct {
	mu     sync.Mutex
	data   map[types.Category][]types.ReferenceRecord
	orders []*dialogue.Order
}

func NewMemory() *Memory {
	return &Memory{data: seedData}
}

// Search implements resolve.Directory over the seed datasets.
func (m *Memory) Search(_ context.Context, category types.Category, query string, limit int) ([]types.ReferenceRecord, error) {
	records, ok := m.data[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []types.ReferenceRecord
	for _, r := range records {
		if q == "" || strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Code), q) {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Create implements dialogue.OrderCreator with sequential order numbers.
func (m *Memory) Create(_ context.Context, order *dialogue.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	number := fmt.Sprintf("IND-PO-%05d", len(m.orders)+1)
	stored := *order
	stored.Number = number
	m.orders = append(m.orders, &stored)
	order.Number = number
	return number, nil
}

// FindOrder returns a created order by number.
func (m *Memory) FindOrder(_ context.Context, number string) (*dialogue.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.Number == number {
			copied := *o
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("order %s not found", number)
}

// Orders returns all created orders in creation sequence.
func (m *Memory) Orders() []*dialogue.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*dialogue.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
