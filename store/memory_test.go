package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/supplierx/poagent/dialogue"
	"github.com/supplierx/poagent/store"
	"github.com/supplierx/poagent/types"
)

func TestMemory_Search(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	records, err := m.Search(ctx, types.CategoryPlant, "noida", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 || records[0].Code != "PLT-NOI" {
		t.Errorf("Search(noida) = %+v, want single PLT-NOI", records)
	}

	records, err = m.Search(ctx, types.CategoryMaterial, "", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("empty query with limit 2 returned %d records", len(records))
	}

	records, err = m.Search(ctx, types.CategorySupplier, "sup-002", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "Global Metals" {
		t.Errorf("code search = %+v, want Global Metals", records)
	}

	if _, err := m.Search(ctx, types.Category("warehouse"), "x", 5); err == nil {
		t.Error("unknown category must fail")
	}
}

func TestMemory_CreateAndFind(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	order := &dialogue.Order{
		OrderDate:    time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		ValidityDate: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		OrderType:    "Regular Purchase",
		Supplier:     types.ReferenceRecord{Name: "Acme Industries"},
		Currency:     "INR",
		LineItems: []dialogue.LineItem{
			{Material: types.ReferenceRecord{Name: "MS Pipe"}, Quantity: 100, Price: 50, Total: 5000},
		},
		GrandTotal: 5000,
		Status:     dialogue.StatusCreated,
	}

	number, err := m.Create(ctx, order)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if number != "IND-PO-00001" {
		t.Errorf("number = %q, want IND-PO-00001", number)
	}
	if order.Number != number {
		t.Errorf("order.Number = %q, want %q", order.Number, number)
	}

	second, err := m.Create(ctx, &dialogue.Order{Status: dialogue.StatusCreated})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if second != "IND-PO-00002" {
		t.Errorf("second number = %q, want IND-PO-00002", second)
	}

	found, err := m.FindOrder(ctx, "IND-PO-00001")
	if err != nil {
		t.Fatalf("FindOrder() error = %v", err)
	}
	if found.GrandTotal != 5000 || len(found.LineItems) != 1 {
		t.Errorf("found order = %+v, want original totals", found)
	}

	if _, err := m.FindOrder(ctx, "IND-PO-09999"); err == nil {
		t.Error("missing order must fail")
	}
}
