package dialogue_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/supplierx/poagent/answer"
	"github.com/supplierx/poagent/dialogue"
	"github.com/supplierx/poagent/extract"
	"github.com/supplierx/poagent/resolve"
	"github.com/supplierx/poagent/types"
)

var fixtures = map[types.Category][]types.ReferenceRecord{
	types.CategorySupplier: {
		{ID: "S1", Name: "Acme Industries", Code: "SUP-1"},
		{ID: "S2", Name: "Global Metals", Code: "SUP-2"},
	},
	types.CategoryPlant: {
		{ID: "P1", Name: "Noida Plant", Code: "NOI"},
		{ID: "P2", Name: "Delhi Plant", Code: "DEL"},
		{ID: "P3", Name: "Mumbai Plant", Code: "MUM"},
	},
	types.CategoryPurchaseOrg: {
		{ID: "O1", Name: "Central Purchasing", Code: "ORG-C"},
	},
	types.CategoryPurchaseGroup: {
		{ID: "G1", Name: "Raw Materials", Code: "GRP-R"},
	},
	types.CategoryMaterial: {
		{ID: "M1", Name: "MS Pipe", Code: "MAT-1"},
		{ID: "M2", Name: "Steel Rod", Code: "MAT-2"},
		{ID: "M3", Name: "Cement", Code: "MAT-3"},
	},
}

type fixtureDirectory struct{}

func (fixtureDirectory) Search(_ context.Context, category types.Category, query string, limit int) ([]types.ReferenceRecord, error) {
	var out []types.ReferenceRecord
	for _, r := range fixtures[category] {
		if query == "" || strings.Contains(strings.ToLower(r.Name), strings.ToLower(query)) {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type captureCreator struct {
	orders   []*dialogue.Order
	failures int
}

func (c *captureCreator) Create(_ context.Context, order *dialogue.Order) (string, error) {
	if c.failures > 0 {
		c.failures--
		return "", errors.New("database unavailable")
	}
	c.orders = append(c.orders, order)
	return fmt.Sprintf("IND-PO-%05d", len(c.orders)), nil
}

type textAnswerer struct{ text string }

func (a textAnswerer) Answer(context.Context, string) (string, error) {
	return a.text, nil
}

type stubExtractor struct{ guess extract.Guess }

func (e stubExtractor) Extract(context.Context, string) (extract.Guess, error) {
	return e.guess, nil
}

var testClock = func() time.Time {
	return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
}

func newTestFlow(creator dialogue.OrderCreator, answerer answer.Answerer, extractor extract.Extractor) *dialogue.Flow {
	if answerer == nil {
		answerer = answer.Static{}
	}
	if extractor == nil {
		extractor = extract.LocalExtractor{}
	}
	return dialogue.NewFlow(resolve.New(fixtureDirectory{}), extractor, answerer, creator,
		dialogue.WithClock(testClock))
}

func run(t *testing.T, flow *dialogue.Flow, state *dialogue.ConversationState, inputs ...string) *dialogue.Response {
	t.Helper()
	var resp *dialogue.Response
	for _, in := range inputs {
		resp = flow.ProcessTurn(context.Background(), state, in)
		if resp == nil {
			t.Fatalf("ProcessTurn(%q) returned nil response", in)
		}
	}
	return resp
}

func TestFlow_EndToEnd(t *testing.T) {
	creator := &captureCreator{}
	flow := newTestFlow(creator, nil, nil)
	state := dialogue.NewConversationState()

	resp := run(t, flow, state,
		"create a po",
		"acme",
		"regular purchase",
		"usd",
		"noida",
		"central",
		"raw materials",
		"skip",
		"ms pipe",
		"100",
		"50",
		"no",
		"skip",
		"yes",
	)

	if len(creator.orders) != 1 {
		t.Fatalf("created %d orders, want 1", len(creator.orders))
	}
	order := creator.orders[0]
	if order.Supplier.Code != "SUP-1" {
		t.Errorf("supplier = %q, want SUP-1", order.Supplier.Code)
	}
	if order.OrderType != "Regular Purchase" {
		t.Errorf("order type = %q, want Regular Purchase", order.OrderType)
	}
	if order.Currency != "USD" {
		t.Errorf("currency = %q, want USD", order.Currency)
	}
	if len(order.LineItems) != 1 {
		t.Fatalf("line items = %d, want 1", len(order.LineItems))
	}
	item := order.LineItems[0]
	if item.Quantity != 100 || item.Price != 50 || item.Total != 5000 {
		t.Errorf("item = %+v, want qty 100 price 50 total 5000", item)
	}
	if order.GrandTotal != 5000 {
		t.Errorf("grand total = %v, want 5000", order.GrandTotal)
	}
	if want := testClock().Add(dialogue.ValidityPeriod); !order.ValidityDate.Equal(want) {
		t.Errorf("validity date = %v, want %v", order.ValidityDate, want)
	}
	if order.Status != dialogue.StatusCreated {
		t.Errorf("status = %q, want %q", order.Status, dialogue.StatusCreated)
	}
	if resp.OrderNumber != "IND-PO-00001" {
		t.Errorf("order number = %q, want IND-PO-00001", resp.OrderNumber)
	}
	if state.Step != dialogue.StepStart {
		t.Errorf("state not reset after creation, step = %q", state.Step)
	}
}

func TestFlow_Disambiguation(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state, "create a po", "acme", "regular purchase", "usd")

	resp := run(t, flow, state, "plant")
	if len(resp.Options) != 3 {
		t.Fatalf("options = %d, want 3", len(resp.Options))
	}
	if state.Step != dialogue.StepOrgPlant {
		t.Fatalf("step = %q, want org_plant", state.Step)
	}

	for _, bad := range []string{"0", "7", "banana"} {
		resp = run(t, flow, state, bad)
		if len(resp.Options) != 3 {
			t.Errorf("after %q pending options = %d, want 3 unchanged", bad, len(resp.Options))
		}
		if state.Draft.Org.Plant != nil {
			t.Fatalf("plant assigned by invalid selection %q", bad)
		}
	}

	run(t, flow, state, "2")
	if state.Draft.Org.Plant == nil || state.Draft.Org.Plant.Code != "DEL" {
		t.Fatalf("plant = %+v, want DEL", state.Draft.Org.Plant)
	}
	if state.Step != dialogue.StepOrgPurchaseOrg {
		t.Errorf("step = %q, want org_purch_org", state.Step)
	}
}

func TestFlow_InterruptionKeepsState(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, textAnswerer{text: "We have 3 plants."}, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state, "create a po", "acme", "regular purchase")

	before := *state
	resp := run(t, flow, state, "how many plants do we have?")

	if !strings.Contains(resp.Message, "We have 3 plants.") {
		t.Errorf("message missing answer: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "currency") {
		t.Errorf("message missing re-rendered step prompt: %q", resp.Message)
	}
	if state.Step != before.Step {
		t.Errorf("step changed from %q to %q", before.Step, state.Step)
	}
	if state.Draft.Header.Supplier == nil || state.Draft.Header.OrderType != "Regular Purchase" {
		t.Error("draft mutated by interruption")
	}
}

func TestFlow_InterruptionSentinelFallsThrough(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state, "create a po", "acme", "regular purchase", "usd")

	resp := run(t, flow, state, "which site?")
	if state.Step != dialogue.StepOrgPlant {
		t.Errorf("step = %q, want org_plant", state.Step)
	}
	if state.Draft.Org.Plant != nil {
		t.Error("fall-through input must not assign the plant")
	}
	if !strings.Contains(resp.Message, "plant") {
		t.Errorf("expected plant re-prompt, got %q", resp.Message)
	}
}

func TestFlow_CurrencyVerbatimUppercased(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state, "create a po", "acme", "regular purchase")

	run(t, flow, state, "rupees")
	if state.Draft.Header.Currency != "RUPEES" {
		t.Errorf("currency = %q, want RUPEES stored verbatim", state.Draft.Header.Currency)
	}
	if state.Step != dialogue.StepOrgPlant {
		t.Errorf("step = %q, want org_plant", state.Step)
	}
	if want := testClock().Add(dialogue.ValidityPeriod); !state.Draft.Header.ValidityDate.Equal(want) {
		t.Errorf("validity date = %v, want %v", state.Draft.Header.ValidityDate, want)
	}
}

func TestFlow_CancelResets(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state, "create a po", "acme", "regular purchase", "usd", "noida")

	run(t, flow, state, "cancel")
	if state.Step != dialogue.StepStart {
		t.Errorf("step = %q, want start", state.Step)
	}
	if state.Draft.Header.Supplier != nil || len(state.Draft.LineItems) != 0 {
		t.Error("draft survived cancel")
	}
}

func TestFlow_PersistFailureKeepsDraft(t *testing.T) {
	creator := &captureCreator{failures: 1}
	flow := newTestFlow(creator, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state,
		"create a po", "acme", "regular purchase", "usd",
		"noida", "central", "raw materials", "skip",
		"cement", "10", "5", "no", "skip")

	resp := run(t, flow, state, "yes")
	if len(creator.orders) != 0 {
		t.Fatalf("order persisted despite failure")
	}
	if state.Step != dialogue.StepConfirm {
		t.Fatalf("step = %q, want confirm preserved on failure", state.Step)
	}
	if len(state.Draft.LineItems) != 1 {
		t.Fatal("draft lost on persistence failure")
	}
	if resp.OrderNumber != "" {
		t.Errorf("order number = %q, want empty", resp.OrderNumber)
	}

	resp = run(t, flow, state, "yes")
	if len(creator.orders) != 1 {
		t.Fatal("retry did not persist the order")
	}
	if resp.OrderNumber != "IND-PO-00001" {
		t.Errorf("order number = %q, want IND-PO-00001", resp.OrderNumber)
	}
	if state.Step != dialogue.StepStart {
		t.Errorf("state not reset after successful retry")
	}
}

func TestFlow_InvalidOrderTypeReprompts(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state, "create a po", "acme")

	resp := run(t, flow, state, "mystery purchase")
	if state.Step != dialogue.StepHeaderType {
		t.Errorf("step = %q, want header_type", state.Step)
	}
	if state.Draft.Header.OrderType != "" {
		t.Errorf("order type = %q, want unset", state.Draft.Header.OrderType)
	}
	if !strings.Contains(resp.Message, "not a valid order type") {
		t.Errorf("message = %q, want invalid-type notice", resp.Message)
	}
}

func TestFlow_QuantityValidation(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state,
		"create a po", "acme", "regular purchase", "usd",
		"noida", "central", "raw materials", "skip", "cement")

	for _, bad := range []string{"abc", "-5", "0"} {
		run(t, flow, state, bad)
		if state.Step != dialogue.StepItemQty {
			t.Fatalf("after %q step = %q, want item_qty", bad, state.Step)
		}
	}

	run(t, flow, state, "2.5")
	if state.Step != dialogue.StepItemPrice {
		t.Fatalf("step = %q, want item_price", state.Step)
	}
	if state.Draft.CurrentItem.Quantity != 2.5 {
		t.Errorf("quantity = %v, want 2.5", state.Draft.CurrentItem.Quantity)
	}
}

func TestFlow_AddMoreAnyNonYesAdvances(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state,
		"create a po", "acme", "regular purchase", "usd",
		"noida", "central", "raw materials", "skip",
		"cement", "10", "5")

	run(t, flow, state, "that's all thanks")
	if state.Step != dialogue.StepRemarks {
		t.Errorf("step = %q, want remarks after a non-yes reply", state.Step)
	}
	if len(state.Draft.LineItems) != 1 {
		t.Errorf("line items = %d, want 1 unchanged", len(state.Draft.LineItems))
	}
}

func TestFlow_ZeroPriceItem(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state,
		"create a po", "acme", "regular purchase", "usd",
		"noida", "central", "raw materials", "skip",
		"cement", "10")

	run(t, flow, state, "-1")
	if state.Step != dialogue.StepItemPrice {
		t.Fatalf("step = %q, negative price must re-prompt", state.Step)
	}

	run(t, flow, state, "0")
	if state.Step != dialogue.StepAddMore {
		t.Fatalf("step = %q, want add_more_check after zero price", state.Step)
	}
	item := state.Draft.LineItems[0]
	if item.Price != 0 || item.Total != 0 {
		t.Errorf("item = %+v, want price 0 total 0", item)
	}
}

func TestFlow_RemarksStoredVerbatim(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state,
		"create a po", "acme", "regular purchase", "usd",
		"noida", "central", "raw materials", "skip",
		"cement", "10", "5", "no")

	run(t, flow, state, "no remarks needed")
	if state.Draft.Remarks != "no remarks needed" {
		t.Errorf("remarks = %q, want stored verbatim", state.Draft.Remarks)
	}
	if state.Step != dialogue.StepConfirm {
		t.Errorf("step = %q, want confirm", state.Step)
	}
}

func TestFlow_OptionalFieldsStored(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state,
		"create a po", "acme", "regular purchase", "usd",
		"noida", "central", "raw materials",
		"yes", "Project Alpha", "Net 30", "skip")

	opt := state.Draft.Optional
	if opt.Project != "Project Alpha" || opt.PaymentTerm != "Net 30" || opt.IncoTerm != "" {
		t.Errorf("optional = %+v, want project and payment set, inco empty", opt)
	}
	if state.Step != dialogue.StepItemMaterial {
		t.Errorf("step = %q, want item_material", state.Step)
	}
}

func TestFlow_PrefillLandsOnFirstUnresolved(t *testing.T) {
	extractor := stubExtractor{guess: extract.Guess{
		Intent:   extract.IntentCreateOrder,
		Supplier: "acme",
		Material: "ms pipe",
		Quantity: 100,
	}}
	creator := &captureCreator{}
	flow := newTestFlow(creator, nil, extractor)
	state := dialogue.NewConversationState()

	run(t, flow, state, "create a po for acme, 100 units of ms pipe")
	if state.Step != dialogue.StepHeaderType {
		t.Fatalf("step = %q, want header_type after supplier pre-fill", state.Step)
	}
	if state.Draft.Header.Supplier == nil || state.Draft.Header.Supplier.Code != "SUP-1" {
		t.Fatalf("supplier = %+v, want SUP-1 pre-filled", state.Draft.Header.Supplier)
	}
	if state.SeedMaterial == nil || state.SeedMaterial.Code != "MAT-1" {
		t.Fatalf("seed material = %+v, want MAT-1", state.SeedMaterial)
	}

	run(t, flow, state, "regular purchase", "usd", "noida", "central", "raw materials", "skip")
	if state.Step != dialogue.StepItemPrice {
		t.Fatalf("step = %q, want item_price with seeded material and quantity", state.Step)
	}
	if state.Draft.CurrentItem.Quantity != 100 {
		t.Fatalf("quantity = %v, want seeded 100", state.Draft.CurrentItem.Quantity)
	}

	run(t, flow, state, "50", "no", "skip", "yes")
	if len(creator.orders) != 1 {
		t.Fatal("order not created")
	}
	if got := creator.orders[0].LineItems[0].Total; got != 5000 {
		t.Errorf("item total = %v, want 5000", got)
	}
}

func TestFlow_MultipleItems(t *testing.T) {
	creator := &captureCreator{}
	flow := newTestFlow(creator, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state,
		"create a po", "acme", "regular purchase", "inr",
		"noida", "central", "raw materials", "skip",
		"ms pipe", "100", "50",
		"yes", "cement", "20", "10",
		"no", "skip", "yes")

	if len(creator.orders) != 1 {
		t.Fatalf("created %d orders, want 1", len(creator.orders))
	}
	order := creator.orders[0]
	if len(order.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2", len(order.LineItems))
	}
	if order.GrandTotal != 5200 {
		t.Errorf("grand total = %v, want 5200", order.GrandTotal)
	}
}

func TestFlow_ListShowsBrowseTable(t *testing.T) {
	flow := newTestFlow(&captureCreator{}, nil, nil)
	state := dialogue.NewConversationState()
	run(t, flow, state, "create a po", "acme", "regular purchase", "usd")

	resp := run(t, flow, state, "list")
	if state.Step != dialogue.StepOrgPlant {
		t.Fatalf("step = %q, browsing must not consume the turn", state.Step)
	}
	if state.Draft.Org.Plant != nil {
		t.Fatal("browsing must not assign the field")
	}
	if len(resp.Options) != 3 {
		t.Errorf("options = %d, want all 3 plants", len(resp.Options))
	}
	for _, name := range []string{"Noida Plant", "Delhi Plant", "Mumbai Plant"} {
		if !strings.Contains(resp.Message, name) {
			t.Errorf("message missing %q", name)
		}
	}
}

func TestNormalizeOrderType(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"regular purchase", "Regular Purchase", true},
		{"ASSET", "Asset", true},
		{"internal order material", "Internal Order Material", true},
		{"  network service  ", "Network Service", true},
		{"mystery", "", false},
		{"regular", "", false},
	}
	for _, tt := range tests {
		got, ok := dialogue.NormalizeOrderType(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeOrderType(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAssemble_Preconditions(t *testing.T) {
	draft := &dialogue.DraftOrder{}
	if _, err := dialogue.Assemble(draft); err == nil {
		t.Fatal("Assemble on empty draft must fail")
	}

	sup := types.ReferenceRecord{ID: "S1", Name: "Acme Industries"}
	plant := types.ReferenceRecord{ID: "P1", Name: "Noida Plant"}
	org := types.ReferenceRecord{ID: "O1", Name: "Central Purchasing"}
	grp := types.ReferenceRecord{ID: "G1", Name: "Raw Materials"}
	draft = &dialogue.DraftOrder{
		Header: dialogue.Header{
			OrderDate: testClock(), ValidityDate: testClock().Add(dialogue.ValidityPeriod),
			OrderType: "Asset", Supplier: &sup, Currency: "INR",
		},
		Org: dialogue.OrgData{Plant: &plant, PurchaseOrg: &org, PurchaseGroup: &grp},
	}
	if _, err := dialogue.Assemble(draft); err == nil {
		t.Fatal("Assemble without line items must fail")
	}

	draft.LineItems = []dialogue.LineItem{{Material: types.ReferenceRecord{Name: "Cement"}, Quantity: 2, Price: 3, Total: 6}}
	order, err := dialogue.Assemble(draft)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if order.GrandTotal != 6 {
		t.Errorf("grand total = %v, want 6", order.GrandTotal)
	}
	if order.Status != dialogue.StatusCreated {
		t.Errorf("status = %q, want %q", order.Status, dialogue.StatusCreated)
	}
}
