package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/supplierx/poagent/answer"
	"github.com/supplierx/poagent/collect"
	"github.com/supplierx/poagent/command"
	"github.com/supplierx/poagent/extract"
	"github.com/supplierx/poagent/resolve"
	"github.com/supplierx/poagent/types"
)

// Response is what one turn produces. Options carries selectable records for
// clients that render pick lists; OrderNumber is set only on the turn that
// persisted an order.
type Response struct {
	Message     string                  `json:"message"`
	Options     []types.ReferenceRecord `json:"options,omitempty"`
	OrderNumber string                  `json:"order_number,omitempty"`
}

// Flow drives the order-intake conversation. It owns no session state; the
// caller passes the session's ConversationState into every turn.
type Flow struct {
	resolver  *resolve.Resolver
	collector *collect.Collector
	extractor extract.Extractor
	answerer  answer.Answerer
	creator   OrderCreator
	logger    *slog.Logger
	now       func() time.Time
}

type FlowOption func(*Flow)

func WithLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) { f.logger = logger }
}

// WithClock overrides the time source, used by tests for stable dates.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) { f.now = now }
}

func NewFlow(resolver *resolve.Resolver, extractor extract.Extractor, answerer answer.Answerer, creator OrderCreator, opts ...FlowOption) *Flow {
	f := &Flow{
		resolver:  resolver,
		collector: collect.New(resolver),
		extractor: extractor,
		answerer:  answerer,
		creator:   creator,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProcessTurn advances the conversation by one user message and mutates state
// in place. Every failure is degraded to a conversational message; state is
// only changed when a turn actually succeeds.
func (f *Flow) ProcessTurn(ctx context.Context, state *ConversationState, input string) *Response {
	input = strings.TrimSpace(input)
	if input == "" {
		return f.reply(ctx, state, "")
	}

	if command.Parse(input) == command.Cancel && state.Step != StepStart {
		state.Reset()
		return &Response{Message: "Okay, I've discarded the draft.\n\n" + Greeting()}
	}

	if state.Step != StepStart && IsInterruption(input) {
		if resp := f.tryAnswer(ctx, state, input); resp != nil {
			return resp
		}
	}

	switch state.Step {
	case StepStart:
		return f.handleStart(ctx, state, input)
	case StepHeaderSupplier, StepOrgPlant, StepOrgPurchaseOrg, StepOrgPurchaseGroup, StepItemMaterial:
		return f.handleFieldStep(ctx, state, input)
	case StepHeaderType:
		return f.handleOrderType(ctx, state, input)
	case StepHeaderCurrency:
		return f.handleCurrency(ctx, state, input)
	case StepOptionalGate:
		return f.handleOptionalGate(ctx, state, input)
	case StepOptionalProject, StepOptionalPayment, StepOptionalInco:
		return f.handleOptionalField(ctx, state, input)
	case StepItemQty:
		return f.handleQuantity(ctx, state, input)
	case StepItemPrice:
		return f.handlePrice(ctx, state, input)
	case StepAddMore:
		return f.handleAddMore(ctx, state, input)
	case StepRemarks:
		return f.handleRemarks(ctx, state, input)
	case StepConfirm:
		return f.handleConfirm(ctx, state, input)
	default:
		f.logger.Warn("unknown step, restarting session", "step", state.Step)
		state.Reset()
		return &Response{Message: Greeting()}
	}
}

// tryAnswer handles a side-question without touching state. It returns nil
// when no substantive answer is available so the input falls through to the
// current step.
func (f *Flow) tryAnswer(ctx context.Context, state *ConversationState, input string) *Response {
	text, err := f.answerer.Answer(ctx, input)
	if err != nil {
		f.logger.Debug("question answering failed", "error", err)
		return nil
	}
	if answer.IsSentinel(text) {
		return nil
	}
	return &Response{
		Message: text + "\n\nNow, back to your order.\n" + Prompt(state),
		Options: f.suggestions(ctx, state),
	}
}

// handleStart routes the opening message: a create-intent begins a draft,
// anything else goes to question answering.
func (f *Flow) handleStart(ctx context.Context, state *ConversationState, input string) *Response {
	guess, err := f.extractor.Extract(ctx, input)
	if err != nil {
		f.logger.Debug("extraction failed", "error", err)
		guess = extract.Guess{}
	}

	if guess.Intent == extract.IntentCreateOrder || command.IsCreation(input) {
		return f.beginDraft(ctx, state, guess)
	}

	if text, err := f.answerer.Answer(ctx, input); err == nil && !answer.IsSentinel(text) {
		return &Response{Message: text}
	}
	return &Response{Message: Greeting()}
}

// beginDraft opens a new draft, pre-fills whatever the extractor already
// found, and lands on the first step that is still unresolved. Pre-filled
// entities go through the same resolver as typed ones.
func (f *Flow) beginDraft(ctx context.Context, state *ConversationState, guess extract.Guess) *Response {
	state.Draft.Header.OrderDate = f.now()
	state.Step = StepHeaderSupplier

	var notes []string
	if guess.OrderType != "" {
		if t, ok := NormalizeOrderType(guess.OrderType); ok {
			state.Draft.Header.OrderType = t
			notes = append(notes, "Order type: "+t)
		}
	}
	if guess.Plant != "" {
		if rec, ok := f.prefillRecord(ctx, guess.Plant, types.CategoryPlant); ok {
			state.Draft.Org.Plant = &rec
			notes = append(notes, "Plant: "+recordName(&rec))
		}
	}
	if guess.Material != "" {
		if rec, ok := f.prefillRecord(ctx, guess.Material, types.CategoryMaterial); ok {
			state.SeedMaterial = &rec
			notes = append(notes, "Material: "+recordName(&rec))
		}
	}
	if guess.Quantity > 0 {
		state.SeedQuantity = guess.Quantity
		notes = append(notes, "Quantity: "+formatNumber(guess.Quantity))
	}
	if guess.Supplier != "" {
		outcome, err := f.resolver.Resolve(ctx, guess.Supplier, types.CategorySupplier)
		if err == nil {
			switch outcome.Kind {
			case resolve.KindResolved:
				state.Draft.Header.Supplier = &outcome.Record
				notes = append(notes, "Supplier: "+recordName(&outcome.Record))
			case resolve.KindAmbiguous:
				state.PendingOptions = outcome.Candidates
			}
		}
	}

	if !state.selecting() {
		f.advance(state)
	}

	var ack string
	if len(notes) > 0 {
		ack = "Starting a new purchase order with:\n- " + strings.Join(notes, "\n- ")
	} else {
		ack = "Starting a new purchase order."
	}
	return f.reply(ctx, state, ack)
}

// prefillRecord resolves an extracted fragment but only accepts an
// unambiguous hit; anything else is simply asked at the field's own step.
func (f *Flow) prefillRecord(ctx context.Context, query string, category types.Category) (types.ReferenceRecord, bool) {
	outcome, err := f.resolver.Resolve(ctx, query, category)
	if err != nil || outcome.Kind != resolve.KindResolved {
		return types.ReferenceRecord{}, false
	}
	return outcome.Record, true
}

// handleFieldStep collects one resolver-backed field, including the
// index-selection sub-state while options are pending.
func (f *Flow) handleFieldStep(ctx context.Context, state *ConversationState, input string) *Response {
	category := fieldCategory[state.Step]
	if !state.selecting() && listKeywords[strings.ToLower(input)] {
		return f.browse(ctx, state, category)
	}
	res := f.collector.Collect(ctx, input, category, state.PendingOptions)
	switch res.Status {
	case collect.StatusAmbiguous:
		state.PendingOptions = res.Candidates
		return &Response{Message: res.Prompt, Options: res.Candidates}
	case collect.StatusRejected:
		return &Response{Message: res.Prompt + "\n\n" + Prompt(state), Options: state.PendingOptions}
	}

	state.PendingOptions = nil
	ack := fmt.Sprintf("%s: %s", category.DisplayName(), recordName(&res.Record))
	f.storeRecord(state, res.Record)
	return f.reply(ctx, state, ack)
}

var listKeywords = map[string]bool{
	"list": true, "options": true, "show options": true,
}

// browse shows the category's default records without consuming the turn.
func (f *Flow) browse(ctx context.Context, state *ConversationState, category types.Category) *Response {
	records, err := f.resolver.Browse(ctx, category)
	if err != nil || len(records) == 0 {
		if err != nil {
			f.logger.Debug("browse failed", "category", category, "error", err)
		}
		return &Response{Message: Prompt(state)}
	}
	return &Response{
		Message: types.FormatRecordTable(category, records) + "\n" + Prompt(state),
		Options: records,
	}
}

// storeRecord assigns a resolved record to the field the current step owns
// and moves the step pointer forward.
func (f *Flow) storeRecord(state *ConversationState, record types.ReferenceRecord) {
	rec := record
	from := state.Step
	defer func() {
		f.logger.Debug("field resolved", "step", from, "record", rec.Name, "next", state.Step)
	}()
	switch state.Step {
	case StepHeaderSupplier:
		state.Draft.Header.Supplier = &rec
		f.advance(state)
	case StepOrgPlant:
		state.Draft.Org.Plant = &rec
		f.advance(state)
	case StepOrgPurchaseOrg:
		state.Draft.Org.PurchaseOrg = &rec
		f.advance(state)
	case StepOrgPurchaseGroup:
		state.Draft.Org.PurchaseGroup = &rec
		f.advance(state)
	case StepItemMaterial:
		state.Draft.CurrentItem = &LineItem{Material: rec}
		state.Step = StepItemQty
	}
}

// advance moves to the first header or org field that is still unset, or to
// the optional-fields gate when all of them are filled. Only valid during the
// header and org phase.
func (f *Flow) advance(state *ConversationState) {
	d := &state.Draft
	switch {
	case d.Header.Supplier == nil:
		state.Step = StepHeaderSupplier
	case d.Header.OrderType == "":
		state.Step = StepHeaderType
	case d.Header.Currency == "":
		state.Step = StepHeaderCurrency
	case d.Org.Plant == nil:
		state.Step = StepOrgPlant
	case d.Org.PurchaseOrg == nil:
		state.Step = StepOrgPurchaseOrg
	case d.Org.PurchaseGroup == nil:
		state.Step = StepOrgPurchaseGroup
	default:
		state.Step = StepOptionalGate
	}
}

// enterItems starts the next line item, consuming any seed material and
// quantity left over from the opening extraction.
func (f *Flow) enterItems(state *ConversationState) {
	state.Step = StepItemMaterial
	if state.SeedMaterial == nil {
		return
	}
	state.Draft.CurrentItem = &LineItem{Material: *state.SeedMaterial}
	state.SeedMaterial = nil
	if state.SeedQuantity > 0 {
		state.Draft.CurrentItem.Quantity = state.SeedQuantity
		state.SeedQuantity = 0
		state.Step = StepItemPrice
	} else {
		state.Step = StepItemQty
	}
}

func (f *Flow) handleOrderType(ctx context.Context, state *ConversationState, input string) *Response {
	t, ok := NormalizeOrderType(input)
	if !ok {
		return &Response{
			Message: fmt.Sprintf("%q is not a valid order type.\n\n%s", strings.TrimSpace(input), Prompt(state)),
			Options: f.suggestions(ctx, state),
		}
	}
	state.Draft.Header.OrderType = t
	f.advance(state)
	return f.reply(ctx, state, "Order type: "+t)
}

// handleCurrency accepts the input verbatim, upper-cased; the currency table
// is advisory only.
func (f *Flow) handleCurrency(ctx context.Context, state *ConversationState, input string) *Response {
	cur := strings.ToUpper(strings.TrimSpace(input))
	state.Draft.Header.Currency = cur
	state.Draft.Header.ValidityDate = state.Draft.Header.OrderDate.Add(ValidityPeriod)
	f.advance(state)
	return f.reply(ctx, state, "Currency: "+cur)
}

func (f *Flow) handleOptionalGate(ctx context.Context, state *ConversationState, input string) *Response {
	switch {
	case command.IsSkip(input):
		f.enterItems(state)
		return f.reply(ctx, state, "Skipping optional fields.")
	case command.IsAffirmative(input):
		state.Step = StepOptionalProject
		return f.reply(ctx, state, "")
	default:
		return &Response{Message: "Please reply 'yes' or 'skip'.\n\n" + Prompt(state)}
	}
}

// handleOptionalField stores the value verbatim; only an exact "skip" leaves
// it empty.
func (f *Flow) handleOptionalField(ctx context.Context, state *ConversationState, input string) *Response {
	value := strings.TrimSpace(input)
	if command.IsSkip(value) {
		value = ""
	}
	switch state.Step {
	case StepOptionalProject:
		state.Draft.Optional.Project = value
		state.Step = StepOptionalPayment
	case StepOptionalPayment:
		state.Draft.Optional.PaymentTerm = value
		state.Step = StepOptionalInco
	case StepOptionalInco:
		state.Draft.Optional.IncoTerm = value
		f.enterItems(state)
	}
	return f.reply(ctx, state, "")
}

func (f *Flow) handleQuantity(ctx context.Context, state *ConversationState, input string) *Response {
	qty, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || qty <= 0 {
		return &Response{Message: "Please enter a positive number.\n\n" + Prompt(state)}
	}
	state.Draft.CurrentItem.Quantity = qty
	state.Step = StepItemPrice
	return f.reply(ctx, state, "")
}

func (f *Flow) handlePrice(ctx context.Context, state *ConversationState, input string) *Response {
	price, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || price < 0 {
		return &Response{Message: "Please enter a non-negative number.\n\n" + Prompt(state)}
	}
	item := state.Draft.CurrentItem
	ack := fmt.Sprintf("Added %s x %s at %s = %s %s.",
		item.Material.Name, formatNumber(item.Quantity), formatNumber(price),
		formatNumber(item.Quantity*price), state.Draft.Header.Currency)
	state.Draft.CloseCurrentItem(price)
	state.Step = StepAddMore
	return f.reply(ctx, state, ack)
}

// handleAddMore loops back for another item on a "yes"; any other reply
// moves on to remarks.
func (f *Flow) handleAddMore(ctx context.Context, state *ConversationState, input string) *Response {
	if command.IsAffirmative(input) {
		f.enterItems(state)
		return f.reply(ctx, state, "")
	}
	state.Step = StepRemarks
	return f.reply(ctx, state, "")
}

func (f *Flow) handleRemarks(ctx context.Context, state *ConversationState, input string) *Response {
	if !command.IsSkip(input) {
		state.Draft.Remarks = strings.TrimSpace(input)
	}
	state.Step = StepConfirm
	return f.reply(ctx, state, "")
}

// handleConfirm persists the order on an affirmative reply. A persistence
// failure keeps the draft and the confirm step intact so the user can retry;
// any non-affirmative reply discards the draft.
func (f *Flow) handleConfirm(ctx context.Context, state *ConversationState, input string) *Response {
	if !command.IsCreation(input) {
		state.Reset()
		return &Response{Message: "Order discarded.\n\n" + Greeting()}
	}

	order, err := Assemble(&state.Draft)
	if err != nil {
		f.logger.Error("draft failed assembly at confirmation", "error", err)
		state.Reset()
		return &Response{Message: "Something went wrong with this draft, so I've discarded it.\n\n" + Greeting()}
	}

	number, err := f.creator.Create(ctx, order)
	if err != nil {
		f.logger.Error("order persistence failed", "error", err)
		return &Response{Message: "I couldn't save the order just now. Your draft is intact; reply 'yes' to try again or 'cancel' to discard it."}
	}

	total, currency := order.GrandTotal, order.Currency
	state.Reset()
	return &Response{
		Message: fmt.Sprintf("Done! Purchase order %s has been created.\nGrand total: %s %s.\n\n%s",
			number, formatNumber(total), currency, Greeting()),
		OrderNumber: number,
	}
}

// reply renders the current step's prompt, optionally prefixed by an
// acknowledgement of what the last turn accomplished.
func (f *Flow) reply(ctx context.Context, state *ConversationState, ack string) *Response {
	msg := Prompt(state)
	if ack != "" {
		msg = ack + "\n\n" + msg
	}
	return &Response{Message: msg, Options: f.suggestions(ctx, state)}
}

// suggestions returns the records a client can offer for the current step:
// the pending disambiguation options, or a browse list for resolver-backed
// steps.
func (f *Flow) suggestions(ctx context.Context, state *ConversationState) []types.ReferenceRecord {
	if state.selecting() {
		return state.PendingOptions
	}
	if state.Step == StepHeaderType {
		out := make([]types.ReferenceRecord, len(OrderTypes))
		for i, t := range OrderTypes {
			out[i] = types.ReferenceRecord{ID: t, Name: t}
		}
		return out
	}
	category, ok := fieldCategory[state.Step]
	if !ok {
		return nil
	}
	records, err := f.resolver.Browse(ctx, category)
	if err != nil {
		f.logger.Debug("browse failed", "category", category, "error", err)
		return nil
	}
	return records
}
