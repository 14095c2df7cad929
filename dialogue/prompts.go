package dialogue

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/supplierx/poagent/types"
)

// OrderTypes is the closed set of valid order types. Input is title-cased and
// checked by exact membership, never fuzzy-matched.
var OrderTypes = []string{
	"Asset",
	"Service",
	"Regular Purchase",
	"Internal Order Material",
	"Internal Order Service",
	"Network",
	"Network Service",
	"Cost Center Material",
}

// NormalizeOrderType title-cases input and returns the canonical order type
// with ok=false when it is not a member of the closed set.
func NormalizeOrderType(input string) (string, bool) {
	normalized := titleCase(input)
	for _, t := range OrderTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Greeting is the opening message for a fresh session.
func Greeting() string {
	return "Hi! I'll help you create an Independent Purchase Order.\n\n" +
		"We'll go through:\n" +
		"1. Header (Supplier, Type, Currency)\n" +
		"2. Org Data (Plant, Purchase Org, Purchase Group)\n" +
		"3. Line Items\n\n" +
		"Say 'Create PO' to begin, or ask me a question about your data."
}

// Prompt renders the question for the current step. It is a pure function of
// state so interruptions can re-render it without any hidden history.
func Prompt(state *ConversationState) string {
	if state.selecting() {
		category := fieldCategory[state.Step]
		return fmt.Sprintf("I found multiple matches. Please choose a %s by number:\n%s",
			category.DisplayName(), types.FormatCandidateList(state.PendingOptions))
	}

	switch state.Step {
	case StepStart:
		return Greeting()
	case StepHeaderSupplier:
		return "Who is this order for? Please give me the supplier name."
	case StepHeaderType:
		return "What type of order is this?\nValid types:\n" + formatOrderTypes()
	case StepHeaderCurrency:
		return "Which currency should the order use? (e.g. INR, USD, EUR)"
	case StepOrgPlant:
		return "Which plant is this order for?"
	case StepOrgPurchaseOrg:
		return "Which purchase organization should I assign?"
	case StepOrgPurchaseGroup:
		return "Which purchase group should I assign?"
	case StepOptionalGate:
		return "Do you want to set optional fields (project, payment term, inco term)? Reply 'yes' to set them or 'skip' to continue."
	case StepOptionalProject:
		return "Project? (or 'skip')"
	case StepOptionalPayment:
		return "Payment term? (or 'skip')"
	case StepOptionalInco:
		return "Inco term? (or 'skip')"
	case StepItemMaterial:
		return fmt.Sprintf("Item %d: which material or service do you want to order?", len(state.Draft.LineItems)+1)
	case StepItemQty:
		return fmt.Sprintf("How many units of %s?", state.Draft.CurrentItem.Material.Name)
	case StepItemPrice:
		return fmt.Sprintf("Unit price for %s?", state.Draft.CurrentItem.Material.Name)
	case StepAddMore:
		return "Do you want to add another item? (yes/no)"
	case StepRemarks:
		return "Any remarks for this order? (or 'skip')"
	case StepConfirm:
		return Summary(&state.Draft) + "\n\nReply 'yes' to create this order, or anything else to cancel."
	default:
		return Greeting()
	}
}

func formatOrderTypes() string {
	var sb strings.Builder
	for _, t := range OrderTypes {
		sb.WriteString("- ")
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Summary renders the full draft for the confirmation step: every header and
// org field, every line item, and the grand total.
func Summary(draft *DraftOrder) string {
	var sb strings.Builder
	sb.WriteString("Here is your order:\n\n")
	sb.WriteString(fmt.Sprintf("Supplier: %s\n", recordName(draft.Header.Supplier)))
	sb.WriteString(fmt.Sprintf("Order Type: %s\n", draft.Header.OrderType))
	sb.WriteString(fmt.Sprintf("Currency: %s\n", draft.Header.Currency))
	sb.WriteString(fmt.Sprintf("Order Date: %s\n", draft.Header.OrderDate.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Validity Date: %s\n", draft.Header.ValidityDate.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Plant: %s\n", recordName(draft.Org.Plant)))
	sb.WriteString(fmt.Sprintf("Purchase Org: %s\n", recordName(draft.Org.PurchaseOrg)))
	sb.WriteString(fmt.Sprintf("Purchase Group: %s\n", recordName(draft.Org.PurchaseGroup)))
	if draft.Optional.Project != "" {
		sb.WriteString(fmt.Sprintf("Project: %s\n", draft.Optional.Project))
	}
	if draft.Optional.PaymentTerm != "" {
		sb.WriteString(fmt.Sprintf("Payment Term: %s\n", draft.Optional.PaymentTerm))
	}
	if draft.Optional.IncoTerm != "" {
		sb.WriteString(fmt.Sprintf("Inco Term: %s\n", draft.Optional.IncoTerm))
	}
	if draft.Remarks != "" {
		sb.WriteString(fmt.Sprintf("Remarks: %s\n", draft.Remarks))
	}

	sb.WriteString("\n")
	table := tablewriter.NewTable(&sb, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("#", "Material", "Qty", "Price", "Total")
	for i, item := range draft.LineItems {
		_ = table.Append(
			fmt.Sprintf("%d", i+1),
			item.Material.Name,
			formatNumber(item.Quantity),
			formatNumber(item.Price),
			formatNumber(item.Total),
		)
	}
	_ = table.Render()

	sb.WriteString(fmt.Sprintf("\nGrand Total: %s %s", formatNumber(draft.GrandTotal()), draft.Header.Currency))
	return sb.String()
}

func recordName(r *types.ReferenceRecord) string {
	if r == nil {
		return "-"
	}
	if r.Code != "" {
		return fmt.Sprintf("%s (%s)", r.Name, r.Code)
	}
	return r.Name
}

func formatNumber(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
