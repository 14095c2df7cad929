package types

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// FormatCandidateList renders candidates as a numbered list. Selection
// replies are interpreted as 1-based indexes into this order.
func FormatCandidateList(candidates []ReferenceRecord) string {
	var sb strings.Builder
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, c.Name))
		if c.Code != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", c.Code))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatRecordTable renders candidates as a markdown table, used when the
// presentation layer wants a richer browse list.
func FormatRecordTable(category Category, candidates []ReferenceRecord) string {
	if len(candidates) == 0 {
		return "No " + category.DisplayName() + " records found."
	}
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("#", "Name", "Code")
	for i, c := range candidates {
		_ = table.Append(fmt.Sprintf("%d", i+1), c.Name, c.Code)
	}
	_ = table.Render()
	return buf.String()
}

// FormatResultTable renders ad-hoc query results (ordered column names plus
// row values) as a markdown table.
func FormatResultTable(columns []string, rows [][]string) string {
	if len(rows) == 0 {
		return "No results found."
	}
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Found %d results:\n\n", len(rows)))
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	headers := make([]any, len(columns))
	for i, c := range columns {
		headers[i] = c
	}
	table.Header(headers...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		_ = table.Append(cells...)
	}
	_ = table.Render()
	return buf.String()
}
