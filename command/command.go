// Package command classifies short replies the wizard acts on: affirmations,
// skips, creation requests, and cancellations. Classification is keyword
// based and deterministic; free-text that matches nothing is step input.
package command

import "strings"

// Command is a recognized reply class.
type Command string

const (
	Affirm Command = "affirm"
	Skip   Command = "skip"
	Cancel Command = "cancel"
	None   Command = "none"
)

var (
	affirmKeywords = []string{"yes", "create", "confirm", "ok", "sure", "y"}
	skipKeywords   = []string{"skip"}
	cancelKeywords = []string{"cancel", "quit", "exit", "stop", "abort", "restart"}
)

// Parse classifies input against exact keyword matches after trimming and
// lower-casing. Exact matching keeps sentences like "no supplier yet" from
// being swallowed as a skip.
func Parse(input string) Command {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, k := range cancelKeywords {
		if normalized == k {
			return Cancel
		}
	}
	for _, k := range skipKeywords {
		if normalized == k {
			return Skip
		}
	}
	for _, k := range affirmKeywords {
		if normalized == k {
			return Affirm
		}
	}
	return None
}

// IsAffirmative reports whether input contains "yes" anywhere, the loose
// check used by the add-more and confirm steps.
func IsAffirmative(input string) bool {
	return strings.Contains(strings.ToLower(input), "yes")
}

// IsCreation reports whether input asks to create an order, either as a
// confirm reply ("yes" / "create") or an opening request ("create po ...").
func IsCreation(input string) bool {
	lower := strings.ToLower(input)
	return strings.Contains(lower, "yes") || strings.Contains(lower, "create")
}

// IsSkip reports whether input is exactly a skip keyword.
func IsSkip(input string) bool {
	return Parse(input) == Skip
}
