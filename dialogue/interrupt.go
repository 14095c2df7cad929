package dialogue

import "strings"

// interrogatives are the opening words that mark a side-question rather than
// pipeline input.
var interrogatives = map[string]bool{
	"how":   true,
	"what":  true,
	"show":  true,
	"list":  true,
	"give":  true,
	"count": true,
	"tell":  true,
	"where": true,
	"which": true,
}

// IsInterruption reports whether input is a side-question: it starts with an
// interrogative/listing word or contains a question mark. Evaluated on every
// turn except the start step, where questions are routed by intent instead.
func IsInterruption(input string) bool {
	if strings.Contains(input, "?") {
		return true
	}
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return false
	}
	return interrogatives[fields[0]]
}
