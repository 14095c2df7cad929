package answer

import (
	"context"
	"errors"
	"testing"
)

func TestSanitizeQuery(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"SELECT name FROM plants LIMIT 10", "SELECT name FROM plants LIMIT 10"},
		{"```sql\nSELECT id, name FROM supplier_details;\n```", "SELECT id, name FROM supplier_details"},
		{"NO_QUERY", ""},
		{"DROP TABLE plants", ""},
		{"UPDATE materials SET price = 0", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeQuery(tc.raw); got != tc.want {
			t.Errorf("sanitizeQuery(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestIsSentinel(t *testing.T) {
	text, err := Static{}.Answer(context.Background(), "how many plants?")
	if err != nil {
		t.Fatalf("static answer: %v", err)
	}
	if !IsSentinel(text) {
		t.Errorf("static answer %q should be a sentinel", text)
	}
	if IsSentinel("Found 3 results") {
		t.Error("substantive answer flagged as sentinel")
	}
}

type fixedAnswerer struct {
	text string
	err  error
}

func (f fixedAnswerer) Answer(context.Context, string) (string, error) {
	return f.text, f.err
}

func TestFailback_SkipsSentinelsAndErrors(t *testing.T) {
	fb := NewFailback(
		fixedAnswerer{err: errors.New("model down")},
		fixedAnswerer{text: Sentinel + ", sorry."},
		fixedAnswerer{text: "There are 3 plants."},
	)
	got, err := fb.Answer(context.Background(), "how many plants?")
	if err != nil {
		t.Fatalf("failback: %v", err)
	}
	if got != "There are 3 plants." {
		t.Errorf("got %q, want the substantive answer", got)
	}
}
