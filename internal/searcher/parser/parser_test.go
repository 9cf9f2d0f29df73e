package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := []struct {
		query string
		terms []string
	}{
		{query: "", terms: []string{}},
		{query: "   ", terms: []string{}},
		{query: "dogs", terms: []string{"dogs"}},
		{query: "Cats very cute", terms: []string{"cats", "very", "cute"}},
		{query: "dog DOG dog!", terms: []string{"dog", "dog", "dog"}},
		{query: "cats AND dogs", terms: []string{"cats", "and", "dogs"}},
		{query: "?!", terms: []string{""}},
	}
	for _, tt := range cases {
		t.Run(tt.query, func(t *testing.T) {
			plan := Parse(tt.query)
			if plan.RawQuery != tt.query {
				t.Errorf("RawQuery = %q, want %q", plan.RawQuery, tt.query)
			}
			if diff := cmp.Diff(tt.terms, plan.Terms); diff != "" {
				t.Errorf("Terms mismatch (-want +got):\n%s", diff)
			}
			if plan.Empty() != (len(tt.terms) == 0) {
				t.Errorf("Empty() = %v", plan.Empty())
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	a := Parse("Cats very cute")
	b := Parse("cute  CATS very!")
	if a.Canonical() != b.Canonical() {
		t.Errorf("Canonical() differs: %q vs %q", a.Canonical(), b.Canonical())
	}
	if Parse("dog").Canonical() == Parse("dog dog").Canonical() {
		t.Error("Canonical() must keep repeated terms apart")
	}
	if diff := cmp.Diff([]string{"cats", "very", "cute"}, a.Terms); diff != "" {
		t.Errorf("Canonical() modified Terms (-want +got):\n%s", diff)
	}
}
