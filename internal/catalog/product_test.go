package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParsePrice(t *testing.T) {
	for _, input := range []string{"0", "-5", "abc", "", "  "} {
		if _, err := ParsePrice(input); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("ParsePrice(%q) = %v, expected ErrInvalidPrice", input, err)
		}
	}

	dot, err := ParsePrice("49.99")
	if err != nil {
		t.Fatalf("ParsePrice(49.99): %v", err)
	}
	comma, err := ParsePrice("49,99")
	if err != nil {
		t.Fatalf("ParsePrice(49,99): %v", err)
	}
	if !dot.Equal(comma) {
		t.Fatalf("comma and dot separators differ: %s vs %s", dot, comma)
	}
	if !dot.Equal(decimal.RequireFromString("49.99")) {
		t.Fatalf("parsed price = %s", dot)
	}

	whole, err := ParsePrice("50")
	if err != nil {
		t.Fatalf("ParsePrice(50): %v", err)
	}
	if !whole.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("parsed price = %s", whole)
	}
}

func TestValidLink(t *testing.T) {
	for link, want := range map[string]bool{
		"http://a":    true,
		"https://a":   true,
		" https://a ": true,
		"ftp://x":     false,
		"no-scheme":   false,
		"":            false,
	} {
		if got := ValidLink(link); got != want {
			t.Fatalf("ValidLink(%q) = %v, expected %v", link, got, want)
		}
	}
}

func TestNextID(t *testing.T) {
	if got := NextID(nil); got != "1" {
		t.Fatalf("NextID(empty) = %q", got)
	}

	products := map[string]Product{
		"1": {Name: "a"},
		"3": {Name: "b"},
	}
	if got := NextID(products); got != "4" {
		t.Fatalf("NextID with gap = %q, ids must never be reused", got)
	}

	malformed := map[string]Product{"abc": {Name: "x"}}
	if got := NextID(malformed); got != "1" {
		t.Fatalf("NextID(malformed) = %q", got)
	}
}
