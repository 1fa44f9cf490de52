// Package catalog owns the durable set of Product records and the rules for
// creating well-formed ones: price parsing, link validation and id assignment.
package catalog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The catalog document stores prices as plain JSON numbers; keep that
	// representation so files written by earlier versions stay readable.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	// ErrNotFound indicates the requested product id is absent from the catalog.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrInvalidPrice indicates a price that is not a strictly positive decimal.
	ErrInvalidPrice = errors.New("catalog: invalid price")
	// ErrInvalidLink indicates a deliverable or preview link with a bad scheme.
	ErrInvalidLink = errors.New("catalog: invalid link")
)

// Product is a single store item. JSON keys match the legacy catalog document.
type Product struct {
	Name        string          `json:"nome" db:"name"`
	Description string          `json:"descricao" db:"description"`
	Price       decimal.Decimal `json:"preco" db:"price"`
	PhotoRef    string          `json:"foto_id" db:"photo_ref"`
	Link        string          `json:"link" db:"link"`
	Preview     string          `json:"previa" db:"preview"`
}

// ParsePrice parses a user-entered price. A comma is accepted as the decimal
// separator. The result must be strictly positive.
func ParsePrice(input string) (decimal.Decimal, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	if !price.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	return price, nil
}

// ValidLink reports whether link carries an http or https scheme.
func ValidLink(link string) bool {
	link = strings.TrimSpace(link)
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}

// NextID assigns the id for a new product: max(existing ids) + 1. An empty
// catalog, or one with ids that do not parse as integers, starts over at "1".
func NextID(products map[string]Product) string {
	maxID := 0
	for id := range products {
		n, err := strconv.Atoi(id)
		if err != nil {
			return "1"
		}
		if n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}
