package pricing

import (
	"errors"
	"fmt"

	"github.com/pranzo/pricing-api/internal/catalog"
)

// ErrItemUnavailable marks a line referencing a product, size, or ingredient
// that is missing from the snapshot or flagged unavailable.
var ErrItemUnavailable = errors.New("item unavailable")

// ErrInvalidLine marks a line whose shape is outside the allowed bounds.
var ErrInvalidLine = errors.New("invalid cart line")

// Quantity bounds enforced per line and per extra.
const (
	MinQty       = 1
	MaxQty       = 100
	MinExtraQty  = 1
	MaxExtraQty  = 10
	MaxCartLines = 50
)

// Extra is an additional ingredient on a line, with its own quantity.
type Extra struct {
	IngredientID int64
	Quantity     int
}

// Half identifies one half of a split line.
type Half struct {
	ProductID int64
	SizeID    *int64
	Extras    []Extra
}

// Line is a single cart entry to be priced. When Split is set the line is a
// two-half item and the unit price is the blended price of both halves.
type Line struct {
	ProductID int64
	Quantity  int
	SizeID    *int64
	Extras    []Extra
	Split     *Half
}

// Calculator derives authoritative unit prices from a catalog snapshot.
// Client-submitted prices never participate.
type Calculator struct {
	Snap *catalog.Snapshot
}

// UnitPrice resolves the unit price of a line in minor units.
func (c Calculator) UnitPrice(line Line) (Money, error) {
	first, err := c.partPrice(line.ProductID, line.SizeID, line.Extras)
	if err != nil {
		return 0, err
	}
	if line.Split == nil {
		return first, nil
	}
	second, err := c.partPrice(line.Split.ProductID, line.Split.SizeID, line.Split.Extras)
	if err != nil {
		return 0, err
	}
	return BlendHalves(first, second), nil
}

// LineTotal is the unit price multiplied by the line quantity.
func (c Calculator) LineTotal(line Line) (Money, error) {
	if line.Quantity < MinQty || line.Quantity > MaxQty {
		return 0, fmt.Errorf("quantity %d out of range: %w", line.Quantity, ErrInvalidLine)
	}
	unit, err := c.UnitPrice(line)
	if err != nil {
		return 0, err
	}
	return unit * Money(line.Quantity), nil
}

// Subtotal validates and sums all line totals. Any invalid or unavailable
// line aborts the whole computation; a cart is never partially priced.
func (c Calculator) Subtotal(lines []Line) (Money, error) {
	if len(lines) == 0 {
		return 0, fmt.Errorf("cart is empty: %w", ErrInvalidLine)
	}
	if len(lines) > MaxCartLines {
		return 0, fmt.Errorf("cart exceeds %d lines: %w", MaxCartLines, ErrInvalidLine)
	}
	var subtotal Money
	for i, line := range lines {
		total, err := c.LineTotal(line)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", i, err)
		}
		subtotal += total
	}
	return subtotal, nil
}

// partPrice prices one product part: base (or discounted) price, size
// adjustment, then extras.
func (c Calculator) partPrice(productID int64, sizeID *int64, extras []Extra) (Money, error) {
	if productID <= 0 {
		return 0, fmt.Errorf("product id %d: %w", productID, ErrInvalidLine)
	}
	item, ok := c.Snap.Items[productID]
	if !ok || !item.Available {
		return 0, fmt.Errorf("product %d: %w", productID, ErrItemUnavailable)
	}
	base := Money(item.EffectiveBasePrice())

	if sizeID != nil {
		size, ok := c.Snap.Sizes[*sizeID]
		if !ok {
			return 0, fmt.Errorf("size %d: %w", *sizeID, ErrItemUnavailable)
		}
		if override, ok := c.Snap.ItemSizePrice(productID, size.ID); ok {
			// An explicit (item, size) price replaces multiplier pricing
			// outright.
			base = Money(override)
		} else {
			if size.Multiplier < 0 {
				return 0, fmt.Errorf("size %d multiplier: %w", size.ID, ErrInvalidLine)
			}
			base = RoundHalfUp(float64(base) * size.Multiplier)
		}
	}

	extrasTotal, err := c.extrasTotal(sizeID, extras)
	if err != nil {
		return 0, err
	}

	unit := base + extrasTotal
	if unit < 0 {
		unit = 0
	}
	return unit, nil
}

func (c Calculator) extrasTotal(sizeID *int64, extras []Extra) (Money, error) {
	var total Money
	for _, extra := range extras {
		if extra.Quantity < MinExtraQty || extra.Quantity > MaxExtraQty {
			return 0, fmt.Errorf("extra quantity %d out of range: %w", extra.Quantity, ErrInvalidLine)
		}
		if extra.IngredientID <= 0 {
			return 0, fmt.Errorf("ingredient id %d: %w", extra.IngredientID, ErrInvalidLine)
		}
		ing, ok := c.Snap.Ingredients[extra.IngredientID]
		if !ok {
			return 0, fmt.Errorf("ingredient %d: %w", extra.IngredientID, ErrItemUnavailable)
		}
		price := Money(ing.BasePrice)
		if sizeID != nil {
			if override, ok := c.Snap.IngredientSizePrice(ing.ID, *sizeID); ok {
				price = Money(override)
			}
		}
		total += price * Money(extra.Quantity)
	}
	return total, nil
}
