package catalog

// Item is an immutable menu item snapshot. Prices are minor units.
type Item struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	BasePrice       int64  `json:"basePrice"`
	DiscountedPrice *int64 `json:"discountedPrice,omitempty"`
	Available       bool   `json:"available"`
}

// EffectiveBasePrice returns the discounted price when one is set.
func (i Item) EffectiveBasePrice() int64 {
	if i.DiscountedPrice != nil {
		return *i.DiscountedPrice
	}
	return i.BasePrice
}

// Size is a portion option. Multiplier scales an item's base price unless a
// per-item override exists for the (item, size) pair.
type Size struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// Ingredient is an extra that can be added to a line.
type Ingredient struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BasePrice int64  `json:"basePrice"`
}

// ItemSizeKey addresses a per-item size price override.
type ItemSizeKey struct {
	ItemID int64
	SizeID int64
}

// IngredientSizeKey addresses a per-size ingredient price override.
type IngredientSizeKey struct {
	IngredientID int64
	SizeID       int64
}

// Snapshot is the read-only catalog slice a single quote computes against.
// It is fetched once per request and never mutated.
type Snapshot struct {
	Items                map[int64]Item
	Sizes                map[int64]Size
	ItemSizePrices       map[ItemSizeKey]int64
	Ingredients          map[int64]Ingredient
	IngredientSizePrices map[IngredientSizeKey]int64
}

// ItemSizePrice returns the override price for the (item, size) pair.
func (s *Snapshot) ItemSizePrice(itemID, sizeID int64) (int64, bool) {
	p, ok := s.ItemSizePrices[ItemSizeKey{ItemID: itemID, SizeID: sizeID}]
	return p, ok
}

// IngredientSizePrice returns the override price for the (ingredient, size) pair.
func (s *Snapshot) IngredientSizePrice(ingredientID, sizeID int64) (int64, bool) {
	p, ok := s.IngredientSizePrices[IngredientSizeKey{IngredientID: ingredientID, SizeID: sizeID}]
	return p, ok
}
