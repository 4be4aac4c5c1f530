package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLookupFailed wraps any collaborator failure while building a snapshot.
// Callers surface it generically and log the underlying cause server-side.
var ErrLookupFailed = errors.New("catalog lookup failed")

// Keys lists the entity ids a quote references. The store issues one batch
// query per entity kind.
type Keys struct {
	ItemIDs       []int64
	SizeIDs       []int64
	IngredientIDs []int64
}

// Store reads catalog data from Postgres. All queries are scoped to one
// organization; there is no cross-organization fallback.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore constructs a catalog store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Snapshot fetches an immutable catalog slice for the given organization and
// key set. Prices are read fresh on every call; they are never cached.
func (s *Store) Snapshot(ctx context.Context, orgID string, keys Keys) (*Snapshot, error) {
	if s == nil || s.Pool == nil {
		return nil, fmt.Errorf("catalog store not configured: %w", ErrLookupFailed)
	}

	snap := &Snapshot{
		Items:                make(map[int64]Item, len(keys.ItemIDs)),
		Sizes:                make(map[int64]Size, len(keys.SizeIDs)),
		ItemSizePrices:       make(map[ItemSizeKey]int64),
		Ingredients:          make(map[int64]Ingredient, len(keys.IngredientIDs)),
		IngredientSizePrices: make(map[IngredientSizeKey]int64),
	}

	if err := s.loadItems(ctx, orgID, keys.ItemIDs, snap); err != nil {
		return nil, wrapLookup("menu items", err)
	}
	if err := s.loadSizes(ctx, orgID, keys.SizeIDs, snap); err != nil {
		return nil, wrapLookup("sizes", err)
	}
	if err := s.loadItemSizePrices(ctx, orgID, keys.ItemIDs, keys.SizeIDs, snap); err != nil {
		return nil, wrapLookup("item size prices", err)
	}
	if err := s.loadIngredients(ctx, orgID, keys.IngredientIDs, snap); err != nil {
		return nil, wrapLookup("ingredients", err)
	}
	if err := s.loadIngredientSizePrices(ctx, orgID, keys.IngredientIDs, keys.SizeIDs, snap); err != nil {
		return nil, wrapLookup("ingredient size prices", err)
	}
	return snap, nil
}

func (s *Store) loadItems(ctx context.Context, orgID string, ids []int64, snap *Snapshot) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, price, discounted_price, available
		FROM menu_items
		WHERE organization_id = $1 AND id = ANY($2)`, orgID, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.BasePrice, &it.DiscountedPrice, &it.Available); err != nil {
			return err
		}
		snap.Items[it.ID] = it
	}
	return rows.Err()
}

func (s *Store) loadSizes(ctx context.Context, orgID string, ids []int64, snap *Snapshot) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, multiplier
		FROM sizes_master
		WHERE organization_id = $1 AND id = ANY($2)`, orgID, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var sz Size
		if err := rows.Scan(&sz.ID, &sz.Name, &sz.Multiplier); err != nil {
			return err
		}
		snap.Sizes[sz.ID] = sz
	}
	return rows.Err()
}

func (s *Store) loadItemSizePrices(ctx context.Context, orgID string, itemIDs, sizeIDs []int64, snap *Snapshot) error {
	if len(itemIDs) == 0 || len(sizeIDs) == 0 {
		return nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT menu_item_id, size_id, price
		FROM menu_item_sizes
		WHERE organization_id = $1 AND menu_item_id = ANY($2) AND size_id = ANY($3)`,
		orgID, itemIDs, sizeIDs)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key ItemSizeKey
		var price int64
		if err := rows.Scan(&key.ItemID, &key.SizeID, &price); err != nil {
			return err
		}
		snap.ItemSizePrices[key] = price
	}
	return rows.Err()
}

func (s *Store) loadIngredients(ctx context.Context, orgID string, ids []int64, snap *Snapshot) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, price
		FROM ingredients
		WHERE organization_id = $1 AND id = ANY($2)`, orgID, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.BasePrice); err != nil {
			return err
		}
		snap.Ingredients[ing.ID] = ing
	}
	return rows.Err()
}

func (s *Store) loadIngredientSizePrices(ctx context.Context, orgID string, ingredientIDs, sizeIDs []int64, snap *Snapshot) error {
	if len(ingredientIDs) == 0 || len(sizeIDs) == 0 {
		return nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT ingredient_id, size_id, price
		FROM ingredient_size_prices
		WHERE organization_id = $1 AND ingredient_id = ANY($2) AND size_id = ANY($3)`,
		orgID, ingredientIDs, sizeIDs)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key IngredientSizeKey
		var price int64
		if err := rows.Scan(&key.IngredientID, &key.SizeID, &price); err != nil {
			return err
		}
		snap.IngredientSizePrices[key] = price
	}
	return rows.Err()
}

func wrapLookup(what string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %s (%s): %w", what, pgErr.Message, pgErr.Code, ErrLookupFailed)
	}
	return fmt.Errorf("%s: %v: %w", what, err, ErrLookupFailed)
}
