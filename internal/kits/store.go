package kits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aragel-soft/chulada-pos-sub001/internal/catalog"
)

// ErrNotFound indicates no kit definition exists for the lookup.
var ErrNotFound = errors.New("kit not found")

// Store loads kit definitions from Postgres with a read-through cache; the
// register re-reads definitions on every trigger scan.
type Store struct {
	Pool  *pgxpool.Pool
	Cache *catalog.Cache
}

// ByTrigger returns the kit definition unlocked by the given product, if any.
func (s *Store) ByTrigger(ctx context.Context, productID uuid.UUID) (Definition, error) {
	key := "kits:trigger:" + productID.String()
	var cached Definition
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	var def Definition
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, trigger_product_id, max_per_trigger
		 FROM kits WHERE trigger_product_id = $1`, productID).
		Scan(&def.ID, &def.Name, &def.TriggerProductID, &def.MaxPerTrigger)
	if errors.Is(err, pgx.ErrNoRows) {
		return Definition{}, ErrNotFound
	}
	if err != nil {
		return Definition{}, fmt.Errorf("load kit: %w", err)
	}
	if def.Items, err = s.items(ctx, def.ID); err != nil {
		return Definition{}, err
	}
	_ = s.Cache.SetJSON(ctx, key, def)
	return def, nil
}

// ByID loads one kit definition.
func (s *Store) ByID(ctx context.Context, id uuid.UUID) (Definition, error) {
	key := "kits:id:" + id.String()
	var cached Definition
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	var def Definition
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, trigger_product_id, max_per_trigger FROM kits WHERE id = $1`, id).
		Scan(&def.ID, &def.Name, &def.TriggerProductID, &def.MaxPerTrigger)
	if errors.Is(err, pgx.ErrNoRows) {
		return Definition{}, ErrNotFound
	}
	if err != nil {
		return Definition{}, fmt.Errorf("load kit: %w", err)
	}
	if def.Items, err = s.items(ctx, def.ID); err != nil {
		return Definition{}, err
	}
	_ = s.Cache.SetJSON(ctx, key, def)
	return def, nil
}

// List returns every kit definition.
func (s *Store) List(ctx context.Context) ([]Definition, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, name, trigger_product_id, max_per_trigger FROM kits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list kits: %w", err)
	}
	defer rows.Close()
	var defs []Definition
	for rows.Next() {
		var def Definition
		if err := rows.Scan(&def.ID, &def.Name, &def.TriggerProductID, &def.MaxPerTrigger); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range defs {
		if defs[i].Items, err = s.items(ctx, defs[i].ID); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// ForTriggers resolves the definitions for the products a ticket holds,
// skipping products that trigger nothing.
func (s *Store) ForTriggers(ctx context.Context, productIDs []uuid.UUID) ([]Definition, error) {
	seen := make(map[uuid.UUID]struct{}, len(productIDs))
	var defs []Definition
	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		def, err := s.ByTrigger(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *Store) items(ctx context.Context, kitID uuid.UUID) ([]GiftItem, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT ki.product_id, p.code, p.name, p.retail_price
		 FROM kit_items ki JOIN products p ON p.id = ki.product_id
		 WHERE ki.kit_id = $1
		 ORDER BY p.name`, kitID)
	if err != nil {
		return nil, fmt.Errorf("load kit items: %w", err)
	}
	defer rows.Close()
	var items []GiftItem
	for rows.Next() {
		var it GiftItem
		if err := rows.Scan(&it.ProductID, &it.Code, &it.Name, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
