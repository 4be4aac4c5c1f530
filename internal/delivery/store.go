package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/pranzo/pricing-api/internal/cache"
	"github.com/pranzo/pricing-api/internal/pricing"
	"github.com/pranzo/pricing-api/internal/zone"
)

// ErrLookupFailed wraps collaborator failures while loading delivery settings.
var ErrLookupFailed = errors.New("delivery settings lookup failed")

// Settings is the per-organization zone and fee snapshot a quote computes
// against. Config is nil when the organization never configured delivery.
type Settings struct {
	Zones         []zone.Zone   `json:"zones"`
	Config        *Config       `json:"config,omitempty"`
	MinOrderTotal pricing.Money `json:"minOrderTotal"`
}

// Store reads delivery zones, fee configuration, and order policy from
// Postgres, optionally through a short-lived Redis snapshot cache. Catalog
// prices are never cached; zones and fee config change rarely and may be.
type Store struct {
	Pool   *pgxpool.Pool
	Cache  *cache.Cache
	Logger zerolog.Logger
}

// NewStore constructs a delivery settings store.
func NewStore(pool *pgxpool.Pool, c *cache.Cache, logger zerolog.Logger) *Store {
	return &Store{Pool: pool, Cache: c, Logger: logger}
}

// Load returns the delivery settings snapshot for the organization.
func (s *Store) Load(ctx context.Context, orgID string) (*Settings, error) {
	if s == nil || s.Pool == nil {
		return nil, fmt.Errorf("delivery store not configured: %w", ErrLookupFailed)
	}

	key := cache.KeyDeliverySettings(orgID)
	var cached Settings
	if found, err := s.Cache.GetJSON(ctx, key, &cached); err != nil {
		s.Logger.Warn().Err(err).Str("org_id", orgID).Msg("delivery settings cache read failed")
	} else if found {
		return &cached, nil
	}

	settings, err := s.LoadFresh(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, key, settings); err != nil {
		s.Logger.Warn().Err(err).Str("org_id", orgID).Msg("delivery settings cache write failed")
	}
	return settings, nil
}

// LoadFresh bypasses the cache and reads settings straight from Postgres.
// The cache warm-up worker uses it to re-prime expiring entries.
func (s *Store) LoadFresh(ctx context.Context, orgID string) (*Settings, error) {
	settings := &Settings{}

	zones, err := s.loadZones(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("zones: %v: %w", err, ErrLookupFailed)
	}
	settings.Zones = zones

	cfg, err := s.loadConfig(ctx, orgID)
	if err != nil {
		if !errors.Is(err, ErrConfigMissing) {
			return nil, fmt.Errorf("config: %v: %w", err, ErrLookupFailed)
		}
		// Missing config is not fatal; fee resolution degrades to the
		// default base fee.
	} else {
		settings.Config = cfg
	}

	minOrder, err := s.loadMinOrder(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("business rules: %v: %w", err, ErrLookupFailed)
	}
	settings.MinOrderTotal = minOrder

	return settings, nil
}

func (s *Store) loadZones(ctx context.Context, orgID string) ([]zone.Zone, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, polygon, priority, active, delivery_fee
		FROM delivery_zones
		WHERE organization_id = $1 AND active`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []zone.Zone
	for rows.Next() {
		var z zone.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Polygon, &z.Priority, &z.Active, &z.Fee); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (s *Store) loadConfig(ctx context.Context, orgID string) (*Config, error) {
	var cfg Config
	err := s.Pool.QueryRow(ctx, `
		SELECT mode, base_fee, per_km_rate, free_delivery_threshold,
		       tiers, out_of_radius_price, origin_lat, origin_lng
		FROM delivery_configuration
		WHERE organization_id = $1`, orgID).Scan(
		&cfg.Mode, &cfg.BaseFee, &cfg.PerKmRate, &cfg.FreeDeliveryThreshold,
		&cfg.Tiers, &cfg.OutOfRadiusPrice, &cfg.Origin.Lat, &cfg.Origin.Lng,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigMissing
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) loadMinOrder(ctx context.Context, orgID string) (pricing.Money, error) {
	var minOrder pricing.Money
	err := s.Pool.QueryRow(ctx, `
		SELECT min_order_total
		FROM business_rules
		WHERE organization_id = $1`, orgID).Scan(&minOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return minOrder, nil
}
