package delivery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pranzo/pricing-api/internal/geo"
	"github.com/pranzo/pricing-api/internal/pricing"
)

// Mode selects how a delivery fee is computed when no zone fixed fee applies.
type Mode string

const (
	// ModeFlat charges the base fee regardless of distance.
	ModeFlat Mode = "flat"
	// ModePerDistance charges base fee plus a per-kilometre rate.
	ModePerDistance Mode = "per-distance"
	// ModeRadial charges by ascending distance tiers around the origin.
	ModeRadial Mode = "radial"
)

// DefaultBaseFee is charged when an organization has no delivery
// configuration at all. Fee resolution degrades gracefully; item pricing
// never does.
const DefaultBaseFee pricing.Money = 300

// ErrConfigMissing signals that no delivery configuration exists for the
// organization. Callers fall back to DefaultBaseFee.
var ErrConfigMissing = errors.New("delivery configuration missing")

// Tier is one radial pricing step: the fee for distances up to MaxKm.
type Tier struct {
	MaxKm float64       `json:"maxKm"`
	Price pricing.Money `json:"price"`
}

// Config is an organization's delivery fee configuration, loaded as an
// immutable snapshot per request and validated once at load time.
type Config struct {
	Mode                  Mode          `json:"mode"`
	BaseFee               pricing.Money `json:"baseFee"`
	PerKmRate             pricing.Money `json:"perKmRate"`
	FreeDeliveryThreshold pricing.Money `json:"freeDeliveryThreshold"`
	Tiers                 []Tier        `json:"tiers,omitempty"`
	OutOfRadiusPrice      pricing.Money `json:"outOfRadiusPrice"`
	Origin                geo.Point     `json:"origin"`
}

// Validate checks mode-specific requirements and normalises tier order.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeFlat, ModePerDistance, ModeRadial:
	default:
		// Unrecognised modes degrade to the base fee at resolution time, so
		// they are not rejected here; everything else must still be sane.
	}
	if c.BaseFee < 0 || c.PerKmRate < 0 || c.FreeDeliveryThreshold < 0 || c.OutOfRadiusPrice < 0 {
		return errors.New("delivery config: negative amounts are not allowed")
	}
	for _, tier := range c.Tiers {
		if tier.MaxKm <= 0 {
			return fmt.Errorf("delivery config: tier maxKm %v must be positive", tier.MaxKm)
		}
		if tier.Price < 0 {
			return errors.New("delivery config: negative tier price")
		}
	}
	sort.Slice(c.Tiers, func(i, j int) bool { return c.Tiers[i].MaxKm < c.Tiers[j].MaxKm })
	return nil
}
