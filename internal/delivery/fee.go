// Package delivery resolves the delivery fee for a quote from the
// organization's zone set and delivery configuration.
package delivery

import (
	"github.com/pranzo/pricing-api/internal/geo"
	"github.com/pranzo/pricing-api/internal/pricing"
	"github.com/pranzo/pricing-api/internal/zone"
)

// OrderType discriminates how an order reaches the customer.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dine-in"
)

// Input carries everything fee resolution needs. Config and Zones come from
// the same immutable snapshot the quote was started with; Config is nil when
// the organization has no delivery configuration.
type Input struct {
	OrderType OrderType
	Subtotal  pricing.Money
	Dropoff   *geo.Point
	Config    *Config
	Zones     []zone.Zone
}

// Result reports the resolved fee and how it was derived, for logging and
// metrics.
type Result struct {
	Fee      pricing.Money
	Source   string
	Zone     *zone.Zone
	Degraded bool
}

// Fee sources reported in Result.Source.
const (
	SourceNone        = "none"
	SourceFree        = "free-threshold"
	SourceZone        = "zone"
	SourceFlat        = "flat"
	SourcePerDistance = "per-distance"
	SourceRadial      = "radial"
	SourceOutOfRadius = "out-of-radius"
	SourceDefault     = "default"
)

// Resolve computes the delivery fee. Missing configuration degrades to
// DefaultBaseFee instead of failing the quote.
func Resolve(in Input) Result {
	if in.OrderType != OrderTypeDelivery {
		return Result{Fee: 0, Source: SourceNone}
	}

	if in.Config == nil {
		return Result{Fee: DefaultBaseFee, Source: SourceDefault, Degraded: true}
	}
	cfg := in.Config

	if cfg.FreeDeliveryThreshold > 0 && in.Subtotal >= cfg.FreeDeliveryThreshold {
		return Result{Fee: 0, Source: SourceFree}
	}

	// Zone fixed prices take precedence over mode arithmetic; no matching
	// zone falls through rather than failing.
	if in.Dropoff != nil {
		if z := zone.Resolve(*in.Dropoff, in.Zones); z != nil && z.Fee != nil {
			return Result{Fee: pricing.Money(*z.Fee), Source: SourceZone, Zone: z}
		}
	}

	if in.Dropoff == nil {
		return Result{Fee: cfg.BaseFee, Source: SourceFlat}
	}

	switch cfg.Mode {
	case ModeRadial:
		return radialFee(cfg, *in.Dropoff)
	case ModePerDistance:
		km := geo.HaversineMeters(cfg.Origin, *in.Dropoff) / 1000
		fee := cfg.BaseFee + pricing.RoundHalfUp(km*float64(cfg.PerKmRate))
		return Result{Fee: fee, Source: SourcePerDistance}
	default:
		// flat and anything unrecognised
		return Result{Fee: cfg.BaseFee, Source: SourceFlat}
	}
}

func radialFee(cfg *Config, dropoff geo.Point) Result {
	km := geo.HaversineMeters(cfg.Origin, dropoff) / 1000
	for _, tier := range cfg.Tiers {
		if tier.MaxKm >= km {
			return Result{Fee: tier.Price, Source: SourceRadial}
		}
	}
	fee := cfg.OutOfRadiusPrice
	if fee <= 0 {
		fee = cfg.BaseFee
	}
	return Result{Fee: fee, Source: SourceOutOfRadius}
}
