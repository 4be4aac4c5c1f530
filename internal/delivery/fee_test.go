package delivery_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pranzo/pricing-api/internal/delivery"
	"github.com/pranzo/pricing-api/internal/geo"
	"github.com/pranzo/pricing-api/internal/zone"
)

var origin = geo.Point{Lat: 44.4949, Lng: 11.3426}

// pointAtKm returns a coordinate roughly the given distance north of origin.
func pointAtKm(km float64) *geo.Point {
	p := geo.Point{Lat: origin.Lat + km/111.19492664, Lng: origin.Lng}
	return &p
}

func baseConfig(mode delivery.Mode) *delivery.Config {
	return &delivery.Config{
		Mode:                  mode,
		BaseFee:               250,
		PerKmRate:             100,
		FreeDeliveryThreshold: 3000,
		OutOfRadiusPrice:      800,
		Origin:                origin,
		Tiers: []delivery.Tier{
			{MaxKm: 3, Price: 200},
			{MaxKm: 5, Price: 500},
		},
	}
}

func TestNonDeliveryOrdersAreFree(t *testing.T) {
	for _, ot := range []delivery.OrderType{delivery.OrderTypePickup, delivery.OrderTypeDineIn} {
		res := delivery.Resolve(delivery.Input{OrderType: ot, Subtotal: 100, Config: baseConfig(delivery.ModeFlat)})
		require.Equal(t, int64(0), res.Fee)
		require.Equal(t, delivery.SourceNone, res.Source)
	}
}

func TestFreeDeliveryThreshold(t *testing.T) {
	cfg := baseConfig(delivery.ModeFlat)

	res := delivery.Resolve(delivery.Input{OrderType: delivery.OrderTypeDelivery, Subtotal: 3000, Config: cfg})
	require.Equal(t, int64(0), res.Fee, "subtotal exactly at threshold is free")
	require.Equal(t, delivery.SourceFree, res.Source)

	res = delivery.Resolve(delivery.Input{OrderType: delivery.OrderTypeDelivery, Subtotal: 2999, Config: cfg})
	require.Equal(t, cfg.BaseFee, res.Fee, "one cent below threshold pays")
}

func TestMissingConfigDegradesToDefault(t *testing.T) {
	res := delivery.Resolve(delivery.Input{OrderType: delivery.OrderTypeDelivery, Subtotal: 100})
	require.Equal(t, delivery.DefaultBaseFee, res.Fee)
	require.True(t, res.Degraded)
	require.Equal(t, delivery.SourceDefault, res.Source)
}

func TestNoCoordinateUsesBaseFee(t *testing.T) {
	cfg := baseConfig(delivery.ModeRadial)
	res := delivery.Resolve(delivery.Input{OrderType: delivery.OrderTypeDelivery, Subtotal: 100, Config: cfg})
	require.Equal(t, cfg.BaseFee, res.Fee)
	require.Equal(t, delivery.SourceFlat, res.Source)
}

func TestRadialTiers(t *testing.T) {
	cfg := baseConfig(delivery.ModeRadial)
	cases := []struct {
		km   float64
		want int64
		src  string
	}{
		{2.9, 200, delivery.SourceRadial},
		{4.9, 500, delivery.SourceRadial},
		{6.1, 800, delivery.SourceOutOfRadius},
	}
	for _, tc := range cases {
		res := delivery.Resolve(delivery.Input{
			OrderType: delivery.OrderTypeDelivery,
			Subtotal:  100,
			Dropoff:   pointAtKm(tc.km),
			Config:    cfg,
		})
		require.Equal(t, tc.want, res.Fee, "distance %.1f km", tc.km)
		require.Equal(t, tc.src, res.Source)
	}
}

func TestRadialOutOfRadiusFallsBackToBaseFee(t *testing.T) {
	cfg := baseConfig(delivery.ModeRadial)
	cfg.OutOfRadiusPrice = 0
	res := delivery.Resolve(delivery.Input{
		OrderType: delivery.OrderTypeDelivery,
		Subtotal:  100,
		Dropoff:   pointAtKm(10),
		Config:    cfg,
	})
	require.Equal(t, cfg.BaseFee, res.Fee)
}

func TestPerDistance(t *testing.T) {
	cfg := baseConfig(delivery.ModePerDistance)
	res := delivery.Resolve(delivery.Input{
		OrderType: delivery.OrderTypeDelivery,
		Subtotal:  100,
		Dropoff:   pointAtKm(4),
		Config:    cfg,
	})
	// base 250 + ~4 km * 100/km, rounded half-up to the cent
	require.InDelta(t, 650, res.Fee, 2)
	require.Equal(t, delivery.SourcePerDistance, res.Source)
}

func TestUnknownModeChargesBaseFee(t *testing.T) {
	cfg := baseConfig(delivery.Mode("carrier-pigeon"))
	res := delivery.Resolve(delivery.Input{
		OrderType: delivery.OrderTypeDelivery,
		Subtotal:  100,
		Dropoff:   pointAtKm(2),
		Config:    cfg,
	})
	require.Equal(t, cfg.BaseFee, res.Fee)
	require.Equal(t, delivery.SourceFlat, res.Source)
}

func TestZoneFixedFeeWins(t *testing.T) {
	cfg := baseConfig(delivery.ModeRadial)
	dropoff := pointAtKm(2)
	fee := int64(450)
	zones := []zone.Zone{
		{ID: 1, Priority: 1, Active: true, Fee: &fee, Polygon: geo.Polygon{
			{Lat: dropoff.Lat - 0.05, Lng: dropoff.Lng - 0.05},
			{Lat: dropoff.Lat - 0.05, Lng: dropoff.Lng + 0.05},
			{Lat: dropoff.Lat + 0.05, Lng: dropoff.Lng + 0.05},
			{Lat: dropoff.Lat + 0.05, Lng: dropoff.Lng - 0.05},
		}},
	}
	res := delivery.Resolve(delivery.Input{
		OrderType: delivery.OrderTypeDelivery,
		Subtotal:  100,
		Dropoff:   dropoff,
		Config:    cfg,
		Zones:     zones,
	})
	require.Equal(t, fee, res.Fee)
	require.Equal(t, delivery.SourceZone, res.Source)
	require.NotNil(t, res.Zone)

	// A zone without its own fee falls through to mode arithmetic.
	zones[0].Fee = nil
	res = delivery.Resolve(delivery.Input{
		OrderType: delivery.OrderTypeDelivery,
		Subtotal:  100,
		Dropoff:   dropoff,
		Config:    cfg,
		Zones:     zones,
	})
	require.Equal(t, int64(200), res.Fee, "tier 1 price expected")
	require.Equal(t, delivery.SourceRadial, res.Source)
}

func TestFreeThresholdBeatsZoneFee(t *testing.T) {
	cfg := baseConfig(delivery.ModeFlat)
	dropoff := pointAtKm(1)
	fee := int64(450)
	zones := []zone.Zone{{ID: 1, Active: true, Fee: &fee, Polygon: geo.Polygon{
		{Lat: dropoff.Lat - 0.05, Lng: dropoff.Lng - 0.05},
		{Lat: dropoff.Lat - 0.05, Lng: dropoff.Lng + 0.05},
		{Lat: dropoff.Lat + 0.05, Lng: dropoff.Lng + 0.05},
		{Lat: dropoff.Lat + 0.05, Lng: dropoff.Lng - 0.05},
	}}}
	res := delivery.Resolve(delivery.Input{
		OrderType: delivery.OrderTypeDelivery,
		Subtotal:  cfg.FreeDeliveryThreshold,
		Dropoff:   dropoff,
		Config:    cfg,
		Zones:     zones,
	})
	require.Equal(t, int64(0), res.Fee)
	require.Equal(t, delivery.SourceFree, res.Source)
}

func TestConfigValidate(t *testing.T) {
	cfg := baseConfig(delivery.ModeRadial)
	cfg.Tiers = []delivery.Tier{{MaxKm: 5, Price: 500}, {MaxKm: 3, Price: 200}}
	require.NoError(t, cfg.Validate())
	require.Equal(t, 3.0, cfg.Tiers[0].MaxKm, "tiers must be sorted ascending")

	cfg.Tiers = []delivery.Tier{{MaxKm: 0, Price: 100}}
	require.Error(t, cfg.Validate())

	cfg = baseConfig(delivery.ModeFlat)
	cfg.BaseFee = -1
	require.Error(t, cfg.Validate())
}
