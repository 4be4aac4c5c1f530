package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pranzo/pricing-api/internal/catalog"
	"github.com/pranzo/pricing-api/internal/common"
	"github.com/pranzo/pricing-api/internal/delivery"
	"github.com/pranzo/pricing-api/internal/geo"
	"github.com/pranzo/pricing-api/internal/obs"
	"github.com/pranzo/pricing-api/internal/pricing"
)

// CatalogSource fetches the immutable catalog slice a quote computes against.
type CatalogSource interface {
	Snapshot(ctx context.Context, orgID string, keys catalog.Keys) (*catalog.Snapshot, error)
}

// SettingsSource fetches zones, fee configuration, and order policy.
type SettingsSource interface {
	Load(ctx context.Context, orgID string) (*delivery.Settings, error)
}

// Extra is one extra ingredient on a request line.
type Extra struct {
	IngredientID int64 `json:"ingredientId" validate:"required,gt=0"`
	Quantity     int   `json:"quantity" validate:"required,min=1,max=10"`
}

// Split describes the second half of a two-half line.
type Split struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	SizeID    *int64  `json:"sizeId,omitempty" validate:"omitempty,gt=0"`
	Extras    []Extra `json:"extras" validate:"max=20,dive"`
}

// Line is one cart entry as submitted by the client. Any price fields a
// client might send are ignored by construction: they are not even modelled.
type Line struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=100"`
	SizeID    *int64  `json:"sizeId,omitempty" validate:"omitempty,gt=0"`
	Extras    []Extra `json:"extras" validate:"max=20,dive"`
	Split     *Split  `json:"split,omitempty"`
}

// Request is the quote payload.
type Request struct {
	OrderType string     `json:"orderType" validate:"required,oneof=delivery pickup dine-in"`
	Currency  string     `json:"currency" validate:"required,len=3,alpha"`
	Dropoff   *geo.Point `json:"dropoff,omitempty"`
	Lines     []Line     `json:"lines" validate:"required,min=1,max=50,dive"`
}

// Amount renders minor units as a two-decimal major-unit JSON number.
type Amount pricing.Money

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(pricing.FormatMajor(pricing.Money(a))), nil
}

// Breakdown is the authoritative price of an order. Identical inputs always
// produce identical breakdowns; nothing here is random or time-dependent.
type Breakdown struct {
	Subtotal        Amount `json:"subtotal"`
	DeliveryFee     Amount `json:"deliveryFee"`
	Total           Amount `json:"total"`
	MinorUnitAmount int64  `json:"minorUnitAmount"`
	Currency        string `json:"currency"`
	FeeSource       string `json:"feeSource"`
}

// Service assembles order totals. It is the only component enforcing the
// minimum-order policy.
type Service struct {
	Catalog  CatalogSource
	Settings SettingsSource
	Validate *validator.Validate
	Logger   zerolog.Logger
}

// Quote recomputes the order price from catalog data and resolves the
// delivery fee. Client-submitted amounts never participate.
func (s *Service) Quote(ctx context.Context, orgID string, req Request) (Breakdown, error) {
	if s == nil || s.Catalog == nil || s.Settings == nil {
		return Breakdown{}, common.NewAppError(common.CodeInternal, "quote service not configured", http.StatusInternalServerError, nil)
	}
	if strings.TrimSpace(orgID) == "" {
		return Breakdown{}, common.NewAppError(common.CodeOrgRequired, "organization scope is required", http.StatusBadRequest, nil)
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(req); err != nil {
			return Breakdown{}, common.NewAppError(common.CodeValidation, validationMessage(err), http.StatusBadRequest, err)
		}
	}

	snap, err := s.Catalog.Snapshot(ctx, orgID, collectKeys(req.Lines))
	if err != nil {
		s.Logger.Error().Err(err).Str("org_id", orgID).Msg("catalog snapshot failed")
		return Breakdown{}, common.NewAppError(common.CodeInternal, "failed to load catalog", http.StatusInternalServerError, err)
	}

	calc := pricing.Calculator{Snap: snap}
	subtotal, err := calc.Subtotal(toPricingLines(req.Lines))
	if err != nil {
		return Breakdown{}, mapPricingError(err)
	}

	settings, err := s.Settings.Load(ctx, orgID)
	if err != nil {
		s.Logger.Error().Err(err).Str("org_id", orgID).Msg("delivery settings lookup failed")
		return Breakdown{}, common.NewAppError(common.CodeInternal, "failed to load delivery settings", http.StatusInternalServerError, err)
	}

	feeRes := delivery.Resolve(delivery.Input{
		OrderType: delivery.OrderType(req.OrderType),
		Subtotal:  subtotal,
		Dropoff:   req.Dropoff,
		Config:    settings.Config,
		Zones:     settings.Zones,
	})
	if feeRes.Degraded {
		obs.IncFeeDegraded()
		s.Logger.Warn().Str("org_id", orgID).Msg("delivery configuration missing, using default base fee")
	}

	total := subtotal + feeRes.Fee
	if settings.MinOrderTotal > 0 && total < settings.MinOrderTotal {
		return Breakdown{}, &common.AppError{
			Code:       common.CodeBelowMinimumOrder,
			Message:    "order total is below the minimum order amount",
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"minimum": pricing.FormatMajor(settings.MinOrderTotal)},
		}
	}

	return Breakdown{
		Subtotal:        Amount(subtotal),
		DeliveryFee:     Amount(feeRes.Fee),
		Total:           Amount(total),
		MinorUnitAmount: total,
		Currency:        strings.ToUpper(req.Currency),
		FeeSource:       feeRes.Source,
	}, nil
}

func collectKeys(lines []Line) catalog.Keys {
	var keys catalog.Keys
	itemSeen := map[int64]struct{}{}
	sizeSeen := map[int64]struct{}{}
	ingSeen := map[int64]struct{}{}

	addItem := func(id int64) {
		if _, ok := itemSeen[id]; !ok {
			itemSeen[id] = struct{}{}
			keys.ItemIDs = append(keys.ItemIDs, id)
		}
	}
	addSize := func(id *int64) {
		if id == nil {
			return
		}
		if _, ok := sizeSeen[*id]; !ok {
			sizeSeen[*id] = struct{}{}
			keys.SizeIDs = append(keys.SizeIDs, *id)
		}
	}
	addExtras := func(extras []Extra) {
		for _, e := range extras {
			if _, ok := ingSeen[e.IngredientID]; !ok {
				ingSeen[e.IngredientID] = struct{}{}
				keys.IngredientIDs = append(keys.IngredientIDs, e.IngredientID)
			}
		}
	}

	for _, line := range lines {
		addItem(line.ProductID)
		addSize(line.SizeID)
		addExtras(line.Extras)
		if line.Split != nil {
			addItem(line.Split.ProductID)
			addSize(line.Split.SizeID)
			addExtras(line.Split.Extras)
		}
	}
	return keys
}

func toPricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		pl := pricing.Line{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			SizeID:    l.SizeID,
			Extras:    toPricingExtras(l.Extras),
		}
		if l.Split != nil {
			pl.Split = &pricing.Half{
				ProductID: l.Split.ProductID,
				SizeID:    l.Split.SizeID,
				Extras:    toPricingExtras(l.Split.Extras),
			}
		}
		out = append(out, pl)
	}
	return out
}

func toPricingExtras(extras []Extra) []pricing.Extra {
	if len(extras) == 0 {
		return nil
	}
	out := make([]pricing.Extra, 0, len(extras))
	for _, e := range extras {
		out = append(out, pricing.Extra{IngredientID: e.IngredientID, Quantity: e.Quantity})
	}
	return out
}

func mapPricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrItemUnavailable):
		// Generic message on purpose: internal ids are logged, not leaked.
		return common.NewAppError(common.CodeItemUnavailable, "an item in the cart is no longer available", http.StatusConflict, err)
	case errors.Is(err, pricing.ErrInvalidLine):
		return common.NewAppError(common.CodeValidation, "cart failed validation", http.StatusBadRequest, err)
	default:
		return common.NewAppError(common.CodeInternal, "failed to price cart", http.StatusInternalServerError, err)
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag())
	}
	return "request failed validation"
}
