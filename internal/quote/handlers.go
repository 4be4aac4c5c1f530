package quote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pranzo/pricing-api/internal/common"
	"github.com/pranzo/pricing-api/internal/obs"
	"github.com/pranzo/pricing-api/internal/tenant"
)

// Handler exposes the quote endpoint.
type Handler struct {
	Svc *Service
	// NewID mints quote identifiers; overridable in tests.
	NewID func() string
}

// Create computes a quote for the organization in scope.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return
	}
	orgID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeOrgRequired, "organization scope is required", nil)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid request body", nil)
		return
	}

	breakdown, err := h.Svc.Quote(r.Context(), orgID, req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	obs.IncQuote(req.OrderType, "ok")
	obs.ObserveQuoteAmount(breakdown.MinorUnitAmount)
	obs.IncFeeSource(breakdown.FeeSource)

	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"quoteId":         h.newID(),
			"subtotal":        breakdown.Subtotal,
			"deliveryFee":     breakdown.DeliveryFee,
			"total":           breakdown.Total,
			"minorUnitAmount": breakdown.MinorUnitAmount,
			"currency":        breakdown.Currency,
			"feeSource":       breakdown.FeeSource,
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, req Request, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		obs.IncQuote(req.OrderType, appErr.Code)
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	obs.IncQuote(req.OrderType, common.CodeInternal)
	common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal error", nil)
}

func (h *Handler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}
