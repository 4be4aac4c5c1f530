package quote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranzo/pricing-api/internal/delivery"
	"github.com/pranzo/pricing-api/internal/tenant"
)

func testHandler(settings *delivery.Settings) *Handler {
	svc, _ := testService(testSnapshot(), settings)
	return &Handler{Svc: svc, NewID: func() string { return "q-test" }}
}

func doQuote(t *testing.T, h *Handler, orgID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body))
	if orgID != "" {
		req = req.WithContext(tenant.With(req.Context(), orgID))
	}
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreateQuote(t *testing.T) {
	h := testHandler(&delivery.Settings{
		Config: &delivery.Config{Mode: delivery.ModeFlat, BaseFee: 250},
	})

	rec := doQuote(t, h, "org-1", `{
		"orderType": "delivery",
		"currency": "EUR",
		"lines": [{"productId": 1, "quantity": 2}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Data struct {
			QuoteID         string  `json:"quoteId"`
			Subtotal        float64 `json:"subtotal"`
			DeliveryFee     float64 `json:"deliveryFee"`
			Total           float64 `json:"total"`
			MinorUnitAmount int64   `json:"minorUnitAmount"`
			Currency        string  `json:"currency"`
			FeeSource       string  `json:"feeSource"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "q-test", resp.Data.QuoteID)
	assert.InDelta(t, 14.0, resp.Data.Subtotal, 1e-9)
	assert.InDelta(t, 2.5, resp.Data.DeliveryFee, 1e-9)
	assert.InDelta(t, 16.5, resp.Data.Total, 1e-9)
	assert.Equal(t, int64(1650), resp.Data.MinorUnitAmount)
	assert.Equal(t, "EUR", resp.Data.Currency)
	assert.Equal(t, delivery.SourceFlat, resp.Data.FeeSource)
}

func TestCreateQuoteRequiresOrg(t *testing.T) {
	h := testHandler(&delivery.Settings{})

	rec := doQuote(t, h, "", `{"orderType":"pickup","currency":"EUR","lines":[{"productId":1,"quantity":1}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORG_REQUIRED")
}

func TestCreateQuoteMalformedBody(t *testing.T) {
	h := testHandler(&delivery.Settings{})

	rec := doQuote(t, h, "org-1", `{"orderType":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestCreateQuoteValidationErrorEnvelope(t *testing.T) {
	h := testHandler(&delivery.Settings{})

	rec := doQuote(t, h, "org-1", `{"orderType":"delivery","currency":"EUR","lines":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}

func TestCreateQuoteUnavailableItem(t *testing.T) {
	h := testHandler(&delivery.Settings{})

	rec := doQuote(t, h, "org-1", `{"orderType":"pickup","currency":"EUR","lines":[{"productId":4,"quantity":1}]}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ITEM_UNAVAILABLE")
	// Internal ids stay server-side.
	assert.NotContains(t, rec.Body.String(), `"4"`)
}

func TestCreateQuoteBelowMinimum(t *testing.T) {
	h := testHandler(&delivery.Settings{
		Config:        &delivery.Config{Mode: delivery.ModeFlat, BaseFee: 250},
		MinOrderTotal: 5000,
	})

	rec := doQuote(t, h, "org-1", `{"orderType":"delivery","currency":"EUR","lines":[{"productId":1,"quantity":1}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BELOW_MINIMUM_ORDER", resp.Error.Code)
	assert.Equal(t, "50.00", resp.Error.Details["minimum"])
}

func TestCreateQuoteFreshIDPerRequest(t *testing.T) {
	svc, _ := testService(testSnapshot(), &delivery.Settings{})
	h := &Handler{Svc: svc}

	body := `{"orderType":"pickup","currency":"EUR","lines":[{"productId":1,"quantity":1}]}`
	first := doQuote(t, h, "org-1", body)
	second := doQuote(t, h, "org-1", body)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b struct {
		Data struct {
			QuoteID string `json:"quoteId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.NotEmpty(t, a.Data.QuoteID)
	assert.NotEqual(t, a.Data.QuoteID, b.Data.QuoteID)
}
