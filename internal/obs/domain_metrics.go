package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts quote computations by order type and outcome.
	QuotesTotal *prometheus.CounterVec
	// QuoteAmountMinor records final quote amounts in minor units.
	QuoteAmountMinor prometheus.Histogram
	// FeeResolvedTotal counts delivery fee resolutions by source.
	FeeResolvedTotal *prometheus.CounterVec
	// FeeDegradedTotal counts quotes priced with the default fee because the
	// organization's delivery configuration was missing.
	FeeDegradedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Count of quote computations by order type and outcome.",
		}, []string{"order_type", "result"})
		QuoteAmountMinor = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_amount_minor",
			Help:      "Final quote amounts in minor currency units.",
			Buckets:   []float64{500, 1000, 2000, 3000, 5000, 10000, 20000, 50000},
		})
		FeeResolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_fee_resolved_total",
			Help:      "Count of delivery fee resolutions by source.",
		}, []string{"source"})
		FeeDegradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_fee_degraded_total",
			Help:      "Quotes priced with the default fee because delivery configuration was missing.",
		})

		mustRegisterCollector(reg, QuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotesTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteAmountMinor, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteAmountMinor = v
			}
		})
		mustRegisterCollector(reg, FeeResolvedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FeeResolvedTotal = v
			}
		})
		mustRegisterCollector(reg, FeeDegradedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				FeeDegradedTotal = v
			}
		})
	})
}

// IncQuote records a quote outcome when metrics are registered.
func IncQuote(orderType, result string) {
	if QuotesTotal != nil {
		QuotesTotal.WithLabelValues(orderType, result).Inc()
	}
}

// ObserveQuoteAmount records a final amount when metrics are registered.
func ObserveQuoteAmount(minor int64) {
	if QuoteAmountMinor != nil {
		QuoteAmountMinor.Observe(float64(minor))
	}
}

// IncFeeSource records the fee resolution source when metrics are registered.
func IncFeeSource(source string) {
	if FeeResolvedTotal != nil {
		FeeResolvedTotal.WithLabelValues(source).Inc()
	}
}

// IncFeeDegraded records a default-fee fallback when metrics are registered.
func IncFeeDegraded() {
	if FeeDegradedTotal != nil {
		FeeDegradedTotal.Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
