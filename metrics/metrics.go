package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes for DriverFetch.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Webhook event types the provider documents. Anything else is counted
// under "other" so callers cannot grow the label set.
var webhookTypes = map[string]bool{
	"ORDER_STATUS_CHANGED":   true,
	"DRIVER_ASSIGNED":        true,
	"ORDER_AMOUNT_CHANGED":   true,
	"ORDER_REPLACED":         true,
	"ORDER_EDITED":           true,
	"WALLET_BALANCE_CHANGED": true,
}

func webhookLabel(eventType string) string {
	switch {
	case eventType == "":
		return "unknown"
	case webhookTypes[eventType]:
		return eventType
	default:
		return "other"
	}
}

// Metrics holds the relay's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	webhooks        *prometheus.CounterVec
	webhookRejected prometheus.Counter
	relayEvents     *prometheus.CounterVec
	driverFetch     *prometheus.CounterVec
	ordersPlaced    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yelospot_webhooks_total",
			Help: "Provider webhooks received, by event type.",
		}, []string{"event_type"}),
		webhookRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yelospot_webhook_rejected_total",
			Help: "Webhooks refused because the signature did not verify.",
		}),
		relayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yelospot_relay_events_total",
			Help: "Events published to order channels, by type.",
		}, []string{"type"}),
		driverFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yelospot_driver_fetch_total",
			Help: "Driver location pulls following a webhook, by outcome.",
		}, []string{"outcome"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yelospot_orders_placed_total",
			Help: "Orders accepted by the provider.",
		}),
	}
	m.reg.MustRegister(
		m.webhooks,
		m.webhookRejected,
		m.relayEvents,
		m.driverFetch,
		m.ordersPlaced,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// TrackRelay registers gauges sampled from the channel registry at scrape time.
func (m *Metrics) TrackRelay(subscribers, channels func() int) {
	if m == nil {
		return
	}
	m.reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "yelospot_relay_subscribers",
			Help: "Live event-stream subscribers across all orders.",
		}, func() float64 { return float64(subscribers()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "yelospot_relay_channels",
			Help: "Order channels known to the registry.",
		}, func() float64 { return float64(channels()) }),
	)
}

func (m *Metrics) WebhookReceived(eventType string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(webhookLabel(eventType)).Inc()
}

func (m *Metrics) WebhookRejected() {
	if m == nil {
		return
	}
	m.webhookRejected.Inc()
}

func (m *Metrics) RelayEvent(eventType string) {
	if m == nil {
		return
	}
	m.relayEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) DriverFetch(outcome string) {
	if m == nil {
		return
	}
	m.driverFetch.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
