package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Law2x/yeloSpot/config"
	"github.com/Law2x/yeloSpot/lalamove"
	"github.com/Law2x/yeloSpot/metrics"
	"github.com/Law2x/yeloSpot/protocol"
	"github.com/Law2x/yeloSpot/relay"
	"github.com/Law2x/yeloSpot/store"
)

type LogFunc func(format string, args ...any)

// Backend is the logistics provider. lalamove.Client talks to the real API
// and lalamove.Offline synthesizes responses.
type Backend interface {
	Name() string
	Quote(ctx context.Context, req *lalamove.QuotationRequest) (*lalamove.Quotation, error)
	GetQuotation(ctx context.Context, quotationID string) (*lalamove.Quotation, error)
	PlaceOrder(ctx context.Context, req *lalamove.OrderRequest) (*lalamove.Order, error)
	GetOrder(ctx context.Context, orderID string) (*lalamove.Order, error)
	GetDriver(ctx context.Context, orderID, driverID string) (*lalamove.Driver, error)
	Ping(ctx context.Context) error
}

// Publisher receives envelopes mirrored to an external broker.
type Publisher interface {
	PublishEnvelope(topic string, env *protocol.Envelope) error
}

type Config struct {
	AppConfig *config.Config
	Store     *store.Store
	Registry  *relay.Registry
	Backend   Backend
	Mirror    Publisher // optional
	Metrics   *metrics.Metrics
	LogFunc   LogFunc
}

type Engine struct {
	cfg      *config.Config
	store    *store.Store
	registry *relay.Registry
	backend  Backend
	mirror   Publisher
	metrics  *metrics.Metrics
	Events   *EventBus
	logFn    LogFunc

	stopOnce          sync.Once
	stopChan          chan struct{}
	healthInterval    time.Duration
	providerConnected atomic.Bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	registry := c.Registry
	if registry == nil {
		registry = relay.NewRegistry(relay.LogFunc(logFn))
	}
	return &Engine{
		cfg:            c.AppConfig,
		store:          c.Store,
		registry:       registry,
		backend:        c.Backend,
		mirror:         c.Mirror,
		metrics:        c.Metrics,
		Events:         NewEventBus(),
		logFn:          logFn,
		stopChan:       make(chan struct{}),
		healthInterval: 30 * time.Second,
	}
}

// Start wires event handlers and, outside mock mode, begins watching
// provider reachability.
func (e *Engine) Start() {
	e.wireEventHandlers()
	e.metrics.TrackRelay(e.registry.SubscriberCount, e.registry.Len)

	if !e.cfg.MockMode {
		e.checkConnectionStatus()
		go e.connectionHealthLoop()
	}
	e.logFn("engine: started (%s, mock=%v)", e.backend.Name(), e.cfg.MockMode)
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	e.logFn("engine: stopped")
}

func (e *Engine) Store() *store.Store       { return e.store }
func (e *Engine) Registry() *relay.Registry { return e.registry }
func (e *Engine) AppConfig() *config.Config { return e.cfg }
func (e *Engine) Metrics() *metrics.Metrics { return e.metrics }
func (e *Engine) ProviderConnected() bool   { return e.providerConnected.Load() }
func (e *Engine) MockMode() bool            { return e.cfg.MockMode }

func (e *Engine) checkConnectionStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Provider.Timeout)
	defer cancel()
	if err := e.backend.Ping(ctx); err == nil {
		if e.providerConnected.CompareAndSwap(false, true) {
			e.Events.Emit(Event{Type: EventProviderConnected, Payload: ConnectionEvent{Detail: e.backend.Name() + " connected"}})
		}
	} else if e.providerConnected.CompareAndSwap(true, false) {
		e.Events.Emit(Event{Type: EventProviderDisconnected, Payload: ConnectionEvent{Detail: err.Error()}})
	} else {
		e.logFn("engine: provider unreachable: %v", err)
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(e.healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}

// Subscribe attaches sink to the order's channel. The sink receives a
// connected event before anything else.
func (e *Engine) Subscribe(orderID string, sink relay.Sink) *relay.Subscription {
	sub := e.registry.Subscribe(orderID, sink)
	e.metrics.RelayEvent(relay.TypeConnected)
	return sub
}

func (e *Engine) publish(orderID string, evt relay.Event) {
	n := e.registry.Publish(orderID, evt)
	e.metrics.RelayEvent(evt.Type)
	if n > 0 {
		e.logFn("engine: order %s: %s event to %d subscriber(s)", orderID, evt.Type, n)
	}
}
