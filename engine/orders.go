package engine

import (
	"context"
	"fmt"

	"github.com/Law2x/yeloSpot/lalamove"
	"github.com/Law2x/yeloSpot/store"
)

const (
	defaultServiceType = "MOTORCYCLE"
	defaultLanguage    = "en_PH"
	defaultSenderName  = "Yelo Spot"
	defaultPhone       = "+639000000000"
	defaultRecipient   = "Customer"
)

// Quote asks the provider for a two-stop quotation.
func (e *Engine) Quote(ctx context.Context, req *QuoteRequest) (*lalamove.Quotation, error) {
	if req == nil || !req.Pickup.valid() || !req.Dropoff.valid() {
		return nil, fmt.Errorf("%w: pickup and dropoff coordinates are required", ErrBadRequest)
	}
	q := &lalamove.QuotationRequest{
		ServiceType: req.ServiceType,
		Language:    req.Language,
		Stops: []lalamove.Stop{
			stopOf(req.Pickup, "Pickup"),
			stopOf(req.Dropoff, "Dropoff"),
		},
		Item: req.Item,
	}
	if q.ServiceType == "" {
		q.ServiceType = defaultServiceType
	}
	if q.Language == "" {
		q.Language = defaultLanguage
	}
	if q.Item == nil {
		q.Item = lalamove.DefaultItem()
	}
	return e.backend.Quote(ctx, q)
}

func stopOf(p *Place, fallback string) lalamove.Stop {
	addr := p.Address
	if addr == "" {
		addr = fallback
	}
	return lalamove.Stop{
		Coordinates: lalamove.Coordinates{Lat: string(p.Lat), Lng: string(p.Lng)},
		Address:     addr,
	}
}

// PlaceOrder books a quotation and records the order. Nothing is recorded
// when the request is rejected.
func (e *Engine) PlaceOrder(ctx context.Context, req *OrderRequest) (*lalamove.Order, error) {
	if req == nil || req.QuotationID == "" {
		return nil, fmt.Errorf("%w: quotationId required", ErrBadRequest)
	}
	sender := partyOr(req.Sender)
	recipient := partyOr(req.Recipient)

	if sender.StopID == "" || recipient.StopID == "" {
		q, err := e.backend.GetQuotation(ctx, req.QuotationID)
		if err != nil {
			e.logFn("engine: quotation %s lookup for stop ids: %v", req.QuotationID, err)
		} else {
			if sender.StopID == "" {
				sender.StopID = q.StopID(0)
			}
			if recipient.StopID == "" {
				recipient.StopID = q.StopID(1)
			}
		}
	}

	pod := true
	if req.IsPODEnabled != nil {
		pod = *req.IsPODEnabled
	}
	meta := req.Metadata
	if meta == nil {
		meta = map[string]string{"brand": defaultSenderName}
	}

	order, err := e.backend.PlaceOrder(ctx, &lalamove.OrderRequest{
		QuotationID: req.QuotationID,
		Sender: lalamove.Contact{
			StopID: sender.StopID,
			Name:   orDefault(sender.Name, defaultSenderName),
			Phone:  orDefault(sender.Phone, defaultPhone),
		},
		Recipients: []lalamove.Contact{{
			StopID:  recipient.StopID,
			Name:    orDefault(recipient.Name, defaultRecipient),
			Phone:   orDefault(recipient.Phone, defaultPhone),
			Remarks: recipient.Remarks,
		}},
		IsPODEnabled: pod,
		Metadata:     meta,
	})
	if err != nil {
		return nil, err
	}
	if order.OrderID == "" {
		e.logFn("engine: provider accepted quotation %s without an order id", req.QuotationID)
		return order, nil
	}
	if order.QuotationID == "" {
		order.QuotationID = req.QuotationID
	}
	if order.Status == "" {
		order.Status = store.StatusAssigningDriver
	}

	rec, err := e.store.Merge(ctx, order.OrderID, store.Patch{
		QuotationID: order.QuotationID,
		Status:      order.Status,
		DriverID:    order.DriverID,
		ShareLink:   order.ShareLink,
		Mock:        e.cfg.MockMode,
	})
	if err != nil {
		return nil, fmt.Errorf("record order %s: %w", order.OrderID, err)
	}
	e.registry.ChannelFor(order.OrderID)

	e.Events.Emit(Event{Type: EventOrderPlaced, Payload: OrderPlacedEvent{
		OrderID:     order.OrderID,
		QuotationID: rec.QuotationID,
		Status:      rec.Status,
		ShareLink:   rec.ShareLink,
		Mock:        rec.Mock,
	}})
	return order, nil
}

func partyOr(p *Party) Party {
	if p == nil {
		return Party{}
	}
	return *p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// GetOrder returns the stored order. Outside mock mode the record is
// refreshed from the provider first.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	if e.cfg.MockMode {
		rec, ok := e.store.Get(orderID)
		if !ok {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return viewOf(orderID, rec), nil
	}

	o, err := e.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	prev, _ := e.store.Get(orderID)
	rec, err := e.store.Merge(ctx, orderID, store.Patch{
		QuotationID: o.QuotationID,
		Status:      o.Status,
		DriverID:    o.DriverID,
		ShareLink:   o.ShareLink,
	})
	if err != nil {
		return nil, fmt.Errorf("record order %s: %w", orderID, err)
	}
	if rec.Status != prev.Status {
		e.Events.Emit(Event{Type: EventOrderSynced, Payload: OrderSyncedEvent{
			OrderID:   orderID,
			OldStatus: prev.Status,
			NewStatus: rec.Status,
			DriverID:  rec.DriverID,
		}})
	}
	return viewOf(orderID, rec), nil
}

// Track fetches the current driver position for an order.
func (e *Engine) Track(ctx context.Context, orderID string) (*Tracking, error) {
	rec, known := e.store.Get(orderID)
	if e.cfg.MockMode {
		if !known {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		drv, err := e.backend.GetDriver(ctx, orderID, orDefault(rec.DriverID, lalamove.MockDriverID))
		if err != nil {
			return nil, err
		}
		return &Tracking{Driver: drv}, nil
	}

	driverID := rec.DriverID
	if driverID == "" {
		o, err := e.backend.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if o.DriverID == "" {
			return &Tracking{Status: orDefault(o.Status, store.StatusAssigningDriver)}, nil
		}
		driverID = o.DriverID
		if _, err := e.store.Merge(ctx, orderID, store.Patch{DriverID: driverID}); err != nil {
			e.logFn("engine: order %s: record driver %s: %v", orderID, driverID, err)
		}
	}

	drv, err := e.backend.GetDriver(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}
	return &Tracking{Driver: drv}, nil
}

// Orders lists every stored order.
func (e *Engine) Orders() []store.Entry {
	return e.store.List()
}
