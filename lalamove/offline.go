package lalamove

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	MockDriverID  = "D-MOCK"
	MockStatus    = "ON_GOING"
	MockShareBase = "https://share.lalamock.com/"
)

var (
	mockFrom = [2]float64{14.5896, 120.9811}
	mockTo   = [2]float64{14.5547, 121.0244}
)

// Offline synthesizes provider responses locally. It never performs I/O.
type Offline struct {
	now func() time.Time

	mu     sync.Mutex
	lastID int64
}

func NewOffline() *Offline {
	return &Offline{now: time.Now}
}

// NewOfflineAt is NewOffline with a fixed clock source, for tests.
func NewOfflineAt(now func() time.Time) *Offline {
	return &Offline{now: now}
}

func (o *Offline) Quote(_ context.Context, req *QuotationRequest) (*Quotation, error) {
	q := &Quotation{
		QuotationID:    strings.ReplaceAll(uuid.NewString(), "-", ""),
		ServiceType:    req.ServiceType,
		Language:       req.Language,
		PriceBreakdown: PriceBreakdown{Total: "120", Currency: "PHP"},
	}
	for i, s := range req.Stops {
		s.StopID = "s" + strconv.Itoa(i+1)
		q.Stops = append(q.Stops, s)
	}
	return q, nil
}

func (o *Offline) GetQuotation(_ context.Context, quotationID string) (*Quotation, error) {
	return &Quotation{
		QuotationID:    quotationID,
		PriceBreakdown: PriceBreakdown{Total: "120", Currency: "PHP"},
		Stops:          []Stop{{StopID: "s1"}, {StopID: "s2"}},
	}, nil
}

// PlaceOrder issues ids from the clock in milliseconds, bumped when two
// orders land in the same millisecond.
func (o *Offline) PlaceOrder(_ context.Context, req *OrderRequest) (*Order, error) {
	o.mu.Lock()
	id := o.now().UnixMilli()
	if id <= o.lastID {
		id = o.lastID + 1
	}
	o.lastID = id
	o.mu.Unlock()

	orderID := strconv.FormatInt(id, 10)
	return &Order{
		OrderID:     orderID,
		QuotationID: req.QuotationID,
		DriverID:    MockDriverID,
		ShareLink:   MockShareBase + orderID,
		Status:      MockStatus,
	}, nil
}

func (o *Offline) GetOrder(_ context.Context, orderID string) (*Order, error) {
	return &Order{
		OrderID:   orderID,
		DriverID:  MockDriverID,
		ShareLink: MockShareBase + orderID,
		Status:    MockStatus,
	}, nil
}

// GetDriver returns a point that drifts back and forth between two fixed
// coordinates with a period of about two minutes.
func (o *Offline) GetDriver(_ context.Context, _ string, driverID string) (*Driver, error) {
	now := o.now()
	lat, lng := MockPosition(now)
	return &Driver{
		DriverID: driverID,
		Coordinates: &Location{
			Lat:       strconv.FormatFloat(lat, 'f', -1, 64),
			Lng:       strconv.FormatFloat(lng, 'f', -1, 64),
			UpdatedAt: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		},
	}, nil
}

func (o *Offline) Ping(context.Context) error { return nil }

func (o *Offline) Name() string { return "lalamove (offline)" }

// MockPosition interpolates the synthetic driver position at time t.
func MockPosition(t time.Time) (lat, lng float64) {
	f := (math.Sin(float64(t.UnixMilli())/20000) + 1) / 2
	lat = mockFrom[0] + (mockTo[0]-mockFrom[0])*f
	lng = mockFrom[1] + (mockTo[1]-mockFrom[1])*f
	return lat, lng
}
