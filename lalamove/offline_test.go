package lalamove

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"
)

func TestOfflineQuote(t *testing.T) {
	o := NewOffline()
	q, err := o.Quote(context.Background(), &QuotationRequest{
		Stops: []Stop{{Address: "A"}, {Address: "B"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(q.QuotationID) != 32 {
		t.Errorf("quotation id = %q, want 32 hex chars", q.QuotationID)
	}
	if q.PriceBreakdown.Total != "120" || q.PriceBreakdown.Currency != "PHP" {
		t.Errorf("price = %+v", q.PriceBreakdown)
	}
	if q.StopID(0) != "s1" || q.StopID(1) != "s2" || q.Stops[1].Address != "B" {
		t.Errorf("stops = %+v", q.Stops)
	}
}

func TestOfflinePlaceOrderUniqueIDs(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	o := NewOfflineAt(func() time.Time { return fixed })

	a, _ := o.PlaceOrder(context.Background(), &OrderRequest{QuotationID: "Q"})
	b, _ := o.PlaceOrder(context.Background(), &OrderRequest{QuotationID: "Q"})
	if a.OrderID != "1700000000000" {
		t.Errorf("first id = %q", a.OrderID)
	}
	if b.OrderID != "1700000000001" {
		t.Errorf("second id = %q", b.OrderID)
	}
	if a.ShareLink != "https://share.lalamock.com/1700000000000" {
		t.Errorf("share link = %q", a.ShareLink)
	}
	if a.DriverID != MockDriverID || a.Status != MockStatus || a.QuotationID != "Q" {
		t.Errorf("order = %+v", a)
	}
}

func TestMockPositionStaysOnSegment(t *testing.T) {
	for _, ms := range []int64{0, 15000, 31415, 47123, 1700000000000} {
		lat, lng := MockPosition(time.UnixMilli(ms))
		if lat > 14.5896+1e-9 || lat < 14.5547-1e-9 {
			t.Errorf("t=%d lat %f out of range", ms, lat)
		}
		if lng < 120.9811-1e-9 || lng > 121.0244+1e-9 {
			t.Errorf("t=%d lng %f out of range", ms, lng)
		}
	}
	lat, _ := MockPosition(time.UnixMilli(0))
	if math.Abs(lat-(14.5896+14.5547)/2) > 1e-9 {
		t.Errorf("midpoint lat = %f", lat)
	}
}

func TestOfflineDriver(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	o := NewOfflineAt(func() time.Time { return now })
	d, err := o.GetDriver(context.Background(), "1", "D-MOCK")
	if err != nil {
		t.Fatal(err)
	}
	if d.DriverID != "D-MOCK" || d.Coordinates == nil {
		t.Fatalf("driver = %+v", d)
	}
	if d.Coordinates.UpdatedAt != "2024-05-01T08:00:00.000Z" {
		t.Errorf("updatedAt = %q", d.Coordinates.UpdatedAt)
	}
	if _, err := strconv.ParseFloat(d.Coordinates.Lat, 64); err != nil {
		t.Errorf("lat not numeric: %q", d.Coordinates.Lat)
	}
}
