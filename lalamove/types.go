package lalamove

import "encoding/json"

// envelope is the {"data": ...} wrapper used by every request and response.
type envelope[T any] struct {
	Data T `json:"data"`
}

type Coordinates struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type Stop struct {
	StopID      string      `json:"stopId,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
}

type Item struct {
	Quantity   string   `json:"quantity"`
	Weight     string   `json:"weight"`
	Categories []string `json:"categories"`
}

// DefaultItem is sent when the caller does not describe the parcel.
func DefaultItem() *Item {
	return &Item{Quantity: "1", Weight: "UNSPECIFIED", Categories: []string{}}
}

type QuotationRequest struct {
	ServiceType      string `json:"serviceType"`
	Language         string `json:"language"`
	IsRouteOptimized bool   `json:"isRouteOptimized"`
	Stops            []Stop `json:"stops"`
	Item             *Item  `json:"item,omitempty"`
}

type PriceBreakdown struct {
	Base     string `json:"base,omitempty"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type Quotation struct {
	QuotationID    string         `json:"quotationId"`
	ScheduleAt     string         `json:"scheduleAt,omitempty"`
	ExpiresAt      string         `json:"expiresAt,omitempty"`
	ServiceType    string         `json:"serviceType,omitempty"`
	Language       string         `json:"language,omitempty"`
	PriceBreakdown PriceBreakdown `json:"priceBreakdown"`
	Stops          []Stop         `json:"stops"`
}

// StopID returns the id of the i-th stop, or "" if there is none.
func (q *Quotation) StopID(i int) string {
	if q == nil || i < 0 || i >= len(q.Stops) {
		return ""
	}
	return q.Stops[i].StopID
}

type Contact struct {
	StopID  string `json:"stopId"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Remarks string `json:"remarks,omitempty"`
}

type OrderRequest struct {
	QuotationID  string            `json:"quotationId"`
	Sender       Contact           `json:"sender"`
	Recipients   []Contact         `json:"recipients"`
	IsPODEnabled bool              `json:"isPODEnabled"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type Order struct {
	OrderID     string `json:"orderId"`
	QuotationID string `json:"quotationId,omitempty"`
	DriverID    string `json:"driverId,omitempty"`
	ShareLink   string `json:"shareLink,omitempty"`
	Status      string `json:"status,omitempty"`
}

// UnmarshalJSON accepts "id" when "orderId" is absent.
func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	var aux struct {
		plain
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*o = Order(aux.plain)
	if o.OrderID == "" {
		o.OrderID = aux.ID
	}
	return nil
}

type Location struct {
	Lat       string `json:"lat"`
	Lng       string `json:"lng"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type Driver struct {
	DriverID    string    `json:"driverId"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	PlateNumber string    `json:"plateNumber,omitempty"`
	PhotoURL    string    `json:"photo,omitempty"`
	Coordinates *Location `json:"coordinates"`
}
