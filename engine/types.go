package engine

import (
	"bytes"
	"encoding/json"

	"github.com/Law2x/yeloSpot/lalamove"
	"github.com/Law2x/yeloSpot/store"
)

// LooseString decodes a JSON string or number into its text form. Browsers
// and the provider are inconsistent about quoting ids and coordinates.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*s = LooseString(n.String())
	}
	return nil
}

type Place struct {
	Lat     LooseString `json:"lat"`
	Lng     LooseString `json:"lng"`
	Address string      `json:"address,omitempty"`
}

func (p *Place) valid() bool {
	return p != nil && p.Lat != "" && p.Lng != ""
}

type QuoteRequest struct {
	Pickup      *Place         `json:"pickup"`
	Dropoff     *Place         `json:"dropoff"`
	ServiceType string         `json:"serviceType,omitempty"`
	Language    string         `json:"language,omitempty"`
	Item        *lalamove.Item `json:"item,omitempty"`
}

type Party struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	StopID  string `json:"stopId,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

type OrderRequest struct {
	QuotationID  string            `json:"quotationId"`
	Sender       *Party            `json:"sender,omitempty"`
	Recipient    *Party            `json:"recipient,omitempty"`
	IsPODEnabled *bool             `json:"isPODEnabled,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// OrderView is the merged order state returned to clients.
type OrderView struct {
	OrderID     string               `json:"orderId"`
	QuotationID string               `json:"quotationId,omitempty"`
	Status      string               `json:"status,omitempty"`
	DriverID    string               `json:"driverId,omitempty"`
	ShareLink   string               `json:"shareLink,omitempty"`
	History     []store.HistoryEntry `json:"history,omitempty"`
}

func viewOf(orderID string, r store.Record) *OrderView {
	return &OrderView{
		OrderID:     orderID,
		QuotationID: r.QuotationID,
		Status:      r.Status,
		DriverID:    r.DriverID,
		ShareLink:   r.ShareLink,
		History:     r.History,
	}
}

// Tracking is a one-shot driver position. Without an assigned driver it
// encodes driverId and coordinates as null alongside the order status.
type Tracking struct {
	Driver *lalamove.Driver
	Status string
}

func (t Tracking) MarshalJSON() ([]byte, error) {
	if t.Driver != nil {
		return json.Marshal(t.Driver)
	}
	return json.Marshal(struct {
		DriverID    *string            `json:"driverId"`
		Coordinates *lalamove.Location `json:"coordinates"`
		Status      string             `json:"status"`
	}{Status: t.Status})
}
