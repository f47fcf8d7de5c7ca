package store

import "time"

// Delivery lifecycle states reported by the provider.
const (
	StatusAssigningDriver = "ASSIGNING_DRIVER"
	StatusOnGoing         = "ON_GOING"
	StatusPickedUp        = "PICKED_UP"
	StatusCompleted       = "COMPLETED"
	StatusCanceled        = "CANCELED"
	StatusRejected        = "REJECTED"
	StatusExpired         = "EXPIRED"
)

// Record is the persisted state of one order.
type Record struct {
	QuotationID string         `json:"quotationId,omitempty"`
	Status      string         `json:"status,omitempty"`
	DriverID    string         `json:"driverId,omitempty"`
	ShareLink   string         `json:"shareLink,omitempty"`
	History     []HistoryEntry `json:"history,omitempty"`
	Mock        bool           `json:"mock,omitempty"`
}

type HistoryEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// Patch carries the fields of a merge. Empty strings are absent and never
// clear a stored value.
type Patch struct {
	QuotationID string
	Status      string
	DriverID    string
	ShareLink   string
	Mock        bool
}

func (r Record) clone() Record {
	if r.History != nil {
		h := make([]HistoryEntry, len(r.History))
		copy(h, r.History)
		r.History = h
	}
	return r
}

// apply merges p into r. QuotationID and ShareLink are write-once.
// A history entry is appended only when the status actually changes.
func (r *Record) apply(p Patch, now time.Time) {
	if p.QuotationID != "" && r.QuotationID == "" {
		r.QuotationID = p.QuotationID
	}
	if p.ShareLink != "" && r.ShareLink == "" {
		r.ShareLink = p.ShareLink
	}
	if p.DriverID != "" {
		r.DriverID = p.DriverID
	}
	if p.Status != "" && p.Status != r.Status {
		r.Status = p.Status
		r.History = append(r.History, HistoryEntry{Status: p.Status, At: now})
	}
	if p.Mock {
		r.Mock = true
	}
}
