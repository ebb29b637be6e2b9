package domain

import "time"

// RequestFields is the mutable part of a Request. Updates replace the whole
// group: a zero field means "absent" and is removed from the stored record.
type RequestFields struct {
	Title       string   `json:"requestTitle,omitempty"`
	Description string   `json:"requestDescription,omitempty"`
	Image       string   `json:"requestImage,omitempty"`
	Status      string   `json:"status,omitempty"`
	Category    string   `json:"category,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// Request is a unit of work posted by a client. VendorID stays nil until a
// vendor accepts it.
type Request struct {
	ID       string  `json:"id"`
	ClientID string  `json:"clientId"`
	VendorID *string `json:"vendorId"`
	RequestFields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
