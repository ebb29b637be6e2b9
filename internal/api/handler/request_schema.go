package handler

import (
	"strings"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
)

// requestPayload is the body of POST /requests and PATCH /requests/:id.
// PATCH replaces the whole field group, so omitted fields are cleared.
type requestPayload struct {
	Title       string   `json:"requestTitle"`
	Description string   `json:"requestDescription"`
	Image       string   `json:"requestImage"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	Budget      *float64 `json:"budget"      validate:"omitempty,gte=0"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,required"`
	// VendorID is accepted and ignored; new requests start unassigned.
	VendorID *string `json:"vendorId" swaggerignore:"true"`
}

// normalize trims every string so validation sees the stored values.
func (p *requestPayload) normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Image = strings.TrimSpace(p.Image)
	p.Status = strings.TrimSpace(p.Status)
	p.Category = strings.TrimSpace(p.Category)
	for i, a := range p.Attachments {
		p.Attachments[i] = strings.TrimSpace(a)
	}
}

func (p requestPayload) toFields() domain.RequestFields {
	return domain.RequestFields{
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Status:      p.Status,
		Category:    p.Category,
		Budget:      p.Budget,
		Attachments: p.Attachments,
	}
}

type attachmentRequest struct {
	Filename    string `json:"filename"    validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

type uploadTicketResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Method    string `json:"method"`
	ExpiresAt string `json:"expiresAt"`
}
