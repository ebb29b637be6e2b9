package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

// RequestHandler serves the client-owned request endpoints.
type RequestHandler struct {
	service     ports.RequestService
	attachments ports.AttachmentStore
}

// NewRequestHandler builds the handler. attachments may be nil, in which case
// upload tickets are refused with 503.
func NewRequestHandler(service ports.RequestService, attachments ports.AttachmentStore) *RequestHandler {
	return &RequestHandler{service: service, attachments: attachments}
}

// Create handles POST /requests.
//
// @Summary      Create a request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      requestPayload  true  "Request fields"
// @Success      201   {object}  apiResponse{data=domain.Request}
// @Failure      400   {object}  api.errorResponse
// @Failure      401   {object}  api.errorResponse
// @Failure      500   {object}  api.errorResponse
// @Router       /requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req requestPayload
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), id.AccountID, req.toFields())
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, created, "Request created successfully")
}

// Update handles PATCH /requests/:id.
//
// @Summary      Replace a request's fields
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Request ID"
// @Param        body  body      requestPayload  true  "Request fields"
// @Success      200   {object}  apiResponse{data=domain.Request}
// @Failure      400   {object}  api.errorResponse
// @Failure      401   {object}  api.errorResponse
// @Failure      500   {object}  api.errorResponse
// @Router       /requests/{id} [patch]
func (h *RequestHandler) Update(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	requestID := strings.TrimSpace(c.Param("id"))
	if requestID == "" {
		return domain.Validation("Invalid request id")
	}

	var req requestPayload
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), id.AccountID, requestID, req.toFields())
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, updated, "Request updated successfully")
}

// List handles GET /requests.
//
// @Summary      List the caller's requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse{data=[]domain.Request}
// @Failure      401  {object}  api.errorResponse
// @Router       /requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	requests, err := h.service.ListForClient(c.Request().Context(), id.AccountID)
	if err != nil {
		return err
	}
	if requests == nil {
		requests = []*domain.Request{}
	}

	return respond(c, http.StatusOK, requests, "Requests fetched successfully")
}

// Attachment handles POST /requests/attachments.
//
// @Summary      Get a presigned upload URL for an attachment
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      attachmentRequest  true  "File metadata"
// @Success      200   {object}  apiResponse{data=uploadTicketResponse}
// @Failure      400   {object}  api.errorResponse
// @Failure      503   {object}  api.errorResponse
// @Router       /requests/attachments [post]
func (h *RequestHandler) Attachment(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	if h.attachments == nil {
		return domain.Unavailable("Attachment uploads are not configured")
	}

	var req attachmentRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("Invalid request payload")
	}
	req.Filename = strings.TrimSpace(req.Filename)
	req.ContentType = strings.TrimSpace(req.ContentType)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ticket, err := h.attachments.PresignUpload(c.Request().Context(), id.AccountID, req.Filename, req.ContentType)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, uploadTicketResponse{
		Key:       ticket.Key,
		URL:       ticket.URL,
		Method:    ticket.Method,
		ExpiresAt: ticket.ExpiresAt.UTC().Format(time.RFC3339),
	}, "Upload URL issued")
}
